package simulation

import (
	"context"

	"github.com/rs/zerolog"
)

type opKind int

const (
	opDeposit opKind = iota
	opWithdraw
	opBalances
)

func (k opKind) String() string {
	switch k {
	case opDeposit:
		return "deposit"
	case opWithdraw:
		return "withdraw"
	}

	return "balances"
}

type step struct {
	kind     opKind
	amount   int64
	currency string
}

// Round is a fixed sequence of wallet calls made by one worker of a user.
type Round struct {
	Name  string
	steps []step
}

func deposit(amount int64, currency string) step {
	return step{kind: opDeposit, amount: amount, currency: currency}
}

func withdraw(amount int64, currency string) step {
	return step{kind: opWithdraw, amount: amount, currency: currency}
}

func balances() step {
	return step{kind: opBalances}
}

// Rounds holds the rounds a worker picks from at random.
var Rounds = []Round{
	{
		Name: "Round A",
		steps: []step{
			deposit(100, "USD"),
			withdraw(200, "USD"),
			deposit(100, "EUR"),
			balances(),
			withdraw(100, "USD"),
			balances(),
			withdraw(100, "USD"),
		},
	},
	{
		Name: "Round B",
		steps: []step{
			withdraw(100, "GBP"),
			// "GPB" is not a currency, the deposit is expected to be rejected.
			deposit(300, "GPB"),
			withdraw(100, "GBP"),
			withdraw(100, "GBP"),
			withdraw(100, "GBP"),
		},
	},
	{
		Name: "Round C",
		steps: []step{
			balances(),
			deposit(100, "USD"),
			deposit(100, "USD"),
			withdraw(100, "USD"),
			deposit(100, "USD"),
			balances(),
			withdraw(200, "USD"),
			balances(),
		},
	},
}

// Play runs every call of the round for the user and records the outcomes in report.
//
// A failed call is recorded and the round goes on. Play stops early only when ctx is done.
func (r Round) Play(ctx context.Context, c Client, userID string, report *Report) error {
	l := zerolog.Ctx(ctx).With().Str("user_id", userID).Str("round", r.Name).Logger()

	l.Debug().Msg("round starting")

	for _, s := range r.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch s.kind {
		case opDeposit, opWithdraw:
			call := c.Deposit
			if s.kind == opWithdraw {
				call = c.Withdraw
			}

			msg, err := call(ctx, userID, s.amount, s.currency)
			if err != nil {
				l.Error().Err(err).Msgf("%s %d %s failed", s.kind, s.amount, s.currency)
				report.fail(s.kind)

				continue
			}

			l.Debug().Str("result", msg).Msgf("%s %d %s", s.kind, s.amount, s.currency)
			report.message(s.kind, msg)
		case opBalances:
			got, err := c.Balances(ctx, userID)
			if err != nil {
				l.Error().Err(err).Msg("balances failed")
				report.fail(s.kind)

				continue
			}

			l.Debug().Interface("balances", got).Msg("balances")
			report.ok(s.kind)
		}
	}

	report.Rounds[r.Name]++

	l.Debug().Msg("round finished")

	return nil
}
