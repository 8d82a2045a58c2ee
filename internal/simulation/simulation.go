// Package simulation drives concurrent simulated users against the wallet API.
//
// Every user runs a number of workers and every worker plays a number of rounds picked at random.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/go-petr/pet-wallet/pkg/randompkg"
)

// MaxUsers is the largest number of simulated users in a run.
const MaxUsers = 250

var (
	ErrInvalidUsers   = fmt.Errorf("users must be between 1 and %d", MaxUsers)
	ErrInvalidWorkers = errors.New("workers per user must be at least 1")
	ErrInvalidRounds  = errors.New("rounds per worker must be at least 1")
)

// Config holds the shape of a simulation run.
type Config struct {
	Users   int
	Workers int
	Rounds  int
	// RunID prefixes the user ids, so separate runs do not share wallets. A random one is used when empty.
	RunID string
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	switch {
	case c.Users < 1 || c.Users > MaxUsers:
		return ErrInvalidUsers
	case c.Workers < 1:
		return ErrInvalidWorkers
	case c.Rounds < 1:
		return ErrInvalidRounds
	}

	return nil
}

// Report counts the outcomes of a run.
type Report struct {
	// Calls counts the wallet calls by operation.
	Calls map[string]int `json:"calls"`
	// Messages counts the ledger messages of deposits and withdrawals. Accepted operations count under "".
	Messages map[string]int `json:"messages"`
	// Failures counts the calls that got no ledger answer, by operation.
	Failures map[string]int `json:"failures"`
	Rounds   map[string]int `json:"rounds"`
}

// NewReport returns an empty Report.
func NewReport() *Report {
	return &Report{
		Calls:    make(map[string]int),
		Messages: make(map[string]int),
		Failures: make(map[string]int),
		Rounds:   make(map[string]int),
	}
}

func (r *Report) ok(kind opKind) {
	r.Calls[kind.String()]++
}

func (r *Report) message(kind opKind, msg string) {
	r.Calls[kind.String()]++
	r.Messages[msg]++
}

func (r *Report) fail(kind opKind) {
	r.Calls[kind.String()]++
	r.Failures[kind.String()]++
}

func (r *Report) merge(other *Report) {
	for k, v := range other.Calls {
		r.Calls[k] += v
	}

	for k, v := range other.Messages {
		r.Messages[k] += v
	}

	for k, v := range other.Failures {
		r.Failures[k] += v
	}

	for k, v := range other.Rounds {
		r.Rounds[k] += v
	}
}

// Log writes the report counters, one line per message.
func (r *Report) Log(l *zerolog.Logger) {
	messages := make([]string, 0, len(r.Messages))
	for msg := range r.Messages {
		messages = append(messages, msg)
	}

	sort.Strings(messages)

	for _, msg := range messages {
		label := msg
		if label == "" {
			label = "OK"
		}

		l.Info().Str("message", label).Int("count", r.Messages[msg]).Send()
	}

	l.Info().
		Interface("calls", r.Calls).
		Interface("failures", r.Failures).
		Interface("rounds", r.Rounds).
		Msg("simulation report")
}

// Simulator runs simulated users against a wallet API.
type Simulator struct {
	config    Config
	newClient func(userID string) (Client, error)
	pick      func(n int) int
}

// New returns a Simulator creating one Client per user with newClient.
func New(config Config, newClient func(userID string) (Client, error)) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.RunID == "" {
		config.RunID = uuid.NewString()[:8]
	}

	s := &Simulator{
		config:    config,
		newClient: newClient,
		pick: func(n int) int {
			return int(randompkg.Intn(n))
		},
	}

	return s, nil
}

// UserID returns the wallet user id of the i-th simulated user, starting at 1.
func (s *Simulator) UserID(i int) string {
	return s.config.RunID + "-" + strconv.Itoa(i)
}

// Run plays every round of every worker of every user and waits for all of them.
//
// It returns the merged report, and ctx.Err() when the run was interrupted.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	l := zerolog.Ctx(ctx)

	clients := make([]Client, s.config.Users)

	for i := range clients {
		c, err := s.newClient(s.UserID(i + 1))
		if err != nil {
			return nil, err
		}

		clients[i] = c
	}

	l.Info().
		Int("users", s.config.Users).
		Int("workers", s.config.Workers).
		Int("rounds", s.config.Rounds).
		Str("run_id", s.config.RunID).
		Msg("simulation started")

	var (
		mu     sync.Mutex
		report = NewReport()
	)

	g, gctx := errgroup.WithContext(ctx)

	for i, c := range clients {
		c := c
		userID := s.UserID(i + 1)

		for w := 0; w < s.config.Workers; w++ {
			rounds := s.pickRounds()

			g.Go(func() error {
				local := NewReport()

				defer func() {
					mu.Lock()
					report.merge(local)
					mu.Unlock()
				}()

				for _, r := range rounds {
					if err := r.Play(gctx, c, userID, local); err != nil {
						return err
					}
				}

				return nil
			})
		}
	}

	err := g.Wait()

	l.Info().Msg("simulation finished")

	return report, err
}

func (s *Simulator) pickRounds() []Round {
	rounds := make([]Round, s.config.Rounds)
	for i := range rounds {
		rounds[i] = Rounds[s.pick(len(Rounds))]
	}

	return rounds
}
