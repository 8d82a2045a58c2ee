// Package main runs a load simulation of concurrent users against the wallet API.
//
//	simulator --users 10 --workers 2 --rounds 5 --server http://localhost:8080
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-petr/pet-wallet/internal/simulation"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
)

type options struct {
	Users     int           `mapstructure:"users"`
	Workers   int           `mapstructure:"workers"`
	Rounds    int           `mapstructure:"rounds"`
	Server    string        `mapstructure:"server"`
	TokenKey  string        `mapstructure:"token-key"`
	TokenKind string        `mapstructure:"token-maker"`
	TokenTTL  time.Duration `mapstructure:"token-ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Debug     bool          `mapstructure:"debug"`
}

func loadOptions(args []string) (options, error) {
	var opts options

	flags := pflag.NewFlagSet("simulator", pflag.ContinueOnError)
	flags.Int("users", 1, "number of simulated users (1-250)")
	flags.Int("workers", 1, "concurrent workers per user")
	flags.Int("rounds", 1, "rounds played by every worker")
	flags.String("server", "http://localhost:8080", "wallet API base url")
	flags.String("token-key", "", "symmetric key the wallet API verifies tokens with")
	flags.String("token-maker", tokenpkg.KindPaseto, "token format: paseto or jwt")
	flags.Duration("token-ttl", time.Hour, "lifetime of the issued tokens")
	flags.Duration("timeout", 10*time.Second, "timeout of a single request")
	flags.Bool("debug", false, "log every call")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}

	v := viper.New()
	v.SetEnvPrefix("simulator")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Share the key with the server configuration when it is not given explicitly.
	if err := v.BindEnv("token-key", "SIMULATOR_TOKEN_KEY", "TOKEN_SYMMETRIC_KEY"); err != nil {
		return opts, err
	}

	if err := v.BindPFlags(flags); err != nil {
		return opts, err
	}

	if err := v.Unmarshal(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}

func main() {
	opts, err := loadOptions(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse options")
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	maker, err := tokenpkg.New(opts.TokenKind, opts.TokenKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create token maker")
	}

	config := simulation.Config{
		Users:   opts.Users,
		Workers: opts.Workers,
		Rounds:  opts.Rounds,
	}

	newClient := simulation.HTTPClientFactory(opts.Server, maker, opts.TokenTTL, opts.Timeout)

	sim, err := simulation.New(config, newClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create simulation")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithContext(ctx)

	report, err := sim.Run(ctx)
	if report != nil {
		report.Log(&logger)
	}

	if err != nil {
		logger.Error().Err(err).Msg("simulation interrupted")
		stop()
		os.Exit(1)
	}
}
