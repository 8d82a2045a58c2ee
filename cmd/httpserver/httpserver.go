// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/accountservice"
	"github.com/go-petr/pet-wallet/internal/ledgerrepo"
	"github.com/go-petr/pet-wallet/internal/ledgerservice"
	"github.com/go-petr/pet-wallet/internal/memrepo"
	"github.com/go-petr/pet-wallet/internal/metrics"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/internal/redislock"
	"github.com/go-petr/pet-wallet/internal/walletdelivery"
	"github.com/go-petr/pet-wallet/internal/walletservice"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/go-petr/pet-wallet/pkg/lockpkg"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
)

const healthTimeout = 2 * time.Second

// Server holds db connection, handlers router and configuration.
type Server struct {
	// DB is nil when the memory driver is configured.
	DB         *sql.DB
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker
	Metrics    *metrics.Metrics

	redis *redis.Client
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the connections opened by New. The database handle is owned by the caller.
func (s *Server) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	currencies, err := currencypkg.ParseSet(config.SupportedCurrencies)
	if err != nil {
		return nil, fmt.Errorf("cannot parse supported currencies: %w", err)
	}

	repo, err := newRepo(conn, config)
	if err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Config: config,
	}

	locker, err := server.newLocker(config)
	if err != nil {
		return nil, err
	}

	server.TokenMaker, err = tokenpkg.New(config.TokenMaker, config.TokenSymmetricKey)
	if err != nil {
		_ = server.Close()
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	var recorder ledgerservice.Recorder

	if config.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		server.Metrics = metrics.New(reg)
		recorder = server.Metrics
	}

	accountService := accountservice.New(repo)
	ledgerService := ledgerservice.New(repo, locker, currencies, recorder, config.LedgerMaxRetries)
	walletService := walletservice.New(ledgerService, accountService)
	walletHandler := walletdelivery.NewHandler(walletService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	if server.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(server.Metrics))
		engine.GET("/metrics", gin.WrapH(server.Metrics.Handler()))
	}

	engine.Use(gin.Recovery())

	engine.GET("/health", server.health)

	walletRoutes := engine.Group("/wallets/:user_id").Use(
		middleware.AuthMiddleware(server.TokenMaker),
		middleware.RequireOwner("user_id"),
	)

	walletRoutes.POST("/deposit", walletHandler.Deposit)
	walletRoutes.POST("/withdraw", walletHandler.Withdraw)
	walletRoutes.GET("/balances", walletHandler.Balances)
	walletRoutes.GET("/transactions", walletHandler.History)
	walletRoutes.GET("/audit", walletHandler.Audit)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencies.Validator())
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server.Engine = engine

	return server, nil
}

func newRepo(conn *sql.DB, config configpkg.Config) (ledgerservice.Repo, error) {
	switch config.DBDriver {
	case configpkg.DriverMemory:
		return memrepo.NewRepoMem(), nil
	case configpkg.DriverPostgres, configpkg.DriverPGX:
		if conn == nil {
			return nil, errors.New("database connection is required for driver " + config.DBDriver)
		}

		return ledgerrepo.NewRepoPGS(conn), nil
	}

	return nil, fmt.Errorf("unsupported db driver %q", config.DBDriver)
}

func (s *Server) newLocker(config configpkg.Config) (ledgerservice.Locker, error) {
	switch config.LockBackend {
	case configpkg.LockLocal:
		return lockpkg.NewTable(), nil
	case configpkg.LockRedis:
		s.redis = redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		if err := s.redis.Ping(ctx).Err(); err != nil {
			_ = s.redis.Close()
			return nil, fmt.Errorf("cannot connect to redis: %w", err)
		}

		return redislock.New(s.redis, config.LockTTL), nil
	}

	return nil, fmt.Errorf("unsupported lock backend %q", config.LockBackend)
}

func (s *Server) health(gctx *gin.Context) {
	ctx, cancel := context.WithTimeout(gctx.Request.Context(), healthTimeout)
	defer cancel()

	l := zerolog.Ctx(ctx)

	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			l.Error().Err(err).Msg("database ping failed")
			gctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			l.Error().Err(err).Msg("redis ping failed")
			gctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
