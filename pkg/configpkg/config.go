// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	TokenMaker          string        `mapstructure:"TOKEN_MAKER"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	Environement        string        `mapstructure:"GO_ENV"`
	SupportedCurrencies string        `mapstructure:"SUPPORTED_CURRENCIES"`
	LockBackend         string        `mapstructure:"LOCK_BACKEND"`
	LockTTL             time.Duration `mapstructure:"LOCK_TTL"`
	RedisAddress        string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword       string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int           `mapstructure:"REDIS_DB"`
	LedgerMaxRetries    int           `mapstructure:"LEDGER_MAX_RETRIES"`
	MetricsEnabled      bool          `mapstructure:"METRICS_ENABLED"`
}

// Storage drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverMemory   = "memory"
)

// Lock backends accepted in LOCK_BACKEND.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Token makers accepted in TOKEN_MAKER.
const (
	TokenPaseto = "paseto"
	TokenJWT    = "jwt"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_MAKER", TokenPaseto)
	v.SetDefault("ACCESS_TOKEN_DURATION", 15*time.Minute)
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("SUPPORTED_CURRENCIES", "USD,EUR,GBP")
	v.SetDefault("LOCK_BACKEND", LockLocal)
	v.SetDefault("LOCK_TTL", 5*time.Second)
	v.SetDefault("LEDGER_MAX_RETRIES", 3)
	v.SetDefault("METRICS_ENABLED", true)
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
