package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   string `env:"PORT" envDefault:"8080"`

	DBDriver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath            string        `env:"DB_PATH" envDefault:"./dev.db"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"1m"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	AutoMigrate       *bool         `env:"AUTO_MIGRATE"`
	SeedDemo          bool          `env:"SEED_DEMO" envDefault:"false"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding   string `env:"LOG_ENCODING"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`

	MatrixConcurrency   int `env:"MATRIX_CONCURRENCY" envDefault:"4"`
	MatrixMaxQuantities int `env:"MATRIX_MAX_QUANTITIES" envDefault:"50"`
}

// Load reads environment variables and returns a populated Config.
func Load() (*Config, error) {
	// Best-effort: load local dev environment variables.
	// Real environment always wins; production should use real env injection.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.MatrixConcurrency < 1 {
		return fmt.Errorf("MATRIX_CONCURRENCY must be at least 1, got %d", c.MatrixConcurrency)
	}
	if c.MatrixMaxQuantities < 1 {
		return fmt.Errorf("MATRIX_MAX_QUANTITIES must be at least 1, got %d", c.MatrixMaxQuantities)
	}
	return nil
}

// IsDev reports whether the app runs in a development environment.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development" || c.AppEnv == "local"
}

// ShouldMigrate runs migrations on boot in dev unless AUTO_MIGRATE says otherwise.
func (c *Config) ShouldMigrate() bool {
	if c.AutoMigrate != nil {
		return *c.AutoMigrate
	}
	return c.IsDev()
}

// Encoding returns the log encoding, console in dev and json elsewhere.
func (c *Config) Encoding() string {
	if c.LogEncoding != "" {
		return c.LogEncoding
	}
	if c.IsDev() {
		return "console"
	}
	return "json"
}
