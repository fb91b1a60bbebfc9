package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Options describes how to reach the catalog database.
type Options struct {
	Driver          string
	Path            string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Open connects to SQLite or Postgres depending on opts.Driver.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*sqlx.DB, error) {
	switch opts.Driver {
	case "", "sqlite":
		return OpenSQLite(opts.Path)
	case "postgres":
		return openPostgres(ctx, opts, logger)
	}
	return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
}

// OpenSQLite opens a SQLite database, sets recommended pragmas, and validates connectivity.
func OpenSQLite(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}

func openPostgres(ctx context.Context, opts Options, logger *zap.Logger) (*sqlx.DB, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = 15 * time.Second
	policy.MaxElapsedTime = opts.ConnectTimeout
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = time.Minute
	}

	var db *sqlx.DB
	connect := func() error {
		conn, err := sqlx.ConnectContext(ctx, "postgres", opts.URL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		db = conn
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("postgres connection failed, retrying",
			zap.Error(err),
			zap.Duration("next_attempt_in", next))
	}

	logger.Info("connecting to postgres")
	if err := backoff.RetryNotify(connect, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	logger.Info("connected to postgres")
	return db, nil
}
