package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/config"
	"github.com/Simplici0/printshop-quotes/internal/db"
	"github.com/Simplici0/printshop-quotes/internal/logger"
	"github.com/Simplici0/printshop-quotes/internal/migrations"
	"github.com/Simplici0/printshop-quotes/internal/pricing"
	"github.com/Simplici0/printshop-quotes/internal/seed"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	db            *sqlx.DB
	store         catalog.Store
	engine        *pricing.Engine
	logger        *zap.Logger
	validate      *validator.Validate
	maxQuantities int
}

func newServer(database *sqlx.DB, store catalog.Store, engine *pricing.Engine, logger *zap.Logger, maxQuantities int) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{
		db:            database,
		store:         store,
		engine:        engine,
		logger:        logger,
		validate:      newValidator(),
		maxQuantities: maxQuantities,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Encoding:   cfg.Encoding(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Dev:        cfg.IsDev(),
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, db.Options{
		Driver:          cfg.DBDriver,
		Path:            cfg.DBPath,
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	}, lg)
	if err != nil {
		lg.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.ShouldMigrate() {
		if err := migrations.Up(database.DB, cfg.DBDriver, cfg.MigrationsDir); err != nil {
			lg.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	if cfg.SeedDemo {
		stats, err := seed.Run(database)
		if err != nil {
			lg.Fatal("failed to seed demo catalog", zap.Error(err))
		}
		lg.Info("demo catalog seeded", zap.Int("inserts", stats.Inserts))
	}

	store := catalog.NewSQLStore(database)
	engine := pricing.New(store, lg.Named("pricing"), pricing.WithMatrixConcurrency(cfg.MatrixConcurrency))
	srv := newServer(database, store, engine, lg, cfg.MatrixMaxQuantities)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			lg.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	lg.Info("server stopped")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(metricsMiddleware)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.handleHealth)

	r.Route("/api/quotes", func(r chi.Router) {
		r.Post("/calc", s.handleCalc)
		r.Post("/matrix", s.handleMatrix)
		r.Post("/matrix.xlsx", s.handleMatrixXLSX)
		r.Post("/", s.handleQuoteCreate)
		r.Get("/", s.handleQuotesList)
		r.Get("/{id}", s.handleQuoteDetail)
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
