package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/handlers"
	"vocabdrill/internal/logger"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/scheduler"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
	"vocabdrill/internal/sessions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg, log)
	if err != nil {
		log.Error("server stopped", "error", err)
	}
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	log.Info("database connection established", "type", db.Dialect.DriverName())

	health := handlers.NewHealthHandler(db, log)

	// Health checks are served while the rest starts up
	addr := ":" + cfg.ServerPort
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	// Released only after in-flight requests have drained
	var afterShutdown []func()
	defer func() {
		shutdown(server, log, 10*time.Second, afterShutdown...)
	}()

	health.SetStep("running migrations")
	applied, err := db.RunMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed", "applied", len(applied))

	health.SetStep("initializing services")
	guard := db.NewGuard(database.GuardConfigFrom(cfg.Storage), log)
	contentRepo := repository.NewContentRepository(db, guard)
	progressRepo := repository.NewProgressRepository(db, guard)
	userRepo := repository.NewUserRepository(db, guard)

	store, sched, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		afterShutdown = append(afterShutdown, func() {
			if err := closer.Close(); err != nil {
				log.Error("failed to close session store", "error", err)
			}
		})
	}
	if sched != nil {
		if err := sched.Start(); err != nil {
			return err
		}
		afterShutdown = append(afterShutdown, sched.Stop)
	}

	tokens := security.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)
	selector := service.NewSelector(contentRepo, progressRepo)
	practiceService := service.NewPracticeService(selector, progressRepo, store, log)
	catalogService := service.NewCatalogService(contentRepo, progressRepo, progressRepo)

	h := &handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, security.NewRateLimiter(cfg.Auth.LoginRateLimit, time.Minute), log),
		Auth:       handlers.NewAuthHandler(authService, log),
		Practice:   handlers.NewPracticeHandler(practiceService, log),
		Catalog:    handlers.NewCatalogHandler(catalogService, log),
		Health:     health,
	}
	mux.Handle("/", h.Routes())
	health.MarkReady()
	log.Info("server ready")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("server shutting down")
	}
	return nil
}

// shutdown stops accepting requests, waits up to timeout for in-flight ones to
// finish, then runs after in reverse order
func shutdown(server *http.Server, log *logger.Logger, timeout time.Duration, after ...func()) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	for i := len(after) - 1; i >= 0; i-- {
		after[i]()
	}
}

// newSessionStore builds the configured practice session store. The memory
// store comes with a scheduler that sweeps idle sessions; Redis expires them
// itself.
func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (service.SessionStore, *scheduler.Scheduler, error) {
	if cfg.Sessions.Store == "redis" {
		store, err := sessions.NewRedisStore(ctx, sessions.RedisOptions{
			Addr:     cfg.Sessions.RedisAddr,
			Password: cfg.Sessions.RedisPassword,
			DB:       cfg.Sessions.RedisDB,
			IdleTTL:  cfg.Sessions.IdleTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("practice sessions stored in redis", "addr", cfg.Sessions.RedisAddr)
		return store, nil, nil
	}

	store := sessions.NewMemoryStore()
	sched := scheduler.New(store, cfg.Sessions.IdleTTL, cfg.Sessions.SweepInterval, log)
	return store, sched, nil
}
