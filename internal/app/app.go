package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-bookstore/internal/config"
	"go-bookstore/internal/database"
	"go-bookstore/internal/handler"
	"go-bookstore/internal/middleware"
	"go-bookstore/internal/repository"
	"go-bookstore/internal/router"
	"go-bookstore/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokens, err := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTAccessTTL)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	if cfg.UsesDevSecret() {
		slog.Warn("JWT_SECRET is the development default; set it before deploying")
	}

	authService := service.NewAuthService(store, hasher, tokens)
	resetService := service.NewResetService(store, hasher, cfg.ResetTokenTTL)
	bookService := service.NewBookService(store)

	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to bootstrap admin user: %w", err)
	}

	appRouter := router.New(
		cfg,
		middleware.NewAuthMiddleware(tokens),
		handler.NewHealthHandler(store),
		handler.NewAuthHandler(authService, resetService),
		handler.NewBookHandler(bookService),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go resetService.StartCleanupTicker(cleanupCtx, cfg.ResetTokenCleanupInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			cleanupCancel,
			closeStore,
		},
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database ready")

	return repository.NewPostgresStore(db.Pool), db.Close, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// In-flight requests are drained before the store goes away.
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
