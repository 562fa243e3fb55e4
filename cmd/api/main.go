package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/baharkarakas/hbnb-api/internal/api"
	"github.com/baharkarakas/hbnb-api/internal/auth"
	"github.com/baharkarakas/hbnb-api/internal/config"
	"github.com/baharkarakas/hbnb-api/internal/db"
	"github.com/baharkarakas/hbnb-api/internal/logger"
	"github.com/baharkarakas/hbnb-api/internal/metrics"
	"github.com/baharkarakas/hbnb-api/internal/middleware"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
	"github.com/baharkarakas/hbnb-api/internal/repository/memory"
	"github.com/baharkarakas/hbnb-api/internal/repository/postgres"
	"github.com/baharkarakas/hbnb-api/internal/services"
)

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repo.Store
	if cfg.DatabaseURL != "" {
		if cfg.Migrate {
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		store = memory.New()
	}

	metrics.Init()
	catalog := services.NewCatalog(store, auth.NewBcryptHasher(cfg.BcryptCost), log)
	if cfg.AdminEmail != "" {
		if _, err := catalog.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("seed admin", "err", err)
			os.Exit(1)
		}
	}
	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	var limiter *middleware.RateLimiter
	if cfg.RateRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateRPS, cfg.RateRPS, 5*time.Minute)
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(api.RouterDeps{
			Cfg:     cfg,
			Log:     log,
			Catalog: catalog,
			Tokens:  tokens,
			Limiter: limiter,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
