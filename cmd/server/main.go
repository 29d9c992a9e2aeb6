package main

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

	"toolhub/internal/config"
	"toolhub/internal/database"
	"toolhub/internal/handler"
	"toolhub/internal/logger"
	"toolhub/internal/middleware"
	"toolhub/internal/repository"
	"toolhub/internal/service"
	"toolhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New("toolhub-api", logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)
	if envErr != nil {
		log.Info("no .env file loaded, relying on environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
	log.Info("server exiting")
}

// run serves until ctx is cancelled. Every resource it opens is released before it returns.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Info("configuration loaded", "config", cfg)

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbPool.Close()

	// --- Migrations ---
	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("configure migrations: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		return err
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return fmt.Errorf("register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return fmt.Errorf("register process collector: %w", err)
	}
	metrics, err := middleware.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// --- Rate Limiting ---
	var limiter middleware.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = newRateLimiter(ctx, cfg, log)
		defer limiter.Close()
	}

	// --- Wiring ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiration, utils.WithIssuer(cfg.JWTIssuer))

	userRepo := repository.NewUserRepository(dbPool)
	toolRepo := repository.NewToolRepository(dbPool)

	authService := service.NewAuthService(userRepo, jwtUtil, cfg.InitialAdminEmail, log)
	catalogService := service.NewCatalogService(toolRepo)

	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(handler.RouterDeps{
		AuthService:       authService,
		CatalogService:    catalogService,
		JWTUtil:           jwtUtil,
		Logger:            log,
		DB:                dbPool,
		Limiter:           limiter,
		SignupLimit:       cfg.SignupPerMinute,
		LoginLimit:        cfg.LoginPerMinute,
		Metrics:           metrics,
		Gatherer:          registry,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRateLimiter(ctx context.Context, cfg *config.Config, log *slog.Logger) middleware.RateLimiter {
	if cfg.RateLimitRedisAddr == "" {
		return middleware.NewMemoryRateLimiter()
	}
	limiter, err := middleware.NewRedisRateLimiter(ctx, cfg.RateLimitRedisAddr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
	if err != nil {
		log.Warn("redis rate limiter unavailable, falling back to memory", "addr", cfg.RateLimitRedisAddr, "error", err)
		return middleware.NewMemoryRateLimiter()
	}
	log.Info("using redis rate limiter", "addr", cfg.RateLimitRedisAddr)
	return limiter
}
