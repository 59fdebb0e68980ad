package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lifelink/lifelink/internal/config"
	"github.com/lifelink/lifelink/internal/domain/bloodrequest"
	"github.com/lifelink/lifelink/internal/domain/bloodunit"
	"github.com/lifelink/lifelink/internal/domain/center"
	"github.com/lifelink/lifelink/internal/domain/donor"
	"github.com/lifelink/lifelink/internal/domain/inventory"
	"github.com/lifelink/lifelink/internal/domain/organization"
	"github.com/lifelink/lifelink/internal/platform/auth"
	"github.com/lifelink/lifelink/internal/platform/cache"
	"github.com/lifelink/lifelink/internal/platform/db"
	"github.com/lifelink/lifelink/internal/platform/metrics"
	"github.com/lifelink/lifelink/internal/platform/middleware"
	"github.com/lifelink/lifelink/internal/platform/respond"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifelink-server",
		Short: "Blood donation logistics API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Roll back by applying a forward migration that reverses the change.")
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis cache (optional; inventory summaries fall back to Postgres without it)
	var inventoryCache *cache.Cache
	if cfg.RedisURL != "" {
		inventoryCache, err = cache.New(ctx, cfg.RedisURL, time.Duration(cfg.InventoryTTL)*time.Second)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer inventoryCache.Close()
		logger.Info().Msg("connected to redis")
	}

	// Metrics
	m := metrics.New()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = respond.HTTPErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	// Repositories
	orgRepo := organization.NewRepoPG(pool)
	donorRepo := donor.NewRepoPG(pool)
	centerRepo := center.NewRepoPG(pool)
	unitRepo := bloodunit.NewRepoPG(pool)
	requestRepo := bloodrequest.NewRepoPG(pool)
	inventoryRepo := inventory.NewRepoPG(pool)

	// Services
	orgSvc := organization.NewService(orgRepo)
	donorSvc := donor.NewService(donorRepo)
	centerSvc := center.NewService(centerRepo)
	unitSvc := bloodunit.NewService(unitRepo, donorSvc, centerSvc, logger)
	requestSvc := bloodrequest.NewService(requestRepo, orgSvc, logger)
	inventorySvc := inventory.NewService(inventoryRepo, inventoryCache, logger)

	// Cross-domain wiring. Unit movements refresh center inventories and
	// can advance the bound blood request; setters break the construction
	// cycle between the unit and request services.
	unitSvc.SetInventoryNotifier(inventorySvc)
	unitSvc.SetRequestBinder(requestSvc)
	unitSvc.SetMetrics(m)
	requestSvc.SetMetrics(m)
	inventorySvc.SetMetrics(m)

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	organization.NewHandler(orgSvc).RegisterRoutes(apiV1)
	donor.NewHandler(donorSvc).RegisterRoutes(apiV1)
	center.NewHandler(centerSvc).RegisterRoutes(apiV1)
	bloodunit.NewHandler(unitSvc).RegisterRoutes(apiV1)
	bloodrequest.NewHandler(requestSvc).RegisterRoutes(apiV1)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", m.Handler())

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
