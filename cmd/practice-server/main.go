package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/practice/internal/config"
	"github.com/ehr/practice/internal/domain/notification"
	"github.com/ehr/practice/internal/platform/db"
	"github.com/ehr/practice/internal/platform/middleware"
	"github.com/ehr/practice/internal/platform/validation"
	"github.com/ehr/practice/internal/platform/websocket"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "practice-server",
		Short: "Practice notification center API server",
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
		Short: "Start the notification API server",
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
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
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
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, dir))
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}
}

// newLogger writes human-readable lines in development and JSON otherwise.
func newLogger(w io.Writer, dev bool) zerolog.Logger {
	if dev {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(os.Stdout, cfg.IsDev())

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	cfg.Warn(logger)

	ctx := context.Background()

	// Snapshot persistence is optional.
	var (
		pool *pgxpool.Pool
		repo notification.SnapshotRepository
	)
	if cfg.HasDatabase() {
		pool, err = db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		repo = notification.NewSnapshotRepoPG(pool)
		logger.Info().Msg("connected to database")
	}

	store := notification.NewStore(logger, initialNotifications(ctx, repo, cfg.Seed, time.Now().UTC(), logger))
	hub := websocket.NewHub(logger)

	if cfg.GeneratorEnabled {
		_, err := store.StartGenerator(notification.GeneratorConfig{
			Interval:          cfg.GeneratorInterval,
			Probability:       cfg.GeneratorProbability,
			ActionProbability: cfg.ActionProbability,
		}, hub)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start notification generator")
		}
	}

	e := newEcho(cfg, logger, store, hub, pool)

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
	store.Close()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	saveSnapshot(shutdownCtx, repo, store, logger)

	logger.Info().Msg("server stopped")
	return nil
}

// newEcho wires middleware and routes. pool may be nil.
func newEcho(cfg *config.Config, logger zerolog.Logger, store *notification.Store, hub *websocket.Hub, pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		SkipPrefixes:      []string{"/health", "/ws"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	apiV1 := e.Group("/api/v1", middleware.BodyLimit(cfg.BodyLimit))
	notification.NewHandler(store).RegisterRoutes(apiV1)

	websocket.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(e.Group(""))

	return e
}

// initialNotifications restores the last snapshot when persistence is
// configured, falling back to seed data when nothing was saved or the load
// fails.
func initialNotifications(ctx context.Context, repo notification.SnapshotRepository, seed bool, now time.Time, logger zerolog.Logger) []notification.Notification {
	if repo != nil {
		items, err := repo.Load(ctx)
		switch {
		case err != nil:
			logger.Error().Err(err).Msg("failed to restore notifications, starting from seed")
		case len(items) > 0:
			logger.Info().Int("count", len(items)).Msg("restored notifications")
			return items
		}
	}
	if !seed {
		return nil
	}
	return notification.SeedNotifications(now)
}

func saveSnapshot(ctx context.Context, repo notification.SnapshotRepository, store *notification.Store, logger zerolog.Logger) {
	if repo == nil {
		return
	}
	items := store.Snapshot()
	if err := repo.Save(ctx, items); err != nil {
		logger.Error().Err(err).Msg("failed to save notifications")
		return
	}
	logger.Info().Int("count", len(items)).Msg("saved notifications")
}
