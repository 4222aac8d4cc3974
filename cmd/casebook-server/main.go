package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soudan/casebook/internal/config"
	"github.com/soudan/casebook/internal/domain/assistant"
	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/dashboard"
	"github.com/soudan/casebook/internal/domain/druginfo"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/monitoring"
	"github.com/soudan/casebook/internal/domain/network"
	"github.com/soudan/casebook/internal/domain/notebook"
	"github.com/soudan/casebook/internal/domain/organization"
	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/domain/report"
	"github.com/soudan/casebook/internal/domain/staff"
	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/db"
	"github.com/soudan/casebook/internal/platform/llm"
	"github.com/soudan/casebook/internal/platform/middleware"
	"github.com/soudan/casebook/internal/platform/pdf"
	"github.com/soudan/casebook/migrations"
)

const apiPrefix = "/api/v1"

func main() {
	rootCmd := &cobra.Command{
		Use:   "casebook-server",
		Short: "計画相談支援 利用者管理 API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(staffCmd())

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

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// migrationsFS prefers an on-disk directory when one is given.
func migrationsFS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return migrations.FS
}

func openPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.Timezone)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
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

			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			count, err := db.NewMigrator(pool, migrationsFS(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to a migrations directory (defaults to the embedded set)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			statuses, err := db.NewMigrator(pool, migrationsFS(dir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(os.Stdout, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to a migrations directory (defaults to the embedded set)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}

	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the initial administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			name, _ := cmd.Flags().GetString("name")
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return errors.New("ADMIN_PASSWORD is required")
			}

			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := newLogger(cfg.Env)
			sessions := auth.NewSessions(cfg.SecretKey, cfg.SessionTimeout(), cfg.AppName)
			svc := staff.NewService(staff.NewRepoPG(pool), sessions, auth.NewMemoryRevocationStore(), logger)
			created, err := svc.EnsureAdmin(ctx, username, password, name)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Created administrator %q.\n", username)
			} else {
				fmt.Printf("Staff %q already exists, nothing to do.\n", username)
			}
			return nil
		},
	}
	createAdmin.Flags().String("username", "admin", "Login name")
	createAdmin.Flags().String("name", "管理者", "Display name")
	cmd.AddCommand(createAdmin)

	return cmd
}

// skipPrefix bypasses mw for requests under any of prefixes.
func skipPrefix(mw echo.MiddlewareFunc, prefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range prefixes {
				if strings.HasPrefix(path, p) {
					return next(c)
				}
			}
			return wrapped(c)
		}
	}
}

func openRevocations(ctx context.Context, redisURL string, logger zerolog.Logger) (auth.RevocationStore, func()) {
	if redisURL != "" {
		rc, err := auth.NewRedisClient(ctx, redisURL)
		if err == nil {
			logger.Info().Msg("session revocations stored in redis")
			return auth.NewRedisRevocationStore(rc), func() { _ = rc.Close() }
		}
		logger.Warn().Err(err).Msg("redis unavailable, falling back to in-memory revocations")
	}
	mem := auth.NewMemoryRevocationStore()
	return mem, mem.Close
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	revocations, closeRevocations := openRevocations(ctx, cfg.RedisURL, logger)
	defer closeRevocations()
	sessions := auth.NewSessions(cfg.SecretKey, cfg.SessionTimeout(), cfg.AppName)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	// services
	clock := func() time.Time { return time.Now().In(cfg.Location()) }
	staffSvc := staff.NewService(staff.NewRepoPG(pool), sessions, revocations, logger)
	clientSvc := client.NewService(client.NewRepoPG(pool), clock, logger)
	notebookSvc := notebook.NewService(notebook.NewRepoPG(pool), clientSvc)
	consultationSvc := consultation.NewService(consultation.NewRepoPG(pool), clientSvc, clock)
	orgSvc := organization.NewService(organization.NewRepoPG(pool), organization.NewLinkRepoPG(pool), clientSvc)
	planSvc := plan.NewService(plan.NewRepoPG(pool), plan.NewEvaluationRepoPG(pool), clientSvc, clock, logger)
	monitoringSvc := monitoring.NewService(monitoring.NewRepoPG(pool), planSvc, clientSvc, clock)
	medicationSvc := medication.NewService(medication.NewRepoPG(pool), medication.NewDoctorRepoPG(pool), clientSvc, db.NewTransactor(pool), clock, logger)
	networkSvc := network.NewService(clientSvc, orgSvc, staffSvc)
	dashboardSvc := dashboard.NewService(dashboard.NewRepoPG(pool), clock)
	assistantSvc := assistant.NewService(assistant.Sources{
		Users:         clientSvc,
		Medications:   medicationSvc,
		Consultations: consultationSvc,
		Plans:         planSvc,
	}, llm.NewClient(cfg.OllamaURL, cfg.OllamaTimeout(), cfg.OllamaDefaultModel), logger)

	renderer, err := pdf.NewRenderer(cfg.PDFFontPath, cfg.Location())
	if err != nil {
		logger.Warn().Err(err).Str("font", cfg.PDFFontPath).Msg("pdf font unavailable, using core font")
		renderer, _ = pdf.NewRenderer("", cfg.Location())
	}

	// global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("2M"))
	e.Use(middleware.SecurityHeaders(cfg.CookieSecure))
	e.Use(auth.Middleware(auth.MiddlewareConfig{
		Sessions:    sessions,
		Revocations: revocations,
		Lookup:      staffSvc,
		Skipper:     auth.AuthSkipper,
		Logger:      logger,
	}))
	e.Use(middleware.Audit(logger))
	// the assistant waits on the inference server; holding a transaction
	// open for that long would pin a pool connection
	e.Use(skipPrefix(db.TxMiddleware(pool, logger), apiPrefix+"/ai/"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group(apiPrefix)
	staff.NewHandler(staffSvc, cfg.CookieSecure).
		RegisterRoutes(apiV1, middleware.RateLimit(middleware.LoginRateLimitConfig(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst)))
	client.NewHandler(clientSvc).RegisterRoutes(apiV1)
	notebook.NewHandler(notebookSvc).RegisterRoutes(apiV1)
	consultation.NewHandler(consultationSvc).RegisterRoutes(apiV1)
	organization.NewHandler(orgSvc).RegisterRoutes(apiV1)
	plan.NewHandler(planSvc).RegisterRoutes(apiV1)
	monitoring.NewHandler(monitoringSvc).RegisterRoutes(apiV1)
	medication.NewHandler(medicationSvc).RegisterRoutes(apiV1)
	network.NewHandler(networkSvc).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
	assistant.NewHandler(assistantSvc).RegisterRoutes(apiV1)
	druginfo.NewHandler(druginfo.NewCatalogue()).RegisterRoutes(apiV1)
	report.NewHandler(report.Sources{
		Users:         clientSvc,
		Plans:         planSvc,
		Monitorings:   monitoringSvc,
		Consultations: consultationSvc,
		Medications:   medicationSvc,
		Network:       networkSvc,
	}, renderer, clock).RegisterRoutes(apiV1)

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
