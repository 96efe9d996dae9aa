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

	"github.com/thebakclinic/clinic-api/internal/config"
	"github.com/thebakclinic/clinic-api/internal/domain/cleaning"
	"github.com/thebakclinic/clinic-api/internal/domain/notification"
	"github.com/thebakclinic/clinic-api/internal/domain/patient"
	"github.com/thebakclinic/clinic-api/internal/domain/report"
	"github.com/thebakclinic/clinic-api/internal/domain/staff"
	"github.com/thebakclinic/clinic-api/internal/domain/surgery"
	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/auth"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
	"github.com/thebakclinic/clinic-api/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "API de gestión clínica BAK",
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
		Short: "Start the clinic API server",
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

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	txRunner := db.NewTxRunner(pool)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "API Clínica BAK activa"})
	})
	e.GET("/health", db.HealthHandler(pool))

	// Staff repo doubles as the credential source for store-backed logins.
	staffRepo := staff.NewRepoPG(pool)

	var verifier auth.CredentialVerifier
	switch cfg.AuthMode {
	case "store":
		verifier = auth.NewStoreVerifier(staffRepo)
	default:
		verifier = &auth.StaticVerifier{
			RUT:      cfg.DemoRUT,
			Password: cfg.DemoPassword,
			Nombre:   "Admin Demo",
			Rol:      "administrador",
		}
	}
	issuer := auth.NewTokenIssuer([]byte(cfg.AuthSigningKey), time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	auth.NewHandler(verifier, issuer, logger).Register(e.Group("/auth"))

	patientSvc := patient.NewService(patient.NewRepoPG(pool), txRunner)
	patient.NewHandler(patientSvc).RegisterRoutes(e.Group("/pacientes"))

	staffSvc := staff.NewService(staffRepo, txRunner)
	staff.NewHandler(staffSvc).RegisterRoutes(e.Group("/usuarios"))

	surgerySvc := surgery.NewService(surgery.NewRepoPG(pool), txRunner)
	surgery.NewHandler(surgerySvc).RegisterRoutes(e.Group("/cirugias"))

	cleaningSvc := cleaning.NewService(cleaning.NewRepoPG(pool), txRunner, cfg.RoomNames)
	cleaning.NewHandler(cleaningSvc).RegisterRoutes(e.Group("/limpieza"))

	notifySvc := notification.NewService(notification.NewRepoPG(pool), logger)
	notification.NewHandler(notifySvc).RegisterRoutes(e.Group("/notificaciones"))

	reportSvc := report.NewService(report.NewRepoPG(pool))
	report.NewHandler(reportSvc).RegisterRoutes(e.Group("/reportes"))

	// Start server with graceful shutdown
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

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
