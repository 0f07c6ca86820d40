package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/carepulse/carepulse/internal/config"
	"github.com/carepulse/carepulse/internal/domain/user"
	"github.com/carepulse/carepulse/internal/domain/visit"
	"github.com/carepulse/carepulse/internal/platform/auth"
	"github.com/carepulse/carepulse/internal/platform/metrics"
	"github.com/carepulse/carepulse/internal/platform/middleware"
	"github.com/carepulse/carepulse/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "CarePulse clinic management server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedUsersCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Write a starter users file with one account per role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return seedUsers(cfg.UsersFile, password)
		},
	}
	cmd.Flags().StringVar(&password, "password", "changeme", "initial password for every seeded account")
	return cmd
}

// seedUsers overwrites the users file with one account per staff role.
func seedUsers(path, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	accounts := []struct {
		username, role, fullName string
	}{
		{"admin", auth.RoleAdmin, "Clinic Administrator"},
		{"reception", auth.RoleReceptionist, "Front Desk"},
		{"doctor", auth.RoleDoctor, "Attending Physician"},
		{"lab", auth.RoleLaboratorian, "Laboratory Technician"},
	}

	users := make([]user.User, 0, len(accounts))
	now := user.Timestamp(time.Now())
	for _, a := range accounts {
		users = append(users, user.User{
			ID:        uuid.New().String(),
			Username:  a.username,
			Password:  string(hash),
			Role:      a.role,
			FullName:  a.fullName,
			CreatedAt: now,
		})
	}

	repo := user.NewFileRepository(path)
	if err := repo.Seed(users); err != nil {
		return err
	}
	fmt.Printf("wrote %d users to %s\n", len(users), path)
	return nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Stores and services. The visit store lives for the process; there
	// is deliberately no persistence behind it.
	visitStore := visit.NewStore()
	visitSvc := visit.NewService(visitStore, metrics.NewRecorder())
	userRepo := user.NewFileRepository(cfg.UsersFile)
	userSvc := user.NewService(userRepo)

	// Handlers
	visitHandler := visit.NewHandler(visitSvc, cfg.ClinicName)
	userHandler := user.NewHandler(userSvc, cfg.JWTSecret, cfg.IsProduction(), logger)
	webHandler, err := web.NewHandler(visitSvc, cfg.ClinicName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse page templates")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Route guard for page paths
	e.Use(auth.RouteGuard(cfg.JWTSecret, cfg.IsProduction(), logger))

	// Infrastructure endpoints
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/metrics", metrics.Handler())

	// Session endpoints
	userHandler.RegisterAuthRoutes(e.Group("/api/auth"))

	// Authenticated staff API
	apiV1 := e.Group("/api/v1", auth.CookieAuth(cfg.JWTSecret))
	visitHandler.RegisterRoutes(apiV1)
	userHandler.RegisterAdminRoutes(apiV1)

	// Pages
	webHandler.RegisterRoutes(e)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("clinic server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
