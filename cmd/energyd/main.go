package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"energy-admin/config"
	"energy-admin/internal/api"
	"energy-admin/internal/auth"
	"energy-admin/internal/db"
	"energy-admin/internal/logging"
	"energy-admin/internal/resource"
	"energy-admin/internal/store"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "energyd",
	Short:         "Factory energy admin API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Info("configuration loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := openDB()
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var (
	userEmail    string
	userPassword string
)

var useraddCmd = &cobra.Command{
	Use:     "useradd",
	Short:   "Create an operator account",
	Example: `  energyd useradd --email operator@plant.io --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := openDB()
		if err != nil {
			return err
		}
		svc := auth.NewService(gormDB, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		user, err := svc.CreateUser(cmd.Context(), userEmail, userPassword)
		if err != nil {
			return err
		}
		logger.Info("operator created", zap.String("id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML configuration")

	useraddCmd.Flags().StringVar(&userEmail, "email", "", "operator email")
	useraddCmd.Flags().StringVar(&userPassword, "password", "", "operator password")
	_ = useraddCmd.MarkFlagRequired("email")
	_ = useraddCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, useraddCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, error) {
	gormDB, err := db.Init(&cfg.Database, logger, db.GormLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return gormDB, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be configured (or set ENERGY_JWT_SECRET)")
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := openDB()
	if err != nil {
		return err
	}

	reg := resource.Default()
	appStore := store.NewGormStore(gormDB, reg)
	authSvc := auth.NewService(gormDB, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	handler := api.NewHandler(appStore, reg, authSvc, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, authSvc, cfg.Server, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server Shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}
