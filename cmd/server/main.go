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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/healthrisk/internal/api"
	"github.com/Skufu/healthrisk/internal/artifact"
	"github.com/Skufu/healthrisk/internal/config"
	"github.com/Skufu/healthrisk/internal/database"
	"github.com/Skufu/healthrisk/internal/logging"
	"github.com/Skufu/healthrisk/internal/report"
	"github.com/Skufu/healthrisk/internal/risk"
)

type flags struct {
	envFile   string
	port      string
	modelsDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "healthrisk",
		Short:         "Diabetes and heart disease risk prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(f)
		},
	}
	root.PersistentFlags().StringVar(&f.envFile, "env-file", "", "env file to load before reading the environment (default .env)")
	root.PersistentFlags().StringVar(&f.modelsDir, "models-dir", "", "directory holding the model and scaler artifacts")
	root.PersistentFlags().StringVar(&f.port, "port", "", "HTTP listen port")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Load the artifacts and serve the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(f)
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Load and validate the artifacts, then exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(f)
				if err != nil {
					return err
				}
				return check(cmd.OutOrStdout(), cfg.ModelsDir)
			},
		},
	)
	return root
}

func loadConfig(f flags) (*config.Config, error) {
	var files []string
	if f.envFile != "" {
		files = append(files, f.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if f.port != "" {
		cfg.Port = f.port
	}
	if f.modelsDir != "" {
		cfg.ModelsDir = f.modelsDir
	}
	return cfg, nil
}

func check(out io.Writer, modelsDir string) error {
	if _, err := risk.Load(modelsDir); err != nil {
		var loadErr *artifact.LoadError
		if errors.As(err, &loadErr) {
			return fmt.Errorf("failed to load model artifacts: %w", err)
		}
		return fmt.Errorf("artifacts are inconsistent: %w", err)
	}
	fmt.Fprintf(out, "artifacts in %s loaded and validated\n", modelsDir)
	return nil
}

func serve(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	engine, err := risk.Load(cfg.ModelsDir)
	if err != nil {
		logger.Error("failed to load model artifacts", zap.String("dir", cfg.ModelsDir), zap.Error(err))
		return err
	}
	logger.Info("model artifacts loaded", zap.String("dir", cfg.ModelsDir))

	ctx := context.Background()
	opts := api.Options{
		Engine:     engine,
		Logger:     logger,
		StaticRoot: cfg.StaticRoot,
	}
	if opts.StaticRoot == "" {
		opts.StaticRoot = api.DetectStaticRoot()
	}
	if cfg.EnableReports {
		opts.Renderer = report.NewPDFRenderer()
	}
	if cfg.EnableDB {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database connection failed", zap.Error(err))
			return err
		}
		defer pool.Close()
		opts.DB = pool
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port), zap.Bool("reports", cfg.EnableReports))
	return waitForShutdown(server, logger, errCh)
}

func waitForShutdown(server *http.Server, logger *zap.Logger, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return err
	case <-stop:
	}

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
