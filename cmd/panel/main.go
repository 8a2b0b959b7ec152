package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
	"github.com/manya-08/ai-workflow-automator-project/internal/config"
	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/panel"
	devtls "github.com/manya-08/ai-workflow-automator-project/internal/tls"
)

func main() {
	var envFile, addr string

	rootCmd := &cobra.Command{
		Use:   "panel",
		Short: "Browser control panel for the workflow automator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
					envFile = ""
				}
			}
			cfg, err := config.LoadConfig(envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ValidatePanel(); err != nil {
				return err
			}
			if addr != "" {
				cfg.Panel.Addr = addr
			}
			return run(cfg)
		},
	}
	rootCmd.Flags().StringVar(&envFile, "env", ".env", "Path to .env file (ignored when missing)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides panel.addr)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := logging.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	renderer, err := panel.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Server.WriteTimeout) * time.Second}
	p := panel.New(
		auth.NewPasswordSignIn(cfg.Web.APIKey, "", httpClient),
		panel.NewHTTPBackend(cfg.Panel.BackendURL, httpClient),
		logger,
		cfg.TLS.Enable,
	)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	p.RegisterRoutes(e)

	server := &http.Server{
		Addr:         cfg.Panel.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout+10) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Panel starting", "address", server.Addr, "backend", cfg.Panel.BackendURL, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if _, err := devtls.EnsureDevCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
				serverErrors <- err
				return
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Panel error", "error", err)
			return err
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Panel shutdown error", "error", err)
		}
	}
	return nil
}
