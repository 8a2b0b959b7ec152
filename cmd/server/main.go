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
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/manya-08/ai-workflow-automator-project/internal/actions"
	"github.com/manya-08/ai-workflow-automator-project/internal/api"
	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
	"github.com/manya-08/ai-workflow-automator-project/internal/automation"
	"github.com/manya-08/ai-workflow-automator-project/internal/config"
	"github.com/manya-08/ai-workflow-automator-project/internal/llm"
	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/mcp"
	devtls "github.com/manya-08/ai-workflow-automator-project/internal/tls"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Workflow automator backend",
		Long:  "Turns natural-language commands into structured workflows, stores them and runs their actions.",
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to .env file (ignored when missing)")

	rootCmd.AddCommand(newServeCommand(&envFile))
	rootCmd.AddCommand(newHistoryCommand(&envFile))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// loadConfig loads configuration, skipping a dotenv file that does not exist.
func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
			envFile = ""
		}
	}
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	logger := logging.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting Workflow Automator", "db_driver", cfg.DB.Driver, "model", cfg.Gemini.Model)

	// Initialize storage
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	defer store.Close()

	logger.Info("Database connected")

	// Initialize completion client
	completer, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return fmt.Errorf("completion client initialization failed: %w", err)
	}
	logger.Info("Completion client ready", "model", completer.Model())

	// Initialize identity
	authOpts := auth.Options{ProjectID: cfg.Identity.ProjectID}
	if data, source, ok := cfg.ServiceAccount(); ok {
		authOpts.ServiceAccountJSON = data
		logger.Info("Identity service credentials loaded", "source", source)
	} else {
		logger.Warn("Identity service credentials not found; registration is disabled",
			"env", "FIREBASE_SERVICE_ACCOUNT_KEY_JSON", "file", cfg.Identity.ServiceAccountFile)
	}
	authz, err := auth.New(ctx, authOpts, logger)
	if err != nil {
		logger.Warn("Identity service disabled", "error", err)
		authz, _ = auth.New(ctx, auth.Options{ProjectID: cfg.Identity.ProjectID}, logger)
	}

	// Initialize service layer
	dispatcher := actions.NewDispatcher(
		actions.NewEmailSender(actions.EmailConfig{
			Sender:   cfg.Email.Sender,
			Password: cfg.Email.Password,
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
		}),
		actions.NewSlackNotifier(cfg.Slack.WebhookURL, nil),
		logger,
	)
	service := automation.NewService(automation.NewInterpreter(completer, logger.With("component", "interpreter")), store, dispatcher, logger)

	logger.Info("Service layer initialized")

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(otelecho.Middleware("workflow-automator"))

	var automateMW []echo.MiddlewareFunc
	if cfg.Auth.RequireToken {
		if !authz.CanVerify() {
			logger.Warn("auth.require_token is set but no project id is configured; every /automate call will be rejected")
		}
		automateMW = append(automateMW, echo.WrapMiddleware(authz.RequireAuth))
	}
	api.NewServer(service, authz, logger).RegisterRoutes(e, automateMW...)

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(service, api.Version)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	// WriteTimeout must cover a full completion round trip.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			generated, err := devtls.EnsureDevCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames)
			if err != nil {
				serverErrors <- err
				return
			}
			if generated {
				logger.Warn("Generated self-signed certificate", "cert", cfg.TLS.CertFile)
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			return err
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
	return nil
}
