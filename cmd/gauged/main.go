package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gauged/config"
	"gauged/internal/api"
	"gauged/internal/engine"
	"gauged/internal/logging"
	"gauged/internal/notify"
	"gauged/internal/providers"
	"gauged/internal/providers/claude"
	"gauged/internal/providers/cursor"
	"gauged/internal/providers/openai"
	"gauged/internal/secrets"
	"gauged/internal/storage/sqlite"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultConfigPath = "config.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	useEnv := flag.Bool("env", false, "Load configuration from environment variables")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error

	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: cfg.Log.Format,
		Level:  logging.ParseLevel(cfg.Log.Level),
	})

	// Initialize database
	logger.Info("Initializing SQLite database", "path", cfg.Database.Path)
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize credential store
	secretStore := secrets.NewFileStore(cfg.Secrets.Dir)

	// Register provider adapters
	registry := providers.NewRegistry(
		openai.NewAdapter(openai.Config{BaseURL: cfg.Providers.OpenAIBaseURL}),
		claude.NewAdapter(),
		cursor.NewAdapter(cursor.Config{BaseURL: cfg.Providers.CursorBaseURL}),
	)
	logger.Info("Registered provider adapters", "providers", registry.Providers())

	// Initialize notifier
	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	if err := notifier.RequestAuthorization(context.Background()); err != nil {
		logger.Warn("Notifier authorization failed, alerts may not be delivered", "error", err)
	}

	// Load persisted sync settings
	settingsStore := config.NewSettingsStore(filepath.Join(filepath.Dir(cfg.Database.Path), "settings.json"))
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load sync settings: %w", err)
	}

	// Start sync engine
	eng := engine.New(engine.Config{
		Storage:   db,
		Registry:  registry,
		Secrets:   secretStore,
		Notifier:  notifier,
		Debouncer: notify.NewDebouncer(notify.DefaultDebounceWindow),
		Settings:  settings,
		Logger:    logger,
	})
	go eng.Start()

	// Initialize REST API
	router := api.NewRouter(api.RouterConfig{
		Storage:       db,
		Secrets:       secretStore,
		Engine:        eng,
		SettingsStore: settingsStore,
		APIKey:        cfg.Security.APIKey,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", "signal", sig.String())

		eng.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("Graceful shutdown complete")
	}

	return nil
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	switch cfg.Notifier.Kind {
	case "telegram":
		return notify.NewTelegramNotifier(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)
	case "log":
		return notify.NewLogNotifier(logger), nil
	default:
		return notify.NewDesktopNotifier(), nil
	}
}
