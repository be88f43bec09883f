// Package main is the entrypoint for the taskrooms server.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskrooms/taskrooms/internal/ai"
	"github.com/taskrooms/taskrooms/internal/config"
	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/server"
	"github.com/taskrooms/taskrooms/internal/session"
	"github.com/taskrooms/taskrooms/internal/store"
	"github.com/taskrooms/taskrooms/internal/tasks"

	// Register store drivers
	_ "github.com/taskrooms/taskrooms/internal/store/memory"
	_ "github.com/taskrooms/taskrooms/internal/store/sqlite"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to TOML config file (optional)")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	environment := flag.String("env", "", "Environment: development or production (overrides config)")
	storeDriver := flag.String("store-driver", "", "Store driver: memory or sqlite (overrides config)")
	dataDir := flag.String("data-dir", "", "Data directory for the sqlite driver (overrides config)")
	loggingLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	// Bootstrap logger for config loading errors (uses default level)
	bootstrapLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPath: *configPath,
		FlagOverrides: config.FlagOverrides{
			ListenAddr:   listenAddr,
			Environment:  environment,
			StoreDriver:  storeDriver,
			DataDir:      dataDir,
			LoggingLevel: loggingLevel,
		},
		Logger: bootstrapLogger,
	})
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logutil.ParseLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	// Log effective config with secrets redacted
	logger.Info("effective configuration", "config", cfg.Redacted())

	// Outside production an empty secret gets a random per-process key:
	// sessions survive for the life of the process but not a restart.
	if cfg.Session.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", "error", err)
			os.Exit(1)
		}
		cfg.Session.Secret = hex.EncodeToString(buf)
		logger.Warn("no session secret configured, sessions will not survive a restart")
	}

	// Open the persistence driver
	driver, err := store.New(&store.DriverConfig{
		Driver:  cfg.Store.Driver,
		DataDir: cfg.Store.DataDir,
		Options: cfg.Store.Options,
	})
	if err != nil {
		logger.Error("failed to create store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	if err := driver.Init(context.Background()); err != nil {
		logger.Error("failed to initialize store", "driver", driver.Name(), "error", err)
		os.Exit(1)
	}
	defer driver.Close()
	logger.Info("store ready", "driver", driver.Name())

	// Domain services
	directory := identity.NewDirectory(driver.Users(), identity.NewUserAuth(12))
	registry := rooms.NewRegistry(driver.Rooms(), directory)
	ledger := invitations.NewLedger(driver.Invitations(), registry, directory)
	taskService := tasks.NewService(driver.Tasks(), registry)
	aiClient := ai.NewClient(&cfg.AI, logger)

	deps := &server.Deps{
		Directory: directory,
		Registry:  registry,
		Ledger:    ledger,
		Tasks:     taskService,
		AI:        aiClient,
		Codec:     session.NewCodec(cfg.Session.Secret),
		Cookies:   session.NewCookieStore(cfg.IsProduction()),
	}

	srv, err := server.New(cfg, logger, deps)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
