package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/idoblueprint/guestlist/internal/config"
	"github.com/idoblueprint/guestlist/internal/guestimport"
	"github.com/idoblueprint/guestlist/internal/logging"
	"github.com/idoblueprint/guestlist/internal/store"
	"github.com/idoblueprint/guestlist/internal/store/memstore"
	"github.com/idoblueprint/guestlist/internal/store/pgstore"
	"github.com/idoblueprint/guestlist/internal/store/sqlitestore"
	"github.com/idoblueprint/guestlist/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"import_max_file_size", cfg.Import.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	guests, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open guest store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// File size limit applies at parse time as well as at the HTTP layer
	guestimport.MaxFileSize = cfg.Import.MaxFileSize

	imports := guestimport.NewService(guests, guestimport.Options{
		Timeout:      cfg.Import.Timeout,
		HistoryLimit: cfg.Import.HistoryLimit,
	})

	server := web.NewServer(cfg, guests, imports)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore selects the guest store backend from config.
func openStore(ctx context.Context, cfg *config.Config) (store.GuestStore, func(), error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "memory":
		return memstore.New(), func() {}, nil

	case "sqlite":
		st, err := sqlitestore.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("opened sqlite store", "path", cfg.Store.Path)
		return st, func() { st.Close() }, nil

	case "postgres":
		st, err := pgstore.New(ctx, pgstore.Config{
			URL:             cfg.Store.URL,
			MaxConns:        cfg.Store.MaxConns,
			MinConns:        cfg.Store.MinConns,
			MaxConnLifetime: cfg.Store.MaxConnLifetime,
			MaxConnIdleTime: cfg.Store.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to postgres store")
		return st, st.Close, nil

	default:
		// config.Validate rejects anything else
		return memstore.New(), func() {}, nil
	}
}
