package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/agrimap/internal/config"
	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/dataset"
	"github.com/JonMunkholm/agrimap/internal/logging"
	"github.com/JonMunkholm/agrimap/internal/render"
	"github.com/JonMunkholm/agrimap/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	palette, err := render.LoadPalette(cfg.Data.PaletteFile)
	if err != nil {
		slog.Error("failed to load palette", "path", cfg.Data.PaletteFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dataset is loaded once, before listening; failures fall back to the sample.
	src, closeSource := dataset.Open(ctx, cfg, "")
	ds, sourceName := dataset.LoadWithFallback(ctx, src, slog.Default())
	closeSource()

	store := core.NewRecordStore(ds)
	slog.Info("record store ready",
		"records", store.Len(),
		"categories", len(store.Categories()),
		"source", sourceName,
	)

	server := web.NewServer(store, palette, cfg, sourceName)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
