package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/voyago/voyago-client/internal/devserver"
	"github.com/voyago/voyago-client/pkg/config"
	"github.com/voyago/voyago-client/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	store, err := devserver.OpenStore(cfg.Dev.DBPath)
	if err != nil {
		logg.Error(context.Background(), "failed to open dev store", err)
		os.Exit(1)
	}

	server := devserver.NewServer(cfg.Dev, store, logg)

	addr := ":" + cfg.Dev.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"db":   cfg.Dev.DBPath,
	})
	logg.Info(ctx, "starting dev server")

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "dev server stopped unexpectedly", err)
		os.Exit(1)
	}
}
