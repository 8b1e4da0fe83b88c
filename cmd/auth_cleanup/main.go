package main

import (
	"context"
	"errors"
	"os"
	"time"

	"chatapi/internal/config"
	"chatapi/internal/logging"
	"chatapi/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Setup(cfg.LogLevel)

	stores, err := server.OpenStores(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open storage")
	}
	defer stores.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app := server.New(cfg, stores)
	defer app.Hub.Close()

	removed, err := app.Auth.CleanupExpiredRefreshTokens(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("cleanup refresh_tokens failed")
	}
	logrus.WithField("refresh_tokens", removed).Info("auth cleanup completed")
}
