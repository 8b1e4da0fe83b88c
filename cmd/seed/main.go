package main

import (
	"context"
	"errors"
	"os"

	"chatapi/internal/config"
	"chatapi/internal/domain"
	"chatapi/internal/logging"
	"chatapi/internal/modules/auth"
	"chatapi/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type seedUser struct {
	username string
	password string
	email    string
}

var users = []seedUser{
	{"admin", "admin123", "admin@example.com"},
	{"user1", "password123", "user1@example.com"},
	{"user2", "password123", "user2@example.com"},
}

var messages = []struct {
	author  string
	content string
}{
	{"admin", "Welcome to 0xC Chat!"},
	{"user1", "Hello, world!"},
	{"user2", "This is a test message."},
	{"admin", "Feel free to explore the API."},
}

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

	if err := seed(context.Background(), server.New(cfg, stores), stores); err != nil {
		logrus.WithError(err).Fatal("seed failed")
	}
}

func seed(ctx context.Context, app *server.App, stores *server.Stores) error {
	existing, err := stores.Users.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logrus.WithField("users", len(existing)).Info("storage already has users, skipping seed")
		return nil
	}

	created := make(map[string]*domain.User, len(users))
	for _, u := range users {
		email := u.email
		user, err := app.Auth.Register(ctx, auth.RegisterRequest{
			Username: u.username,
			Password: u.password,
			Email:    &email,
		})
		if err != nil {
			return err
		}
		created[u.username] = user
		logrus.WithField("username", u.username).Info("user created")
	}

	for _, m := range messages {
		if _, err := app.Messages.Create(ctx, created[m.author].ID, m.content, nil); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"users":    len(users),
		"messages": len(messages),
	}).Info("seed completed")
	return nil
}
