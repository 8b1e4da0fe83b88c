package server

import (
	"context"
	"fmt"

	"chatapi/internal/config"
	"chatapi/internal/database"
	"chatapi/internal/domain"
	"chatapi/internal/modules/auth"
	"chatapi/internal/modules/message"
	"chatapi/internal/repository"
	"chatapi/internal/storage/jsonfile"

	"github.com/sirupsen/logrus"
)

type UserStore interface {
	auth.UserRepositoryInterface
	List(ctx context.Context) ([]domain.User, error)
}

// Stores are the three collections behind one backend.
type Stores struct {
	Users         UserStore
	Messages      message.MessageRepositoryInterface
	RefreshTokens auth.RefreshTokenRepositoryInterface

	close func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores selects the backend named by cfg.StorageDriver.
func OpenStores(cfg *config.Config) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.StorageJSON:
		store, err := jsonfile.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logrus.WithField("dir", cfg.DataDir).Info("using JSON file storage")
		return &Stores{
			Users:         store.Users(),
			Messages:      store.Messages(),
			RefreshTokens: store.RefreshTokens(),
		}, nil

	case config.StorageSQL:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := repository.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Stores{
			Users:         repository.NewUserRepository(db),
			Messages:      repository.NewMessageRepository(db),
			RefreshTokens: repository.NewRefreshTokenRepository(db),
			close:         func() error { return database.Close(db) },
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
