package message

import (
	"context"

	"chatapi/internal/domain"
)

// MessageRepositoryInterface is implemented by both storage backends.
// List methods return messages ordered by (timestamp, seq).
type MessageRepositoryInterface interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListVisibleTo(ctx context.Context, userID string) ([]domain.Message, error)
	ListByAuthor(ctx context.Context, userID string) ([]domain.Message, error)
	Delete(ctx context.Context, id string) error
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Notifier is told about every stored or removed message.
type Notifier interface {
	MessageCreated(msg domain.Message)
	MessageDeleted(msg domain.Message)
}

type noopNotifier struct{}

func (noopNotifier) MessageCreated(domain.Message) {}
func (noopNotifier) MessageDeleted(domain.Message) {}
