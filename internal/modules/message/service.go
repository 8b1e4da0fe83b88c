package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"chatapi/internal/domain"

	"github.com/google/uuid"
)

// Service decides which messages a user may create, read and delete.
type Service struct {
	messages  MessageRepositoryInterface
	users     UserReader
	notifier  Notifier
	maxLength int
	now       func() time.Time
}

func NewService(messages MessageRepositoryInterface, users UserReader, maxLength int) *Service {
	return &Service{
		messages:  messages,
		users:     users,
		notifier:  noopNotifier{},
		maxLength: maxLength,
		now:       time.Now,
	}
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) MaxLength() int { return s.maxLength }

// Create stores a message from authorID. A nil or empty recipientID makes
// the message public; otherwise the recipient must exist.
func (s *Service) Create(ctx context.Context, authorID, content string, recipientID *string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		return nil, ErrContentTooLong
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	if recipientID != nil && *recipientID == "" {
		recipientID = nil
	}
	if recipientID != nil {
		if _, err := s.users.GetByID(ctx, *recipientID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ErrRecipientNotFound
			}
			return nil, err
		}
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		UserID:      author.ID,
		Username:    author.Username,
		Content:     content,
		RecipientID: recipientID,
		// microseconds survive every backend round trip
		Timestamp: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	s.notifier.MessageCreated(*msg)
	return msg, nil
}

// ListVisibleTo returns what userID wrote, what was sent to userID, and
// every public message.
func (s *Service) ListVisibleTo(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.messages.ListVisibleTo(ctx, userID)
}

func (s *Service) ListAuthoredBy(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.messages.ListByAuthor(ctx, userID)
}

// GetIfVisible returns ErrForbidden for a private message between other
// users. Callers decide whether to reveal that distinction.
func (s *Service) GetIfVisible(ctx context.Context, messageID, userID string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if !msg.VisibleTo(userID) {
		return nil, ErrForbidden
	}
	return msg, nil
}

// Delete removes a message written by requesterID. Anyone else, the
// recipient included, gets ErrMessageNotFound.
func (s *Service) Delete(ctx context.Context, messageID, requesterID string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if msg.UserID != requesterID {
		return nil, ErrMessageNotFound
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}

	s.notifier.MessageDeleted(*msg)
	return msg, nil
}
