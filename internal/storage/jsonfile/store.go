package jsonfile

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"chatapi/internal/domain"
)

const (
	usersFile         = "users.json"
	messagesFile      = "messages.json"
	refreshTokensFile = "refresh_tokens.json"
)

// Store groups the three collections under one data directory.
type Store struct {
	users    *Collection[domain.User]
	messages *Collection[domain.Message]
	tokens   *Collection[domain.RefreshToken]
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		users:    NewCollection[domain.User](filepath.Join(dir, usersFile)),
		messages: NewCollection[domain.Message](filepath.Join(dir, messagesFile)),
		tokens:   NewCollection[domain.RefreshToken](filepath.Join(dir, refreshTokensFile)),
	}, nil
}

func (s *Store) Users() *UserRepository { return &UserRepository{c: s.users} }

func (s *Store) Messages() *MessageRepository { return &MessageRepository{c: s.messages} }

func (s *Store) RefreshTokens() *RefreshTokenRepository { return &RefreshTokenRepository{c: s.tokens} }

type UserRepository struct {
	c *Collection[domain.User]
}

// Create appends u unless the username is taken. The check and the write
// happen under the collection lock.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.c.Mutate(func(items []domain.User) ([]domain.User, error) {
		for _, existing := range items {
			if existing.Username == u.Username {
				return nil, fmt.Errorf("username %q: %w", u.Username, domain.ErrAlreadyExists)
			}
		}
		return append(items, *u), nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.Username == username })
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.c.All()
}

func (r *UserRepository) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.c.All()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(items[i]) {
			return &items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type MessageRepository struct {
	c *Collection[domain.Message]
}

// Create appends msg and assigns it the next sequence number.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.c.Mutate(func(items []domain.Message) ([]domain.Message, error) {
		var last int64
		for _, m := range items {
			last = max(last, m.Seq)
		}
		msg.Seq = last + 1
		return append(items, *msg), nil
	})
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.c.All()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MessageRepository) ListVisibleTo(ctx context.Context, userID string) ([]domain.Message, error) {
	return r.filter(ctx, func(m *domain.Message) bool { return m.VisibleTo(userID) })
}

func (r *MessageRepository) ListByAuthor(ctx context.Context, userID string) ([]domain.Message, error) {
	return r.filter(ctx, func(m *domain.Message) bool { return m.UserID == userID })
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.c.Mutate(func(items []domain.Message) ([]domain.Message, error) {
		idx := slices.IndexFunc(items, func(m domain.Message) bool { return m.ID == id })
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		return slices.Delete(items, idx, idx+1), nil
	})
}

func (r *MessageRepository) filter(ctx context.Context, keep func(*domain.Message) bool) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.c.All()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Message) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out, nil
}

type RefreshTokenRepository struct {
	c *Collection[domain.RefreshToken]
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.c.Mutate(func(items []domain.RefreshToken) ([]domain.RefreshToken, error) {
		return append(items, *t), nil
	})
}

func (r *RefreshTokenRepository) GetByID(ctx context.Context, id string) (*domain.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := r.c.All()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete reports whether the token existed. Deleting a missing token leaves
// the file untouched.
func (r *RefreshTokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	existed := false
	err := r.c.Mutate(func(items []domain.RefreshToken) ([]domain.RefreshToken, error) {
		idx := slices.IndexFunc(items, func(t domain.RefreshToken) bool { return t.ID == id })
		if idx < 0 {
			return nil, errNoChange
		}
		existed = true
		return slices.Delete(items, idx, idx+1), nil
	})
	if err == errNoChange {
		return false, nil
	}
	return existed, err
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var removed int64
	err := r.c.Mutate(func(items []domain.RefreshToken) ([]domain.RefreshToken, error) {
		kept := items[:0]
		for _, t := range items {
			if t.IsExpired(now) {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		if removed == 0 {
			return nil, errNoChange
		}
		return kept, nil
	})
	if err == errNoChange {
		return 0, nil
	}
	return removed, err
}
