package repository

import (
	"context"
	"testing"
	"time"

	"chatapi/internal/database"
	"chatapi/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, repo *UserRepository, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	email := "alice@example.com"
	u := &domain.User{ID: uuid.NewString(), Username: "alice", PasswordHash: "h", Email: &email, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repo.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	seedUser(t, repo, "alice")

	err := repo.Create(context.Background(), &domain.User{ID: uuid.NewString(), Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	live := &domain.RefreshToken{ID: uuid.NewString(), UserID: "u1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	stale := &domain.RefreshToken{ID: uuid.NewString(), UserID: "u1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	got, err := repo.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.WithinDuration(t, live.ExpiresAt, got.ExpiresAt, time.Millisecond)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	existed, err := repo.Delete(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete(ctx, live.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMessageRepository_VisibilityAndOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	bob := "bob"
	msgs := []*domain.Message{
		{ID: uuid.NewString(), UserID: "alice", Username: "alice", Content: "first", Timestamp: ts},
		{ID: uuid.NewString(), UserID: "alice", Username: "alice", Content: "to bob", RecipientID: &bob, Timestamp: ts},
		{ID: uuid.NewString(), UserID: "carol", Username: "carol", Content: "later", Timestamp: ts.Add(time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, repo.Create(ctx, m))
		assert.NotZero(t, m.Seq)
	}
	assert.Less(t, msgs[0].Seq, msgs[1].Seq)

	contents := func(list []domain.Message) []string {
		out := make([]string, 0, len(list))
		for _, m := range list {
			out = append(out, m.Content)
		}
		return out
	}

	forBob, err := repo.ListVisibleTo(ctx, "bob")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"first", "to bob", "later"}, contents(forBob)); diff != "" {
		t.Fatalf("bob view mismatch (-want +got):\n%s", diff)
	}

	forCarol, err := repo.ListVisibleTo(ctx, "carol")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"first", "later"}, contents(forCarol)); diff != "" {
		t.Fatalf("carol view mismatch (-want +got):\n%s", diff)
	}

	byAlice, err := repo.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "to bob"}, contents(byAlice))

	require.NoError(t, repo.Delete(ctx, msgs[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, msgs[0].ID), domain.ErrNotFound)

	_, err = repo.GetByID(ctx, msgs[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
