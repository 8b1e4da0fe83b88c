package main

import (
	"context"
	"testing"
	"time"

	"chatapi/internal/config"
	"chatapi/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_RunsOnceOnEmptyStorage(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:        "jwt-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshLead:      600 * time.Second,
		RefreshTokenTTL:  24 * time.Hour,
		MaxMessageLength: 1000,
		StorageDriver:    config.StorageJSON,
		DataDir:          t.TempDir(),
	}
	stores, err := server.OpenStores(cfg)
	require.NoError(t, err)
	app := server.New(cfg, stores)
	t.Cleanup(app.Hub.Close)
	ctx := context.Background()

	require.NoError(t, seed(ctx, app, stores))
	require.NoError(t, seed(ctx, app, stores))

	all, err := stores.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	admin, err := app.Auth.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)

	msgs, err := app.Messages.ListVisibleTo(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "Welcome to 0xC Chat!", msgs[0].Content)
	assert.Equal(t, "Feel free to explore the API.", msgs[3].Content)
}
