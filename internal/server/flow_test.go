package server

import (
	"net/http"
	"testing"

	"chatapi/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flowSuite struct {
	app  *App
	anon *client
}

func setupFlowSuite(t *testing.T, mutate func(*config.Config)) *flowSuite {
	t.Helper()
	cfg := testConfig(t, config.StorageSQL)
	if mutate != nil {
		mutate(cfg)
	}
	stores, err := OpenStores(cfg)
	require.NoError(t, err)
	app := New(cfg, stores)
	t.Cleanup(func() {
		app.Hub.Close()
		_ = stores.Close()
	})
	return &flowSuite{app: app, anon: &client{t: t, engine: app.Engine, apiKey: "api-key"}}
}

type loginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshAt    int64  `json:"refresh_at"`
}

func TestFlow1_SessionLifecycle(t *testing.T) {
	s := setupFlowSuite(t, nil)
	var login loginData

	t.Run("register", func(t *testing.T) {
		code, env := s.anon.call(http.MethodPost, "/api/auth/register",
			gin.H{"username": "dana", "password": "password123", "email": "dana@example.com"})
		require.Equal(t, http.StatusCreated, code, env.Message)
		assert.Equal(t, "User registered successfully", env.Message)
		assert.NotContains(t, string(env.Data), "password")
	})

	t.Run("login", func(t *testing.T) {
		code, env := s.anon.call(http.MethodPost, "/api/auth/login",
			gin.H{"username": "dana", "password": "password123"})
		require.Equal(t, http.StatusOK, code, env.Message)
		s.anon.decode(env, &login)
		assert.Equal(t, "Bearer", login.TokenType)
		assert.EqualValues(t, 900, login.ExpiresIn)
		assert.NotEmpty(t, login.RefreshToken)
	})

	t.Run("token info", func(t *testing.T) {
		authed := &client{t: t, engine: s.app.Engine, apiKey: "api-key", token: login.AccessToken}
		code, env := authed.call(http.MethodGet, "/api/auth/token-info", nil)
		require.Equal(t, http.StatusOK, code, env.Message)
		var info struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
			TokenInfo struct {
				Type      string `json:"type"`
				RefreshAt int64  `json:"refresh_at"`
			} `json:"token_info"`
		}
		authed.decode(env, &info)
		assert.Equal(t, "dana", info.User.Username)
		assert.Equal(t, "access", info.TokenInfo.Type)
		assert.Equal(t, login.RefreshAt, info.TokenInfo.RefreshAt)
	})

	t.Run("refresh", func(t *testing.T) {
		code, env := s.anon.call(http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": login.RefreshToken})
		require.Equal(t, http.StatusOK, code, env.Message)
		var refreshed loginData
		s.anon.decode(env, &refreshed)
		assert.NotEmpty(t, refreshed.AccessToken)

		// refresh tokens are reusable until logout
		code, _ = s.anon.call(http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": login.RefreshToken})
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("logout", func(t *testing.T) {
		code, env := s.anon.call(http.MethodPost, "/api/auth/logout", gin.H{"refresh_token": login.RefreshToken})
		require.Equal(t, http.StatusOK, code, env.Message)

		code, env = s.anon.call(http.MethodPost, "/api/auth/logout", gin.H{"refresh_token": login.RefreshToken})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid refresh token", env.Message)

		code, env = s.anon.call(http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": login.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid or expired refresh token", env.Message)
	})
}

func TestFlow2_RegistrationDisabled(t *testing.T) {
	s := setupFlowSuite(t, func(cfg *config.Config) { cfg.RegisterEnabled = false })

	code, env := s.anon.call(http.MethodPost, "/api/auth/register", gin.H{"username": "x"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "User registration is disabled", env.Message)
}

func TestFlow3_APIKeyDisabled(t *testing.T) {
	s := setupFlowSuite(t, func(cfg *config.Config) { cfg.SecretKeyEnabled = false })
	s.anon.apiKey = ""

	code, env := s.anon.call(http.MethodPost, "/api/auth/login", gin.H{"username": "ghost", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", env.Message)
}
