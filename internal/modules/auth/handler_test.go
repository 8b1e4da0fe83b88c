package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatapi/internal/middleware"
	"chatapi/internal/pkg/jwt"
	"chatapi/internal/storage/jsonfile"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	router *gin.Engine
	svc    *Service
	clock  *time.Time
}

func newTestEnv(t *testing.T, registerEnabled bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := jsonfile.Open(t.TempDir())
	require.NoError(t, err)

	now := time.Now()
	env := &testEnv{clock: &now}
	clock := func() time.Time { return *env.clock }

	signer := jwt.New("handler-secret", 15*time.Minute, 600*time.Second).WithClock(clock)
	env.svc = NewService(store.Users(), store.RefreshTokens(), signer, 30*24*time.Hour).WithClock(clock)

	h := NewHandler(env.svc, registerEnabled)
	router := gin.New()
	api := router.Group("/api")
	h.RegisterPublicRoutes(api)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(signer, store.Users()))
	h.RegisterProtectedRoutes(protected)
	env.router = router
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (e *testEnv) login(t *testing.T, username, password string) LoginResponse {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, code, env.Message)
	var out LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHandler_RegisterValidation(t *testing.T) {
	e := newTestEnv(t, true)

	tests := []struct {
		name    string
		body    any
		code    int
		message string
	}{
		{"no body", nil, http.StatusBadRequest, "No input data provided"},
		{"missing password", gin.H{"username": "alice"}, http.StatusBadRequest, "Missing required field: password"},
		{"short username", gin.H{"username": "al", "password": "password123"}, http.StatusBadRequest, "Username must be at least 3 characters long"},
		{"short password", gin.H{"username": "alice", "password": "short"}, http.StatusBadRequest, "Password must be at least 8 characters long"},
		{"bad email", gin.H{"username": "alice", "password": "password123", "email": "nope"}, http.StatusBadRequest, "Email must be a valid email address"},
		{"ok", gin.H{"username": "alice", "password": "password123", "email": "a@example.com"}, http.StatusCreated, "User registered successfully"},
		{"duplicate", gin.H{"username": "alice", "password": "password456"}, http.StatusConflict, "Username already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := e.do(t, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestHandler_RegisterNeverRendersHash(t *testing.T) {
	e := newTestEnv(t, true)

	code, env := e.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "password123"}, "")
	require.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, string(env.Data), "password")

	var user UserPublic
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
}

func TestHandler_RegisterDisabled(t *testing.T) {
	e := newTestEnv(t, false)

	code, env := e.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "password123"}, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "User registration is disabled", env.Message)
}

func TestHandler_LoginResponses(t *testing.T) {
	e := newTestEnv(t, true)
	e.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "password123"}, "")

	code, env := e.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: username, password", env.Message)

	code, env = e.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", env.Message)

	code, env = e.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "nobody", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", env.Message)

	out := e.login(t, "alice", "password123")
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, int64(900), out.ExpiresIn)
	assert.Equal(t, e.clock.Add(600*time.Second).Unix(), out.RefreshAt)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, "alice", out.User.Username)
}

func TestHandler_RefreshLifecycle(t *testing.T) {
	e := newTestEnv(t, true)
	e.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "password123"}, "")
	session := e.login(t, "alice", "password123")

	code, env := e.do(t, http.MethodPost, "/api/auth/refresh", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Refresh token is required", env.Message)

	// no rotation: the same refresh token works twice
	for i := 0; i < 2; i++ {
		code, env = e.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": session.RefreshToken}, "")
		require.Equal(t, http.StatusOK, code)
		var out RefreshResponse
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.NotEmpty(t, out.AccessToken)
		assert.Equal(t, int64(900), out.ExpiresIn)
	}

	code, env = e.do(t, http.MethodPost, "/api/auth/logout", gin.H{"refresh_token": session.RefreshToken}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logged out successfully", env.Message)

	code, env = e.do(t, http.MethodPost, "/api/auth/logout", gin.H{"refresh_token": session.RefreshToken}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid refresh token", env.Message)

	code, env = e.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": session.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired refresh token", env.Message)
}

func TestHandler_ExpiredRefreshTokenIsRejected(t *testing.T) {
	e := newTestEnv(t, true)
	e.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "password123"}, "")
	session := e.login(t, "alice", "password123")

	*e.clock = e.clock.Add(31 * 24 * time.Hour)

	code, env := e.do(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": session.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired refresh token", env.Message)

	// the expired token was deleted on use
	code, _ = e.do(t, http.MethodPost, "/api/auth/logout", gin.H{"refresh_token": session.RefreshToken}, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_TokenInfo(t *testing.T) {
	e := newTestEnv(t, true)
	e.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "password123"}, "")
	session := e.login(t, "alice", "password123")

	code, env := e.do(t, http.MethodGet, "/api/auth/token-info", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, code)

	var out TokenInfoResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "alice", out.User.Username)
	assert.Equal(t, "access", out.TokenInfo.Type)
	assert.Equal(t, int64(900), out.TokenInfo.ExpiresAt-out.TokenInfo.IssuedAt)
	assert.Equal(t, session.RefreshAt, out.TokenInfo.RefreshAt)

	code, env = e.do(t, http.MethodGet, "/api/auth/token-info", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authentication token is missing", env.Message)

	*e.clock = e.clock.Add(16 * time.Minute)
	code, env = e.do(t, http.MethodGet, "/api/auth/token-info", nil, session.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token has expired", env.Message)
}
