// Package client talks to the chat REST API and keeps the access token fresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"chatapi/internal/domain"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx reply carrying the server's error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenInfo struct {
	Type      string `json:"type"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
	RefreshAt int64  `json:"refresh_at"`
}

// Session is the state held after a successful login.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
	RefreshAt    time.Time
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time

	mu      sync.Mutex
	session *Session
}

type Option func(*Client)

func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New returns a client for the API rooted at baseURL, prefix included
// (for example http://localhost:5000/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) Register(ctx context.Context, username, password, email string) (*User, error) {
	body := map[string]any{"username": username, "password": password}
	if email != "" {
		body["email"] = email
	}
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out struct {
		User         User   `json:"user"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		RefreshAt    int64  `json:"refresh_at"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, "", &out); err != nil {
		return nil, err
	}

	s := &Session{
		User:         out.User,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		RefreshAt:    time.Unix(out.RefreshAt, 0),
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return c.Session(), nil
}

// Refresh trades the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Client) refreshLocked(ctx context.Context) error {
	if c.session == nil {
		return ErrNotLoggedIn
	}
	var out struct {
		AccessToken string `json:"access_token"`
		RefreshAt   int64  `json:"refresh_at"`
	}
	body := map[string]string{"refresh_token": c.session.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", body, "", &out); err != nil {
		return err
	}
	c.session.AccessToken = out.AccessToken
	c.session.RefreshAt = time.Unix(out.RefreshAt, 0)
	return nil
}

// Logout revokes the refresh token and forgets the session.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrNotLoggedIn
	}
	body := map[string]string{"refresh_token": c.session.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/logout", body, "", nil); err != nil {
		return err
	}
	c.session = nil
	return nil
}

func (c *Client) TokenInfo(ctx context.Context) (*TokenInfo, error) {
	var out struct {
		TokenInfo TokenInfo `json:"token_info"`
	}
	if err := c.authed(ctx, http.MethodGet, "/auth/token-info", nil, &out); err != nil {
		return nil, err
	}
	return &out.TokenInfo, nil
}

// SendMessage posts a message; an empty recipientID makes it public.
func (c *Client) SendMessage(ctx context.Context, content, recipientID string) (*domain.Message, error) {
	body := map[string]any{"content": content}
	if recipientID != "" {
		body["recipient_id"] = recipientID
	}
	var msg domain.Message
	if err := c.authed(ctx, http.MethodPost, "/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return c.list(ctx, "/messages")
}

func (c *Client) MyMessages(ctx context.Context) ([]domain.Message, error) {
	return c.list(ctx, "/messages/me")
}

func (c *Client) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	if err := c.authed(ctx, http.MethodGet, "/messages/"+url.PathEscape(id), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), nil, nil)
}

func (c *Client) list(ctx context.Context, path string) ([]domain.Message, error) {
	var out struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := c.authed(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// authed refreshes the access token once refresh_at has passed, then sends
// the request with it.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	if !c.now().Before(c.session.RefreshAt) {
		if err := c.refreshLocked(ctx); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("refresh access token: %w", err)
		}
	}
	token := c.session.AccessToken
	c.mu.Unlock()

	return c.do(ctx, method, path, body, token, out)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
