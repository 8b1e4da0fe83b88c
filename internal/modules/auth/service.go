package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatapi/internal/domain"
	"chatapi/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service contains all business logic for authentication
type Service struct {
	users      UserRepositoryInterface
	tokens     RefreshTokenRepositoryInterface
	jwt        jwtService
	refreshTTL time.Duration
	now        func() time.Time
}

// AccessToken is a signed token together with the claims it carries.
type AccessToken struct {
	Token  string
	Claims *jwt.Claims
}

type LoginResult struct {
	User         *domain.User
	Access       *AccessToken
	RefreshToken *domain.RefreshToken
}

func NewService(
	users UserRepositoryInterface,
	tokens RefreshTokenRepositoryInterface,
	jwt jwtService,
	refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for refresh-token expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AccessTTL is the lifetime of issued access tokens.
func (s *Service) AccessTTL() time.Duration { return s.jwt.TTL() }

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	email := req.Email
	if email != nil && *email == "" {
		email = nil
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hashedPassword,
		Email:        email,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown user and a wrong
// password alike.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.IssueRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Access: access, RefreshToken: refresh}, nil
}

func (s *Service) IssueAccessToken(user *domain.User) (*AccessToken, error) {
	token, claims, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &AccessToken{Token: token, Claims: claims}, nil
}

func (s *Service) IssueRefreshToken(ctx context.Context, user *domain.User) (*domain.RefreshToken, error) {
	now := s.now().UTC()
	t := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return t, nil
}

// ResolveRefreshToken returns the owner of a live refresh token. An expired
// token is deleted on sight. The token is not rotated, so it can be resolved
// again until logout or expiry.
func (s *Service) ResolveRefreshToken(ctx context.Context, tokenID string) (*domain.User, error) {
	t, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if t.IsExpired(s.now()) {
		if _, err := s.tokens.Delete(ctx, t.ID); err != nil {
			return nil, fmt.Errorf("delete expired refresh token: %w", err)
		}
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return user, nil
}

// Refresh trades a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, tokenID string) (*AccessToken, error) {
	user, err := s.ResolveRefreshToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return s.IssueAccessToken(user)
}

// RevokeRefreshToken deletes the token and reports whether it existed.
func (s *Service) RevokeRefreshToken(ctx context.Context, tokenID string) (bool, error) {
	return s.tokens.Delete(ctx, tokenID)
}

// CleanupExpiredRefreshTokens sweeps every expired token in one pass.
func (s *Service) CleanupExpiredRefreshTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now().UTC())
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
