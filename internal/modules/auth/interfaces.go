package auth

import (
	"context"
	"time"

	"chatapi/internal/domain"
	"chatapi/internal/pkg/jwt"
)

// UserRepositoryInterface is the subset of user storage the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// RefreshTokenRepositoryInterface stores refresh tokens.
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByID(ctx context.Context, id string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type jwtService interface {
	GenerateToken(userID, username string) (string, *jwt.Claims, error)
	TTL() time.Duration
}
