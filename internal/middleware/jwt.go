package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"chatapi/internal/domain"
	"chatapi/internal/pkg/jwt"
	"chatapi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by JWTAuth.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextClaims   = "token_claims"
)

const accessTokenQueryParam = "access_token"

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// JWTAuth validates the bearer access token and loads its user. WebSocket
// upgrade requests may carry the token in the access_token query parameter
// instead, since browsers cannot set headers on them.
func JWTAuth(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			logAuthFailure(c, http.StatusUnauthorized, "token_missing")
			response.Abort(c, http.StatusUnauthorized, "Authentication token is missing")
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			logAuthFailure(c, http.StatusUnauthorized, "token_rejected")
			response.Abort(c, http.StatusUnauthorized, tokenErrorMessage(err))
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logAuthFailure(c, http.StatusUnauthorized, "user_not_found")
				response.Abort(c, http.StatusUnauthorized, "User not found")
				return
			}
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if isWebSocketUpgrade(c.Request) {
		return c.Query(accessTokenQueryParam)
	}
	return ""
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrWrongTokenType):
		return "Invalid token type"
	default:
		return "Invalid token"
	}
}

// UserID returns the authenticated user's id set by JWTAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Claims returns the validated access-token claims set by JWTAuth.
func Claims(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}
