package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateToken_ClaimsMatchConfiguredDurations(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := New("secret", 15*time.Minute, 600*time.Second).WithClock(fixedClock(now))

	token, _, err := svc.GenerateToken("u-1", "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.Equal(t, int64(600), claims.RefreshAt-claims.IssuedAt.Unix())
}

func TestValidateToken_Expired(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	issuer := New("secret", 15*time.Minute, time.Minute).WithClock(fixedClock(issued))
	token, _, err := issuer.GenerateToken("u-1", "alice")
	require.NoError(t, err)

	_, err = New("secret", 15*time.Minute, time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := New("secret-a", time.Hour, time.Minute).GenerateToken("u-1", "alice")
	require.NoError(t, err)

	_, err = New("secret-b", time.Hour, time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := New("secret", time.Hour, time.Minute).ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_WrongType(t *testing.T) {
	claims := Claims{
		UserID:    "u-1",
		TokenType: "refresh",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = New("secret", time.Hour, time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID:    "u-1",
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = New("secret", time.Hour, time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
