package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func newTestSubject() Subject {
	return Subject{UserID: uuid.New(), Name: "Ada", Email: "ada@example.com", Role: "admin"}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()

	token, err := svc.GenerateAccessToken(sub)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)
	assert.Len(t, strings.Split(token.Token, "."), 3)

	claims, err := svc.ValidateAccessToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID.String(), claims.UserID)
	assert.Equal(t, sub.UserID.String(), claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, sub.UserID, id)
}

func TestJWTService_UniqueTokenIDs(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()

	a, err := svc.GenerateAccessToken(sub)
	require.NoError(t, err)
	b, err := svc.GenerateAccessToken(sub)
	require.NoError(t, err)

	ca, err := svc.ValidateAccessToken(a.Token)
	require.NoError(t, err)
	cb, err := svc.ValidateAccessToken(b.Token)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateAccessToken(newTestSubject())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, err := svc.GenerateAccessToken(newTestSubject())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(newTestSubject())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessTokenExpiration: time.Minute, Issuer: "test-issuer"})
	_, err = other.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongIssuer(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(newTestSubject())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: time.Minute, Issuer: "someone-else"})
	_, err = other.ValidateAccessToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsUnsignedAndMalformed(t *testing.T) {
	svc := newTestJWTService()

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-token", unsigned} {
		_, err := svc.ValidateAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestJWTService_MissingUserID(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrMissingUserID)
}
