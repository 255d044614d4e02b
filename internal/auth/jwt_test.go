package auth

import (
	"testing"
	"time"

	"soko/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", Issuer: "soko", Expiry: time.Hour}
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateToken(cfg, 7, "buyer@example.com", "user")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "soko", claims.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateToken(cfg, 7, "buyer@example.com", "user")
	require.NoError(t, err)

	other := &config.JWTConfig{Secret: "different", Issuer: "soko", Expiry: time.Hour}
	_, err = ParseToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", Issuer: "soko", Expiry: -time.Minute}
	token, err := GenerateToken(cfg, 7, "buyer@example.com", "user")
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testJWTConfig(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
