package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tpaukrt/DRAMConsole/internal/config"
)

func testConfig(t *testing.T, key string) config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return config.AuthConfig{
		OperatorKeyHash: string(hash),
		JWTSecret:       "test-secret",
		TokenIssuer:     "dramconsole",
		AccessTokenTTL:  time.Minute,
	}
}

func TestExchangeAndParse(t *testing.T) {
	m := NewManager(testConfig(t, "letmein"))

	token, err := m.Exchange("letmein")
	require.NoError(t, err)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, int64(60), token.ExpiresIn)

	claims, err := m.Parse(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "operator", claims.Role)
	require.Equal(t, "dramconsole", claims.Issuer)
}

func TestExchangeRejectsWrongKey(t *testing.T) {
	m := NewManager(testConfig(t, "letmein"))

	_, err := m.Exchange("guess")
	require.ErrorIs(t, err, ErrBadOperatorKey)
}

func TestExchangeDisabledWithoutHash(t *testing.T) {
	m := NewManager(config.AuthConfig{JWTSecret: "s", AccessTokenTTL: time.Minute})

	require.False(t, m.Enabled())
	_, err := m.Exchange("anything")
	require.ErrorIs(t, err, ErrDisabled)
}

func TestParseRejectsForeignToken(t *testing.T) {
	issuer := NewManager(testConfig(t, "letmein"))
	token, err := issuer.Exchange("letmein")
	require.NoError(t, err)

	other := NewManager(config.AuthConfig{
		OperatorKeyHash: issuer.cfg.OperatorKeyHash,
		JWTSecret:       "different-secret",
		AccessTokenTTL:  time.Minute,
	})
	_, err = other.Parse(token.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager(testConfig(t, "letmein"))

	_, err := m.Parse("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
