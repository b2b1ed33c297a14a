package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tpaukrt/DRAMConsole/internal/config"
)

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrDisabled       = errors.New("operator access not configured")
	ErrBadOperatorKey = errors.New("operator key rejected")
	ErrInvalidToken   = errors.New("invalid token")
)

// Claims extends JWT registered claims with the operator role marker.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Manager exchanges the operator key for short-lived bearer tokens and
// validates them on protected routes. There is no user store: a single
// bcrypt-hashed key from config gates everything mutating.
type Manager struct {
	cfg config.AuthConfig
}

// NewManager builds Manager.
func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Enabled reports whether an operator key has been configured.
func (m *Manager) Enabled() bool {
	return m.cfg.OperatorKeyHash != ""
}

// Exchange verifies the presented operator key and issues a token.
func (m *Manager) Exchange(key string) (Token, error) {
	if !m.Enabled() {
		return Token{}, ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.cfg.OperatorKeyHash), []byte(key)); err != nil {
		return Token{}, ErrBadOperatorKey
	}
	now := time.Now().UTC()
	claims := Claims{
		Role: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{
		AccessToken: encoded,
		ExpiresIn:   int64(m.cfg.AccessTokenTTL.Seconds()),
		TokenType:   "Bearer",
	}, nil
}

// Parse validates an access token and extracts its claims.
func (m *Manager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Role != "operator" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
