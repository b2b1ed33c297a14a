package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tpaukrt/DRAMConsole/internal/capture"
	"github.com/tpaukrt/DRAMConsole/internal/config"
	"github.com/tpaukrt/DRAMConsole/internal/domain/lastlog"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/auth"
)

func testAuthConfig(t *testing.T, operatorKey string) config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(operatorKey), bcrypt.MinCost)
	require.NoError(t, err)
	return config.AuthConfig{
		OperatorKeyHash: string(hash),
		JWTSecret:       "test-secret",
		TokenIssuer:     "dramconsole",
		AccessTokenTTL:  time.Minute,
	}
}

func testRouter(t *testing.T, authCfg config.AuthConfig) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ring, err := capture.NewRing(make([]byte, capture.RegionSize(128)))
	require.NoError(t, err)
	ring.Reinit()
	_, err = ring.Write([]byte("abc\ndef\n"))
	require.NoError(t, err)
	snap := capture.NewLinear(128)
	capture.TakeSnapshot(ring, snap)
	ring.Reinit()
	service := lastlog.NewService(ring, snap, nil, zap.NewNop())

	manager := auth.NewManager(authCfg)
	router := NewRouter(RouterDeps{
		Config: &config.Config{
			App:       config.AppConfig{Env: "development"},
			RateLimit: config.RateLimitConfig{Enabled: false},
		},
		Lastlog:     lastlog.NewHandler(service),
		AuthManager: manager,
		Logger:      zap.NewNop(),
	})
	return router, manager
}

func truncateRequest(r *gin.Engine, bearer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lastlog", strings.NewReader("wipe"))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestTruncateRequiresBearerToken(t *testing.T) {
	router, _ := testRouter(t, testAuthConfig(t, "letmein"))

	w := truncateRequest(router, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = truncateRequest(router, "bogus.token.value")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// The snapshot is untouched by the rejected attempts.
	read := httptest.NewRecorder()
	router.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/api/v1/lastlog", nil))
	require.Equal(t, "abc\ndef\n", read.Body.String())
}

func TestTruncateSucceedsWithIssuedToken(t *testing.T) {
	router, manager := testRouter(t, testAuthConfig(t, "letmein"))

	token, err := manager.Exchange("letmein")
	require.NoError(t, err)

	w := truncateRequest(router, token.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"written": 4}`, w.Body.String())

	read := httptest.NewRecorder()
	router.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/api/v1/lastlog", nil))
	require.Empty(t, read.Body.String())
}

func TestProtectedRoutesOffWithoutOperatorKey(t *testing.T) {
	router, _ := testRouter(t, config.AuthConfig{JWTSecret: "s", AccessTokenTTL: time.Minute})

	w := truncateRequest(router, "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenExchangeEndpoint(t *testing.T) {
	router, _ := testRouter(t, testAuthConfig(t, "letmein"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"key":"letmein"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "access_token")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"key":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
