package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/qbank/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authRecord struct {
	action  string
	success bool
}

type fakeRecorder struct {
	records []authRecord
}

func (f *fakeRecorder) LogAuth(action, _ string, success bool) {
	f.records = append(f.records, authRecord{action: action, success: success})
}

const testToken = "admin-token-0123456789"

func setupRouter(t *testing.T, cfg config.Auth, limiter *RateLimiter) (*gin.Engine, *fakeRecorder) {
	t.Helper()
	recorder := &fakeRecorder{}
	mw := NewMiddleware(cfg, recorder)
	if limiter != nil {
		mw.WithRateLimiter(limiter)
	}

	router := gin.New()
	router.GET("/api/admin/ping", mw.Handler(), func(c *gin.Context) {
		c.String(http.StatusOK, string(GetAuthType(c)))
	})
	return router, recorder
}

func tokenConfig(t *testing.T) config.Auth {
	t.Helper()
	hash, err := HashToken(testToken, bcrypt.MinCost)
	require.NoError(t, err)
	return config.Auth{Mode: config.AuthModeToken, AdminTokenHashes: []string{hash}}
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_NoneMode(t *testing.T) {
	router, _ := setupRouter(t, config.Auth{Mode: config.AuthModeNone}, nil)

	w := doRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(AuthTypeNone), w.Body.String())
}

func TestMiddleware_TokenMode(t *testing.T) {
	router, recorder := setupRouter(t, tokenConfig(t), nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + testToken, http.StatusOK},
		{"lowercase scheme", "bearer " + testToken, http.StatusOK},
		{"cached token", "Bearer " + testToken, http.StatusOK},
		{"wrong token", "Bearer nope-nope-nope-nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic " + testToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, string(AuthTypeBearer), w.Body.String())
			}
		})
	}

	assert.Len(t, recorder.records, 3)
	for _, r := range recorder.records {
		assert.False(t, r.success)
	}
}

func TestMiddleware_RateLimited(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{MaxAttempts: 2, WindowDuration: time.Minute, LockoutDuration: time.Minute})
	defer limiter.Stop()
	router, _ := setupRouter(t, tokenConfig(t), limiter)

	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer wrong-wrong-wrong-wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer wrong-wrong-wrong-wrong").Code)

	w := doRequest(router, "Bearer "+testToken)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}
