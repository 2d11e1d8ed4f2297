package auth

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/qbank/internal/config"
)

// ContextKeyAuthType is the Gin context key holding the AuthType.
const ContextKeyAuthType = "auth_type"

// AuthType indicates how the request was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// AuthRecorder receives authentication outcomes, typically the audit service.
type AuthRecorder interface {
	LogAuth(action, ipAddr string, success bool)
}

// Middleware authenticates admin API requests.
type Middleware struct {
	config   config.Auth
	recorder AuthRecorder
	limiter  *RateLimiter

	// verified caches digests of tokens that already passed bcrypt, so each
	// request does not pay the hashing cost again.
	mu       sync.RWMutex
	verified map[[sha256.Size]byte]bool
}

// NewMiddleware creates a new authentication middleware. recorder may be nil.
func NewMiddleware(cfg config.Auth, recorder AuthRecorder) *Middleware {
	return &Middleware{
		config:   cfg,
		recorder: recorder,
		verified: make(map[[sha256.Size]byte]bool),
	}
}

// WithRateLimiter rejects clients with too many failed attempts.
func (m *Middleware) WithRateLimiter(rl *RateLimiter) *Middleware {
	m.limiter = rl
	return m
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone || m.config.Mode == "" {
		return func(c *gin.Context) {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}
	return m.tokenHandler()
}

func (m *Middleware) tokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if m.limiter != nil {
			if allowed, retryAfter := m.limiter.Allow(ip); !allowed {
				c.Header("Retry-After", retryAfter.String())
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "too many failed attempts",
					"retry_after": retryAfter.String(),
				})
				return
			}
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if ok && m.validToken(token) {
			if m.limiter != nil {
				m.limiter.RecordSuccess(ip)
			}
			c.Set(ContextKeyAuthType, AuthTypeBearer)
			c.Next()
			return
		}

		if m.limiter != nil {
			m.limiter.RecordFailure(ip)
		}
		if m.recorder != nil {
			m.recorder.LogAuth("admin_token", ip, false)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

func (m *Middleware) validToken(token string) bool {
	digest := sha256.Sum256([]byte(token))

	m.mu.RLock()
	ok := m.verified[digest]
	m.mu.RUnlock()
	if ok {
		return true
	}

	for _, hash := range m.config.AdminTokenHashes {
		if CheckToken(token, hash) == nil {
			m.mu.Lock()
			m.verified[digest] = true
			m.mu.Unlock()
			return true
		}
	}
	return false
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
