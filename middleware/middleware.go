// File: /middleware/middleware.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"clubnight-api/services"
	"clubnight-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Context keys set by AuthMiddleware
const (
	ContextEmail = "email"
	ContextRole  = "role"
)

// TokenVerifier checks an access token and returns its subject and role.
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, token string) (string, string, error)
}

// AuthMiddleware requires a valid access token carrying the given role.
func AuthMiddleware(tokens TokenVerifier, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))

		subject, tokenRole, err := tokens.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			if message, ok := tokenMessage(err); ok {
				utils.SendError(c, http.StatusUnauthorized, message)
			} else {
				utils.SendAppError(c, utils.NewDependencyError("Could not verify token", err))
			}
			c.Abort()
			return
		}
		if tokenRole != role {
			utils.SendError(c, http.StatusUnauthorized, "Token is not valid for this resource")
			c.Abort()
			return
		}

		c.Set(ContextEmail, subject)
		c.Set(ContextRole, tokenRole)
		c.Next()
	}
}

// tokenMessage maps token errors to their 401 message. Anything else is a
// failure to load the signing keys.
func tokenMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrMissingToken):
		return "Authorization token is missing", true
	case errors.Is(err, services.ErrExpiredToken):
		return "Token has expired", true
	case errors.Is(err, services.ErrInvalidToken):
		return "Invalid token", true
	default:
		return "", false
	}
}

// CurrentEmail returns the subject stored by AuthMiddleware
func CurrentEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// ErrorHandler turns errors attached with c.Error into a JSON response
// when the handler did not write one itself.
func ErrorHandler(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request error")
		if !c.Writer.Written() {
			utils.SendAppError(c, err)
		}
	}
}

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(requestsPerMinute int, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}
}

// GetLimiter returns the limiter for a key (client IP)
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// CleanupLimiters drops limiters idle for longer than maxIdle
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	for key, entry := range rl.limiters {
		if time.Since(entry.lastSeen) > maxIdle {
			delete(rl.limiters, key)
		}
	}
}

// Handler rejects clients above the configured rate with 429.
func (rl *RateLimiter) Handler(requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.GetLimiter(c.ClientIP()).Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))
			utils.SendError(c, http.StatusTooManyRequests, fmt.Sprintf("Too many requests. Limit: %d requests per minute", requestsPerMinute))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit builds a limiter and sweeps idle clients until ctx is done.
func RateLimit(ctx context.Context, requestsPerMinute int, burst int) gin.HandlerFunc {
	rateLimiter := NewRateLimiter(requestsPerMinute, burst)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters(10 * time.Minute)
			}
		}
	}()

	return rateLimiter.Handler(requestsPerMinute)
}

// RequestLogger writes one structured line per request
func RequestLogger(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("request")
	}
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}
