package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"volumescope/internal/logger"
	"volumescope/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing rps requests per second per IP
// with the given burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logger.Warn("[SECURITY] Rate limit exceeded for IP: %s", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 1,
			})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// CORSMiddleware allows cross-origin reads from the dashboard. With no
// configured origins any origin is reflected.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")

		if origin != "" && OriginAllowed(origin, allowedOrigins) {
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// OriginAllowed reports whether origin matches the allow-list. An empty list
// allows every origin.
func OriginAllowed(origin string, allowedOrigins []string) bool {
	origin = strings.TrimRight(origin, "/")
	if len(allowedOrigins) == 0 {
		return true
	}
	for _, o := range allowedOrigins {
		trimmed := strings.TrimRight(strings.TrimSpace(o), "/")
		if trimmed == "" {
			continue
		}
		if trimmed == "*" || origin == trimmed {
			return true
		}
		// Bare host entries match any scheme
		if !strings.Contains(trimmed, "://") {
			if parsed, err := url.Parse(origin); err == nil && parsed.Host == trimmed {
				return true
			}
		}
	}
	return false
}

// TelemetryMiddleware records request counts and latency per route
func TelemetryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		services.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// PathValidator checks user-supplied scan paths before they reach the filesystem
type PathValidator struct{}

// NewPathValidator creates a new path validator
func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// ValidateScanPath rejects paths the OS would misinterpret. An empty path is
// valid and selects the configured root.
func (pv *PathValidator) ValidateScanPath(path string) bool {
	if len(path) > 4096 {
		return false
	}
	return !strings.ContainsRune(path, 0)
}
