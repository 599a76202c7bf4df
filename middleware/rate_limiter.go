// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP and route. A client that exceeds
// its limit is blocked for blockDuration. Limiters idle for idleTTL are
// dropped by the sweep.
type RateLimiter struct {
	visitors       map[string]*visitor
	blocked        map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	idleTTL        time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors:      make(map[string]*visitor),
		blocked:       make(map[string]time.Time),
		defaultLimit:  endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20},
		blockDuration: 5 * time.Minute,
		idleTTL:       10 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// brute-force protection on sign-in
			"/api/auth/login":          {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/reset-password": {limit: rate.Every(10 * time.Second), burst: 3},
		},
		now: time.Now,
	}
}

// SetLimit overrides the limit of one route path.
func (r *RateLimiter) SetLimit(path string, every time.Duration, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: rate.Every(every), burst: burst}
}

// Cleanup drops expired blocks and idle limiters every interval until ctx
// is done.
func (r *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, until := range r.blocked {
		if now.After(until) {
			delete(r.blocked, key)
			delete(r.visitors, key)
		}
	}
	for key, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.idleTTL {
			delete(r.visitors, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			key := c.RealIP() + " " + path

			r.mu.Lock()
			now := r.now()
			if until, ok := r.blocked[key]; ok {
				if now.Before(until) {
					r.mu.Unlock()
					return tooMany(c, until)
				}
				delete(r.blocked, key)
				delete(r.visitors, key)
			}
			v, ok := r.visitors[key]
			if !ok {
				l, custom := r.endpointLimits[path]
				if !custom {
					l = r.defaultLimit
				}
				v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
				r.visitors[key] = v
			}
			v.lastSeen = now
			if !v.limiter.AllowN(now, 1) {
				until := now.Add(r.blockDuration)
				r.blocked[key] = until
				r.mu.Unlock()
				logger.Get("app").WithField("ip", c.RealIP()).WithField("path", path).Warn("rate limit exceeded")
				return tooMany(c, until)
			}
			r.mu.Unlock()
			return next(c)
		}
	}
}

// RetryHint is the Data of a 429 response.
type RetryHint struct {
	RetryAfter string `json:"retryAfter"`
}

func tooMany(c echo.Context, until time.Time) error {
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
		Data:    RetryHint{RetryAfter: until.Format(time.RFC3339)},
	})
}
