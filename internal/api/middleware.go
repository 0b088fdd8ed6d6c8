package api

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/common/metrics"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const localsIdentity = "identity"

// identityMiddleware resolves the session token from the auth cookie or a
// bearer header. Unverifiable tokens resolve to a guest, never an error.
func (s *Server) identityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(s.auth.CookieName)
		if token == "" {
			if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		c.Locals(localsIdentity, s.deps.Resolver.Resolve(token))
		return c.Next()
	}
}

func callerOf(c *fiber.Ctx) identity.Identity {
	if id, ok := c.Locals(localsIdentity).(identity.Identity); ok {
		return id
	}
	return identity.Guest()
}

func (s *Server) metricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Run the error handler now so the recorded status is final.
			if herr := s.handleFiberError(c, err); herr != nil {
				return herr
			}
		}

		endpoint := c.Route().Path
		method := c.Method()
		statusCode := c.Response().StatusCode()
		status := strconv.Itoa(statusCode)

		metrics.HTTPRequestsTotal.WithLabelValues(endpoint, status, method).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
		if statusCode >= 400 && statusCode < 600 {
			metrics.HTTPErrorsTotal.WithLabelValues(endpoint, status, method).Inc()
		}
		return nil
	}
}

func (s *Server) accessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug("http request", map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return err
	}
}

// RateLimiter keeps one token bucket per caller. Buckets idle for longer than
// a full refill are swept, since a fresh bucket behaves identically.
type RateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	r         rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	idle := time.Minute
	if r > 0 && r != rate.Inf {
		if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		r:         r,
		burst:     burst,
		idle:      idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweep(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops idle buckets. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= rl.idle {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// Len reports how many callers currently hold a bucket.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware keys authenticated callers by job seeker id and everyone else by IP.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if caller := callerOf(c); caller.IsJobSeeker() {
			key = "seeker:" + caller.JobSeekerID
		}

		if !rl.getLimiter(key).Allow() {
			metrics.HTTPRateLimitRejectionsTotal.Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "rate limit exceeded, slow down",
				"code":    "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
