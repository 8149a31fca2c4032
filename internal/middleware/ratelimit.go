// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

const ipKeyPrefix = "moodflow:ratelimit:ip:"

type RateLimitConfig struct {
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	BypassFunc func(*http.Request) bool
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
	resetAfter time.Duration
}

type limitBackend interface {
	allow(ctx context.Context, key string, limit redis_rate.Limit) (decision, error)
}

// RateLimiter enforces a shared quota through Redis. Any Redis failure
// drops the request onto a per-process token bucket for the same key.
type RateLimiter struct {
	shared limitBackend
	local  *localBackend
	cfg    RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	rl := &RateLimiter{
		local: newLocalBackend(time.Now),
		cfg:   cfg,
	}
	if rdb != nil {
		rl.shared = &redisBackend{limiter: redis_rate.NewLimiter(rdb)}
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.BypassFunc != nil && rl.cfg.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		d := rl.decide(r.Context(), rl.cfg.KeyFunc(r))

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Limit.Rate))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
		h.Set("X-RateLimit-Reset",
			strconv.FormatInt(time.Now().Add(d.resetAfter).Unix(), 10))

		if !d.allowed {
			secs := max(int(math.Ceil(d.retryAfter.Seconds())), 1)
			h.Set("Retry-After", strconv.Itoa(secs))
			core.JSONError(w, core.RateLimitedError(secs))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) decide(ctx context.Context, key string) decision {
	if rl.shared != nil {
		d, err := rl.shared.allow(ctx, key, rl.cfg.Limit)
		if err == nil {
			return d
		}
		core.RecordCollaboratorFallback("ratelimit")
		slog.DebugContext(ctx, "shared rate limiter unavailable", "error", err)
	}

	d, _ := rl.local.allow(ctx, key, rl.cfg.Limit)
	return d
}

type redisBackend struct {
	limiter *redis_rate.Limiter
}

func (b *redisBackend) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (decision, error) {
	res, err := b.limiter.Allow(ctx, key, limit)
	if err != nil {
		return decision{}, err
	}
	return decision{
		allowed:    res.Allowed > 0,
		remaining:  res.Remaining,
		retryAfter: res.RetryAfter,
		resetAfter: res.ResetAfter,
	}, nil
}

const (
	sweepInterval = 5 * time.Minute
	bucketIdleTTL = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBackend holds one bucket per key. Idle buckets are swept on the
// request path, at most once per sweepInterval.
type localBackend struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newLocalBackend(now func() time.Time) *localBackend {
	return &localBackend{
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
		now:       now,
	}
}

func (b *localBackend) allow(
	_ context.Context,
	key string,
	limit redis_rate.Limit,
) (decision, error) {
	now := b.now()
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	refill := time.Duration(float64(time.Second) / perSec)

	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= sweepInterval {
		for k, bk := range b.buckets {
			if now.Sub(bk.lastSeen) >= bucketIdleTTL {
				delete(b.buckets, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
		b.buckets[key] = bk
	}
	bk.lastSeen = now

	allowed := bk.limiter.AllowN(now, 1)
	tokens := bk.limiter.TokensAt(now)

	d := decision{
		allowed:    allowed,
		remaining:  max(int(tokens), 0),
		resetAfter: refill,
	}
	if !allowed {
		d.retryAfter = time.Duration((1 - tokens) * float64(time.Second) / perSec)
	}
	return d, nil
}

func (b *localBackend) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets)
}

// UnmeteredPath reports routes the global limiter must never throttle:
// probes, metrics, and the payment webhook, which answers only 200 or 401.
func UnmeteredPath(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/healthz", "/livez", "/readyz", "/metrics", "/payment-webhook":
		return true
	}
	return false
}

func KeyByIP(r *http.Request) string {
	return ipKeyPrefix + core.ClientIP(r)
}

// KeyByIPAndEndpoint scopes a client to one route, so a credential
// limiter on /login does not drain the quota for /register.
func KeyByIPAndEndpoint(r *http.Request) string {
	return KeyByIP(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if _, err := strconv.ParseUint(part, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// Per builds a limit of rate requests per window. A non-positive window
// falls back to one minute.
func Per(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: window}
}

var (
	_ limitBackend = (*redisBackend)(nil)
	_ limitBackend = (*localBackend)(nil)
)
