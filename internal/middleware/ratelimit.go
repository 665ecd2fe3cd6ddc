// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/metrics"
)

// Rate limit scopes, used as key prefixes and metric labels.
const (
	ScopeGlobal    = "global"
	ScopePrincipal = "principal"
)

type RateLimitConfig struct {
	Limit    redis_rate.Limit
	Scope    string
	KeyFunc  func(*http.Request) string
	FailOpen bool
	// BypassFunc exempts matching requests, e.g. probes and /metrics.
	BypassFunc func(*http.Request) bool
}

// RateLimiter counts requests in redis and falls back to an in-process
// token bucket per key when redis is unreachable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Scope == "" {
		cfg.Scope = ScopeGlobal
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

// Close stops the fallback eviction loop. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.fallback.stop()
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := "ratelimit:" + rl.config.Scope + ":" + rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.WarnContext(r.Context(), "rate limiter unavailable, failing open",
					"error", err,
					"scope", rl.config.Scope,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"RATE_LIMITER_UNAVAILABLE",
			))
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			metrics.ObserveRateLimited(rl.config.Scope)
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err == nil {
		return res, nil
	}

	slog.DebugContext(ctx, "redis rate limit failed, using local bucket", "error", err)
	return rl.fallback.allow(key, rl.config.Limit)
}

// KeyByIP keys on the client address, preferring the last X-Forwarded-For
// hop appended by our own proxy.
func KeyByIP(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// KeyByPrincipal keys authenticated requests by user uuid and falls back to
// the client IP.
func KeyByPrincipal(r *http.Request) string {
	if principal, ok := GetPrincipal(r.Context()); ok {
		return "user:" + principal.GetUUID().String()
	}
	return KeyByIP(r)
}

// BypassPaths exempts exact request paths from limiting.
func BypassPaths(paths ...string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.URL.Path]
		return ok
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)
	message := fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Error: &core.ErrorBody{Code: "RATE_LIMITED", Message: message},
	})
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

type bucket struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

type localLimiter struct {
	buckets  sync.Map
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.evictIdle()
	return l
}

func (l *localLimiter) evictIdle() {
	defer close(l.stopped)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.evictBefore(time.Now().Add(-entryTTL))
		}
	}
}

func (l *localLimiter) evictBefore(t time.Time) {
	cutoff := t.Unix()
	l.buckets.Range(func(key, value any) bool {
		if b, ok := value.(*bucket); ok && b.lastAccess.Load() < cutoff {
			l.buckets.Delete(key)
		}
		return true
	})
}

func (l *localLimiter) stop() {
	l.stopOnce.Do(func() { close(l.done) })
	<-l.stopped
}

func (l *localLimiter) bucketFor(key string, limit redis_rate.Limit) (*bucket, float64) {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()

	v, ok := l.buckets.Load(key)
	if !ok {
		v, _ = l.buckets.LoadOrStore(key, &bucket{
			limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
		})
	}

	b, _ := v.(*bucket)
	b.lastAccess.Store(time.Now().Unix())
	return b, perSecond
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid rate limit %d per %s", limit.Rate, limit.Period)
	}

	b, perSecond := l.bucketFor(key, limit)
	interval := time.Duration(float64(time.Second) / perSecond)

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(b.limiter.Tokens()), 0),
		RetryAfter: -1,
		ResetAfter: interval,
	}

	if b.limiter.Allow() {
		res.Allowed = 1
		res.Remaining = max(int(b.limiter.Tokens()), 0)
	} else {
		res.RetryAfter = interval
	}

	return res, nil
}

// Limit builds a redis_rate limit of requests per window.
func Limit(requests, burst int, window time.Duration) redis_rate.Limit {
	if burst < 1 {
		burst = requests
	}
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: window,
	}
}
