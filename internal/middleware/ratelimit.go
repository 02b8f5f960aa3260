package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
    "golang.org/x/time/rate"

    "github.com/iliyamo/medisafe/internal/config"
)

// fixedWindowScript counts a request in the current window and returns the
// count together with the window's remaining lifetime in milliseconds.
var fixedWindowScript = redis.NewScript(`
    local current = redis.call('INCR', KEYS[1])
    if current == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    local ttl = redis.call('PTTL', KEYS[1])
    if ttl < 0 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
        ttl = tonumber(ARGV[1])
    end
    return { current, ttl }
`)

// decision is the outcome of one rate limit check.
type decision struct {
    allowed    bool
    remaining  int64
    retryAfter time.Duration
}

// NewRateLimiter allows cfg.Max requests per key in each cfg.Window.  With
// Redis the budget is a fixed window shared by every instance; without it,
// or when Redis fails, each process keeps its own token bucket per key.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
    return newRateLimiter(cfg, rdb, log, time.Now)
}

func newRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log logrus.FieldLogger, now func() time.Time) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    mem := newMemoryLimiter(cfg.Max, cfg.Window, now)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)

            var (
                d   decision
                err error
            )
            if rdb != nil {
                d, err = redisDecide(c.Request().Context(), rdb, key, cfg)
                if err != nil && cfg.Debug {
                    log.WithError(err).WithField("key", key).Warn("ratelimit: redis error, using local limiter")
                }
            }
            if rdb == nil || err != nil {
                d = mem.decide(key)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

            if !d.allowed {
                secs := int(math.Ceil(d.retryAfter.Seconds()))
                if secs < 1 { secs = 1 }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    log.WithField("key", key).Infof("ratelimit: block retry=%ds", secs)
                }
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "Too many requests, please try again later.",
                    "retry_after": secs,
                })
            }

            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

func redisDecide(ctx context.Context, rdb *redis.Client, key string, cfg config.RateLimitConfig) (decision, error) {
    vals, err := fixedWindowScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Result()
    if err != nil {
        return decision{}, err
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 2 {
        return decision{}, fmt.Errorf("unexpected script result %#v", vals)
    }
    count := asInt64(arr[0])
    ttl := time.Duration(asInt64(arr[1])) * time.Millisecond

    remaining := int64(cfg.Max) - count
    if remaining < 0 { remaining = 0 }
    return decision{
        allowed:    count <= int64(cfg.Max),
        remaining:  remaining,
        retryAfter: ttl,
    }, nil
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64: return t
    case int32: return int64(t)
    case int: return int64(t)
    case float64: return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil { return n }
    }
    return 0
}

// memoryLimiter keeps one token bucket per key: max tokens, refilled at
// max per window.
type memoryLimiter struct {
    mu        sync.Mutex
    limiters  map[string]*memoryEntry
    limit     rate.Limit
    burst     int
    window    time.Duration
    now       func() time.Time
    lastPrune time.Time
}

type memoryEntry struct {
    lim  *rate.Limiter
    seen time.Time
}

func newMemoryLimiter(max int, window time.Duration, now func() time.Time) *memoryLimiter {
    return &memoryLimiter{
        limiters:  make(map[string]*memoryEntry),
        limit:     rate.Limit(float64(max) / window.Seconds()),
        burst:     max,
        window:    window,
        now:       now,
        lastPrune: now(),
    }
}

func (m *memoryLimiter) decide(key string) decision {
    m.mu.Lock()
    defer m.mu.Unlock()

    now := m.now()
    m.pruneLocked(now)

    e, ok := m.limiters[key]
    if !ok {
        e = &memoryEntry{lim: rate.NewLimiter(m.limit, m.burst)}
        m.limiters[key] = e
    }
    e.seen = now

    if e.lim.AllowN(now, 1) {
        return decision{allowed: true, remaining: int64(e.lim.TokensAt(now))}
    }
    r := e.lim.ReserveN(now, 1)
    wait := r.DelayFrom(now)
    r.CancelAt(now)
    return decision{allowed: false, remaining: 0, retryAfter: wait}
}

// pruneLocked drops buckets idle for a full window; a refilled bucket is the
// same as a new one.
func (m *memoryLimiter) pruneLocked(now time.Time) {
    if now.Sub(m.lastPrune) < time.Minute {
        return
    }
    m.lastPrune = now
    for k, e := range m.limiters {
        if now.Sub(e.seen) >= m.window {
            delete(m.limiters, k)
        }
    }
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    ip := c.RealIP()
    if ip == "" { ip = "unknown" }

    switch strings.ToLower(cfg.KeyStrategy) {
    case "user":
        parts = append(parts, "user", currentUserID(c))
    case "ip_user":
        parts = append(parts, "ip", ip, "user", currentUserID(c))
    default: // "ip"
        parts = append(parts, "ip", ip)
    }
    return strings.Join(parts, ":")
}
