package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/seronsenapati/STAYLO/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIPAndPath limits by client IP and route, so login attempts do not
// eat into the listing budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits signed-in users by id and everyone else by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// atomic INCR, and set the expiry when the key is new
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type AllowFunc func(*gin.Context) bool // return true to bypass the limit

// RateLimit counts requests per key in fixed windows in Redis and emits
// the standard limit headers. Without Redis it falls back to a per-process
// token bucket per key. Redis errors fail open.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if rdb == nil {
		return localRateLimit(max, window, keyFn, allow)
	}
	return func(c *gin.Context) {
		if skipLimit(c, allow) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)

		countI, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
		if err != nil {
			c.Next()
			return
		}
		count := toInt(countI)

		ttl, _ := rdb.TTL(ctx, key).Result()
		resetSec := 0
		if ttl > 0 {
			resetSec = int(ttl.Seconds())
		}

		// https://datatracker.ietf.org/doc/html/rfc6585#section-4
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(maxInt(max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			tooMany(c, resetSec)
			return
		}
		c.Next()
	}
}

// localRateLimit keeps one limiter per key; entries idle for a few windows
// are dropped on the next sweep.
func localRateLimit(max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	type entry struct {
		lim  *rate.Limiter
		seen time.Time
	}
	var (
		mu        sync.Mutex
		limiters  = map[string]*entry{}
		lastSweep = time.Now()
		every     = rate.Every(window / time.Duration(max))
	)
	return func(c *gin.Context) {
		if skipLimit(c, allow) {
			c.Next()
			return
		}
		key := keyFn(c)
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > 3*window {
			for k, e := range limiters {
				if now.Sub(e.seen) > 3*window {
					delete(limiters, k)
				}
			}
			lastSweep = now
		}
		e, ok := limiters[key]
		if !ok {
			e = &entry{lim: rate.NewLimiter(every, max)}
			limiters[key] = e
		}
		e.seen = now
		allowed := e.lim.AllowN(now, 1)
		remaining := int(e.lim.TokensAt(now))
		mu.Unlock()

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(maxInt(remaining, 0)))
		if !allowed {
			tooMany(c, int(window.Seconds()))
			return
		}
		c.Next()
	}
}

func skipLimit(c *gin.Context, allow AllowFunc) bool {
	if allow != nil && allow(c) {
		return true
	}
	return strings.EqualFold(c.Request.Method, http.MethodOptions)
}

func tooMany(c *gin.Context, retryAfter int) {
	if retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}
	resp := response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
	c.AbortWithStatusJSON(resp.Status, resp)
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
