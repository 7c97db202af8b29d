package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"lifeblood/backend/pkg/redis"
	"lifeblood/backend/pkg/response"
)

// RateLimit 速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// 优先使用 Redis 滑动窗口（多实例共享计数）；rdb 为 nil 或 Redis 出错时
// 降级为进程内按 IP 的令牌桶
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	local := newIPLimiter(limit, window)

	return func(c *gin.Context) {
		var allowed bool
		if rdb != nil {
			key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
			ok, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				allowed = local.allow(c.ClientIP())
			} else {
				allowed = ok
			}
		} else {
			allowed = local.allow(c.ClientIP())
		}

		if !allowed {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ── 进程内令牌桶 ──

// ipLimiterMaxEntries 超过该数量时清理长时间未访问的 IP
const ipLimiterMaxEntries = 10000

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipEntry
	every   rate.Limit
	burst   int
	idle    time.Duration
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &ipLimiter{
		entries: make(map[string]*ipEntry),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		idle:    3 * window,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[ip]
	if !ok {
		if len(l.entries) >= ipLimiterMaxEntries {
			l.evict(now)
		}
		e = &ipEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *ipLimiter) evict(now time.Time) {
	for ip, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, ip)
		}
	}
}
