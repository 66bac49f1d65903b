package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS 中间件 仅允许白名单中的Origin，支持Credentials；
// 白名单含 "*" 时放行任意Origin（此时不下发Credentials）
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]bool, len(allowedOrigins))
	allowAny := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAny = true
			continue
		}
		originSet[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin != "" && originSet[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		case origin != "" && allowAny:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		// 答题页会高频发起防切屏上报，预检结果缓存一小时
		c.Writer.Header().Set("Access-Control-Max-Age", "3600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Secure 中间件 考试相关响应不允许进共享缓存
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 考试页面禁止被嵌入iframe
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		// 试题与成绩不落中间缓存
		c.Header("Cache-Control", "no-store")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 限流中间件 按IP限流，自动清理过期条目。
// 配置缺失或非法时退回每分钟60次
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 {
		maxRequests = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	store := make(map[string]*visitor)
	var mu sync.Mutex

	go func() {
		expiry := window * 3
		if expiry < time.Minute {
			expiry = time.Minute
		}
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			for ip, v := range store {
				if time.Since(v.lastSeen) > expiry {
					delete(store, ip)
				}
			}
			mu.Unlock()
		}
	}()

	r := rate.Every(window / time.Duration(maxRequests))

	return func(c *gin.Context) {
		key := c.ClientIP()

		mu.Lock()
		v, exists := store[key]
		if !exists {
			v = &visitor{
				limiter: rate.NewLimiter(r, maxRequests),
			}
			store[key] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": http.StatusTooManyRequests, "message": "请求过于频繁"})
			return
		}

		c.Next()
	}
}
