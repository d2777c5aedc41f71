package middleware

import (
	"course_media_backend/internal/util"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
)

// OriginChecker 播放来源白名单（防盗链）。白名单可热更新。
type OriginChecker struct {
	mu      sync.RWMutex
	allowed map[string]bool
}

func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{}
	oc.Update(origins)
	return oc
}

// Update 替换白名单（配置热加载回调）
func (oc *OriginChecker) Update(origins []string) {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	oc.mu.Lock()
	oc.allowed = allowed
	oc.mu.Unlock()
}

func (oc *OriginChecker) isAllowed(origin string) bool {
	oc.mu.RLock()
	defer oc.mu.RUnlock()
	return oc.allowed[origin]
}

// refererOrigin 从 Referer 完整 URL 提取 scheme://host[:port]
func refererOrigin(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Middleware 在任何上游调用之前校验 Referer/Origin，
// 不匹配直接 403，不泄露任何响应体内容。
func (oc *OriginChecker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && oc.isAllowed(origin) {
			c.Next()
			return
		}

		if ref := refererOrigin(c.GetHeader("Referer")); ref != "" && oc.isAllowed(ref) {
			c.Next()
			return
		}

		util.Forbidden(c, util.ErrOriginNotAllowed.Error())
		c.Abort()
	}
}
