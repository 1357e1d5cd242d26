package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// uploadCSP 用于浏览器内预览报告文件
const (
	apiCSP    = "default-src 'none'; frame-ancestors 'none'"
	uploadCSP = "sandbox; default-src 'none'; object-src 'self'; frame-ancestors 'none'"
)

// SecurityHeaders 安全响应头中间件
// uploadPrefix 下的静态报告文件使用单独的 CSP，其余响应禁止缓存
func SecurityHeaders(uploadPrefix string) gin.HandlerFunc {
	uploadPrefix = strings.TrimRight(uploadPrefix, "/") + "/"

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		if uploadPrefix != "/" && strings.HasPrefix(c.Request.URL.Path, uploadPrefix) {
			c.Header("Content-Security-Policy", uploadCSP)
		} else {
			c.Header("Content-Security-Policy", apiCSP)
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
