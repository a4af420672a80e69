package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	DefaultAllowOrigin = "*"

	defaultAllowMethods  = "POST, GET, OPTIONS"
	defaultAllowHeaders  = "Accept, Content-Type, Content-Length, Authorization, X-Request-ID"
	defaultExposeHeaders = "Authorization, X-Request-ID"
)

// CORS разрешает браузерному фронтенду обращаться к API с другого origin. Preflight запрос (OPTIONS)
// отвечает 204 и дальше не проходит, запрошенные браузером методы и заголовки отражаются в ответе.
func CORS(allowOrigin string) gin.HandlerFunc {
	if allowOrigin == "" {
		allowOrigin = DefaultAllowOrigin
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", defaultAllowMethods)
		h.Set("Access-Control-Allow-Headers", defaultAllowHeaders)
		h.Set("Access-Control-Expose-Headers", defaultExposeHeaders)
		if allowOrigin != DefaultAllowOrigin {
			h.Add("Vary", "Origin")
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		if reqHeaders := c.GetHeader("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		}
		if reqMethod := c.GetHeader("Access-Control-Request-Method"); reqMethod != "" {
			h.Set("Access-Control-Allow-Methods", reqMethod)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
