package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestID"
)

// RequestID берет идентификатор запроса из заголовка X-Request-ID или генерирует новый.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// Logger пишет строку лога на каждый запрос. Приватные ошибки gin попадают только сюда, клиенту они не отдаются.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(RequestIDKey),
		}
		if username := CurrentUsername(c); username != "" {
			fields["username"] = username
		}

		reqLog := entry.WithFields(fields)
		if len(c.Errors) > 0 {
			reqLog = reqLog.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500: //nolint:mnd
			reqLog.Error("request")
		case status >= 400: //nolint:mnd
			reqLog.Warn("request")
		default:
			reqLog.Info("request")
		}
	}
}
