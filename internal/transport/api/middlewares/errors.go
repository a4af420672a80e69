package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func statusErrorText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad request."
	case http.StatusUnauthorized:
		return "Unauthorized."
	case http.StatusNotFound:
		return "Not found."
	case http.StatusUnprocessableEntity:
		return "Unprocessable entity."
	case http.StatusConflict:
		return "Conflict."
	case http.StatusServiceUnavailable:
		return "Service unavailable."
	default:
		return "Internal server error."
	}
}

// Errors отдает клиенту первую ошибку из контекста gin, если хендлер сам не записал тело ответа.
// Текст приватных ошибок заменяется текстом статуса.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Size() > 0 {
			return
		}

		// обрабатываем только первую ошибку
		firstErr := c.Errors[0]
		var msg string
		if firstErr.IsType(gin.ErrorTypePublic) {
			msg = firstErr.Error()
		} else {
			msg = statusErrorText(c.Writer.Status())
		}

		if strings.Contains(c.GetHeader("Accept"), "text/plain") {
			c.String(c.Writer.Status(), msg)
		} else {
			c.JSON(c.Writer.Status(), gin.H{"success": false, "message": msg})
		}
		c.Abort()
	}
}
