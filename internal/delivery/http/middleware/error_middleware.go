package middleware

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Only *apperror.AppError messages reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		appErr, ok := apperror.As(err)
		if !ok || appErr.Code >= http.StatusInternalServerError {
			logger.Log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(requestIDKey),
				"error", err,
			)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			return
		}

		var detail interface{}
		if appErr.Field != "" {
			detail = response.FieldError{Field: appErr.Field}
		}
		response.Error(c, appErr.Code, appErr.Message, detail)
	}
}
