package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinylink/constant"
	"tinylink/internal/apperrors"
	"tinylink/internal/i18n"
	"tinylink/pkg/logging"
	"tinylink/response"
)

// GlobalErrorMiddleware renders the first error a handler pushed with c.Error.
// *AppError keeps its status and its message is localized; anything else becomes a
// generic 500. Routes that set constant.PlainTextErrorsKey get a text/plain body.
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		messageID := apperrors.MsgSystemError

		var appErr *apperrors.AppError
		if errors.As(c.Errors.Last().Err, &appErr) {
			status = appErr.Code
			messageID = appErr.Message
		} else {
			logging.Logger.Error("Unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.String(constant.RequestIDKey, c.GetString(constant.RequestIDKey)),
				zap.Error(c.Errors.Last().Err),
			)
		}

		msg := i18n.T(c.Request.Context(), messageID, nil)
		if c.GetBool(constant.PlainTextErrorsKey) {
			c.String(status, msg)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(status, response.Error(msg))
	}
}
