package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinylink/constant"
	"tinylink/internal/apperrors"
	"tinylink/internal/i18n"
	"tinylink/response"
)

func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String(constant.RequestIDKey, c.GetString(constant.RequestIDKey)),
			zap.Stack("stack"),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError,
			response.Error(i18n.T(c.Request.Context(), apperrors.MsgSystemError, nil)))
	})
}
