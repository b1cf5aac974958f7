package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tinylink/constant"
)

const maxRequestIDLength = 128

// RequestID reuses a sane incoming X-Request-ID or assigns a new UUID, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constant.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(constant.RequestIDKey, id)
		c.Header(constant.RequestIDHeader, id)
		c.Next()
	}
}
