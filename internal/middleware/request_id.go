package middleware

import (
	"raid_checker_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID 透传或生成请求 ID，并写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(util.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(util.RequestIDKey, id)
		c.Header(util.RequestIDHeader, id)
		c.Next()
	}
}
