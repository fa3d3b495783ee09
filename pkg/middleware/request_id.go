package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"partsbot/pkg/logger"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "RequestID"

// RequestID middleware to generate request ID if not present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if request ID exists in header
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		// Downstream loggers pick the id up from the request context
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return uuid.New().String()
}
