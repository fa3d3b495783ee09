// Package response writes the JSON envelope shared by every endpoint: each
// body carries "ok" and "step", failures add "message".
package response

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"partsbot/pkg/logger"
)

// Envelope field names
const (
	FieldOK        = "ok"
	FieldStep      = "step"
	FieldMessage   = "message"
	FieldRequestID = "requestId"
)

// Step values shared across handlers and middleware
const (
	StepBadRequest    = "BAD_REQUEST"
	StepInternalError = "INTERNAL_ERROR"
)

// OK writes a successful envelope. fields may be nil.
func OK(c *gin.Context, status int, step string, fields gin.H) {
	body := gin.H{}
	for k, v := range fields {
		body[k] = v
	}
	body[FieldOK] = true
	body[FieldStep] = step
	c.JSON(status, body)
}

// Fail writes a failure envelope and logs it with the request's logger.
func Fail(c *gin.Context, status int, step, message string, fields gin.H) {
	body := gin.H{}
	for k, v := range fields {
		body[k] = v
	}
	body[FieldOK] = false
	body[FieldStep] = step
	body[FieldMessage] = message

	log := logger.FromContext(c.Request.Context())
	logFields := []zap.Field{
		zap.String("step", step),
		zap.Int("status_code", status),
		zap.String("message", message),
	}
	if status >= 500 {
		log.Error("API error", logFields...)
	} else {
		log.Warn("API error", logFields...)
	}

	c.JSON(status, body)
}

// Abort is Fail for middleware: it also stops the handler chain.
func Abort(c *gin.Context, status int, step, message string) {
	c.Abort()
	Fail(c, status, step, message, gin.H{FieldRequestID: c.GetString("RequestID")})
}
