package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"partsbot/pkg/orchestrator"
	"partsbot/pkg/orders"
	"partsbot/pkg/response"
	"partsbot/pkg/scheduler"
	"partsbot/pkg/stock"
)

// statusFor maps domain errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stock.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, stock.ErrRowNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, scheduler.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrStockNotConfirmed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes err as a failure envelope. Validation errors always use
// the BAD_REQUEST step; other errors use failStep.
func HandleError(c *gin.Context, failStep string, err error, fields gin.H) {
	status := statusFor(err)
	step := failStep
	if status == http.StatusBadRequest {
		step = response.StepBadRequest
	}
	response.Fail(c, status, step, err.Error(), fields)
}

// badRequest writes a 400 envelope.
func badRequest(c *gin.Context, message string, fields gin.H) {
	response.Fail(c, http.StatusBadRequest, response.StepBadRequest, message, fields)
}
