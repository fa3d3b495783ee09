package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"partsbot/pkg/response"
)

// HealthCheck reports readiness
// @Summary Health check
// @Description Returns READY with the scopes this bot serves
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HandlerService) HealthCheck(c *gin.Context) {
	response.OK(c, http.StatusOK, "READY", gin.H{
		"scope":     []string{h.Prefix(), "compra"},
		"timestamp": getCurrentTimestamp(),
	})
}

// GetStatus returns the overall system status
// @Summary Get system status
// @Description Returns uptime, supplier, feature flags and scheduler status
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/status [get]
func (h *HandlerService) GetStatus(c *gin.Context) {
	status := gin.H{
		"service":   "partsbot",
		"supplier":  h.config.Supplier.Name,
		"baseUrl":   h.config.Supplier.BaseURL,
		"headless":  h.config.Browser.Headless,
		"coalesce":  h.config.Confirm.Coalesce,
		"ledger":    h.orders != nil,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp": getCurrentTimestamp(),
	}

	if h.scheduler != nil {
		status["scheduler"] = h.scheduler.GetStatus()
	}

	response.OK(c, http.StatusOK, "STATUS_OK", status)
}
