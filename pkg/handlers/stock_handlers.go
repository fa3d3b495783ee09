package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"partsbot/pkg/response"
	"partsbot/pkg/stock"
)

// Wire names of the confirmation modes
var modeNames = map[stock.Mode]string{
	stock.ModeImmediateAvailable: "immediate-green",
	stock.ModePanelConfirmed:     "confirmation-panel",
	stock.ModeUnavailable:        "unavailable",
}

// SearchProduct reads the BA light of a product
// @Summary Search a product
// @Description Logs in if needed, searches the part code and returns its stock signal
// @Tags Stock
// @Produce json
// @Param codigo path string true "Part code"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Row not found"
// @Failure 500 {object} map[string]interface{}
// @Router /consulta/{codigo} [get]
func (h *HandlerService) SearchProduct(c *gin.Context) {
	code := strings.TrimSpace(c.Param("codigo"))

	res, err := h.svc.Search(c.Request.Context(), code)
	if err != nil {
		HandleError(c, "SEARCH_FAIL", err, gin.H{"codigo": code})
		return
	}

	response.OK(c, http.StatusOK, "SEARCH_OK", gin.H{
		"codigo": res.Code,
		"ba":     res.Signal,
	})
}

// ConfirmStock waits for a stock confirmation
// @Summary Confirm stock
// @Description Resolves availability from the BA light, waiting for the confirmation panel when it is pending
// @Tags Stock
// @Produce json
// @Param codigo path string true "Part code"
// @Param min query number false "Minimum quantity needed"
// @Param maxWait query number false "Maximum wait in seconds (default 3h)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 408 {object} map[string]interface{} "No confirmation arrived"
// @Failure 500 {object} map[string]interface{}
// @Router /consulta/{codigo}/stock-confirm [get]
func (h *HandlerService) ConfirmStock(c *gin.Context) {
	code := strings.TrimSpace(c.Param("codigo"))
	echo := gin.H{"codigo": code}

	req := stock.ConfirmationRequest{ProductCode: code}

	if raw, ok := c.GetQuery("min"); ok {
		min, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(min) || math.IsInf(min, 0) || min < 0 {
			badRequest(c, fmt.Sprintf("min must be a non-negative number, got %q", raw), echo)
			return
		}
		req.MinimumQuantity = &min
		echo["min"] = min
	}

	if raw, ok := c.GetQuery("maxWait"); ok {
		echo["maxWait"] = raw
		// Unusable values fall back to the default wait.
		if secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && secs > 0 && !math.IsInf(secs, 0) {
			// clamp before converting so huge values cannot overflow
			if secs > stock.MaxWaitCeiling.Seconds() {
				secs = stock.MaxWaitCeiling.Seconds()
			}
			req.MaxWait = time.Duration(secs * float64(time.Second))
		}
	}

	out, err := h.svc.ConfirmStock(c.Request.Context(), req)
	if err != nil {
		HandleError(c, "CONFIRM_STOCK_FAIL", err, echo)
		return
	}

	if out.Mode == stock.ModeTimedOut {
		wait := req.MaxWait
		if wait <= 0 {
			wait = h.config.Confirm.DefaultMaxWait()
		}
		fields := gin.H{"codigo": code, "elapsedMs": out.Elapsed.Milliseconds()}
		if req.MinimumQuantity != nil {
			fields["min"] = *req.MinimumQuantity
		}
		response.Fail(c, http.StatusRequestTimeout, "CONFIRM_STOCK_TIMEOUT",
			fmt.Sprintf("No llegó confirmación (%ds).", int(wait.Round(time.Second).Seconds())), fields)
		return
	}

	response.OK(c, http.StatusOK, "CONFIRM_STOCK_OK", confirmationBody(code, req, out))
}

func confirmationBody(code string, req stock.ConfirmationRequest, out *stock.ConfirmationOutcome) gin.H {
	body := gin.H{
		"codigo":    code,
		"mode":      modeNames[out.Mode],
		"available": out.AvailableQuantity,
		"stock":     out.InStock(),
		"elapsedMs": out.Elapsed.Milliseconds(),
	}
	if req.MinimumQuantity != nil {
		body["min"] = *req.MinimumQuantity
		body["enough"] = out.MeetsMinimum != nil && *out.MeetsMinimum
	}
	if out.Signal != nil {
		body["ba"] = out.Signal
	}
	if out.Record != nil {
		body["rowText"] = out.Record.RawRowText
	}
	return body
}
