package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"partsbot/internal/models"
	"partsbot/pkg/orchestrator"
	"partsbot/pkg/orders"
	"partsbot/pkg/response"
)

// PurchaseBody is the JSON body of POST /compra
type PurchaseBody struct {
	Codigo        string   `json:"codigo" example:"AB1234"`
	Cantidad      *float64 `json:"cantidad" example:"2"`
	Observaciones string   `json:"observaciones,omitempty" example:"urg"`
	Force         bool     `json:"force,omitempty"`
}

// toRequest validates the body. code overrides Codigo when set from the path.
func (b *PurchaseBody) toRequest(code string) (orchestrator.PurchaseRequest, string) {
	if code != "" {
		b.Codigo = code
	}
	b.Codigo = strings.TrimSpace(b.Codigo)
	if b.Codigo == "" {
		return orchestrator.PurchaseRequest{}, "codigo is required"
	}
	q := b.Cantidad
	if q == nil || math.IsNaN(*q) || math.IsInf(*q, 0) || *q <= 0 || *q != math.Trunc(*q) || *q > math.MaxInt32 {
		return orchestrator.PurchaseRequest{}, "cantidad must be a positive integer"
	}
	return orchestrator.PurchaseRequest{
		Code:         b.Codigo,
		Quantity:     int(*q),
		Observations: b.Observaciones,
		Force:        b.Force,
	}, ""
}

// bindPurchase decodes and validates the body, writing a 400 on failure.
func bindPurchase(c *gin.Context, code string) (orchestrator.PurchaseRequest, bool) {
	var body PurchaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Body esperado: { codigo, cantidad, observaciones?, force? }", gin.H{"details": err.Error()})
		return orchestrator.PurchaseRequest{}, false
	}
	req, msg := body.toRequest(code)
	if msg != "" {
		badRequest(c, msg, gin.H{"codigo": body.Codigo})
		return orchestrator.PurchaseRequest{}, false
	}
	return req, true
}

// orderFailure writes a purchase error, adding the signal when the BA gate refused it.
func orderFailure(c *gin.Context, code string, err error) {
	fields := gin.H{"codigo": code}
	var snc *orchestrator.StockNotConfirmedError
	if errors.As(err, &snc) {
		fields["ba"] = snc.Signal
		response.Fail(c, http.StatusConflict, "BA_NOT_GREEN",
			"BA no está verde; pase force=true para forzar", fields)
		return
	}
	HandleError(c, "ORDER_FAIL", err, fields)
}

// Purchase buys a product
// @Summary Purchase
// @Description Sets the quantity on the product row and submits the cart. Refuses with 409 when the BA light is not green unless force is true.
// @Tags Orders
// @Accept json
// @Produce json
// @Param body body PurchaseBody true "Purchase"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "BA not green"
// @Failure 500 {object} map[string]interface{}
// @Router /compra [post]
func (h *HandlerService) Purchase(c *gin.Context) {
	h.purchase(c, "")
}

// CartConfirm buys the product named in the path
// @Summary Purchase by path
// @Description Same as POST /compra with the part code taken from the path
// @Tags Orders
// @Accept json
// @Produce json
// @Param codigo path string true "Part code"
// @Param body body PurchaseBody true "Purchase"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "BA not green"
// @Router /consulta/{codigo}/cart-confirm [post]
func (h *HandlerService) CartConfirm(c *gin.Context) {
	h.purchase(c, c.Param("codigo"))
}

func (h *HandlerService) purchase(c *gin.Context, code string) {
	req, ok := bindPurchase(c, code)
	if !ok {
		return
	}

	res, err := h.svc.Purchase(c.Request.Context(), req)
	if err != nil {
		orderFailure(c, req.Code, err)
		return
	}

	fields := gin.H{
		"codigo":   res.Code,
		"cantidad": res.Quantity,
		"pedidoId": res.OrderID,
		"forced":   res.Forced,
		"baAtBuy":  res.SignalAtBuy,
	}
	if res.RecordID != "" {
		fields["registroId"] = res.RecordID
	}
	response.OK(c, http.StatusOK, "ORDER_CONFIRMED", fields)
}

// AddToCart writes the quantity without submitting the cart
// @Summary Add to cart
// @Description Sets the quantity on the product row, leaving the item in the portal cart
// @Tags Orders
// @Accept json
// @Produce json
// @Param codigo path string true "Part code"
// @Param body body PurchaseBody true "Quantity and force flag"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "BA not green"
// @Router /consulta/{codigo}/add-to-cart [post]
func (h *HandlerService) AddToCart(c *gin.Context) {
	req, ok := bindPurchase(c, c.Param("codigo"))
	if !ok {
		return
	}

	res, err := h.svc.AddToCart(c.Request.Context(), req)
	if err != nil {
		orderFailure(c, req.Code, err)
		return
	}

	response.OK(c, http.StatusOK, "CART_OK", gin.H{
		"codigo":   res.Code,
		"cantidad": res.Quantity,
		"forced":   res.Forced,
		"ba":       res.SignalAtBuy,
	})
}

// ListOrders returns recent purchase attempts
// @Summary List orders
// @Description Returns the order ledger, newest first
// @Tags Orders
// @Produce json
// @Param limit query int false "Max rows (default 50, max 500)"
// @Param codigo query string false "Filter by part code"
// @Param status query string false "SUBMITTED, FAILED or REJECTED"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{} "Ledger disabled"
// @Router /orders [get]
func (h *HandlerService) ListOrders(c *gin.Context) {
	if h.orders == nil {
		response.Fail(c, http.StatusServiceUnavailable, "ORDERS_DISABLED", "order ledger is disabled", nil)
		return
	}

	filter := orders.Filter{
		ProductCode: strings.TrimSpace(c.Query("codigo")),
		Status:      models.OrderStatus(strings.ToUpper(c.Query("status"))),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer", nil)
			return
		}
		filter.Limit = limit
	}

	list, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, "ORDERS_FAIL", err, nil)
		return
	}

	response.OK(c, http.StatusOK, "ORDERS_OK", gin.H{
		"orders": list,
		"count":  len(list),
	})
}

// GetOrder returns one ledger entry
// @Summary Get order
// @Tags Orders
// @Produce json
// @Param id path string true "Ledger id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id} [get]
func (h *HandlerService) GetOrder(c *gin.Context) {
	if h.orders == nil {
		response.Fail(c, http.StatusServiceUnavailable, "ORDERS_DISABLED", "order ledger is disabled", nil)
		return
	}

	rec, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, "ORDER_LOOKUP_FAIL", err, gin.H{"id": c.Param("id")})
		return
	}

	response.OK(c, http.StatusOK, "ORDER_OK", gin.H{"order": rec})
}
