package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"partsbot/internal/models"
	"partsbot/pkg/config"
	"partsbot/pkg/middleware"
	"partsbot/pkg/orchestrator"
	"partsbot/pkg/orders"
	"partsbot/pkg/portal"
	"partsbot/pkg/stock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	search      *orchestrator.SearchResult
	outcome     *stock.ConfirmationOutcome
	order       *orchestrator.OrderResult
	err         error
	confirmReq  *stock.ConfirmationRequest
	purchaseReq *orchestrator.PurchaseRequest
	calls       int
}

func (f *fakeService) Search(ctx context.Context, code string) (*orchestrator.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.search, nil
}

func (f *fakeService) ConfirmStock(ctx context.Context, req stock.ConfirmationRequest) (*stock.ConfirmationOutcome, error) {
	f.calls++
	f.confirmReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome.WithMinimum(req.MinimumQuantity), nil
}

func (f *fakeService) Purchase(ctx context.Context, req orchestrator.PurchaseRequest) (*orchestrator.OrderResult, error) {
	f.calls++
	f.purchaseReq = &req
	if f.err != nil {
		return nil, f.err
	}
	res := *f.order
	res.Code = req.Code
	res.Quantity = req.Quantity
	res.Forced = req.Force
	return &res, nil
}

func (f *fakeService) AddToCart(ctx context.Context, req orchestrator.PurchaseRequest) (*orchestrator.OrderResult, error) {
	return f.Purchase(ctx, req)
}

type fakeLister struct {
	records []models.OrderRecord
	filter  orders.Filter
}

func (f *fakeLister) List(ctx context.Context, filter orders.Filter) ([]models.OrderRecord, error) {
	f.filter = filter
	return f.records, nil
}

func (f *fakeLister) Get(ctx context.Context, id string) (*models.OrderRecord, error) {
	for i := range f.records {
		if f.records[i].OrderUUID == id {
			return &f.records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", orders.ErrNotFound, id)
}

func newTestRouter(t *testing.T, svc Service, lister OrderLister) *gin.Engine {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Supplier.Prefix = "consulta"

	h := NewHandlerService(cfg, svc, lister)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery())
	r.GET("/health", h.HealthCheck)
	r.GET("/consulta/:codigo", h.SearchProduct)
	r.GET("/consulta/:codigo/stock-confirm", h.ConfirmStock)
	r.POST("/consulta/:codigo/add-to-cart", h.AddToCart)
	r.POST("/consulta/:codigo/cart-confirm", h.CartConfirm)
	r.POST("/compra", h.Purchase)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/scheduler/jobs", h.GetScheduledJobs)
	return r
}

func do(t *testing.T, r *gin.Engine, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	if _, ok := out["ok"]; !ok {
		t.Errorf("body has no ok field: %v", out)
	}
	if _, ok := out["step"]; !ok {
		t.Errorf("body has no step field: %v", out)
	}
	return w.Code, out
}

func signal(color, text string) stock.Signal {
	return stock.Classify(color, text, stock.DefaultEncodings())
}

func intPtr(n int) *int { return &n }

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, nil)
	code, body := do(t, r, http.MethodGet, "/health", "")

	if code != http.StatusOK || body["ok"] != true || body["step"] != "READY" {
		t.Fatalf("unexpected response %d %v", code, body)
	}
	scope, _ := body["scope"].([]interface{})
	if len(scope) != 2 || scope[0] != "consulta" || scope[1] != "compra" {
		t.Errorf("scope = %v", body["scope"])
	}
}

func TestSearchProduct(t *testing.T) {
	tests := []struct {
		name     string
		svc      *fakeService
		wantCode int
		wantStep string
	}{
		{
			name:     "found",
			svc:      &fakeService{search: &orchestrator.SearchResult{Code: "X1", Signal: signal("rgb(25, 135, 84)", "8")}},
			wantCode: http.StatusOK,
			wantStep: "SEARCH_OK",
		},
		{
			name:     "row not found",
			svc:      &fakeService{err: &portal.PortalError{Op: "locate row", Err: stock.ErrRowNotFound}},
			wantCode: http.StatusNotFound,
			wantStep: "SEARCH_FAIL",
		},
		{
			name:     "browser failure",
			svc:      &fakeService{err: fmt.Errorf("search: %w", stock.ErrTimeout)},
			wantCode: http.StatusInternalServerError,
			wantStep: "SEARCH_FAIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.svc, nil)
			code, body := do(t, r, http.MethodGet, "/consulta/X1", "")
			if code != tt.wantCode || body["step"] != tt.wantStep {
				t.Fatalf("got %d %v, want %d %s", code, body, tt.wantCode, tt.wantStep)
			}
			if body["codigo"] != "X1" {
				t.Errorf("codigo = %v", body["codigo"])
			}
			if code == http.StatusOK {
				ba := body["ba"].(map[string]interface{})
				if ba["state"] != "GREEN" || ba["numericHint"] != float64(8) {
					t.Errorf("ba = %v", ba)
				}
			} else if body["message"] == "" {
				t.Error("failure should carry a message")
			}
		})
	}
}

func TestConfirmStockResponses(t *testing.T) {
	greenSig := signal("rgb(25, 135, 84)", "12")
	blankGreen := signal("rgb(25, 135, 84)", "")
	tests := []struct {
		name       string
		outcome    *stock.ConfirmationOutcome
		query      string
		wantMode   string
		wantStock  bool
		wantAvail  interface{}
		wantEnough interface{}
	}{
		{
			name:       "green with minimum met",
			outcome:    &stock.ConfirmationOutcome{Mode: stock.ModeImmediateAvailable, AvailableQuantity: intPtr(12), Signal: &greenSig},
			query:      "?min=10",
			wantMode:   "immediate-green",
			wantStock:  true,
			wantAvail:  float64(12),
			wantEnough: true,
		},
		{
			name:       "green without digits",
			outcome:    &stock.ConfirmationOutcome{Mode: stock.ModeImmediateAvailable, Signal: &blankGreen},
			query:      "?min=1",
			wantMode:   "immediate-green",
			wantStock:  false,
			wantAvail:  nil,
			wantEnough: false,
		},
		{
			name: "panel confirmed",
			outcome: &stock.ConfirmationOutcome{
				Mode:              stock.ModePanelConfirmed,
				AvailableQuantity: intPtr(3),
				Record:            &stock.ConfirmationRecord{Code: "X1", Quantity: intPtr(3), RawRowText: "X1 3"},
			},
			wantMode:  "confirmation-panel",
			wantStock: true,
			wantAvail: float64(3),
		},
		{
			name:      "unavailable",
			outcome:   &stock.ConfirmationOutcome{Mode: stock.ModeUnavailable, AvailableQuantity: intPtr(0)},
			wantMode:  "unavailable",
			wantStock: false,
			wantAvail: float64(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeService{outcome: tt.outcome}, nil)
			code, body := do(t, r, http.MethodGet, "/consulta/X1/stock-confirm"+tt.query, "")

			if code != http.StatusOK || body["step"] != "CONFIRM_STOCK_OK" {
				t.Fatalf("unexpected response %d %v", code, body)
			}
			if body["mode"] != tt.wantMode || body["stock"] != tt.wantStock || body["available"] != tt.wantAvail {
				t.Errorf("mode/stock/available = %v/%v/%v", body["mode"], body["stock"], body["available"])
			}
			if body["enough"] != tt.wantEnough {
				t.Errorf("enough = %v, want %v", body["enough"], tt.wantEnough)
			}
			if tt.outcome.Record != nil && body["rowText"] != "X1 3" {
				t.Errorf("rowText = %v", body["rowText"])
			}
		})
	}
}

func TestConfirmStockQuery(t *testing.T) {
	tests := []struct {
		query       string
		wantCode    int
		wantMaxWait time.Duration
	}{
		{"?min=abc", http.StatusBadRequest, 0},
		{"?min=-1", http.StatusBadRequest, 0},
		{"?min=NaN", http.StatusBadRequest, 0},
		{"?maxWait=30", http.StatusOK, 30 * time.Second},
		{"?maxWait=abc", http.StatusOK, 0},
		{"?maxWait=-5", http.StatusOK, 0},
		{"?maxWait=1e10", http.StatusOK, stock.MaxWaitCeiling},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc := &fakeService{outcome: &stock.ConfirmationOutcome{Mode: stock.ModeUnavailable, AvailableQuantity: intPtr(0)}}
			r := newTestRouter(t, svc, nil)
			code, body := do(t, r, http.MethodGet, "/consulta/X1/stock-confirm"+tt.query, "")

			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%v)", code, tt.wantCode, body)
			}
			if code == http.StatusBadRequest {
				if body["step"] != "BAD_REQUEST" || svc.calls != 0 {
					t.Errorf("bad query should be rejected before the service runs: %v", body)
				}
				return
			}
			if svc.confirmReq.MaxWait != tt.wantMaxWait {
				t.Errorf("MaxWait = %v, want %v", svc.confirmReq.MaxWait, tt.wantMaxWait)
			}
		})
	}
}

func TestConfirmStockTimeout(t *testing.T) {
	svc := &fakeService{outcome: &stock.ConfirmationOutcome{Mode: stock.ModeTimedOut, Elapsed: 30 * time.Second}}
	r := newTestRouter(t, svc, nil)

	code, body := do(t, r, http.MethodGet, "/consulta/X1/stock-confirm?maxWait=30&min=2", "")
	if code != http.StatusRequestTimeout || body["step"] != "CONFIRM_STOCK_TIMEOUT" || body["ok"] != false {
		t.Fatalf("unexpected response %d %v", code, body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "30s") {
		t.Errorf("message = %q", msg)
	}
	if body["min"] != float64(2) {
		t.Errorf("min = %v", body["min"])
	}
}

func TestConfirmStockFailure(t *testing.T) {
	svc := &fakeService{err: errors.New("chrome crashed")}
	r := newTestRouter(t, svc, nil)

	code, body := do(t, r, http.MethodGet, "/consulta/X1/stock-confirm?min=3&maxWait=60", "")
	if code != http.StatusInternalServerError || body["step"] != "CONFIRM_STOCK_FAIL" {
		t.Fatalf("unexpected response %d %v", code, body)
	}
	if body["message"] != "chrome crashed" || body["min"] != float64(3) || body["maxWait"] != "60" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestPurchase(t *testing.T) {
	pending := signal("rgb(212, 175, 55)", "C")
	tests := []struct {
		name     string
		body     string
		svc      *fakeService
		wantCode int
		wantStep string
	}{
		{"malformed json", `{"codigo":`, &fakeService{}, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing code", `{"cantidad":1}`, &fakeService{}, http.StatusBadRequest, "BAD_REQUEST"},
		{"zero quantity", `{"codigo":"X1","cantidad":0}`, &fakeService{}, http.StatusBadRequest, "BAD_REQUEST"},
		{"fractional quantity", `{"codigo":"X1","cantidad":1.5}`, &fakeService{}, http.StatusBadRequest, "BAD_REQUEST"},
		{
			"not green",
			`{"codigo":"X1","cantidad":2}`,
			&fakeService{err: &orchestrator.StockNotConfirmedError{Code: "X1", Signal: pending}},
			http.StatusConflict, "BA_NOT_GREEN",
		},
		{
			"portal failure",
			`{"codigo":"X1","cantidad":2}`,
			&fakeService{err: errors.New("cart page did not load")},
			http.StatusInternalServerError, "ORDER_FAIL",
		},
		{
			"ok",
			`{"codigo":"X1","cantidad":2,"observaciones":"entregar","force":true}`,
			&fakeService{order: &orchestrator.OrderResult{OrderID: func() *string { s := "777"; return &s }(), SignalAtBuy: pending}},
			http.StatusOK, "ORDER_CONFIRMED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.svc, nil)
			code, body := do(t, r, http.MethodPost, "/compra", tt.body)
			if code != tt.wantCode || body["step"] != tt.wantStep {
				t.Fatalf("got %d %v, want %d %s", code, body, tt.wantCode, tt.wantStep)
			}

			switch code {
			case http.StatusBadRequest:
				if tt.svc.calls != 0 {
					t.Error("invalid body must not reach the service")
				}
			case http.StatusConflict:
				if ba, _ := body["ba"].(map[string]interface{}); ba["state"] != "PENDING" {
					t.Errorf("ba = %v", body["ba"])
				}
			case http.StatusOK:
				if body["pedidoId"] != "777" || body["cantidad"] != float64(2) || body["forced"] != true {
					t.Errorf("unexpected body %v", body)
				}
				if tt.svc.purchaseReq.Observations != "entregar" {
					t.Errorf("observations = %q", tt.svc.purchaseReq.Observations)
				}
			}
		})
	}
}

func TestPurchaseNullOrderID(t *testing.T) {
	r := newTestRouter(t, &fakeService{order: &orchestrator.OrderResult{}}, nil)
	code, body := do(t, r, http.MethodPost, "/compra", `{"codigo":"X1","cantidad":1}`)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if v, ok := body["pedidoId"]; !ok || v != nil {
		t.Errorf("pedidoId should be present and null, got %v", v)
	}
}

func TestCartRoutesTakeCodeFromPath(t *testing.T) {
	svc := &fakeService{order: &orchestrator.OrderResult{}}
	r := newTestRouter(t, svc, nil)

	code, body := do(t, r, http.MethodPost, "/consulta/AB12/add-to-cart", `{"cantidad":4}`)
	if code != http.StatusOK || body["step"] != "CART_OK" || body["codigo"] != "AB12" {
		t.Fatalf("unexpected add-to-cart response %d %v", code, body)
	}

	code, body = do(t, r, http.MethodPost, "/consulta/AB12/cart-confirm", `{"codigo":"OTHER","cantidad":1}`)
	if code != http.StatusOK || body["step"] != "ORDER_CONFIRMED" || body["codigo"] != "AB12" {
		t.Fatalf("unexpected cart-confirm response %d %v", code, body)
	}
}

func TestOrders(t *testing.T) {
	lister := &fakeLister{records: []models.OrderRecord{
		{OrderUUID: "a", ProductCode: "X1", Status: models.OrderStatusSubmitted},
		{OrderUUID: "b", ProductCode: "X2", Status: models.OrderStatusRejected},
	}}
	r := newTestRouter(t, &fakeService{}, lister)

	code, body := do(t, r, http.MethodGet, "/orders?limit=5&status=submitted", "")
	if code != http.StatusOK || body["step"] != "ORDERS_OK" || body["count"] != float64(2) {
		t.Fatalf("unexpected response %d %v", code, body)
	}
	if lister.filter.Limit != 5 || lister.filter.Status != models.OrderStatusSubmitted {
		t.Errorf("filter = %+v", lister.filter)
	}

	code, _ = do(t, r, http.MethodGet, "/orders?limit=x", "")
	if code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", code)
	}

	code, body = do(t, r, http.MethodGet, "/orders/b", "")
	if code != http.StatusOK || body["step"] != "ORDER_OK" {
		t.Errorf("unexpected get response %d %v", code, body)
	}

	code, _ = do(t, r, http.MethodGet, "/orders/zzz", "")
	if code != http.StatusNotFound {
		t.Errorf("missing order status = %d, want 404", code)
	}
}

func TestOrdersDisabled(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, nil)
	code, body := do(t, r, http.MethodGet, "/orders", "")
	if code != http.StatusServiceUnavailable || body["step"] != "ORDERS_DISABLED" {
		t.Fatalf("unexpected response %d %v", code, body)
	}
}

func TestSchedulerUnavailable(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, nil)
	code, body := do(t, r, http.MethodGet, "/scheduler/jobs", "")
	if code != http.StatusServiceUnavailable || body["ok"] != false {
		t.Fatalf("unexpected response %d %v", code, body)
	}
}
