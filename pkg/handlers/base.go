package handlers

import (
	"context"
	"time"

	"partsbot/internal/models"
	"partsbot/pkg/config"
	"partsbot/pkg/logger"
	"partsbot/pkg/orchestrator"
	"partsbot/pkg/orders"
	"partsbot/pkg/scheduler"
	"partsbot/pkg/stock"
)

// Service is the portal automation behind the API. *orchestrator.Orchestrator implements it.
type Service interface {
	Search(ctx context.Context, code string) (*orchestrator.SearchResult, error)
	ConfirmStock(ctx context.Context, req stock.ConfirmationRequest) (*stock.ConfirmationOutcome, error)
	Purchase(ctx context.Context, req orchestrator.PurchaseRequest) (*orchestrator.OrderResult, error)
	AddToCart(ctx context.Context, req orchestrator.PurchaseRequest) (*orchestrator.OrderResult, error)
}

// OrderLister reads the order ledger. *orders.Ledger implements it.
type OrderLister interface {
	List(ctx context.Context, f orders.Filter) ([]models.OrderRecord, error)
	Get(ctx context.Context, id string) (*models.OrderRecord, error)
}

// HandlerService provides HTTP handlers for the API
type HandlerService struct {
	config    *config.Config
	svc       Service
	orders    OrderLister
	scheduler *scheduler.TaskScheduler
	startedAt time.Time
}

// NewHandlerService creates a new handler service. orders may be nil when the ledger is off.
func NewHandlerService(cfg *config.Config, svc Service, orders OrderLister) *HandlerService {
	logger.Info("Initializing handler service")

	return &HandlerService{
		config:    cfg,
		svc:       svc,
		orders:    orders,
		startedAt: time.Now(),
	}
}

// SetScheduler sets the scheduler reference (called after scheduler is created)
func (h *HandlerService) SetScheduler(s *scheduler.TaskScheduler) {
	h.scheduler = s
}

// Prefix returns the route prefix of the product endpoints
func (h *HandlerService) Prefix() string {
	return h.config.Supplier.Prefix
}

// IsSchedulerAvailable checks if scheduler is available
func (h *HandlerService) IsSchedulerAvailable() bool {
	return h.scheduler != nil
}

// getCurrentTimestamp 获取当前UTC时间戳
func getCurrentTimestamp() time.Time {
	return time.Now().UTC()
}
