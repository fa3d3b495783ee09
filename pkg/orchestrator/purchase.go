package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"partsbot/internal/models"
	"partsbot/pkg/logger"
	"partsbot/pkg/metrics"
	"partsbot/pkg/orders"
	"partsbot/pkg/portal"
	"partsbot/pkg/stock"
)

// PurchaseRequest asks to buy Quantity units of Code.
type PurchaseRequest struct {
	Code         string
	Quantity     int
	Observations string
	// Force buys even when the BA light is not green.
	Force bool
}

func (r *PurchaseRequest) validate() error {
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return fmt.Errorf("%w: codigo is required", stock.ErrValidation)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: cantidad must be a positive integer", stock.ErrValidation)
	}
	return nil
}

// OrderResult describes a submitted order (or, for AddToCart, a cart line).
type OrderResult struct {
	Code     string
	Quantity int
	// OrderID is the portal's id for the order when its response was observed.
	OrderID     *string
	Forced      bool
	SignalAtBuy stock.Signal
	// RecordID is the ledger id of this attempt, empty when the ledger is off.
	RecordID string
}

// Purchase locates the product, checks its BA light, writes the quantity and
// submits the cart. Nothing is rolled back on failure.
func (o *Orchestrator) Purchase(ctx context.Context, req PurchaseRequest) (*OrderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	ctx = o.scope(ctx, req.Code)
	start := time.Now()
	obs := o.observations(req.Observations)

	res, err := o.purchase(ctx, req, obs)

	entry := orders.Entry{
		Supplier:     o.sessions.Supplier(),
		ProductCode:  req.Code,
		Quantity:     req.Quantity,
		Observations: obs,
		Forced:       req.Force,
		Err:          err,
		RequestID:    logger.RequestIDFromContext(ctx),
		Duration:     time.Since(start),
	}

	var rejected *StockNotConfirmedError
	switch {
	case err == nil:
		entry.Status = models.OrderStatusSubmitted
		entry.PortalID = res.OrderID
		entry.Signal = res.SignalAtBuy
	case errors.As(err, &rejected):
		entry.Status = models.OrderStatusRejected
		entry.Signal = rejected.Signal
	default:
		entry.Status = models.OrderStatusFailed
	}
	metrics.OrdersTotal.WithLabelValues(string(entry.Status)).Inc()

	if id := o.record(ctx, entry); res != nil {
		res.RecordID = id
	}

	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Order submitted",
		zap.Int("quantity", res.Quantity),
		zap.Bool("forced", res.Forced),
		zap.Duration("duration", entry.Duration),
	)

	if o.notify != nil {
		supplier := o.sessions.Supplier()
		o.background(ctx, "order notification", func(ctx context.Context) error {
			return o.notify.SendOrderPlaced(ctx, supplier, res.Code, res.Quantity, res.OrderID, res.Forced)
		})
	}
	return res, nil
}

func (o *Orchestrator) purchase(ctx context.Context, req PurchaseRequest, obs string) (*OrderResult, error) {
	sess, res, err := o.fillCart(ctx, req)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	orderID, err := sess.Checkout(ctx, portal.CheckoutOptions{
		Observations:    obs,
		ResponseTimeout: o.responseTimeout,
	})
	if err != nil {
		return nil, err
	}
	res.OrderID = orderID
	return res, nil
}

// AddToCart runs the purchase flow up to the quantity write, leaving the
// item in the portal cart. The BA gate applies as for Purchase.
func (o *Orchestrator) AddToCart(ctx context.Context, req PurchaseRequest) (*OrderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	ctx = o.scope(ctx, req.Code)

	sess, res, err := o.fillCart(ctx, req)
	if err != nil {
		return nil, err
	}
	sess.Close()

	logger.FromContext(ctx).Info("Added to cart", zap.Int("quantity", res.Quantity))
	return res, nil
}

// fillCart locates the row, enforces the BA gate and writes the quantity.
// On success the caller owns the returned session.
func (o *Orchestrator) fillCart(ctx context.Context, req PurchaseRequest) (Session, *OrderResult, error) {
	sess, row, err := o.locate(ctx, req.Code)
	if err != nil {
		return nil, nil, err
	}

	sig, err := row.ReadSignal(ctx)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}

	if !sig.IsGreen() && !req.Force {
		sess.Close()
		logger.FromContext(ctx).Info("Purchase rejected, BA not green", zap.String("state", string(sig.State)))
		return nil, nil, &StockNotConfirmedError{Code: req.Code, Signal: sig}
	}

	if err := row.SetQuantity(ctx, req.Quantity); err != nil {
		sess.Close()
		return nil, nil, err
	}
	if err := sess.Settle(ctx, quantitySettle); err != nil {
		sess.Close()
		return nil, nil, err
	}

	return sess, &OrderResult{
		Code:        req.Code,
		Quantity:    req.Quantity,
		Forced:      req.Force,
		SignalAtBuy: sig,
	}, nil
}

// record writes the attempt to the ledger and returns its id. Ledger errors
// are logged, never returned.
func (o *Orchestrator) record(ctx context.Context, e orders.Entry) string {
	if o.ledger == nil {
		return ""
	}
	rec, err := o.ledger.Record(context.WithoutCancel(ctx), e)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to record order attempt", zap.Error(err))
		return ""
	}
	return rec.OrderUUID
}
