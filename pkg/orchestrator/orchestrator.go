// Package orchestrator sequences the portal operations behind each HTTP
// endpoint: search, stock confirmation, add-to-cart and purchase.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"partsbot/internal/models"
	"partsbot/pkg/config"
	"partsbot/pkg/logger"
	"partsbot/pkg/orders"
	"partsbot/pkg/stock"
)

// quantitySettle is the pause after typing a quantity, before the cart is opened.
const quantitySettle = 500 * time.Millisecond

// Recorder persists purchase attempts. *orders.Ledger implements it.
type Recorder interface {
	Record(ctx context.Context, e orders.Entry) (*models.OrderRecord, error)
}

// Notifier receives business events. *notifier.TelegramNotifier implements it.
type Notifier interface {
	SendOrderPlaced(ctx context.Context, supplier, code string, qty int, orderID *string, forced bool) error
	SendStockConfirmed(ctx context.Context, supplier, code string, qty *int, elapsed time.Duration) error
}

// Orchestrator runs the end-to-end portal flows. Every call opens its own
// session and closes it before returning.
type Orchestrator struct {
	sessions SessionFactory
	poller   *stock.Poller
	ledger   Recorder
	notify   Notifier

	coalesce        bool
	inflight        singleflight.Group
	flightsMu       sync.Mutex
	flights         map[string]*flight
	responseTimeout time.Duration
	defaultObs      string
	maxObs          int
}

// New builds an Orchestrator. ledger and notify may be nil.
func New(cfg *config.Config, sessions SessionFactory, poller *stock.Poller, ledger Recorder, notify Notifier) *Orchestrator {
	o := &Orchestrator{
		sessions:   sessions,
		poller:     poller,
		ledger:     ledger,
		notify:     notify,
		flights:    make(map[string]*flight),
		defaultObs: "urg",
		maxObs:     240,
	}
	if cfg.Confirm != nil {
		o.coalesce = cfg.Confirm.Coalesce
	}
	if p := cfg.Purchase; p != nil {
		o.responseTimeout = p.ResponseTimeout()
		if p.DefaultObservations != "" {
			o.defaultObs = p.DefaultObservations
		}
		if p.MaxObservationsLength > 0 {
			o.maxObs = p.MaxObservationsLength
		}
	}
	return o
}

// Supplier returns the name of the supplier being driven.
func (o *Orchestrator) Supplier() string { return o.sessions.Supplier() }

// SearchResult is the BA light of a product row.
type SearchResult struct {
	Code   string       `json:"codigo"`
	Signal stock.Signal `json:"ba"`
}

// Search locates the row for code and reads its stock signal.
func (o *Orchestrator) Search(ctx context.Context, code string) (*SearchResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: product code is required", stock.ErrValidation)
	}
	ctx = o.scope(ctx, code)

	sess, row, err := o.locate(ctx, code)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	sig, err := row.ReadSignal(ctx)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Code: code, Signal: sig}, nil
}

// scope tags ctx with the supplier and product code for logging.
func (o *Orchestrator) scope(ctx context.Context, code string) context.Context {
	ctx = logger.WithSupplier(ctx, o.sessions.Supplier())
	return logger.WithProductCode(ctx, code)
}

// locate opens a session, makes sure it is authenticated and finds the row.
// On success the caller owns the session.
func (o *Orchestrator) locate(ctx context.Context, code string) (Session, Row, error) {
	sess, err := o.sessions.Open(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := sess.EnsureLoggedIn(ctx); err != nil {
		sess.Close()
		return nil, nil, err
	}

	row, err := sess.Search(ctx, code)
	if err != nil {
		sess.Close()
		return nil, nil, err
	}
	return sess, row, nil
}

// observations applies the default text and the length cap.
func (o *Orchestrator) observations(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = o.defaultObs
	}
	if utf8.RuneCountInString(s) > o.maxObs {
		s = string([]rune(s)[:o.maxObs])
	}
	return s
}

// background runs fn detached from the request, for side effects that must
// not delay or be cancelled by the response.
func (o *Orchestrator) background(ctx context.Context, what string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := fn(ctx); err != nil {
			logger.FromContext(ctx).Warn("Background "+what+" failed", zap.Error(err))
		}
	}()
}
