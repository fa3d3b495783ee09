package orchestrator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"partsbot/pkg/logger"
	"partsbot/pkg/metrics"
	"partsbot/pkg/stock"
)

// ConfirmStock resolves whether req.ProductCode is available, waiting for the
// supplier's confirmation panel when the BA light is pending.
//
// With coalescing on, concurrent requests for the same code and the same
// effective MaxWait share one poll. Each caller still gets MeetsMinimum
// evaluated against its own minimum and may leave early by cancelling its
// context; the shared poll is cancelled once its last caller has left.
func (o *Orchestrator) ConfirmStock(ctx context.Context, req stock.ConfirmationRequest) (*stock.ConfirmationOutcome, error) {
	if err := req.Validate(o.poller.DefaultMaxWait); err != nil {
		return nil, err
	}
	ctx = o.scope(ctx, req.ProductCode)

	if !o.coalesce {
		out, err := o.confirm(ctx, req)
		if err != nil {
			return nil, err
		}
		return out.WithMinimum(req.MinimumQuantity), nil
	}

	out, err := o.shared(ctx, req)
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// Joined a poll that was being torn down after its callers left.
		out, err = o.shared(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return out.WithMinimum(req.MinimumQuantity), nil
}

// flight is one shared confirmation poll and the callers waiting on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func flightKey(req stock.ConfirmationRequest) string {
	return req.ProductCode + "|" + req.MaxWait.String()
}

func (o *Orchestrator) shared(ctx context.Context, req stock.ConfirmationRequest) (*stock.ConfirmationOutcome, error) {
	key := flightKey(req)

	o.flightsMu.Lock()
	f := o.flights[key]
	if f == nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		o.flights[key] = f
	}
	f.waiters++
	ch := o.inflight.DoChan(key, func() (interface{}, error) {
		return o.confirm(f.ctx, req)
	})
	o.flightsMu.Unlock()
	defer o.leave(key, f)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.ConfirmationsCoalesced.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*stock.ConfirmationOutcome), nil
	}
}

// leave drops one waiter from f and cancels the poll when none remain.
func (o *Orchestrator) leave(key string, f *flight) {
	o.flightsMu.Lock()
	defer o.flightsMu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if o.flights[key] == f {
		delete(o.flights, key)
	}
}

func (o *Orchestrator) confirm(ctx context.Context, req stock.ConfirmationRequest) (*stock.ConfirmationOutcome, error) {
	log := logger.FromContext(ctx)

	sess, row, err := o.locate(ctx, req.ProductCode)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	out, err := o.poller.Confirm(ctx, req, row, sess.Panel())
	if err != nil {
		log.Warn("Stock confirmation failed", zap.Error(err))
		return nil, err
	}

	metrics.ObserveConfirmation(string(out.Mode), out.Elapsed)
	log.Info("Stock confirmation resolved",
		zap.String("mode", string(out.Mode)),
		zap.Duration("elapsed", out.Elapsed),
	)

	if out.Mode == stock.ModePanelConfirmed && o.notify != nil {
		supplier, qty, elapsed := o.sessions.Supplier(), out.AvailableQuantity, out.Elapsed
		o.background(ctx, "stock notification", func(ctx context.Context) error {
			return o.notify.SendStockConfirmed(ctx, supplier, req.ProductCode, qty, elapsed)
		})
	}
	return out, nil
}
