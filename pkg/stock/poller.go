package stock

import (
	"context"
	"time"

	"go.uber.org/zap"

	"partsbot/pkg/logger"
)

// DefaultPollInterval is the pause between panel reads while polling.
const DefaultPollInterval = 10 * time.Second

// Clock abstracts time so the poller can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// Indicator is the product row's stock cell.
type Indicator interface {
	ReadSignal(ctx context.Context) (Signal, error)
	// RequestConfirmation clicks the pending cell to ask the supplier to confirm stock.
	RequestConfirmation(ctx context.Context) error
}

// Panel is the "stock confirmations" table of the portal.
type Panel interface {
	// Open reveals the panel if its banner is present and reports whether the table is showing.
	Open(ctx context.Context) (bool, error)
	ReadOnce(ctx context.Context, code string) (*ConfirmationRecord, error)
	TablePresent(ctx context.Context) (bool, error)
}

// Phase names a step of the confirmation state machine, used for logging.
type Phase string

const (
	PhaseInitial             Phase = "INITIAL"
	PhaseCheckSignal         Phase = "CHECK_SIGNAL"
	PhaseAwaitPanel          Phase = "AWAIT_PANEL"
	PhasePolling             Phase = "POLLING"
	PhaseResolvedGreen       Phase = "RESOLVED_GREEN"
	PhaseResolvedPanel       Phase = "RESOLVED_PANEL"
	PhaseResolvedUnavailable Phase = "RESOLVED_UNAVAILABLE"
	PhaseTimedOut            Phase = "TIMED_OUT"
)

// Poller resolves ConfirmationRequests against an Indicator and a Panel.
type Poller struct {
	Clock          Clock
	Interval       time.Duration
	DefaultMaxWait time.Duration
}

// NewPoller returns a Poller on the wall clock. Zero durations take the package defaults.
func NewPoller(interval, defaultMaxWait time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if defaultMaxWait <= 0 {
		defaultMaxWait = DefaultMaxWait
	}
	return &Poller{Clock: RealClock(), Interval: interval, DefaultMaxWait: defaultMaxWait}
}

func (p *Poller) clock() Clock {
	if p.Clock == nil {
		return RealClock()
	}
	return p.Clock
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultPollInterval
	}
	return p.Interval
}

// Confirm runs the confirmation state machine. A DOM failure aborts with that
// error; context cancellation aborts a wait with ctx.Err(). Running out of
// MaxWait yields a TIMED_OUT outcome and a nil error.
func (p *Poller) Confirm(ctx context.Context, req ConfirmationRequest, ind Indicator, panel Panel) (*ConfirmationOutcome, error) {
	if err := req.Validate(p.DefaultMaxWait); err != nil {
		return nil, err
	}

	clk := p.clock()
	start := clk.Now()
	log := logger.FromContext(ctx).With(zap.String("product_code", req.ProductCode))
	enter := func(phase Phase) {
		log.Debug("confirmation phase", zap.String("phase", string(phase)))
	}
	finish := func(out *ConfirmationOutcome) *ConfirmationOutcome {
		out.Elapsed = clk.Now().Sub(start)
		return out.WithMinimum(req.MinimumQuantity)
	}

	enter(PhaseInitial)
	enter(PhaseCheckSignal)
	sig, err := ind.ReadSignal(ctx)
	if err != nil {
		return nil, err
	}

	switch sig.State {
	case StateGreen:
		enter(PhaseResolvedGreen)
		return finish(&ConfirmationOutcome{
			Mode:              ModeImmediateAvailable,
			AvailableQuantity: sig.NumericHint,
			Signal:            &sig,
		}), nil
	case StatePending:
	default:
		enter(PhaseResolvedUnavailable)
		zero := 0
		return finish(&ConfirmationOutcome{
			Mode:              ModeUnavailable,
			AvailableQuantity: &zero,
			Signal:            &sig,
		}), nil
	}

	enter(PhaseAwaitPanel)
	deadline := clk.Now().Add(req.MaxWait)

	if _, err := panel.Open(ctx); err != nil {
		return nil, err
	}
	rec, err := panel.ReadOnce(ctx, req.ProductCode)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		enter(PhaseResolvedPanel)
		return finish(panelOutcome(rec, &sig)), nil
	}

	if err := ind.RequestConfirmation(ctx); err != nil {
		return nil, err
	}
	if _, err := panel.Open(ctx); err != nil {
		return nil, err
	}

	// The first polling read follows the click and reopen with no wait, so
	// it lands at the same instant as the AWAIT_PANEL read above.
	enter(PhasePolling)
	for clk.Now().Before(deadline) {
		rec, err := panel.ReadOnce(ctx, req.ProductCode)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			enter(PhaseResolvedPanel)
			return finish(panelOutcome(rec, &sig)), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-clk.After(p.interval()):
		}

		present, err := panel.TablePresent(ctx)
		if err != nil {
			return nil, err
		}
		if !present {
			log.Debug("confirmation table gone, reopening")
			if _, err := panel.Open(ctx); err != nil {
				return nil, err
			}
		}
	}

	enter(PhaseTimedOut)
	return finish(&ConfirmationOutcome{Mode: ModeTimedOut, Signal: &sig}), nil
}

func panelOutcome(rec *ConfirmationRecord, sig *Signal) *ConfirmationOutcome {
	return &ConfirmationOutcome{
		Mode:              ModePanelConfirmed,
		AvailableQuantity: rec.Quantity,
		Signal:            sig,
		Record:            rec,
	}
}
