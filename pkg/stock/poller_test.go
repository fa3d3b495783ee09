package stock

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock advances its own time whenever After is called and fires immediately.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

type fakeIndicator struct {
	signal   Signal
	err      error
	requests int
}

func (f *fakeIndicator) ReadSignal(context.Context) (Signal, error) { return f.signal, f.err }

func (f *fakeIndicator) RequestConfirmation(context.Context) error {
	f.requests++
	return nil
}

type fakePanel struct {
	// matchOnRead is the 1-based ReadOnce call that returns record; 0 never matches.
	matchOnRead int
	record      *ConfirmationRecord
	readErr     error
	tableGone   bool

	reads  int
	opens  int
	checks int
}

func (f *fakePanel) Open(context.Context) (bool, error) {
	f.opens++
	return true, nil
}

func (f *fakePanel) ReadOnce(context.Context, string) (*ConfirmationRecord, error) {
	f.reads++
	if f.readErr != nil && f.reads > 1 {
		return nil, f.readErr
	}
	if f.matchOnRead > 0 && f.reads == f.matchOnRead {
		return f.record, nil
	}
	return nil, nil
}

func (f *fakePanel) TablePresent(context.Context) (bool, error) {
	f.checks++
	return !f.tableGone, nil
}

func newTestPoller() (*Poller, *fakeClock) {
	clk := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	return &Poller{Clock: clk, Interval: 10 * time.Second, DefaultMaxWait: DefaultMaxWait}, clk
}

func pending() Signal { return Classify("rgb(212, 175, 55)", "C", DefaultEncodings()) }

func minimum(v float64) *float64 { return &v }

func TestPollerGreenIsImmediate(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: Classify("rgb(25, 135, 84)", "+12", DefaultEncodings())}
	panel := &fakePanel{}

	out, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC"}, ind, panel)
	if err != nil {
		t.Fatal(err)
	}
	if out.Mode != ModeImmediateAvailable {
		t.Errorf("Mode = %s, want IMMEDIATE_AVAILABLE", out.Mode)
	}
	if out.AvailableQuantity == nil || *out.AvailableQuantity != 12 {
		t.Errorf("AvailableQuantity = %v, want 12", out.AvailableQuantity)
	}
	if out.MeetsMinimum != nil {
		t.Error("MeetsMinimum should be absent without a minimum")
	}
	if panel.opens != 0 || ind.requests != 0 {
		t.Error("green signal must not touch the panel")
	}
}

func TestPollerGreenWithoutDigitsIsUnknown(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: Classify("rgb(25, 135, 84)", "", DefaultEncodings())}

	out, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC", MinimumQuantity: minimum(1)}, ind, &fakePanel{})
	if err != nil {
		t.Fatal(err)
	}
	if out.AvailableQuantity != nil {
		t.Errorf("AvailableQuantity = %d, want nil", *out.AvailableQuantity)
	}
	if out.MeetsMinimum == nil || *out.MeetsMinimum {
		t.Error("unknown quantity must not meet the minimum")
	}
	if out.InStock() {
		t.Error("unknown quantity must not count as in stock")
	}
}

func TestPollerOtherIsUnavailable(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: Classify("rgb(220, 53, 69)", "NO", DefaultEncodings())}

	out, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC", MinimumQuantity: minimum(1)}, ind, &fakePanel{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Mode != ModeUnavailable {
		t.Errorf("Mode = %s, want UNAVAILABLE", out.Mode)
	}
	if out.AvailableQuantity == nil || *out.AvailableQuantity != 0 {
		t.Errorf("AvailableQuantity = %v, want 0", out.AvailableQuantity)
	}
	if out.MeetsMinimum == nil || *out.MeetsMinimum {
		t.Error("expected meetsMinimum=false")
	}
}

func TestPollerPanelOnFirstRead(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: pending()}
	panel := &fakePanel{matchOnRead: 1, record: &ConfirmationRecord{Code: "ABC", Quantity: intPtr(4)}}

	out, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC"}, ind, panel)
	if err != nil {
		t.Fatal(err)
	}
	if out.Mode != ModePanelConfirmed || *out.AvailableQuantity != 4 {
		t.Errorf("got %s/%v, want PANEL_CONFIRMED/4", out.Mode, out.AvailableQuantity)
	}
	if ind.requests != 0 {
		t.Error("confirmation must not be requested when the panel already has the code")
	}
	if out.Elapsed != 0 {
		t.Errorf("Elapsed = %v, want 0", out.Elapsed)
	}
}

func TestPollerMatchesAfterTwoIterations(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: pending()}
	// Read 1 is the AWAIT_PANEL read and read 2 the first polling read, both
	// at t=0. Reads 3 and 4 follow one and two intervals; read 4 matches.
	panel := &fakePanel{matchOnRead: 4, record: &ConfirmationRecord{Code: "ABC", Quantity: intPtr(6)}}

	out, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC", MinimumQuantity: minimum(5)}, ind, panel)
	if err != nil {
		t.Fatal(err)
	}
	if out.Mode != ModePanelConfirmed {
		t.Fatalf("Mode = %s, want PANEL_CONFIRMED", out.Mode)
	}
	if out.Elapsed < 2*p.Interval || out.Elapsed >= 3*p.Interval {
		t.Errorf("Elapsed = %v, want in [20s, 30s)", out.Elapsed)
	}
	if ind.requests != 1 {
		t.Errorf("confirmation requested %d times, want 1", ind.requests)
	}
	if panel.opens != 2 {
		t.Errorf("panel opened %d times, want 2", panel.opens)
	}
	if out.MeetsMinimum == nil || !*out.MeetsMinimum {
		t.Error("6 should meet minimum 5")
	}
}

func TestPollerTimesOut(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: pending()}
	panel := &fakePanel{}

	out, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC", MaxWait: 25 * time.Second}, ind, panel)
	if err != nil {
		t.Fatal(err)
	}
	if out.Mode != ModeTimedOut {
		t.Fatalf("Mode = %s, want TIMED_OUT", out.Mode)
	}
	if out.Elapsed < 25*time.Second {
		t.Errorf("Elapsed = %v, want >= 25s", out.Elapsed)
	}
	if out.AvailableQuantity != nil {
		t.Error("timed out outcome has no quantity")
	}
}

func TestPollerReopensMissingTable(t *testing.T) {
	p, _ := newTestPoller()
	ind := &fakeIndicator{signal: pending()}
	panel := &fakePanel{tableGone: true}

	if _, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC", MaxWait: 25 * time.Second}, ind, panel); err != nil {
		t.Fatal(err)
	}
	// Two opens before polling, then one per iteration (three iterations).
	if panel.opens != 2+panel.checks || panel.checks != 3 {
		t.Errorf("opens = %d, checks = %d", panel.opens, panel.checks)
	}
}

func TestPollerPropagatesDOMErrors(t *testing.T) {
	p, _ := newTestPoller()
	boom := errors.New("selector vanished")

	_, err := p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC"}, &fakeIndicator{signal: pending()}, &fakePanel{readErr: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected read error, got %v", err)
	}

	_, err = p.Confirm(context.Background(), ConfirmationRequest{ProductCode: "ABC"}, &fakeIndicator{err: ErrTimeout}, &fakePanel{})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestPollerHonoursCancellation(t *testing.T) {
	p, _ := newTestPoller()
	p.Clock = blockingClock{fakeClock: &fakeClock{now: time.Now()}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Confirm(ctx, ConfirmationRequest{ProductCode: "ABC"}, &fakeIndicator{signal: pending()}, &fakePanel{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// blockingClock never fires, so only cancellation can end a wait.
type blockingClock struct{ *fakeClock }

func (blockingClock) After(time.Duration) <-chan time.Time { return nil }

func TestConfirmationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ConfirmationRequest
		wantErr bool
		wantMax time.Duration
	}{
		{"defaults max wait", ConfirmationRequest{ProductCode: "A"}, false, DefaultMaxWait},
		{"negative max wait", ConfirmationRequest{ProductCode: "A", MaxWait: -time.Second}, false, DefaultMaxWait},
		{"explicit max wait", ConfirmationRequest{ProductCode: "A", MaxWait: time.Minute}, false, time.Minute},
		{"max wait above ceiling", ConfirmationRequest{ProductCode: "A", MaxWait: 48 * time.Hour}, false, MaxWaitCeiling},
		{"missing code", ConfirmationRequest{ProductCode: " "}, true, 0},
		{"negative minimum", ConfirmationRequest{ProductCode: "A", MinimumQuantity: minimum(-1)}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate(0)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if req.MaxWait != tt.wantMax {
				t.Errorf("MaxWait = %v, want %v", req.MaxWait, tt.wantMax)
			}
		})
	}
}

func TestMeetsMinimum(t *testing.T) {
	if !MeetsMinimum(intPtr(5), 5) {
		t.Error("5 >= 5")
	}
	if MeetsMinimum(intPtr(4), 5) {
		t.Error("4 < 5")
	}
	if MeetsMinimum(nil, 5) {
		t.Error("unknown never meets a minimum")
	}
}

func TestWithMinimumDoesNotShareState(t *testing.T) {
	base := ConfirmationOutcome{Mode: ModePanelConfirmed, AvailableQuantity: intPtr(3)}
	a := base.WithMinimum(minimum(2))
	b := base.WithMinimum(minimum(4))
	c := base.WithMinimum(nil)

	if !*a.MeetsMinimum || *b.MeetsMinimum || c.MeetsMinimum != nil {
		t.Errorf("got %v %v %v", *a.MeetsMinimum, *b.MeetsMinimum, c.MeetsMinimum)
	}
}
