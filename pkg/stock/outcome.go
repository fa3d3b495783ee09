package stock

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultMaxWait bounds how long a confirmation is awaited when the caller
// does not say otherwise.
const DefaultMaxWait = 3 * time.Hour

// MaxWaitCeiling caps any requested MaxWait.
const MaxWaitCeiling = 24 * time.Hour

// Mode is how a confirmation request resolved.
type Mode string

const (
	ModeImmediateAvailable Mode = "IMMEDIATE_AVAILABLE"
	ModePanelConfirmed     Mode = "PANEL_CONFIRMED"
	ModeUnavailable        Mode = "UNAVAILABLE"
	ModeTimedOut           Mode = "TIMED_OUT"
)

// ConfirmationRequest asks whether ProductCode can be bought, optionally in
// at least MinimumQuantity units.
type ConfirmationRequest struct {
	ProductCode     string
	MinimumQuantity *float64
	MaxWait         time.Duration
}

// Validate normalises the request in place. A non-positive MaxWait falls back
// to def (or DefaultMaxWait when def is zero); anything above MaxWaitCeiling
// is clamped to it.
func (r *ConfirmationRequest) Validate(def time.Duration) error {
	r.ProductCode = strings.TrimSpace(r.ProductCode)
	if r.ProductCode == "" {
		return fmt.Errorf("%w: product code is required", ErrValidation)
	}
	if m := r.MinimumQuantity; m != nil && (math.IsNaN(*m) || math.IsInf(*m, 0) || *m < 0) {
		return fmt.Errorf("%w: minimum quantity must be a non-negative number", ErrValidation)
	}
	if def <= 0 {
		def = DefaultMaxWait
	}
	if r.MaxWait <= 0 {
		r.MaxWait = def
	}
	if r.MaxWait > MaxWaitCeiling {
		r.MaxWait = MaxWaitCeiling
	}
	return nil
}

// ConfirmationOutcome is the result of a confirmation request. TIMED_OUT is
// an outcome, not an error.
type ConfirmationOutcome struct {
	Mode              Mode
	AvailableQuantity *int
	// MeetsMinimum is nil unless the request carried a minimum.
	MeetsMinimum *bool
	Elapsed      time.Duration
	Signal       *Signal
	Record       *ConfirmationRecord
}

// InStock reports a positive known quantity. Unknown quantities count as not in stock.
func (o *ConfirmationOutcome) InStock() bool {
	return o.AvailableQuantity != nil && *o.AvailableQuantity > 0
}

// MeetsMinimum reports whether qty satisfies min; an unknown qty never does.
func MeetsMinimum(qty *int, min float64) bool {
	return qty != nil && float64(*qty) >= min
}

// WithMinimum returns a copy of o with MeetsMinimum evaluated for min.
// Coalesced callers share one outcome but each carry their own minimum.
func (o ConfirmationOutcome) WithMinimum(min *float64) *ConfirmationOutcome {
	o.MeetsMinimum = nil
	if min != nil {
		ok := MeetsMinimum(o.AvailableQuantity, *min)
		o.MeetsMinimum = &ok
	}
	return &o
}
