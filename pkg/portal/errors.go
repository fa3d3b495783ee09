package portal

import (
	"context"
	"errors"
	"fmt"

	"partsbot/pkg/browser"
	"partsbot/pkg/stock"
)

// PortalError names the portal operation that failed.
type PortalError struct {
	Op  string
	Err error
}

func (e *PortalError) Error() string {
	return fmt.Sprintf("portal %s: %v", e.Op, e.Err)
}

func (e *PortalError) Unwrap() error {
	return e.Err
}

// wrap tags err with op and classifies it into the stock error taxonomy.
// Context cancellation passes through untouched.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var pe *PortalError
	if errors.As(err, &pe) || errors.Is(err, context.Canceled) {
		return err
	}

	switch {
	case isDomainError(err):
	case errors.Is(err, browser.ErrWaitTimeout), errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %w", stock.ErrTimeout, err)
	default:
		err = fmt.Errorf("%w: %w", stock.ErrUpstream, err)
	}

	return &PortalError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		stock.ErrValidation, stock.ErrRowNotFound, stock.ErrElementNotFound,
		stock.ErrTimeout, stock.ErrAuthFailure, stock.ErrUpstream,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
