package orchestrator

import (
	"errors"
	"fmt"

	"partsbot/pkg/stock"
)

// ErrStockNotConfirmed is matched by *StockNotConfirmedError.
var ErrStockNotConfirmed = errors.New("stock not confirmed")

// StockNotConfirmedError rejects an unforced purchase whose BA light is not green.
type StockNotConfirmedError struct {
	Code   string
	Signal stock.Signal
}

func (e *StockNotConfirmedError) Error() string {
	return fmt.Sprintf("stock not confirmed for %s: BA is %s (%q); pass force=true to buy anyway",
		e.Code, e.Signal.State, e.Signal.RawText)
}

func (e *StockNotConfirmedError) Is(target error) bool {
	return target == ErrStockNotConfirmed
}
