package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// WaitStrategy builds bounded wait-then-act chromedp actions.
type WaitStrategy struct {
	DefaultTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewWaitStrategy creates a wait strategy; timeout <= 0 means 10s.
func NewWaitStrategy(timeout time.Duration) *WaitStrategy {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WaitStrategy{
		DefaultTimeout: timeout,
		MaxRetries:     3,
		RetryDelay:     500 * time.Millisecond,
	}
}

// Within returns a copy of ws bounded by d instead of DefaultTimeout.
func (ws *WaitStrategy) Within(d time.Duration) *WaitStrategy {
	cp := *ws
	if d > 0 {
		cp.DefaultTimeout = d
	}
	return &cp
}

func queryOpts(opts []chromedp.QueryOption) []chromedp.QueryOption {
	if len(opts) == 0 {
		return []chromedp.QueryOption{chromedp.ByQuery}
	}
	return opts
}

// WaitVisible waits until the first element matching selector is visible.
// Selectors are CSS unless opts say otherwise (e.g. chromedp.BySearch for XPath).
func (ws *WaitStrategy) WaitVisible(selector string, opts ...chromedp.QueryOption) chromedp.Action {
	t := ws.DefaultTimeout
	opts = queryOpts(opts)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, t)
		defer cancel()

		if err := chromedp.WaitVisible(selector, opts...).Do(timeoutCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("%w: %s not visible within %v", ErrWaitTimeout, selector, t)
			}
			return err
		}
		return nil
	})
}

// WaitForAnyElement waits for any of selectors and stores the index of the
// first one found in matched.
func (ws *WaitStrategy) WaitForAnyElement(selectors []string, matched *int) chromedp.Action {
	t := ws.DefaultTimeout
	return chromedp.ActionFunc(func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, t)
		defer cancel()

		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()

		for {
			for i, selector := range selectors {
				var nodes []*cdp.Node
				if err := chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)).Do(timeoutCtx); err == nil && len(nodes) > 0 {
					if matched != nil {
						*matched = i
					}
					return nil
				}
			}

			select {
			case <-timeoutCtx.Done():
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%w: none of %d selectors found within %v", ErrWaitTimeout, len(selectors), t)
			case <-ticker.C:
			}
		}
	})
}

// Exists reports whether selector currently matches anything, without waiting.
func Exists(selector string, found *bool) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(selector)), found)
}

// WaitAndClick waits for selector to be visible and clicks it, retrying and
// scrolling it into view when the click does not land.
func (ws *WaitStrategy) WaitAndClick(selector string, opts ...chromedp.QueryOption) chromedp.Action {
	opts = queryOpts(opts)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := ws.WaitVisible(selector, opts...).Do(ctx); err != nil {
			return err
		}

		var lastErr error
		for i := 0; i < ws.MaxRetries; i++ {
			if lastErr = chromedp.Click(selector, opts...).Do(ctx); lastErr == nil {
				return nil
			}

			_ = chromedp.ScrollIntoView(selector, opts...).Do(ctx)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ws.RetryDelay):
			}
		}

		return fmt.Errorf("failed to click %s after %d retries: %w", selector, ws.MaxRetries, lastErr)
	})
}

// WaitForPageLoad waits for the document to finish loading.
func (ws *WaitStrategy) WaitForPageLoad() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, ws.DefaultTimeout)
		defer cancel()

		if err := chromedp.WaitReady(`body`, chromedp.ByQuery).Do(timeoutCtx); err != nil {
			return err
		}
		return chromedp.Poll(`document.readyState === "complete"`, nil).Do(timeoutCtx)
	})
}

// Pause sleeps for d unless ctx ends first.
func Pause(d time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	})
}
