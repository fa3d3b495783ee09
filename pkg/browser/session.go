package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"partsbot/pkg/metrics"
)

// Session is one tab inside its own browser context. It belongs to a single
// request and is not safe for concurrent use.
type Session struct {
	tabCtx        context.Context
	cancel        context.CancelFunc
	navTimeout    time.Duration
	actionTimeout time.Duration
	closeOnce     sync.Once

	Wait *WaitStrategy
}

// NavTimeout bounds navigations and visibility waits.
func (s *Session) NavTimeout() time.Duration { return s.navTimeout }

// ActionTimeout bounds clicks and typing.
func (s *Session) ActionTimeout() time.Duration { return s.actionTimeout }

// Run executes actions on the tab. ctx cancels the actions without closing the tab.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	return s.RunWithTimeout(ctx, 0, actions...)
}

// RunWithTimeout is Run bounded by timeout (0 = unbounded).
func (s *Session) RunWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.tabCtx.Err() != nil {
		return ErrSessionClosed
	}

	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if timeout > 0 {
		var tcancel context.CancelFunc
		runCtx, tcancel = context.WithTimeout(runCtx, timeout)
		defer tcancel()
	}

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads url within the navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.RunWithTimeout(ctx, s.navTimeout, chromedp.Navigate(url))
}

// Listen registers fn for CDP events of this tab until the session closes.
func (s *Session) Listen(fn func(ev interface{})) {
	chromedp.ListenTarget(s.tabCtx, fn)
}

// Executor returns a context that lets raw cdproto commands run against the
// tab from outside a chromedp action (e.g. from an event listener goroutine).
func (s *Session) Executor() context.Context {
	c := chromedp.FromContext(s.tabCtx)
	if c == nil || c.Target == nil {
		return s.tabCtx
	}
	return cdp.WithExecutor(s.tabCtx, c.Target)
}

// Close closes the tab and disposes its browser context. Safe to call twice.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		metrics.BrowserSessionsActive.Dec()
	})
}
