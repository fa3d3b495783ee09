// Package browser owns the shared Chrome process and hands out isolated
// per-request sessions on top of it.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"partsbot/pkg/config"
	"partsbot/pkg/logger"
	"partsbot/pkg/metrics"
)

// Engine is the process-wide Chrome instance. It is started lazily on the
// first NewSession and stopped by Close.
type Engine struct {
	headless      bool
	chromePath    string
	userAgent     string
	navTimeout    time.Duration
	actionTimeout time.Duration
	limiter       *rate.Limiter

	mu            sync.Mutex
	started       bool
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewEngine builds an engine from config without launching Chrome.
func NewEngine(cfg *config.BrowserConfig) *Engine {
	limit := rate.Inf
	if cfg.SessionsPerSecond > 0 {
		limit = rate.Limit(cfg.SessionsPerSecond)
	}
	burst := cfg.SessionBurst
	if burst <= 0 {
		burst = 1
	}

	return &Engine{
		headless:      cfg.Headless,
		chromePath:    cfg.ChromePath,
		userAgent:     cfg.UserAgent,
		navTimeout:    cfg.NavTimeout(),
		actionTimeout: cfg.ActionTimeout(),
		limiter:       rate.NewLimiter(limit, burst),
	}
}

// start launches Chrome; callers hold e.mu.
func (e *Engine) start() error {
	opts := AllocatorOptions(e.headless, e.userAgent)
	chromePath := DetectChromePath(e.chromePath)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
		logger.Info("Using Chrome", zap.String("path", chromePath), zap.Bool("headless", e.headless))
	} else {
		logger.Warn("Chrome path not detected, using system default")
	}

	// The browser outlives any single request, so it hangs off Background.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.BrowserLogf),
		chromedp.WithErrorf(logger.BrowserErrorf),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return &StartError{ChromePath: chromePath, Err: err}
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	e.started = true
	logger.Info("Browser engine started")
	return nil
}

// NewSession opens a fresh browser context (isolated cookies and storage)
// with one tab. The caller must Close it.
func (e *Engine) NewSession(ctx context.Context) (*Session, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if !e.started {
		if err := e.start(); err != nil {
			e.mu.Unlock()
			return nil, err
		}
	}
	browserCtx := e.browserCtx
	e.mu.Unlock()

	tabCtx, cancel := chromedp.NewContext(browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, err
	}

	metrics.BrowserSessionsTotal.Inc()
	metrics.BrowserSessionsActive.Inc()

	return &Session{
		tabCtx:        tabCtx,
		cancel:        cancel,
		navTimeout:    e.navTimeout,
		actionTimeout: e.actionTimeout,
		Wait:          NewWaitStrategy(e.navTimeout),
	}, nil
}

// Running reports whether Chrome has been launched.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started && !e.closed
}

// Close stops Chrome. Sessions still open fail on their next action.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if !e.started {
		return nil
	}

	err := chromedp.Cancel(e.browserCtx)
	e.browserCancel()
	e.allocCancel()
	logger.Info("Browser engine stopped")
	return err
}
