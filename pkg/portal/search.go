package portal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"partsbot/pkg/browser"
	"partsbot/pkg/logger"
	"partsbot/pkg/stock"
)

// Search loads the results page for code and returns its product row. When
// the portal bounces to the login form the session logs in and retries once.
func (p *Page) Search(ctx context.Context, code string) (*Row, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: product code is required", stock.ErrValidation)
	}

	target := p.url("/?searchText=" + url.QueryEscape(code))
	loggedIn := false

	for {
		if err := p.sess.Navigate(ctx, target); err != nil {
			return nil, wrap("search", err)
		}

		matched := -1
		err := p.sess.Run(ctx, p.nav().WaitForAnyElement([]string{selStockBar, selLoginUser}, &matched))
		if err != nil {
			return nil, wrap("search", err)
		}
		if matched == 0 {
			break
		}
		if loggedIn {
			return nil, wrap("search", fmt.Errorf("%w: redirected to login after a fresh login", stock.ErrAuthFailure))
		}

		logger.FromContext(ctx).Info("Search redirected to login, logging in", zap.String("product_code", code))
		if err := p.Login(ctx); err != nil {
			return nil, err
		}
		loggedIn = true
	}

	token := uuid.NewString()
	var found bool
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), chromedp.Evaluate(tagRowScript(code, token), &found)); err != nil {
		return nil, wrap("locate row", err)
	}
	if !found {
		return nil, &PortalError{Op: "locate row", Err: fmt.Errorf("%w: %s", stock.ErrRowNotFound, code)}
	}

	return &Row{
		page:     p,
		code:     code,
		selector: fmt.Sprintf(`div[%s=%q]`, rowAttr, token),
	}, nil
}

// Row is the product card found by Search. It implements stock.Indicator.
type Row struct {
	page     *Page
	code     string
	selector string
}

// Code returns the searched product code.
func (r *Row) Code() string { return r.code }

func (r *Row) bar() string { return r.selector + " " + selStockBar }

// ReadSignal reads and classifies the BA light of the row.
func (r *Row) ReadSignal(ctx context.Context) (stock.Signal, error) {
	p := r.page
	if err := p.sess.Run(ctx, p.nav().WaitVisible(r.bar())); err != nil {
		return stock.Signal{}, wrap("read signal", err)
	}

	var read indicatorRead
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), chromedp.Evaluate(readIndicatorScript(r.bar()), &read)); err != nil {
		return stock.Signal{}, wrap("read signal", err)
	}
	if !read.Found || read.Children < 3 {
		return stock.Signal{}, &PortalError{
			Op:  "read signal",
			Err: fmt.Errorf("%w: BA light missing (bar has %d lights)", stock.ErrElementNotFound, read.Children),
		}
	}

	sig := p.client.classifier.Classify(read.Color, read.Text)
	logger.FromContext(ctx).Debug("Stock signal read",
		zap.String("product_code", r.code),
		zap.String("state", string(sig.State)),
		zap.String("text", sig.RawText),
		zap.String("color", sig.RawColor),
	)
	return sig, nil
}

// RequestConfirmation clicks the BA light, which asks the supplier to confirm stock.
func (r *Row) RequestConfirmation(ctx context.Context) error {
	p := r.page
	light := r.bar() + " > div:nth-of-type(3)"
	if err := p.sess.Run(ctx, p.action().WaitAndClick(light)); err != nil {
		return wrap("request confirmation", err)
	}
	logger.FromContext(ctx).Info("Stock confirmation requested", zap.String("product_code", r.code))
	return nil
}

// SetQuantity types qty into the row's quantity input and presses Enter,
// which adds the item to the cart.
func (r *Row) SetQuantity(ctx context.Context, qty int) error {
	p := r.page
	input := r.selector + " " + selQtyInput

	err := p.sess.Run(ctx,
		p.action().WaitVisible(input),
		fill(input, strconv.Itoa(qty)),
	)
	if err != nil {
		return wrap("set quantity", err)
	}

	// Some cards commit on blur instead of Enter.
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), chromedp.SendKeys(input, kb.Enter, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.FromContext(ctx).Debug("Enter on quantity input failed", zap.Error(err))
	}

	return nil
}

// Settle gives the page a moment to process a UI write.
func (p *Page) Settle(ctx context.Context, d time.Duration) error {
	return p.sess.Run(ctx, browser.Pause(d))
}
