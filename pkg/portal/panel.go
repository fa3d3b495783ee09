package portal

import (
	"context"
	"errors"

	"github.com/chromedp/chromedp"

	"partsbot/pkg/browser"
	"partsbot/pkg/stock"
)

// Panel is the confirmations table of a Page. It implements stock.Panel.
type Panel struct {
	page *Page
}

// Panel returns the confirmations panel of the page.
func (p *Page) Panel() *Panel {
	return &Panel{page: p}
}

// Open clicks the confirmations banner when present and waits for the table.
// A missing banner or a table that never shows is not an error.
func (pn *Panel) Open(ctx context.Context) (bool, error) {
	p := pn.page

	var clicked bool
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), chromedp.Evaluate(clickBannerScript(), &clicked)); err != nil {
		return false, wrap("open panel", err)
	}
	if !clicked {
		return pn.TablePresent(ctx)
	}

	err := p.sess.Run(ctx, p.nav().WaitVisible(selConfirmTableBody))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, browser.ErrWaitTimeout):
		return false, nil
	default:
		return false, wrap("open panel", err)
	}
}

// ReadOnce parses the current table for code. Nil means no matching row.
func (pn *Panel) ReadOnce(ctx context.Context, code string) (*stock.ConfirmationRecord, error) {
	p := pn.page

	var html string
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), chromedp.Evaluate(outerHTMLScript(selConfirmTable), &html)); err != nil {
		return nil, wrap("read panel", err)
	}
	if html == "" {
		return nil, nil
	}

	return stock.FindConfirmation(html, code, p.client.policy)
}

// TablePresent reports whether the confirmations tbody is in the DOM.
func (pn *Panel) TablePresent(ctx context.Context) (bool, error) {
	p := pn.page

	var present bool
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), browser.Exists(selConfirmTableBody, &present)); err != nil {
		return false, wrap("check panel", err)
	}
	return present, nil
}
