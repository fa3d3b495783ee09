// Package portal drives the supplier web portal through a browser session:
// login, product search, the stock indicator, the confirmation panel and
// checkout.
package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"partsbot/pkg/authstore"
	"partsbot/pkg/browser"
	"partsbot/pkg/config"
	"partsbot/pkg/logger"
	"partsbot/pkg/metrics"
	"partsbot/pkg/stock"
)

// SessionOpener hands out browser sessions. *browser.Engine implements it.
type SessionOpener interface {
	NewSession(ctx context.Context) (*browser.Session, error)
}

// Client holds everything needed to drive one supplier portal.
type Client struct {
	supplier   string
	baseURL    string
	username   string
	password   string
	engine     SessionOpener
	store      *authstore.Store
	classifier *stock.Classifier
	policy     stock.MatchPolicy
}

// NewClient builds a portal client from config.
func NewClient(cfg *config.Config, engine SessionOpener, store *authstore.Store) (*Client, error) {
	modes, err := stock.ParseMatchModes(cfg.Confirm.MatchPolicy)
	if err != nil {
		return nil, err
	}

	return &Client{
		supplier: cfg.Supplier.Name,
		baseURL:  strings.TrimRight(cfg.Supplier.BaseURL, "/"),
		username: cfg.Supplier.Username,
		password: cfg.Supplier.Password,
		engine:   engine,
		store:    store,
		classifier: stock.NewClassifier(stock.Encodings{
			GreenColor:    cfg.Confirm.GreenColor,
			PendingColor:  cfg.Confirm.PendingColor,
			PendingMarker: cfg.Confirm.PendingMarker,
		}),
		policy: stock.MatchPolicy{
			Modes:          modes,
			CodeColumn:     cfg.Confirm.CodeColumn,
			QuantityColumn: cfg.Confirm.QuantityColumn,
			BranchColumn:   cfg.Confirm.BranchColumn,
			BranchValue:    cfg.Confirm.BranchValue,
		},
	}, nil
}

// Supplier returns the configured supplier name.
func (c *Client) Supplier() string { return c.supplier }

// Open starts a fresh session with any saved cookies restored.
func (c *Client) Open(ctx context.Context) (*Page, error) {
	sess, err := c.engine.NewSession(ctx)
	if err != nil {
		return nil, wrap("open session", err)
	}

	p := &Page{client: c, sess: sess}
	if err := p.restoreCookies(ctx); err != nil {
		logger.FromContext(ctx).Warn("Could not restore saved auth state", zap.Error(err))
	}
	return p, nil
}

// KeepAlive opens a session, logs in if needed and closes it again, so the
// saved cookies stay fresh between requests.
func (c *Client) KeepAlive(ctx context.Context) error {
	p, err := c.Open(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	return p.EnsureLoggedIn(ctx)
}

// Page is one request's view of the portal. It is not safe for concurrent use.
type Page struct {
	client *Client
	sess   *browser.Session
}

// Close releases the browser context.
func (p *Page) Close() {
	p.sess.Close()
}

func (p *Page) url(path string) string {
	return p.client.baseURL + path
}

func (p *Page) nav() *browser.WaitStrategy {
	return p.sess.Wait.Within(p.sess.NavTimeout())
}

func (p *Page) action() *browser.WaitStrategy {
	return p.sess.Wait.Within(p.sess.ActionTimeout())
}

// EnsureLoggedIn opens the portal home and logs in when the search box is not shown.
func (p *Page) EnsureLoggedIn(ctx context.Context) error {
	if err := p.sess.Navigate(ctx, p.url("/")); err != nil {
		// A failed home load still falls through to the login page.
		logger.FromContext(ctx).Debug("Home navigation failed", zap.Error(err))
	}

	matched := -1
	err := p.sess.Run(ctx, p.nav().WaitForAnyElement([]string{selSearchBox, selLoginUser}, &matched))
	if err == nil && matched == 0 {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	return p.Login(ctx)
}

// Login submits the credential form and waits for the search box.
func (p *Page) Login(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if p.client.username == "" || p.client.password == "" {
		metrics.LoginsTotal.WithLabelValues("missing_credentials").Inc()
		return wrap("login", fmt.Errorf("%w: portal credentials are not configured", stock.ErrAuthFailure))
	}

	if err := p.sess.Navigate(ctx, p.url("/login")); err != nil {
		return wrap("login", err)
	}

	err := p.sess.Run(ctx,
		p.action().WaitVisible(selLoginUser),
		fill(selLoginUser, p.client.username),
		fill(selLoginPass, p.client.password),
		p.action().WaitAndClick(xpathLoginButton, chromedp.BySearch),
	)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return wrap("login", err)
	}

	if err := p.sess.Run(ctx, p.nav().WaitVisible(selSearchBox)); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, context.Canceled) {
			return err
		}
		if p.client.store != nil {
			if cerr := p.client.store.Clear(p.client.supplier); cerr != nil {
				log.Warn("Could not clear stale auth state", zap.Error(cerr))
			}
		}
		return wrap("login", fmt.Errorf("%w: search box not shown after login: %v", stock.ErrAuthFailure, err))
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	log.Info("Logged in to portal", zap.String("supplier", p.client.supplier))

	if err := p.saveCookies(ctx); err != nil {
		log.Warn("Could not persist auth state", zap.Error(err))
	}
	return nil
}

func (p *Page) restoreCookies(ctx context.Context) error {
	if p.client.store == nil {
		return nil
	}
	st, err := p.client.store.Load(p.client.supplier)
	if errors.Is(err, authstore.ErrNoState) {
		return nil
	}
	if err != nil {
		return err
	}

	params := toCookieParams(st.Live(time.Now()))
	if len(params) == 0 {
		return nil
	}
	return p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), network.SetCookies(params))
}

func (p *Page) saveCookies(ctx context.Context) error {
	if p.client.store == nil {
		return nil
	}

	var cookies []*network.Cookie
	err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return err
	}

	return p.client.store.Save(&authstore.State{
		Supplier: p.client.supplier,
		Cookies:  fromNetworkCookies(cookies),
	})
}

func fromNetworkCookies(cookies []*network.Cookie) []authstore.Cookie {
	out := make([]authstore.Cookie, 0, len(cookies))
	for _, c := range cookies {
		ck := authstore.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		}
		if !c.Session {
			ck.Expires = c.Expires
		}
		out = append(out, ck)
	}
	return out
}

func toCookieParams(cookies []authstore.Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != "" {
			param.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &exp
		}
		params = append(params, param)
	}
	return params
}

// fill replaces an input's value by typing, so framework input listeners fire.
func fill(selector, value string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	}
}
