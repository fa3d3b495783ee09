package orchestrator

import (
	"context"
	"time"

	"partsbot/pkg/portal"
	"partsbot/pkg/stock"
)

// Row is a located product row.
type Row interface {
	stock.Indicator
	Code() string
	SetQuantity(ctx context.Context, qty int) error
}

// Session is one isolated browser context on the portal.
type Session interface {
	EnsureLoggedIn(ctx context.Context) error
	Search(ctx context.Context, code string) (Row, error)
	Panel() stock.Panel
	Settle(ctx context.Context, d time.Duration) error
	Checkout(ctx context.Context, opts portal.CheckoutOptions) (*string, error)
	Close()
}

// SessionFactory opens sessions against one supplier.
type SessionFactory interface {
	Open(ctx context.Context) (Session, error)
	Supplier() string
}

// PortalSessions adapts a *portal.Client to SessionFactory.
func PortalSessions(c *portal.Client) SessionFactory {
	return portalSessions{client: c}
}

type portalSessions struct {
	client *portal.Client
}

func (s portalSessions) Supplier() string { return s.client.Supplier() }

func (s portalSessions) Open(ctx context.Context) (Session, error) {
	p, err := s.client.Open(ctx)
	if err != nil {
		return nil, err
	}
	return pageSession{Page: p}, nil
}

type pageSession struct {
	*portal.Page
}

func (p pageSession) Search(ctx context.Context, code string) (Row, error) {
	row, err := p.Page.Search(ctx, code)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (p pageSession) Panel() stock.Panel {
	return p.Page.Panel()
}
