package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"partsbot/pkg/logger"
)

var orderURLRe = regexp.MustCompile(`(?i)pedido|order|checkout`)

// CheckoutOptions tunes Checkout.
type CheckoutOptions struct {
	Observations string
	// ResponseTimeout bounds the wait for the order submission response.
	ResponseTimeout time.Duration
}

// Checkout submits the cart. The returned order id is best effort: nil means
// the order went through but its submission response was not observed.
func (p *Page) Checkout(ctx context.Context, opts CheckoutOptions) (*string, error) {
	log := logger.FromContext(ctx)

	if err := p.sess.Navigate(ctx, p.url("/cart")); err != nil {
		return nil, wrap("checkout", err)
	}

	err := p.sess.Run(ctx,
		p.nav().WaitForPageLoad(),
		p.nav().WaitAndClick(xpathSendOrder, chromedp.BySearch),
		p.nav().WaitVisible(selObservations),
		fill(selObservations, opts.Observations),
	)
	if err != nil {
		return nil, wrap("checkout", err)
	}

	watcher := newOrderWatcher(p)
	if err := p.sess.RunWithTimeout(ctx, p.sess.ActionTimeout(), network.Enable()); err != nil {
		return nil, wrap("checkout", err)
	}
	p.sess.Listen(watcher.handle)

	if err := p.sess.Run(ctx, p.action().WaitAndClick(xpathConfirm, chromedp.BySearch)); err != nil {
		return nil, wrap("confirm order", err)
	}

	timeout := opts.ResponseTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var orderID *string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case id := <-watcher.result:
		orderID = id
	case <-time.After(timeout):
		log.Warn("Order submission response not observed", zap.Duration("timeout", timeout))
	}

	if err := p.Settle(ctx, 500*time.Millisecond); err != nil {
		return orderID, err
	}
	return orderID, nil
}

// orderWatcher captures the body of the first POST whose URL looks like an
// order submission.
type orderWatcher struct {
	page    *Page
	mu      sync.Mutex
	posts   map[network.RequestID]string
	matched network.RequestID
	once    sync.Once
	result  chan *string
}

func newOrderWatcher(p *Page) *orderWatcher {
	return &orderWatcher{
		page:   p,
		posts:  make(map[network.RequestID]string),
		result: make(chan *string, 1),
	}
}

func (w *orderWatcher) handle(ev interface{}) {
	switch ev := ev.(type) {
	case *network.EventRequestWillBeSent:
		if strings.EqualFold(ev.Request.Method, "POST") && orderURLRe.MatchString(ev.Request.URL) {
			w.mu.Lock()
			w.posts[ev.RequestID] = ev.Request.URL
			w.mu.Unlock()
		}
	case *network.EventResponseReceived:
		w.mu.Lock()
		if _, ok := w.posts[ev.RequestID]; ok && w.matched == "" {
			w.matched = ev.RequestID
		}
		w.mu.Unlock()
	case *network.EventLoadingFinished:
		w.mu.Lock()
		hit := ev.RequestID != "" && ev.RequestID == w.matched
		w.mu.Unlock()
		if hit {
			// Listener callbacks must not block; CDP commands go through the executor.
			go w.fetch(ev.RequestID)
		}
	case *network.EventLoadingFailed:
		w.mu.Lock()
		hit := ev.RequestID == w.matched
		w.mu.Unlock()
		if hit {
			w.deliver(nil)
		}
	}
}

func (w *orderWatcher) fetch(id network.RequestID) {
	body, err := network.GetResponseBody(id).Do(w.page.sess.Executor())
	if err != nil {
		w.deliver(nil)
		return
	}
	w.deliver(parseOrderID(body))
}

func (w *orderWatcher) deliver(id *string) {
	w.once.Do(func() { w.result <- id })
}

// parseOrderID extracts the "id" field of a JSON body, if any.
func parseOrderID(body []byte) *string {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil
	}

	raw, ok := payload["id"]
	if !ok || raw == nil {
		return nil
	}

	var id string
	switch v := raw.(type) {
	case string:
		id = v
	case json.Number:
		id = v.String()
	default:
		id = fmt.Sprint(v)
	}
	if id == "" {
		return nil
	}
	return &id
}
