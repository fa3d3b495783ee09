package stock

import "errors"

var (
	// ErrValidation is returned for malformed requests (empty code, negative minimum).
	ErrValidation = errors.New("invalid request")
	// ErrRowNotFound means the search results carry no row for the product code.
	ErrRowNotFound = errors.New("product row not found")
	// ErrElementNotFound means an expected DOM element is missing.
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout means a DOM wait exceeded its deadline.
	ErrTimeout = errors.New("timed out waiting for element")
	// ErrAuthFailure means login did not reach the authenticated landing page.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrUpstream covers unexpected portal behaviour.
	ErrUpstream = errors.New("upstream portal error")
)
