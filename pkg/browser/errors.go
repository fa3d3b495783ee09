package browser

import (
	"errors"
	"fmt"
)

var (
	ErrEngineClosed  = errors.New("browser engine closed")
	ErrSessionClosed = errors.New("browser session closed")
	ErrWaitTimeout   = errors.New("wait timeout")
	ErrNotVisible    = errors.New("element not visible")
)

// StartError wraps a failure to launch Chrome.
type StartError struct {
	ChromePath string
	Err        error
}

func (e *StartError) Error() string {
	path := e.ChromePath
	if path == "" {
		path = "system default"
	}
	return fmt.Sprintf("failed to start browser (%s): %v", path, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
