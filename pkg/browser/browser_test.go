package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"partsbot/pkg/config"
)

func TestAllocatorOptions(t *testing.T) {
	headless := AllocatorOptions(true, "")
	headed := AllocatorOptions(false, "custom-agent")

	if len(headless) == 0 || len(headed) == 0 {
		t.Fatal("expected allocator options")
	}
	if len(headless) <= len(headed) {
		t.Errorf("headless mode should add flags: headless=%d headed=%d", len(headless), len(headed))
	}
}

func TestDetectChromePathPrefersExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if got := DetectChromePath(path); got != path {
		t.Errorf("DetectChromePath = %q, want %q", got, path)
	}
}

func TestNewWaitStrategyDefaults(t *testing.T) {
	ws := NewWaitStrategy(0)
	if ws.DefaultTimeout != 10*time.Second {
		t.Errorf("DefaultTimeout = %v, want 10s", ws.DefaultTimeout)
	}
	if got := ws.Within(time.Second).DefaultTimeout; got != time.Second {
		t.Errorf("Within timeout = %v, want 1s", got)
	}
	if ws.DefaultTimeout != 10*time.Second {
		t.Error("Within must not modify the receiver")
	}
	if got := ws.Within(0).DefaultTimeout; got != 10*time.Second {
		t.Errorf("Within(0) = %v, want unchanged", got)
	}
}

func TestEngineClosedBeforeStart(t *testing.T) {
	cfg := &config.BrowserConfig{Headless: true, NavTimeoutMs: 1000, ActionTimeoutMs: 1000}
	e := NewEngine(cfg)

	if e.Running() {
		t.Fatal("engine must not start eagerly")
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close on idle engine: %v", err)
	}
	if _, err := e.NewSession(context.Background()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("expected ErrEngineClosed, got %v", err)
	}
}

func TestStartErrorUnwraps(t *testing.T) {
	inner := errors.New("exec: not found")
	err := &StartError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("StartError should unwrap")
	}
	if err.Error() == "" {
		t.Error("empty message")
	}
}
