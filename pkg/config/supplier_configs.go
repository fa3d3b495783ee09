package config

import (
	"strings"
	"time"
)

// SupplierConfig identifies the supplier portal and the account used to drive it
type SupplierConfig struct {
	Name     string `json:"name" yaml:"name"`         // key for the persisted auth state
	Prefix   string `json:"prefix" yaml:"prefix"`     // HTTP route prefix, e.g. "consulta"
	BaseURL  string `json:"base_url" yaml:"base_url"` // portal root, no trailing slash
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// BrowserConfig controls the shared Chrome process
type BrowserConfig struct {
	Headless          bool    `json:"headless" yaml:"headless"`
	ChromePath        string  `json:"chrome_path" yaml:"chrome_path"`
	UserAgent         string  `json:"user_agent" yaml:"user_agent"`
	NavTimeoutMs      int     `json:"nav_timeout_ms" yaml:"nav_timeout_ms"`
	ActionTimeoutMs   int     `json:"action_timeout_ms" yaml:"action_timeout_ms"`
	SessionsPerSecond float64 `json:"sessions_per_second" yaml:"sessions_per_second"`
	SessionBurst      int     `json:"session_burst" yaml:"session_burst"`
}

// ConfirmConfig tunes the stock confirmation protocol
type ConfirmConfig struct {
	DefaultMaxWaitSeconds int      `json:"default_max_wait_seconds" yaml:"default_max_wait_seconds"`
	PollIntervalSeconds   int      `json:"poll_interval_seconds" yaml:"poll_interval_seconds"`
	GreenColor            string   `json:"green_color" yaml:"green_color"`
	PendingColor          string   `json:"pending_color" yaml:"pending_color"`
	PendingMarker         string   `json:"pending_marker" yaml:"pending_marker"`
	MatchPolicy           []string `json:"match_policy" yaml:"match_policy"` // exact, prefix, suffix, contains
	CodeColumn            int      `json:"code_column" yaml:"code_column"`
	QuantityColumn        int      `json:"quantity_column" yaml:"quantity_column"`
	BranchColumn          int      `json:"branch_column" yaml:"branch_column"` // -1 disables the branch filter
	BranchValue           string   `json:"branch_value" yaml:"branch_value"`
	Coalesce              bool     `json:"coalesce" yaml:"coalesce"`
}

// PurchaseConfig controls cart submission
type PurchaseConfig struct {
	DefaultObservations    string `json:"default_observations" yaml:"default_observations"`
	MaxObservationsLength  int    `json:"max_observations_length" yaml:"max_observations_length"`
	ResponseTimeoutSeconds int    `json:"response_timeout_seconds" yaml:"response_timeout_seconds"`
}

// AuthConfig controls persisted login state
type AuthConfig struct {
	StateDir      string `json:"state_dir" yaml:"state_dir"`
	KeepaliveCron string `json:"keepalive_cron" yaml:"keepalive_cron"` // empty disables the keep-alive job
}

// OrdersConfig configures the local order ledger
type OrdersConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DSN     string `json:"dsn" yaml:"dsn"` // sqlite file path
}

// NewSupplierConfig creates a supplier configuration with defaults populated from environment variables
func NewSupplierConfig() *SupplierConfig {
	return &SupplierConfig{
		Name:     getEnv("SUPPLIER_NAME", "distrisuper"),
		Prefix:   getEnv("SUPPLIER_PREFIX", "consulta"),
		BaseURL:  strings.TrimRight(getEnv("DISTRISUPER_URL", "https://lupa.distrisuper.com"), "/"),
		Username: getEnv("DISTRISUPER_USER", ""),
		Password: getEnv("DISTRISUPER_PASS", ""),
	}
}

// NewBrowserConfig creates a browser configuration with defaults populated from environment variables
func NewBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:          getEnvBool("PW_HEADLESS", true),
		ChromePath:        getEnv("CHROME_PATH", ""),
		UserAgent:         getEnv("BROWSER_USER_AGENT", ""),
		NavTimeoutMs:      getEnvInt("BROWSER_NAV_TIMEOUT_MS", 35000),
		ActionTimeoutMs:   getEnvInt("BROWSER_ACTION_TIMEOUT_MS", 30000),
		SessionsPerSecond: getEnvFloat("BROWSER_SESSIONS_PER_SECOND", 2),
		SessionBurst:      getEnvInt("BROWSER_SESSION_BURST", 4),
	}
}

// NewConfirmConfig creates a confirmation configuration with defaults populated from environment variables
func NewConfirmConfig() *ConfirmConfig {
	policy := []string{"exact"}
	if v := getEnv("CONFIRM_MATCH_POLICY", ""); v != "" {
		policy = splitList(v)
	}
	return &ConfirmConfig{
		DefaultMaxWaitSeconds: getEnvInt("CONFIRM_DEFAULT_MAX_WAIT", 3*60*60),
		PollIntervalSeconds:   getEnvInt("CONFIRM_POLL_INTERVAL", 10),
		GreenColor:            getEnv("CONFIRM_GREEN_COLOR", "rgb(25, 135, 84)"),
		PendingColor:          getEnv("CONFIRM_PENDING_COLOR", "rgb(212, 175, 55)"),
		PendingMarker:         getEnv("CONFIRM_PENDING_MARKER", "C"),
		MatchPolicy:           policy,
		CodeColumn:            getEnvInt("CONFIRM_CODE_COLUMN", 0),
		QuantityColumn:        getEnvInt("CONFIRM_QUANTITY_COLUMN", 1),
		BranchColumn:          getEnvInt("CONFIRM_BRANCH_COLUMN", -1),
		BranchValue:           getEnv("CONFIRM_BRANCH_VALUE", ""),
		Coalesce:              getEnvBool("CONFIRM_COALESCE", true),
	}
}

// NewPurchaseConfig creates a purchase configuration with defaults populated from environment variables
func NewPurchaseConfig() *PurchaseConfig {
	return &PurchaseConfig{
		DefaultObservations:    getEnv("PURCHASE_DEFAULT_OBSERVATIONS", "urg"),
		MaxObservationsLength:  getEnvInt("PURCHASE_MAX_OBSERVATIONS_LENGTH", 240),
		ResponseTimeoutSeconds: getEnvInt("PURCHASE_RESPONSE_TIMEOUT", 15),
	}
}

// NewAuthConfig creates an auth state configuration with defaults populated from environment variables
func NewAuthConfig() *AuthConfig {
	return &AuthConfig{
		StateDir:      getEnv("AUTH_STATE_DIR", "./state/auth"),
		KeepaliveCron: getEnv("AUTH_KEEPALIVE_CRON", ""),
	}
}

// NewOrdersConfig creates an order ledger configuration with defaults populated from environment variables
func NewOrdersConfig() *OrdersConfig {
	return &OrdersConfig{
		Enabled: getEnvBool("ORDERS_ENABLED", true),
		DSN:     getEnv("ORDERS_DSN", "./state/orders.db"),
	}
}

// NavTimeout returns the navigation/visibility budget.
func (b *BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(b.NavTimeoutMs) * time.Millisecond
}

// ActionTimeout returns the budget for a single click or fill.
func (b *BrowserConfig) ActionTimeout() time.Duration {
	return time.Duration(b.ActionTimeoutMs) * time.Millisecond
}

// DefaultMaxWait returns the confirmation wait used when the caller gives none.
func (c *ConfirmConfig) DefaultMaxWait() time.Duration {
	return time.Duration(c.DefaultMaxWaitSeconds) * time.Second
}

// PollInterval returns the delay between two panel reads.
func (c *ConfirmConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// ResponseTimeout returns how long checkout waits for the order POST response.
func (p *PurchaseConfig) ResponseTimeout() time.Duration {
	return time.Duration(p.ResponseTimeoutSeconds) * time.Second
}
