package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

var validMatchModes = []string{"exact", "prefix", "suffix", "contains"}

// reservedPrefixes are top-level routes the product prefix must not shadow
var reservedPrefixes = []string{"health", "metrics", "swagger", "compra", "orders", "system", "scheduler"}

// ValidateConfig 验证完整的配置
func (c *Config) ValidateConfig() error {
	var errs []error

	if err := c.validateSupplierConfig(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrSupplierConfig, err))
	}

	if err := c.validateBrowserConfig(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrBrowserConfig, err))
	}

	if err := c.validateConfirmConfig(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrConfirmConfig, err))
	}

	if err := c.validateServerConfig(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrServerConfig, err))
	}

	if err := c.validateSchedulerConfig(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrSchedulerConfig, err))
	}

	if err := c.GetTelegramConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrTelegramConfig, err))
	}

	return errors.Join(errs...)
}

// validateSupplierConfig 验证供应商配置
func (c *Config) validateSupplierConfig() error {
	s := c.Supplier
	if s == nil {
		return fmt.Errorf("%w: supplier", ErrMissingRequired)
	}

	if s.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequired)
	}

	if s.Prefix == "" || strings.Contains(s.Prefix, "/") {
		return fmt.Errorf("%w: prefix must be a single path segment", ErrInvalidValue)
	}

	if isValidValue(s.Prefix, reservedPrefixes) {
		return fmt.Errorf("%w: prefix %q is a reserved route", ErrInvalidValue, s.Prefix)
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q", ErrInvalidValue, s.BaseURL)
	}

	// 凭据可以为空：已保存的登录状态仍可使用，登录时才会报错
	return nil
}

// validateBrowserConfig 验证浏览器配置
func (c *Config) validateBrowserConfig() error {
	b := c.Browser
	if b == nil {
		return fmt.Errorf("%w: browser", ErrMissingRequired)
	}

	if b.NavTimeoutMs <= 0 || b.ActionTimeoutMs <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidValue)
	}

	if b.SessionsPerSecond < 0 {
		return fmt.Errorf("%w: sessions_per_second must not be negative", ErrInvalidValue)
	}

	return nil
}

// validateConfirmConfig 验证库存确认配置
func (c *Config) validateConfirmConfig() error {
	cc := c.Confirm
	if cc == nil {
		return fmt.Errorf("%w: confirm", ErrMissingRequired)
	}

	if cc.PollIntervalSeconds <= 0 {
		return fmt.Errorf("%w: poll_interval_seconds must be positive", ErrInvalidValue)
	}

	if cc.DefaultMaxWaitSeconds <= 0 {
		return fmt.Errorf("%w: default_max_wait_seconds must be positive", ErrInvalidValue)
	}

	if cc.GreenColor == "" || cc.PendingColor == "" {
		return fmt.Errorf("%w: green_color/pending_color", ErrMissingRequired)
	}

	if len(cc.MatchPolicy) == 0 {
		return fmt.Errorf("%w: match_policy", ErrMissingRequired)
	}

	for _, mode := range cc.MatchPolicy {
		if !isValidValue(mode, validMatchModes) {
			return fmt.Errorf("%w: match_policy entry %q", ErrInvalidValue, mode)
		}
	}

	if cc.CodeColumn < 0 || cc.QuantityColumn < 0 {
		return fmt.Errorf("%w: column indexes must not be negative", ErrInvalidValue)
	}

	if cc.BranchColumn >= 0 && cc.BranchValue == "" {
		return fmt.Errorf("%w: branch_value is required when branch_column is set", ErrMissingRequired)
	}

	return nil
}

// validateServerConfig 验证服务配置
func (c *Config) validateServerConfig() error {
	if c.Server == nil {
		return fmt.Errorf("%w: server", ErrMissingRequired)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port必须在1-65535范围内", ErrInvalidValue)
	}

	return nil
}

// validateSchedulerConfig 验证调度配置
func (c *Config) validateSchedulerConfig() error {
	if c.Auth == nil || c.Auth.KeepaliveCron == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Auth.KeepaliveCron); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCron, c.Auth.KeepaliveCron, err)
	}

	return nil
}

// isValidValue 检查值是否在允许列表中
func isValidValue(value string, valid []string) bool {
	for _, v := range valid {
		if strings.EqualFold(value, v) {
			return true
		}
	}
	return false
}
