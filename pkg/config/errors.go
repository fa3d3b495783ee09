package config

import "errors"

// Configuration-related error definitions using sentinel errors pattern
var (
	// Generic errors
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidFormat  = errors.New("invalid configuration file format")

	// Configuration validation errors
	ErrMissingRequired = errors.New("missing required configuration item")
	ErrInvalidValue    = errors.New("invalid configuration value")

	// Section errors
	ErrSupplierConfig = errors.New("supplier configuration error")
	ErrBrowserConfig  = errors.New("browser configuration error")
	ErrConfirmConfig  = errors.New("stock confirmation configuration error")
	ErrServerConfig   = errors.New("server configuration error")

	// Notification configuration errors
	ErrTelegramConfig = errors.New("telegram notification configuration error")

	// Scheduler configuration errors
	ErrSchedulerConfig = errors.New("scheduler configuration error")
	ErrInvalidCron     = errors.New("invalid Cron expression")
)
