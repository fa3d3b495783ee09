package config

import "time"

// Config 主配置结构体
type Config struct {
	Supplier  *SupplierConfig  `json:"supplier" yaml:"supplier"`
	Browser   *BrowserConfig   `json:"browser" yaml:"browser"`
	Confirm   *ConfirmConfig   `json:"confirm" yaml:"confirm"`
	Purchase  *PurchaseConfig  `json:"purchase" yaml:"purchase"`
	Auth      *AuthConfig      `json:"auth" yaml:"auth"`
	Orders    *OrdersConfig    `json:"orders" yaml:"orders"`
	Server    *ServerConfig    `json:"server" yaml:"server"`
	Scheduler *SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Runtime   *RuntimeConfig   `json:"runtime" yaml:"runtime"`
	Telegram  *TelegramConfig  `json:"telegram" yaml:"telegram"`
	App       *AppConfig       `json:"app" yaml:"app"`
}

// getDefaultConfig 获取默认配置，所有配置项都使用各自的默认值
func getDefaultConfig() *Config {
	return &Config{
		Supplier:  NewSupplierConfig(),
		Browser:   NewBrowserConfig(),
		Confirm:   NewConfirmConfig(),
		Purchase:  NewPurchaseConfig(),
		Auth:      NewAuthConfig(),
		Orders:    NewOrdersConfig(),
		Server:    NewServerConfig(),
		Scheduler: NewSchedulerConfig(),
		Runtime:   NewRuntimeConfig(),
		Telegram:  NewTelegramConfig(),
		App:       NewAppConfig(),
	}
}

// fillDefaults 为文件中缺失的配置段补充默认值
func (c *Config) fillDefaults() {
	if c.Supplier == nil {
		c.Supplier = NewSupplierConfig()
	}
	if c.Browser == nil {
		c.Browser = NewBrowserConfig()
	}
	if c.Confirm == nil {
		c.Confirm = NewConfirmConfig()
	}
	if c.Purchase == nil {
		c.Purchase = NewPurchaseConfig()
	}
	if c.Auth == nil {
		c.Auth = NewAuthConfig()
	}
	if c.Orders == nil {
		c.Orders = NewOrdersConfig()
	}
	if c.Server == nil {
		c.Server = NewServerConfig()
	}
	if c.Scheduler == nil {
		c.Scheduler = NewSchedulerConfig()
	}
	if c.Runtime == nil {
		c.Runtime = NewRuntimeConfig()
	}
	if c.Telegram == nil {
		c.Telegram = NewTelegramConfig()
	}
	if c.App == nil {
		c.App = NewAppConfig()
	}
}

// GetTelegramConfig 获取Telegram配置
func (c *Config) GetTelegramConfig() *TelegramConfig {
	if c.Telegram != nil {
		return c.Telegram
	}
	return NewTelegramConfig()
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Runtime == nil || c.Runtime.GracefulShutdownTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Runtime.GracefulShutdownTimeout) * time.Second
}
