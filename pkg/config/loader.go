package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig 从指定路径加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 如果配置文件不存在，使用默认配置加环境变量
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := getDefaultConfig()
		mergeEnvVars(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	config := &Config{}
	ext := filepath.Ext(configPath)

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	config.fillDefaults()
	mergeEnvVars(config)
	return config, nil
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 确保目录存在
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 优先级：当前目录 > 用户配置目录 > 系统配置目录
	paths := []string{
		"./config.yaml",
		"./config.json",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".partsbot", "config.yaml"),
			filepath.Join(homeDir, ".partsbot", "config.json"),
		)
	}

	paths = append(paths,
		"/etc/partsbot/config.yaml",
		"/etc/partsbot/config.json",
	)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// 默认返回当前目录的 yaml 配置
	return "./config.yaml"
}

// mergeEnvVars 将环境变量合并到配置中，环境变量优先
func mergeEnvVars(config *Config) {
	mergeSupplierEnvVars(config)
	mergeBrowserEnvVars(config)
	mergeConfirmEnvVars(config)
	mergeAuthEnvVars(config)
	mergeOrdersEnvVars(config)
	mergeServerEnvVars(config)
	mergeTelegramEnvVars(config)
	mergeAppEnvVars(config)
}

// mergeStrings 按映射表覆盖字符串字段
func mergeStrings(mappings map[string]*string) {
	for envKey, ptr := range mappings {
		if value := os.Getenv(envKey); value != "" {
			*ptr = value
		}
	}
}

// mergeInts 按映射表覆盖整数字段
func mergeInts(mappings map[string]*int) {
	for envKey, ptr := range mappings {
		if os.Getenv(envKey) != "" {
			*ptr = getEnvInt(envKey, *ptr)
		}
	}
}

// mergeSupplierEnvVars 合并供应商环境变量
func mergeSupplierEnvVars(config *Config) {
	s := config.Supplier
	mergeStrings(map[string]*string{
		"SUPPLIER_NAME":    &s.Name,
		"SUPPLIER_PREFIX":  &s.Prefix,
		"DISTRISUPER_URL":  &s.BaseURL,
		"DISTRISUPER_USER": &s.Username,
		"DISTRISUPER_PASS": &s.Password,
	})
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
}

// mergeBrowserEnvVars 合并浏览器环境变量
func mergeBrowserEnvVars(config *Config) {
	b := config.Browser
	if v := os.Getenv("PW_HEADLESS"); v != "" {
		b.Headless = parseBool(v, b.Headless)
	}
	mergeStrings(map[string]*string{
		"CHROME_PATH":        &b.ChromePath,
		"BROWSER_USER_AGENT": &b.UserAgent,
	})
	mergeInts(map[string]*int{
		"BROWSER_NAV_TIMEOUT_MS":    &b.NavTimeoutMs,
		"BROWSER_ACTION_TIMEOUT_MS": &b.ActionTimeoutMs,
		"BROWSER_SESSION_BURST":     &b.SessionBurst,
	})
	if os.Getenv("BROWSER_SESSIONS_PER_SECOND") != "" {
		b.SessionsPerSecond = getEnvFloat("BROWSER_SESSIONS_PER_SECOND", b.SessionsPerSecond)
	}
}

// mergeConfirmEnvVars 合并库存确认环境变量
func mergeConfirmEnvVars(config *Config) {
	c := config.Confirm
	mergeInts(map[string]*int{
		"CONFIRM_DEFAULT_MAX_WAIT": &c.DefaultMaxWaitSeconds,
		"CONFIRM_POLL_INTERVAL":    &c.PollIntervalSeconds,
		"CONFIRM_CODE_COLUMN":      &c.CodeColumn,
		"CONFIRM_QUANTITY_COLUMN":  &c.QuantityColumn,
		"CONFIRM_BRANCH_COLUMN":    &c.BranchColumn,
	})
	mergeStrings(map[string]*string{
		"CONFIRM_GREEN_COLOR":    &c.GreenColor,
		"CONFIRM_PENDING_COLOR":  &c.PendingColor,
		"CONFIRM_PENDING_MARKER": &c.PendingMarker,
		"CONFIRM_BRANCH_VALUE":   &c.BranchValue,
	})
	if v := os.Getenv("CONFIRM_MATCH_POLICY"); v != "" {
		c.MatchPolicy = splitList(v)
	}
	if v := os.Getenv("CONFIRM_COALESCE"); v != "" {
		c.Coalesce = parseBool(v, c.Coalesce)
	}
}

// mergeAuthEnvVars 合并登录状态环境变量
func mergeAuthEnvVars(config *Config) {
	mergeStrings(map[string]*string{
		"AUTH_STATE_DIR":      &config.Auth.StateDir,
		"AUTH_KEEPALIVE_CRON": &config.Auth.KeepaliveCron,
	})
}

// mergeOrdersEnvVars 合并订单台账环境变量
func mergeOrdersEnvVars(config *Config) {
	if v := os.Getenv("ORDERS_ENABLED"); v != "" {
		config.Orders.Enabled = parseBool(v, config.Orders.Enabled)
	}
	mergeStrings(map[string]*string{"ORDERS_DSN": &config.Orders.DSN})
}

// mergeServerEnvVars 合并Server环境变量
func mergeServerEnvVars(config *Config) {
	if port := getEnvInt("SERVER_PORT", 0); port != 0 {
		config.Server.Port = port
	}
	// PORT 优先于 SERVER_PORT
	if port := getEnvInt("PORT", 0); port != 0 {
		config.Server.Port = port
	}
	if address := os.Getenv("SERVER_ADDRESS"); address != "" {
		config.Server.Address = address
	}
}

// mergeTelegramEnvVars 合并Telegram环境变量
func mergeTelegramEnvVars(config *Config) {
	tc := config.Telegram
	mergeStrings(map[string]*string{
		"TELEGRAM_BOT_TOKEN": &tc.BotToken,
		"TELEGRAM_CHAT_ID":   &tc.ChatID,
	})
	mergeInts(map[string]*int{"TELEGRAM_TIMEOUT": &tc.Timeout})
	if enabled := os.Getenv("TELEGRAM_ENABLED"); enabled != "" {
		tc.Enabled = parseBool(enabled, tc.Enabled)
	}
}

// mergeAppEnvVars 合并App环境变量
func mergeAppEnvVars(config *Config) {
	mergeStrings(map[string]*string{
		"LOG_LEVEL": &config.App.LogLevel,
		"LOG_FILE":  &config.App.LogFile,
		"APP_ENV":   &config.App.Environment,
	})
}
