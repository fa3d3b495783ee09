package config

// TelegramConfig Telegram通知配置
type TelegramConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`     // 是否启用Telegram通知
	BotToken string `json:"bot_token" yaml:"bot_token"` // 机器人Token
	ChatID   string `json:"chat_id" yaml:"chat_id"`     // 接收消息的会话ID
	Timeout  int    `json:"timeout" yaml:"timeout"`     // 请求超时（秒）
}

// NewTelegramConfig 创建Telegram配置，使用环境变量填充默认值
func NewTelegramConfig() *TelegramConfig {
	return &TelegramConfig{
		Enabled:  getEnvBool("TELEGRAM_ENABLED", false),
		BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		Timeout:  getEnvInt("TELEGRAM_TIMEOUT", 30),
	}
}

// Validate 验证Telegram配置
func (tc *TelegramConfig) Validate() error {
	if !tc.Enabled {
		return nil // 如果未启用，跳过验证
	}

	if tc.BotToken == "" || tc.ChatID == "" {
		return ErrMissingRequired
	}

	if tc.Timeout <= 0 {
		tc.Timeout = 30
	}

	return nil
}
