package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"partsbot/pkg/config"
	"partsbot/pkg/logger"
)

const defaultAPIBase = "https://api.telegram.org"

// TelegramNotifier handles Telegram notifications
type TelegramNotifier struct {
	config     *config.TelegramConfig
	apiBase    string
	httpClient *http.Client
}

// TelegramMessage represents a message to be sent via Telegram
type TelegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// TelegramResponse represents Telegram API response
type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}
	return &TelegramNotifier{
		config:  cfg,
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// WithAPIBase points the notifier at another Bot API host (tests, proxies).
func (t *TelegramNotifier) WithAPIBase(base string) *TelegramNotifier {
	t.apiBase = strings.TrimRight(base, "/")
	return t
}

// Enabled reports whether messages will actually be sent.
func (t *TelegramNotifier) Enabled() bool {
	return t != nil && t.config != nil && t.config.Enabled
}

// SendMessage sends a message via Telegram
func (t *TelegramNotifier) SendMessage(ctx context.Context, message string) error {
	if !t.Enabled() {
		logger.Debug("Telegram notifications disabled")
		return nil
	}

	if t.config.BotToken == "" || t.config.ChatID == "" {
		logger.Warn("Telegram bot token or chat ID not configured")
		return fmt.Errorf("telegram bot token or chat ID not configured")
	}

	return t.sendTelegramMessage(ctx, &TelegramMessage{
		ChatID:    t.config.ChatID,
		Text:      message,
		ParseMode: "Markdown",
	})
}

// SendOrderPlaced announces a submitted order
func (t *TelegramNotifier) SendOrderPlaced(ctx context.Context, supplier, code string, qty int, orderID *string, forced bool) error {
	id := "sin número"
	if orderID != nil {
		id = *orderID
	}
	message := fmt.Sprintf("🛒 *Pedido enviado*\n\n🏢 *Proveedor:* %s\n🔩 *Código:* %s\n📦 *Cantidad:* %d\n🧾 *Pedido:* %s",
		escapeMarkdown(supplier), escapeMarkdown(code), qty, escapeMarkdown(id))
	if forced {
		message += "\n⚠️ Compra forzada sin stock confirmado"
	}
	return t.SendMessage(ctx, message)
}

// SendStockConfirmed announces a confirmation that arrived through the panel
func (t *TelegramNotifier) SendStockConfirmed(ctx context.Context, supplier, code string, qty *int, elapsed time.Duration) error {
	available := "desconocida"
	if qty != nil {
		available = fmt.Sprintf("%d", *qty)
	}
	message := fmt.Sprintf("✅ *Stock confirmado*\n\n🏢 *Proveedor:* %s\n🔩 *Código:* %s\n📦 *Disponible:* %s\n⏱ *Espera:* %s",
		escapeMarkdown(supplier), escapeMarkdown(code), available, elapsed.Round(time.Second))
	return t.SendMessage(ctx, message)
}

// SendAuthFailure reports that the portal rejected the configured credentials
func (t *TelegramNotifier) SendAuthFailure(ctx context.Context, supplier string, cause error) error {
	message := fmt.Sprintf("🔐 *Fallo de login*\n\n🏢 *Proveedor:* %s\n❌ %s",
		escapeMarkdown(supplier), escapeMarkdown(cause.Error()))
	return t.SendMessage(ctx, message)
}

// sendTelegramMessage sends message to Telegram API
func (t *TelegramNotifier) sendTelegramMessage(ctx context.Context, message *TelegramMessage) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.config.BotToken)

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Sending Telegram message",
		zap.String("chat_id", message.ChatID),
		zap.String("text", message.Text[:min(100, len(message.Text))]))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var telegramResp TelegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&telegramResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !telegramResp.OK {
		return fmt.Errorf("telegram API error: %s (code: %d)", telegramResp.Description, telegramResp.ErrorCode)
	}

	logger.Info("Telegram message sent successfully")
	return nil
}

// TestConnection tests Telegram bot connection
func (t *TelegramNotifier) TestConnection(ctx context.Context) error {
	if !t.Enabled() {
		return fmt.Errorf("telegram notifications are disabled")
	}
	return t.SendMessage(ctx, "🔧 *partsbot*\n\nNotificaciones de Telegram funcionando.")
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown escapes Telegram legacy Markdown control characters
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
