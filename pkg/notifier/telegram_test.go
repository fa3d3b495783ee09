package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"partsbot/pkg/config"
)

func TestSendOrderPlaced(t *testing.T) {
	var got TelegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(&config.TelegramConfig{Enabled: true, BotToken: "tok", ChatID: "42"}).WithAPIBase(srv.URL)
	id := "9001"
	if err := n.SendOrderPlaced(context.Background(), "distrisuper", "AB_12", 3, &id, true); err != nil {
		t.Fatalf("SendOrderPlaced: %v", err)
	}

	if path != "/bottok/sendMessage" {
		t.Errorf("path = %s", path)
	}
	if got.ChatID != "42" || got.ParseMode != "Markdown" {
		t.Errorf("unexpected message envelope: %+v", got)
	}
	for _, want := range []string{`AB\_12`, "9001", "forzada"} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("message missing %q: %s", want, got.Text)
		}
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found","error_code":400}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(&config.TelegramConfig{Enabled: true, BotToken: "tok", ChatID: "1"}).WithAPIBase(srv.URL)
	err := n.SendMessage(context.Background(), "hola")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := NewTelegramNotifier(&config.TelegramConfig{Enabled: false})
	if err := n.SendMessage(context.Background(), "x"); err != nil {
		t.Errorf("disabled notifier returned %v", err)
	}

	var nilNotifier *TelegramNotifier
	if nilNotifier.Enabled() {
		t.Error("nil notifier must report disabled")
	}
}
