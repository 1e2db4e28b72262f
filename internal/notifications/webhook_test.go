package notifications

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kjannette/fxjournal/internal/models"
)

func TestSend_NoWebhook(t *testing.T) {
	s := NewSender("", "TestBot")
	if s.Enabled() {
		t.Fatal("should not be enabled with empty URL")
	}
	// Should log to console without error
	s.Send("hello from test")
	t.Log("Send with no webhook: OK (console only)")
}

func TestSend_SlackFormat(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "TestBot")
	if !s.Enabled() {
		t.Fatal("should be enabled")
	}

	s.Send("daily cache rebuilt")

	if received["username"] != "TestBot" {
		t.Fatalf("username: got %s", received["username"])
	}
	if received["text"] == "" {
		t.Fatal("text should not be empty")
	}
	t.Logf("Slack payload: %+v", received)
}

func TestSend_DiscordFormat(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// URL containing "discord" triggers Discord format
	s := NewSender(srv.URL+"/discord/webhook", "JournalBot")
	s.Send("merged 2 USD/JPY trades into #12")

	if received["content"] == "" {
		t.Fatal("content should not be empty for Discord")
	}
	if received["username"] != "JournalBot" {
		t.Fatalf("username: got %s", received["username"])
	}
	if _, hasText := received["text"]; hasText {
		t.Fatal("Discord payload should not have 'text' field")
	}
	t.Logf("Discord payload: %+v", received)
}

func TestSend_WebhookError(t *testing.T) {
	s := NewSender("http://localhost:1/bogus", "TestBot")
	// Should not panic, just log the error
	s.Send("this will fail gracefully")
	t.Log("Webhook error handled gracefully")
}

func TestDefaultBotName(t *testing.T) {
	s := NewSender("", "")
	if s.botName != defaultBotName {
		t.Fatalf("expected default bot name, got %s", s.botName)
	}
}

func TestFormatDigest(t *testing.T) {
	sum := models.TradeSummary{
		Count: 4, Wins: 3, Losses: 1,
		Profit: 12500, ProfitPips: 235,
		AvgHoldingTime: 754.6,
	}
	got := FormatDigest("2023-11-15", sum)
	want := "2023-11-15: 4 trades (3W/1L, 75%) | P/L +12500 | +23.5 pips | avg hold 12m34s"
	if got != want {
		t.Fatalf("FormatDigest =\n  %q\nwant\n  %q", got, want)
	}

	neg := FormatDigest("2023-11-16", models.TradeSummary{Count: 1, Losses: 1, Profit: -300, ProfitPips: -40, AvgHoldingTime: 60})
	if !strings.Contains(neg, "P/L -300") || !strings.Contains(neg, "| -4 pips") {
		t.Fatalf("unexpected negative digest %q", neg)
	}

	if got := FormatDigest("2023-11-17", models.TradeSummary{}); got != "2023-11-17: no trades" {
		t.Fatalf("unexpected empty digest %q", got)
	}
}

func TestSendDigest_PostsToWebhook(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
	}))
	defer srv.Close()

	NewSender(srv.URL, "").SendDigest("2023-11-15", models.TradeSummary{Count: 1, Wins: 1, Profit: 100, ProfitPips: 10},
		[]string{"PROFIT GOAL reached: +100 (goal +50)"})
	if !strings.Contains(received["text"], "2023-11-15: 1 trades") || !strings.Contains(received["text"], "\n  ! PROFIT GOAL") {
		t.Fatalf("unexpected payload %+v", received)
	}
	if received["username"] != defaultBotName {
		t.Fatalf("username: got %s", received["username"])
	}
}
