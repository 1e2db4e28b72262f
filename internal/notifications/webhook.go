package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kjannette/fxjournal/internal/httputil"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultBotName = "FXJournal"

type Sender struct {
	webhookURL string
	botName    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	log        *logrus.Entry
}

func NewSender(webhookURL, botName string) *Sender {
	if botName == "" {
		botName = defaultBotName
	}
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
		log: logrus.WithField("component", "notifications"),
	}
}

// Send logs msg and posts it to the webhook when one is configured. Delivery
// failures are logged, never returned.
func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.botName, msg)
	s.log.Info(formatted)

	if s.webhookURL == "" {
		return
	}

	payload := s.formatPayload(formatted)
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).Error("marshal webhook payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		s.log.WithError(err).Error("webhook delivery failed after retries")
		return
	}
	resp.Body.Close()
}

// SendDigest posts the end-of-day summary for day, one alert per line after it.
func (s *Sender) SendDigest(day string, sum models.TradeSummary, alerts []string) {
	msg := FormatDigest(day, sum)
	for _, a := range alerts {
		msg += "\n  ! " + a
	}
	s.Send(msg)
}

// FormatDigest renders a one-line daily report.
func FormatDigest(day string, sum models.TradeSummary) string {
	if sum.Count == 0 {
		return fmt.Sprintf("%s: no trades", day)
	}
	return fmt.Sprintf("%s: %d trades (%dW/%dL, %.0f%%) | P/L %+.0f | %s pips | avg hold %s",
		day, sum.Count, sum.Wins, sum.Losses, sum.WinRate()*100,
		sum.Profit, signed(models.PipsFromTenths(sum.ProfitPips).String()),
		(time.Duration(sum.AvgHoldingTime) * time.Second).Round(time.Second))
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.botName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.botName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
