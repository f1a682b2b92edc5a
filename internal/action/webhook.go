package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaiso/ifs/internal/domain"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	maxErrorBody          = 4 * 1024
)

// Webhook отправляет захваченный рейс POST-запросом с JSON-телом.
// Ответ вне 2xx считается ошибкой обработки.
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// WebhookConfig — конфигурация Webhook.
type WebhookConfig struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration // default: 10s
}

// NewWebhook создаёт Webhook.
func NewWebhook(cfg WebhookConfig) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &Webhook{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}
}

// Process отправляет рейс.
func (h *Webhook) Process(ctx context.Context, flight *domain.Flight) error {
	body, err := json.Marshal(flight)
	if err != nil {
		return fmt.Errorf("marshal flight %d: %w", flight.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook for flight %d: %w", flight.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook for flight %d: status %d: %s", flight.ID, resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
