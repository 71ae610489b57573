package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WebhookBackend POSTs a JSON payload to an arbitrary endpoint.
type WebhookBackend struct {
	url string
}

func (b *WebhookBackend) Send(ctx context.Context, title, message, priority string) error {
	payload, err := json.Marshal(map[string]string{
		"title":    title,
		"message":  message,
		"priority": priority,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doSend(req, "webhook")
}

// NtfyBackend publishes to an ntfy topic URL.
type NtfyBackend struct {
	url string
}

// ntfy numeric priorities.
var ntfyPriorities = map[string]string{
	PriorityLow:     "2",
	PriorityDefault: "3",
	PriorityHigh:    "4",
	PriorityUrgent:  "5",
}

func (b *NtfyBackend) Send(ctx context.Context, title, message, priority string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}

	p, ok := ntfyPriorities[priority]
	if !ok {
		p = ntfyPriorities[PriorityDefault]
	}
	req.Header.Set("Title", title)
	req.Header.Set("Priority", p)
	req.Header.Set("Tags", "docker,network,warning")

	return doSend(req, "ntfy")
}

// GotifyBackend posts messages to a Gotify server.
type GotifyBackend struct {
	url   string
	token string
}

var gotifyPriorities = map[string]int{
	PriorityLow:     2,
	PriorityDefault: 5,
	PriorityHigh:    7,
	PriorityUrgent:  10,
}

func (b *GotifyBackend) Send(ctx context.Context, title, message, priority string) error {
	p, ok := gotifyPriorities[priority]
	if !ok {
		p = gotifyPriorities[PriorityDefault]
	}

	payload, err := json.Marshal(map[string]any{
		"title":    title,
		"message":  message,
		"priority": p,
	})
	if err != nil {
		return fmt.Errorf("marshal gotify payload: %w", err)
	}

	url := fmt.Sprintf("%s/message?token=%s", b.url, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build gotify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doSend(req, "gotify")
}

func doSend(req *http.Request, backend string) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send %s alert: %w", backend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s alert rejected: %s", backend, resp.Status)
	}
	return nil
}
