package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mashup/internal/config"
)

const userAgent = "mashup/0.1.0"

// Service defines the notification surface used by the pipeline and CLI.
type Service interface {
	NotifyMashupReady(ctx context.Context, query string, clips int, duration time.Duration, short bool) error
	NotifyDeliveryFailed(ctx context.Context, query, recipient string, err error) error
	NotifyRunFailed(ctx context.Context, query string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		completed: cfg.Notifications.Completed,
		errors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	completed bool
	errors    bool
}

func (n *ntfyService) NotifyMashupReady(ctx context.Context, query string, clips int, duration time.Duration, short bool) error {
	if !n.completed {
		return nil
	}
	query = strings.TrimSpace(query)
	message := fmt.Sprintf("🎶 Mashup ready: %s (%d clips, %s)", query, clips, duration.Round(time.Second))
	tags := []string{"mashup", "completed"}
	if short {
		message += "\nShorter than requested; some tracks could not be downloaded"
		tags = append(tags, "short")
	}
	return n.send(ctx, payload{
		title:   "Mashup - Ready",
		message: message,
		tags:    tags,
	})
}

func (n *ntfyService) NotifyDeliveryFailed(ctx context.Context, query, recipient string, err error) error {
	if !n.errors {
		return nil
	}
	return n.send(ctx, payload{
		title:    "Mashup - Delivery Failed",
		message:  fmt.Sprintf("📭 Could not email %s mashup to %s: %s", strings.TrimSpace(query), strings.TrimSpace(recipient), errorText(err)),
		tags:     []string{"mashup", "delivery", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, query string, err error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Mashup failed")
	if query = strings.TrimSpace(query); query != "" {
		builder.WriteString(" for ")
		builder.WriteString(query)
	}
	builder.WriteString(": ")
	builder.WriteString(errorText(err))
	return n.send(ctx, payload{
		title:    "Mashup - Error",
		message:  builder.String(),
		tags:     []string{"mashup", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Mashup - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"mashup", "test"},
		priority: "low",
	})
}

func errorText(err error) string {
	if err == nil {
		return "unknown"
	}
	return strings.TrimSpace(err.Error())
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyMashupReady(context.Context, string, int, time.Duration, bool) error {
	return nil
}
func (noopService) NotifyDeliveryFailed(context.Context, string, string, error) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error              { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
