package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tankobon/internal/config"
)

const userAgent = "Tankobon/0.1.0"

// Service defines the notification surface exposed to packing and delivery.
type Service interface {
	NotifyPackingStarted(ctx context.Context, title string, chapters int) error
	NotifyVolumeFinished(ctx context.Context, title, label string) error
	NotifyPackingCompleted(ctx context.Context, title string, volumes, skipped int, duration time.Duration) error
	NotifyDeliveryCompleted(ctx context.Context, title, destination string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		packing:  cfg.Notifications.Packing,
		delivery: cfg.Notifications.Delivery,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	packing  bool
	delivery bool
	errors   bool
}

func (n *ntfyService) NotifyPackingStarted(ctx context.Context, title string, chapters int) error {
	if !n.packing {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Tankobon - Packing Started",
		message: fmt.Sprintf("Packing %s: %d chapters", title, chapters),
		tags:    []string{"tankobon", "packing", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyVolumeFinished(ctx context.Context, title, label string) error {
	if !n.packing {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Tankobon - Volume Finished",
		message: fmt.Sprintf("📚 %s %s ready", title, label),
		tags:    []string{"tankobon", "packing", "volume"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPackingCompleted(ctx context.Context, title string, volumes, skipped int, duration time.Duration) error {
	if !n.packing {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var message string
	var header string
	if skipped == 0 {
		header = "Tankobon - Packing Complete"
		message = fmt.Sprintf("%s: %d volumes in %s", strings.TrimSpace(title), volumes, durationText)
	} else {
		header = "Tankobon - Packing Complete (with skips)"
		message = fmt.Sprintf("%s: %d volumes, %d files skipped in %s", strings.TrimSpace(title), volumes, skipped, durationText)
	}

	data := payload{
		title:    header,
		message:  message,
		tags:     []string{"tankobon", "packing", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDeliveryCompleted(ctx context.Context, title, destination string) error {
	if !n.delivery {
		return nil
	}
	title = strings.TrimSpace(title)
	destination = strings.TrimSpace(destination)
	if destination == "" {
		destination = "unknown"
	}
	data := payload{
		title:   "Tankobon - Delivered",
		message: fmt.Sprintf("✉️ Delivered %s to %s", title, destination),
		tags:    []string{"tankobon", "delivery", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Tankobon - Error",
		message:  builder.String(),
		tags:     []string{"tankobon", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Tankobon - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"tankobon", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyPackingStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyVolumeFinished(context.Context, string, string) error {
	return nil
}
func (noopService) NotifyPackingCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyDeliveryCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
