package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ecufiler/internal/config"
)

const userAgent = "ecufiler/0.1.0"

// Event enumerates the dump outcomes that can be published.
type Event string

const (
	EventFiled   Event = "filed"
	EventPending Event = "pending"
	EventFailed  Event = "failed"
	EventTest    Event = "test"
)

// Payload carries event fields. Known keys: dump, folder, vehicle, reason,
// error.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a noop when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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
		onFiled:  cfg.Notifications.OnFiled,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	onFiled  bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	dump := payload.text("dump")
	switch event {
	case EventFiled:
		if !n.onFiled {
			return message{}, false
		}
		body := fmt.Sprintf("Filed %s", dump)
		if folder := payload.text("folder"); folder != "" {
			body += "\nFolder: " + folder
		}
		return message{
			title: "ecufiler - Dump Filed",
			body:  body,
			tags:  []string{"ecufiler", "filed"},
		}, true
	case EventPending:
		body := fmt.Sprintf("Needs manual filing: %s", dump)
		if vehicle := payload.text("vehicle"); vehicle != "" {
			body += "\nIdentified: " + vehicle
		}
		if reason := payload.text("reason"); reason != "" {
			body += "\nReason: " + reason
		}
		return message{
			title: "ecufiler - Review Needed",
			body:  body,
			tags:  []string{"ecufiler", "pending", "review"},
		}, true
	case EventFailed:
		return message{
			title:    "ecufiler - Filing Failed",
			body:     fmt.Sprintf("Could not file %s: %s", dump, payload.text("error")),
			tags:     []string{"ecufiler", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "ecufiler - Test",
			body:     "Notification system test",
			tags:     []string{"ecufiler", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
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

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return v.Error()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
