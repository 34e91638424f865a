package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NtfySender delivers notifications to an ntfy push endpoint: one POST
// per notification with the message as body and title, priority and tags
// carried in headers.
type NtfySender struct {
	server string
	topic  string
	client *http.Client
}

// NewNtfySender creates a sender for the given server and topic. timeout
// bounds each delivery attempt.
func NewNtfySender(server, topic string, timeout time.Duration) *NtfySender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySender{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts the notification to the topic.
func (s *NtfySender) Send(ctx context.Context, n Notification) error {
	url := s.server + "/" + s.topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(n.Body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Title", n.Title)
	if n.Priority != "" {
		req.Header.Set("Priority", string(n.Priority))
	}
	if len(n.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(n.Tags, ","))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification rejected: status %d", resp.StatusCode)
	}
	return nil
}
