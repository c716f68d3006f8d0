// Package ntfy delivers push notifications through an ntfy topic URL.
package ntfy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nilayanand/fluxbot/internal/domain"
)

const maxAttempts = 3

// Notifier posts notifications to a single ntfy topic. Delivery is
// best-effort with a small fixed retry budget; callers decide whether a
// final failure matters.
type Notifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	url        string
	retryDelay time.Duration
}

// New creates a Notifier for the given topic URL.
func New(url string, logger *slog.Logger) (*Notifier, error) {
	if url == "" {
		return nil, domain.ErrMissingNotifyURL
	}
	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		url:        url,
		retryDelay: 2 * time.Second,
	}, nil
}

// Notify posts the notification, retrying transient failures.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.retryDelay):
			}
		}

		lastErr = n.post(ctx, note)
		if lastErr == nil {
			return nil
		}
		n.logger.Warn("notification delivery failed",
			"title", note.Title, "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("notify %q: %w", note.Title, lastErr)
}

func (n *Notifier) post(ctx context.Context, note domain.Notification) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(note.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if note.Title != "" {
		req.Header.Set("Title", note.Title)
	}
	if note.Priority != "" {
		req.Header.Set("Priority", string(note.Priority))
	}
	if len(note.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(note.Tags, ","))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

var _ domain.Notifier = (*Notifier)(nil)
