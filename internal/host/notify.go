package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier is told about every file written through FS, so an asset index
// can pick it up.
type Notifier interface {
	Notify(ctx context.Context, path string) error
}

// Nop ignores notifications.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// Hook posts {"path": ...} to a URL for every written file.
type Hook struct {
	URL    string
	client *http.Client
}

// NewHook creates a Hook with a short request timeout.
func NewHook(url string) *Hook {
	return &Hook{
		URL:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify sends one notification. Non-2xx responses are errors.
func (h *Hook) Notify(ctx context.Context, path string) error {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "spritepack/1.0.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return nil
}
