package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// Payload is the terminal-state report POSTed to the caller-supplied
// evaluation URL. Exactly one report is delivered per job.
type Payload struct {
	Success    bool   `json:"success"`
	Repository string `json:"repository,omitempty"`
	Deployment string `json:"deployment,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Notifier delivers callback payloads with bounded retry on transport
// failure. A non-2xx response counts as a failed delivery.
type Notifier struct {
	client  *http.Client
	backoff *utils.Backoff
	logger  *utils.Logger
}

func NewNotifier(logger *utils.Logger) *Notifier {
	return &Notifier{
		client:  &http.Client{Timeout: 30 * time.Second},
		backoff: utils.NewBackoff(),
		logger:  logger,
	}
}

// Notify POSTs the payload to url as JSON. It retries transport failures
// and non-2xx responses up to the backoff's retry budget and returns the
// last error when every attempt fails.
func (n *Notifier) Notify(ctx context.Context, url string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode callback payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= n.backoff.MaxRetries; attempt++ {
		lastErr = n.post(ctx, url, body)
		if lastErr == nil {
			n.logger.Logf("callback delivered to %s (attempt %d)", url, attempt)
			return nil
		}
		n.logger.Logf("callback delivery to %s failed (attempt %d/%d): %v",
			url, attempt, n.backoff.MaxRetries, lastErr)
		if attempt == n.backoff.MaxRetries {
			break
		}
		if err := n.backoff.Sleep(ctx, attempt); err != nil {
			return fmt.Errorf("callback delivery aborted: %w", err)
		}
	}
	return fmt.Errorf("callback delivery to %s failed after %d attempts: %w",
		url, n.backoff.MaxRetries, lastErr)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
