package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const publishTimeout = 10 * time.Second

// Sender delivers one batch of metric lines.
type Sender interface {
	Publish(ctx context.Context, lines []string) error
}

// HTTPSender posts a newline-delimited batch to the telemetry endpoint.
type HTTPSender struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPSender(endpoint string) *HTTPSender {
	return &HTTPSender{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: publishTimeout},
	}
}

var _ Sender = (*HTTPSender)(nil)

// Publish sends the batch as a single payload. Failures are returned for
// logging only; metric delivery never aborts a cycle.
func (s *HTTPSender) Publish(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	payload := strings.Join(lines, "\n")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build metrics request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post metrics batch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("metrics endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
