// Package tempest talks to the upstream weather-station REST API: the
// per-account station list and per-station device diagnostics.
package tempest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"

	"stationwatch/internal/models"
)

const (
	defaultBaseURL = "https://swd.weatherflow.com/swd/rest"

	requestTimeout  = 15 * time.Second
	maxRetryElapsed = 45 * time.Second
)

// Client fetches station data for one or more accounts; the API token is
// supplied per call so a single client serves the whole fleet.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type stationsResponse struct {
	Stations []models.Station `json:"stations"`
}

type diagnosticsResponse struct {
	Devices []models.DeviceDiagnostic `json:"devices"`
}

// Stations returns the account's station list. Transport failures are
// retried with capped exponential backoff before surfacing as an error.
func (c *Client) Stations(ctx context.Context, token string) ([]models.Station, error) {
	endpoint := fmt.Sprintf("%s/stations?%s", c.baseURL, url.Values{"token": {token}}.Encode())

	var resp stationsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch station list: %w", err)
	}
	return resp.Stations, nil
}

// Diagnostics returns the device diagnostics for one station. A non-200
// response means "no diagnostics available this cycle" and yields an empty
// result, not an error; only transport failures are errors.
func (c *Client) Diagnostics(ctx context.Context, token string, stationID int) ([]models.DeviceDiagnostic, error) {
	endpoint := fmt.Sprintf("%s/diagnostics/station/%s?%s",
		c.baseURL, strconv.Itoa(stationID), url.Values{"token": {token}}.Encode())

	var resp diagnosticsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		if isStatusError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch diagnostics for station %d: %w", stationID, err)
	}
	return resp.Devices, nil
}

// statusError marks a completed HTTP exchange with a non-200 code, as
// opposed to a transport failure.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isStatusError(err error) bool {
	var se *statusError
	return errors.As(err, &se)
}

// getJSON performs a GET with retry and decodes the body into out.
// Non-200 responses are permanent: retrying a 404 will not help.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&statusError{code: resp.StatusCode})
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
