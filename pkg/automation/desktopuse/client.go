// Package desktopuse implements automation.Client over the HTTP API of a
// desktop-use automation server.
package desktopuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/devicelab-dev/desktop-runner/pkg/automation"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
)

// DefaultURL is where the automation server listens by default.
const DefaultURL = "http://127.0.0.1:9375"

// Client communicates with the automation server.
type Client struct {
	http          *retryablehttp.Client
	baseURL       string
	locateTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http.HTTPClient = hc }
}

// WithTransportRetries sets how many times a request is resent after a
// connection-level failure. HTTP error responses are never resent.
func WithTransportRetries(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithLocateTimeout sets the server-side element lookup timeout sent with
// every element request. Zero leaves it to the server.
func WithLocateTimeout(d time.Duration) Option {
	return func(c *Client) { c.locateTimeout = d }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.CheckRetry = retryTransportErrors
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{}

	c := &Client{
		http:          rc,
		baseURL:       baseURL,
		locateTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryTransportErrors retries only when no response was received. Element
// lookups answer 404 routinely; the executor owns that retry budget.
func retryTransportErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil, nil
}

// APIError is returned when the server answers with an error status.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("automation server %s returned %d: %s", e.Path, e.Status, e.Message)
}

// NotFound returns true if the server reported a missing element.
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// request posts body as JSON to path and decodes the response into out.
func (c *Client) request(ctx context.Context, path string, body, out interface{}) error {
	start := time.Now()

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.baseURL+path, data)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("POST %s [%v] ERROR: %v", path, elapsed, err)
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	logger.Debug("POST %s [%v] %d body=%s", path, elapsed, resp.StatusCode, truncate(data, 100))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Path: path, Message: string(bytes.TrimSpace(respBody))}
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// LaunchApplication opens an application by executable name or path.
func (c *Client) LaunchApplication(ctx context.Context, identifier string) error {
	return c.request(ctx, "/open_application", openApplicationRequest{AppName: identifier}, nil)
}

// Locate returns a lazily resolved handle; the server resolves the selector
// on every element request.
func (c *Client) Locate(_ context.Context, selector string) (automation.Handle, error) {
	if selector == "" {
		return nil, fmt.Errorf("empty selector")
	}
	return &Element{client: c, selector: selector}, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// leveledLogger adapts retryablehttp logging. Its Info messages are
// per-request chatter and go to Debug.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) { logger.WithFields(fields(kv)).Error(msg) }
func (leveledLogger) Info(msg string, kv ...interface{})  { logger.WithFields(fields(kv)).Debug(msg) }
func (leveledLogger) Debug(msg string, kv ...interface{}) { logger.WithFields(fields(kv)).Debug(msg) }
func (leveledLogger) Warn(msg string, kv ...interface{})  { logger.WithFields(fields(kv)).Warn(msg) }

func fields(kv []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
