package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client provides HTTP client functionality to communicate with a statewatch daemon.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // Optional logger for client operations
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 10 * time.Second,
	}
}

// New creates a new statewatch API client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// IsReachable checks if the daemon is running and reachable
func (c *Client) IsReachable(ctx context.Context) bool {
	var subjects []Subject
	if err := c.getJSON(ctx, c.baseURL+"/subjects", &subjects); err != nil {
		c.logger.Debug("Daemon unreachable", "error", err)
		return false
	}
	return true
}

// Subjects returns the daemon's active subjects, newest first.
func (c *Client) Subjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	err := c.getJSON(ctx, c.baseURL+"/subjects", &out)
	return out, err
}

// Events returns the retained event records for a subject.
func (c *Client) Events(ctx context.Context, subject string) ([]Event, error) {
	var out []Event
	err := c.getJSON(ctx, c.baseURL+"/events?subject="+url.QueryEscape(subject), &out)
	return out, err
}

// States returns the retained state transition records for a subject.
func (c *Client) States(ctx context.Context, subject string) ([]State, error) {
	var out []State
	err := c.getJSON(ctx, c.baseURL+"/states?subject="+url.QueryEscape(subject), &out)
	return out, err
}

// Diff returns the field diff of one recorded transition.
// A negative index requests the latest transition.
func (c *Client) Diff(ctx context.Context, subject string, index int) (DiffResult, error) {
	u := c.baseURL + "/diff?subject=" + url.QueryEscape(subject)
	if index >= 0 {
		u += "&index=" + strconv.Itoa(index)
	}
	var out DiffResult
	err := c.getJSON(ctx, u, &out)
	return out, err
}

// SendCreate reports subject creation to the daemon.
func (c *Client) SendCreate(ctx context.Context, subject string) error {
	return c.ingest(ctx, ingestRequest{Type: "create", Subject: subject})
}

// SendEvent reports an event to the daemon.
func (c *Client) SendEvent(ctx context.Context, subject string, payload any) error {
	return c.ingest(ctx, ingestRequest{Type: "event", Subject: subject, Payload: payload})
}

// SendStateChange reports a state transition to the daemon.
func (c *Client) SendStateChange(ctx context.Context, subject string, prev, next any) error {
	return c.ingest(ctx, ingestRequest{Type: "state", Subject: subject, Prev: prev, Next: next})
}

// SendError reports an error to the daemon.
func (c *Client) SendError(ctx context.Context, subject, errMsg, stack string) error {
	return c.ingest(ctx, ingestRequest{Type: "error", Subject: subject, Error: errMsg, Stack: stack})
}

// SendClose reports subject closure to the daemon.
func (c *Client) SendClose(ctx context.Context, subject string) error {
	return c.ingest(ctx, ingestRequest{Type: "close", Subject: subject})
}

// Clear drops a subject's retained records on the daemon.
func (c *Client) Clear(ctx context.Context, subject string) error {
	return c.doRequest(ctx, http.MethodPost, c.baseURL+"/clear?subject="+url.QueryEscape(subject), nil)
}

// ClearAll drops everything the daemon has retained.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, c.baseURL+"/clear-all", nil)
}

func (c *Client) ingest(ctx context.Context, req ingestRequest) error {
	c.logger.Debug("Delivering hook", "type", req.Type, "subject", req.Subject)
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.doRequest(ctx, http.MethodPost, c.baseURL+"/ingest", data)
}

// getJSON performs a GET and decodes a JSON response body into out.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := c.handleErrorResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request with common error handling
func (c *Client) doRequest(ctx context.Context, method, u string, body []byte) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "url", u)
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.handleErrorResponse(resp)
}

// handleErrorResponse handles HTTP error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var errorResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
		c.logger.Error("Failed to decode error response", "status", resp.StatusCode)
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	c.logger.Error("API request failed", "error", errorResp.Error, "status", resp.StatusCode)
	return fmt.Errorf("API error: %s", errorResp.Error)
}
