package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/eventwiz/internal/logger"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the service root, e.g. "https://admin.example.com/api".
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Timeout bounds every request. Zero means no client-side timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the events service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for cfg.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
	}, nil
}

// CreateEvent posts a new event and returns the persisted record.
func (c *Client) CreateEvent(ctx context.Context, in *EventInput) (*Event, error) {
	var out Event
	if err := c.do(ctx, http.MethodPost, "/events", in, &out); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &out, nil
}

// UpdateEvent replaces the event with id.
func (c *Client) UpdateEvent(ctx context.Context, id string, in *EventInput) (*Event, error) {
	var out Event
	if err := c.do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), in, &out); err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return &out, nil
}

// GetEvent loads the event with id.
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var out Event
	if err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &out, nil
}

// ListOrganizers returns the organizer lookup.
func (c *Client) ListOrganizers(ctx context.Context) ([]Organizer, error) {
	var out []Organizer
	if err := c.do(ctx, http.MethodGet, "/organizers", nil, &out); err != nil {
		return nil, fmt.Errorf("list organizers: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("%s %s failed: %v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	logger.Debug("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return decodeError(resp.StatusCode, data)
}

// decodeError maps a non-2xx response onto FieldRejection or StatusError.
func decodeError(status int, data []byte) error {
	var envelope errorBody
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &StatusError{StatusCode: status, Body: string(data)}
	}
	msg := envelope.text()
	switch {
	case status == http.StatusUnprocessableEntity,
		status == http.StatusBadRequest && len(envelope.Errors) > 0:
		return &FieldRejection{StatusCode: status, Message: msg, Fields: envelope.Errors}
	}
	return &StatusError{StatusCode: status, Message: msg, Body: string(data)}
}
