package lifx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public LIFX HTTP API root
const DefaultBaseURL = "https://api.lifx.com/v1"

// maxErrorBody bounds how much of a failed response is kept in StatusError
const maxErrorBody = 512

// ErrInvalidBody is returned when the vendor answers 2xx with a non-JSON body
var ErrInvalidBody = errors.New("vendor returned a non-JSON body")

// StatusError is returned when the vendor answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lifx %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client provides access to the LIFX HTTP API.
// This client is HTTP-only with no caching - pure transport layer.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new LIFX API client.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// BaseURL returns the API root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close closes idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func lightsPath(selector string, suffix ...string) string {
	parts := append([]string{"lights", url.PathEscape(selector)}, suffix...)
	return strings.Join(parts, "/")
}

// Request performs an authenticated HTTP request to the API
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

// do runs a request and returns the JSON body of a 2xx response
func (c *Client) do(ctx context.Context, op, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("lifx %s: failed to marshal payload: %w", op, err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	resp, err := c.Request(ctx, method, path, body)
	if err != nil {
		return nil, fmt.Errorf("lifx %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lifx %s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("lifx %s: %w", op, ErrInvalidBody)
	}

	return json.RawMessage(data), nil
}

// GetLights lists the lights matching selector
func (c *Client) GetLights(ctx context.Context, selector string) (json.RawMessage, error) {
	return c.do(ctx, "list lights", http.MethodGet, lightsPath(selector), nil)
}

// SetState updates power, brightness and color on the lights matching selector
func (c *Client) SetState(ctx context.Context, selector string, state StatePayload) (json.RawMessage, error) {
	return c.do(ctx, "set state", http.MethodPut, lightsPath(selector, "state"), state)
}

// Toggle flips the power of the lights matching selector
func (c *Client) Toggle(ctx context.Context, selector string) (json.RawMessage, error) {
	return c.do(ctx, "toggle power", http.MethodPost, lightsPath(selector, "toggle"), nil)
}

// Breathe starts the breathe effect on the lights matching selector
func (c *Client) Breathe(ctx context.Context, selector string, effect BreathePayload) (json.RawMessage, error) {
	return c.do(ctx, "breathe effect", http.MethodPost, lightsPath(selector, "effects", "breathe"), effect)
}
