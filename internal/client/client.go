// Package client is the caller-side wrapper around the proxy endpoint.
//
// It exposes the four light operations as plain calls and never holds the
// vendor token; every call is one round trip to the proxy.
package client

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

// DefaultSelector is used when a call passes an empty selector
const DefaultSelector = "label:Vibes"

// DefaultPath is the proxy endpoint relative to the base URL
const DefaultPath = "/api/VibeTriggers"

// Per-operation errors. Every failed call wraps exactly one of them.
var (
	ErrFetchLights     = errors.New("failed to fetch lights")
	ErrSetState        = errors.New("failed to set light state")
	ErrTogglePower     = errors.New("failed to toggle power")
	ErrBreathe         = errors.New("failed to apply breathe effect")
	ErrBreatheDisabled = errors.New("breathe effect is disabled")
)

// StatusError carries the HTTP status of a failed call
type StatusError struct {
	Err        error
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (status %d)", e.Err, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Client calls the proxy endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the proxy at baseURL, e.g. "http://localhost:7071"
func New(baseURL string, httpClient *http.Client) *Client {
	return NewWithPath(baseURL, DefaultPath, httpClient)
}

// NewWithPath creates a client for a proxy mounted at a custom path
func NewWithPath(baseURL, path string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) actionURL(action, selector string) string {
	if selector == "" {
		selector = DefaultSelector
	}
	q := url.Values{}
	q.Set("action", action)
	q.Set("selector", selector)
	return c.endpoint + "?" + q.Encode()
}

// call performs one round trip and decodes a 2xx JSON body into out.
// Non-2xx statuses are returned as *StatusError wrapping opErr.
func (c *Client) call(ctx context.Context, method, action, selector string, body any, opErr error, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %w", opErr, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.actionURL(action, selector), reader)
	if err != nil {
		return fmt.Errorf("%w: %w", opErr, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", opErr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Err: opErr, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", opErr, err)
	}
	return nil
}

// GetLights lists the lights matching selector
func (c *Client) GetLights(ctx context.Context, selector string) ([]Light, error) {
	var lights []Light
	if err := c.call(ctx, http.MethodGet, "getLights", selector, nil, ErrFetchLights, &lights); err != nil {
		return nil, err
	}
	return lights, nil
}

// SetState applies a partial state update
func (c *Client) SetState(ctx context.Context, state StateUpdate, selector string) (*Results, error) {
	var results Results
	if err := c.call(ctx, http.MethodPost, "setState", selector, state, ErrSetState, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// TogglePower flips power on the lights matching selector
func (c *Client) TogglePower(ctx context.Context, selector string) (*Results, error) {
	var results Results
	if err := c.call(ctx, http.MethodPost, "togglePower", selector, nil, ErrTogglePower, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Breathe starts the breathe effect. A 400 from the proxy means the
// effect is disabled server-side and yields ErrBreatheDisabled.
func (c *Client) Breathe(ctx context.Context, effect BreatheEffect, selector string) (*Results, error) {
	var results Results
	err := c.call(ctx, http.MethodPost, "breathe", selector, effect, ErrBreathe, &results)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
		return nil, &StatusError{Err: ErrBreatheDisabled, StatusCode: statusErr.StatusCode}
	}
	if err != nil {
		return nil, err
	}
	return &results, nil
}
