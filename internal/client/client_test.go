package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type proxyCall struct {
	Method   string
	Path     string
	Action   string
	Selector string
	Body     string
}

// fakeProxy answers every call with a fixed status and body
type fakeProxy struct {
	mu       sync.Mutex
	calls    []proxyCall
	status   int
	response string
}

func (p *fakeProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	p.mu.Lock()
	p.calls = append(p.calls, proxyCall{
		Method:   r.Method,
		Path:     r.URL.Path,
		Action:   r.URL.Query().Get("action"),
		Selector: r.URL.Query().Get("selector"),
		Body:     string(body),
	})
	p.mu.Unlock()

	w.WriteHeader(p.status)
	io.WriteString(w, p.response)
}

func (p *fakeProxy) Calls() []proxyCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]proxyCall(nil), p.calls...)
}

func newTestClient(t *testing.T, status int, response string) (*Client, *fakeProxy) {
	t.Helper()
	proxy := &fakeProxy{status: status, response: response}
	srv := httptest.NewServer(proxy)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client()), proxy
}

func TestGetLights(t *testing.T) {
	c, proxy := newTestClient(t, http.StatusOK, `[
		{"id":"d073d5","label":"Vibes","connected":true,"power":"on","brightness":0.29,
		 "color":{"hue":120,"saturation":1,"kelvin":3500}}
	]`)

	lights, err := c.GetLights(context.Background(), "")
	if err != nil {
		t.Fatalf("GetLights() error: %v", err)
	}
	if len(lights) != 1 {
		t.Fatalf("lights = %d, want 1", len(lights))
	}
	l := lights[0]
	if l.Label != "Vibes" || !l.IsOn() || !l.Connected || l.Color.Kelvin != 3500 {
		t.Errorf("light = %+v", l)
	}
	if l.BrightnessPercent() != 29 {
		t.Errorf("BrightnessPercent() = %d, want 29", l.BrightnessPercent())
	}

	call := proxy.Calls()[0]
	if call.Method != http.MethodGet || call.Path != DefaultPath {
		t.Errorf("call = %s %s", call.Method, call.Path)
	}
	if call.Action != "getLights" || call.Selector != DefaultSelector {
		t.Errorf("query = action=%s selector=%s", call.Action, call.Selector)
	}
}

func TestSetState(t *testing.T) {
	c, proxy := newTestClient(t, http.StatusOK, `{"results":[{"id":"d073d5","label":"Vibes","status":"ok"}]}`)

	results, err := c.SetState(context.Background(), StateUpdate{Brightness: Int(50)}, "group:Living Room")
	if err != nil {
		t.Fatalf("SetState() error: %v", err)
	}
	if len(results.Results) != 1 || results.Results[0].Status != "ok" {
		t.Errorf("results = %+v", results)
	}

	call := proxy.Calls()[0]
	if call.Method != http.MethodPost || call.Action != "setState" {
		t.Errorf("call = %s action=%s", call.Method, call.Action)
	}
	if call.Selector != "group:Living Room" {
		t.Errorf("selector = %q, want it round-tripped through query escaping", call.Selector)
	}
	if call.Body != `{"brightness":50}` {
		t.Errorf("body = %s", call.Body)
	}
}

func TestSetState_EmptyUpdate(t *testing.T) {
	c, proxy := newTestClient(t, http.StatusOK, `{"results":[]}`)

	if _, err := c.SetState(context.Background(), StateUpdate{}, ""); err != nil {
		t.Fatalf("SetState() error: %v", err)
	}
	if got := proxy.Calls()[0].Body; got != `{}` {
		t.Errorf("body = %s, want {}", got)
	}
}

func TestTogglePower(t *testing.T) {
	c, proxy := newTestClient(t, http.StatusOK, `{"results":[{"id":"d073d5","label":"Vibes","status":"ok","power":"off"}]}`)

	results, err := c.TogglePower(context.Background(), "")
	if err != nil {
		t.Fatalf("TogglePower() error: %v", err)
	}
	if results.Results[0].Power != PowerOff {
		t.Errorf("power = %q", results.Results[0].Power)
	}

	call := proxy.Calls()[0]
	if call.Method != http.MethodPost || call.Action != "togglePower" || call.Body != "" {
		t.Errorf("call = %+v", call)
	}
}

func TestBreathe(t *testing.T) {
	c, proxy := newTestClient(t, http.StatusOK, `{"results":[]}`)

	effect := BreatheEffect{Color: String("#ff0000"), Cycles: Int(5)}
	if _, err := c.Breathe(context.Background(), effect, ""); err != nil {
		t.Fatalf("Breathe() error: %v", err)
	}

	call := proxy.Calls()[0]
	if call.Action != "breathe" || call.Body != `{"color":"#ff0000","cycles":5}` {
		t.Errorf("call = %+v", call)
	}
}

func TestOperationErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(c *Client) error
		want   error
	}{
		{
			name:   "getLights",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.GetLights(context.Background(), "")
				return err
			},
			want: ErrFetchLights,
		},
		{
			name:   "setState",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.SetState(context.Background(), StateUpdate{Power: String(PowerOn)}, "")
				return err
			},
			want: ErrSetState,
		},
		{
			name:   "togglePower",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.TogglePower(context.Background(), "")
				return err
			},
			want: ErrTogglePower,
		},
		{
			name:   "breathe_failed",
			status: http.StatusInternalServerError,
			call: func(c *Client) error {
				_, err := c.Breathe(context.Background(), BreatheEffect{}, "")
				return err
			},
			want: ErrBreathe,
		},
		{
			name:   "breathe_disabled",
			status: http.StatusBadRequest,
			call: func(c *Client) error {
				_, err := c.Breathe(context.Background(), BreatheEffect{}, "")
				return err
			},
			want: ErrBreatheDisabled,
		},
		{
			name:   "setState_bad_request",
			status: http.StatusBadRequest,
			call: func(c *Client) error {
				_, err := c.SetState(context.Background(), StateUpdate{}, "")
				return err
			},
			want: ErrSetState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, proxy := newTestClient(t, tt.status, "Internal server error")

			err := tt.call(c)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.StatusCode != tt.status {
				t.Errorf("error = %#v, want StatusError with status %d", err, tt.status)
			}
			if n := len(proxy.Calls()); n != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", n)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{}`)
	c.endpoint = "http://127.0.0.1:1/api/VibeTriggers"

	_, err := c.TogglePower(context.Background(), "")
	if !errors.Is(err, ErrTogglePower) {
		t.Errorf("error = %v, want ErrTogglePower", err)
	}
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `not json`)

	if _, err := c.GetLights(context.Background(), ""); !errors.Is(err, ErrFetchLights) {
		t.Errorf("error = %v, want ErrFetchLights", err)
	}
}

func TestNewWithPath(t *testing.T) {
	c := NewWithPath("http://localhost:7071/", "/custom", nil)
	if got := c.actionURL("getLights", "all"); got != "http://localhost:7071/custom?action=getLights&selector=all" {
		t.Errorf("actionURL = %s", got)
	}
}

func TestPercentFromFraction(t *testing.T) {
	tests := []struct {
		fraction float64
		want     int
	}{
		{0, 0},
		{1, 100},
		{0.5, 50},
		{0.29, 29},
		{0.574, 57},
		{0.576, 58},
		{0.999, 100},
	}
	for _, tt := range tests {
		if got := PercentFromFraction(tt.fraction); got != tt.want {
			t.Errorf("PercentFromFraction(%v) = %d, want %d", tt.fraction, got, tt.want)
		}
	}
}

func TestBreatheEffectValidate(t *testing.T) {
	tests := []struct {
		name    string
		effect  BreatheEffect
		wantErr bool
	}{
		{name: "empty", effect: BreatheEffect{}},
		{name: "valid", effect: BreatheEffect{Period: Float(1.5), Cycles: Int(1), Peak: Float(1)}},
		{name: "zero_period", effect: BreatheEffect{Period: Float(0)}, wantErr: true},
		{name: "zero_cycles", effect: BreatheEffect{Cycles: Int(0)}, wantErr: true},
		{name: "peak_above_one", effect: BreatheEffect{Peak: Float(1.1)}, wantErr: true},
		{name: "peak_negative", effect: BreatheEffect{Peak: Float(-0.1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.effect.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
