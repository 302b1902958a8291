// Package proxy implements the light-control relay endpoint.
//
// A single handler dispatches on the "action" query parameter, shapes the
// request body into a vendor payload, and forwards it to the LIFX API with
// the server-held token. Vendor JSON is relayed verbatim; failures collapse
// to a fixed 500 body and are logged server-side only.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/vibed/internal/lifx"
	"github.com/dokzlo13/vibed/internal/requestid"
)

// DefaultSelector targets the fixtures labelled "Vibes"
const DefaultSelector = "label:Vibes"

// Action names accepted in the "action" query parameter
const (
	ActionGetLights   = "getLights"
	ActionSetState    = "setState"
	ActionTogglePower = "togglePower"
	ActionBreathe     = "breathe"
)

// Response bodies for non-2xx answers
const (
	MessageInvalidAction   = "Invalid action"
	MessageBreatheDisabled = "Breathe effect is disabled"
	MessageInternalError   = "Internal server error"
)

// Vendor is the subset of the LIFX client the proxy relays to
type Vendor interface {
	GetLights(ctx context.Context, selector string) (json.RawMessage, error)
	SetState(ctx context.Context, selector string, state lifx.StatePayload) (json.RawMessage, error)
	Toggle(ctx context.Context, selector string) (json.RawMessage, error)
	Breathe(ctx context.Context, selector string, effect lifx.BreathePayload) (json.RawMessage, error)
}

// Config holds the settings fixed at construction
type Config struct {
	DefaultSelector string
	BreatheEnabled  bool
	Recorder        Recorder // optional
}

// rejection is a client error answered with a fixed 400 body and no vendor call
type rejection struct {
	status  int
	message string
}

func (r *rejection) Error() string {
	return r.message
}

var (
	errInvalidAction   = &rejection{status: http.StatusBadRequest, message: MessageInvalidAction}
	errBreatheDisabled = &rejection{status: http.StatusBadRequest, message: MessageBreatheDisabled}
)

// Handler is the proxy endpoint. It holds no per-request state.
type Handler struct {
	vendor          Vendor
	defaultSelector string
	breatheEnabled  bool
	recorder        Recorder
}

// NewHandler creates a proxy handler relaying to vendor
func NewHandler(vendor Vendor, cfg Config) *Handler {
	selector := cfg.DefaultSelector
	if selector == "" {
		selector = DefaultSelector
	}
	return &Handler{
		vendor:          vendor,
		defaultSelector: selector,
		breatheEnabled:  cfg.BreatheEnabled,
		recorder:        cfg.Recorder,
	}
}

// ServeHTTP dispatches one proxied action
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := r.URL.Query()
	action := query.Get("action")
	selector := query.Get("selector")
	if selector == "" {
		selector = h.defaultSelector
	}

	reqID := requestid.FromContext(r.Context())
	logger := log.With().
		Str("action", action).
		Str("selector", selector).
		Str("request_id", reqID).
		Logger()

	logger.Debug().Str("method", r.Method).Str("url", r.URL.String()).Msg("Processing proxy request")

	data, err := h.dispatch(r, action, selector)

	outcome := Outcome{
		RequestID: reqID,
		Action:    action,
		Selector:  selector,
		Err:       err,
	}

	var rej *rejection
	switch {
	case errors.As(err, &rej):
		logger.Info().Str("reason", rej.message).Msg("Rejected proxy request")
		writeText(w, rej.status, rej.message)
		outcome.Status = rej.status
		outcome.Result = ResultRejected
	case err != nil:
		logger.Error().Err(err).Msg("Error processing proxy request")
		writeText(w, http.StatusInternalServerError, MessageInternalError)
		outcome.Status = http.StatusInternalServerError
		outcome.Result = ResultFailed
	default:
		writeRawJSON(w, http.StatusOK, data)
		outcome.Status = http.StatusOK
		outcome.Result = ResultOK
	}

	outcome.Duration = time.Since(start)
	// Recording must survive a client that hung up mid-request
	h.record(context.WithoutCancel(r.Context()), &logger, outcome)
}

func (h *Handler) dispatch(r *http.Request, action, selector string) (json.RawMessage, error) {
	ctx := r.Context()

	switch action {
	case ActionGetLights:
		return h.vendor.GetLights(ctx, selector)

	case ActionSetState:
		opts, err := decodeOptions(r.Body)
		if err != nil {
			return nil, err
		}
		return h.vendor.SetState(ctx, selector, BuildStatePayload(opts))

	case ActionTogglePower:
		return h.vendor.Toggle(ctx, selector)

	case ActionBreathe:
		if !h.breatheEnabled {
			return nil, errBreatheDisabled
		}
		opts, err := decodeOptions(r.Body)
		if err != nil {
			return nil, err
		}
		payload, err := BuildBreathePayload(opts)
		if err != nil {
			return nil, err
		}
		return h.vendor.Breathe(ctx, selector, payload)

	default:
		return nil, errInvalidAction
	}
}

func (h *Handler) record(ctx context.Context, logger *zerolog.Logger, outcome Outcome) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Record(ctx, outcome); err != nil {
		logger.Warn().Err(err).Msg("Failed to record proxy outcome")
	}
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}

func writeRawJSON(w http.ResponseWriter, status int, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
