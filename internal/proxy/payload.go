package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dokzlo13/vibed/internal/lifx"
)

// Options is the decoded request body: top-level keys mapped to their raw values.
// Key presence matters, so values are kept raw until a builder picks them.
type Options map[string]json.RawMessage

// errNotObject is returned for bodies that are valid JSON but not an object
var errNotObject = errors.New("request body must be a JSON object")

// decodeOptions reads a JSON object body. An empty body decodes to no options.
func decodeOptions(body io.Reader) (Options, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Options{}, nil
	}

	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}
	if opts == nil {
		return nil, errNotObject
	}
	return opts, nil
}

// BuildStatePayload maps a setState body onto the vendor payload.
// Only keys present in opts are forwarded; brightness is forwarded only
// when it is a JSON number and is scaled from percent to a 0-1 fraction.
func BuildStatePayload(opts Options) lifx.StatePayload {
	var payload lifx.StatePayload

	if raw, ok := opts["power"]; ok {
		payload.Power = raw
	}

	if raw, ok := opts["brightness"]; ok {
		if percent, ok := jsonNumber(raw); ok {
			fraction := percent / 100
			payload.Brightness = &fraction
		}
	}

	if raw, ok := opts["color"]; ok {
		payload.Color = raw
	}

	return payload
}

// BuildBreathePayload merges recognized breathe options over the defaults.
//
// color is forwarded only when color or from_color is truthy, and then
// carries the caller's color value (absent if only from_color was given).
// from_color is forwarded whenever the caller supplied it.
func BuildBreathePayload(opts Options) (lifx.BreathePayload, error) {
	payload := lifx.DefaultBreathe()

	fields := []struct {
		key string
		dst any
	}{
		{"period", &payload.Period},
		{"cycles", &payload.Cycles},
		{"persist", &payload.Persist},
		{"power_on", &payload.PowerOn},
		{"peak", &payload.Peak},
	}
	for _, f := range fields {
		raw, ok := opts[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return lifx.BreathePayload{}, fmt.Errorf("invalid breathe option %q: %w", f.key, err)
		}
	}

	color, hasColor := opts["color"]
	fromColor, hasFromColor := opts["from_color"]

	if hasColor && (truthy(color) || truthy(fromColor)) {
		payload.Color = color
	}
	if hasFromColor {
		payload.FromColor = fromColor
	}

	return payload, nil
}

// jsonNumber returns the value of raw if it is a JSON number literal
func jsonNumber(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, false
	}
	if c := trimmed[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return 0, false
	}
	return v, true
}

// truthy applies JavaScript truthiness to a raw JSON value.
// Absent, null, false, "", and numeric zero are falsy; everything else is truthy.
func truthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", `""`:
		return false
	}
	if v, ok := jsonNumber(trimmed); ok {
		return v != 0
	}
	return true
}
