package client

import (
	"errors"
	"math"
)

// Power values accepted by the vendor
const (
	PowerOn  = "on"
	PowerOff = "off"
)

// StateUpdate is a partial light state. Nil fields are not sent.
type StateUpdate struct {
	Power      *string `json:"power,omitempty"`
	Brightness *int    `json:"brightness,omitempty"` // percent, 0-100
	Color      *string `json:"color,omitempty"`
}

// BreatheEffect holds the breathe options. Nil fields take the proxy defaults.
type BreatheEffect struct {
	Color     *string  `json:"color,omitempty"`      // The color to use for the effect
	FromColor *string  `json:"from_color,omitempty"` // Start from this color
	Period    *float64 `json:"period,omitempty"`     // Seconds for one cycle
	Cycles    *int     `json:"cycles,omitempty"`     // Number of times to repeat
	Persist   *bool    `json:"persist,omitempty"`    // Keep the last effect color
	PowerOn   *bool    `json:"power_on,omitempty"`   // Turn on the light if it's off
	Peak      *float64 `json:"peak,omitempty"`       // Where in a period the target color peaks
}

// Validate checks the ranges the vendor accepts
func (e BreatheEffect) Validate() error {
	var errs []error
	if e.Period != nil && *e.Period <= 0 {
		errs = append(errs, errors.New("period must be greater than 0"))
	}
	if e.Cycles != nil && *e.Cycles < 1 {
		errs = append(errs, errors.New("cycles must be at least 1"))
	}
	if e.Peak != nil && (*e.Peak < 0 || *e.Peak > 1) {
		errs = append(errs, errors.New("peak must be between 0 and 1"))
	}
	return errors.Join(errs...)
}

// Color is the HSBK color of a light as reported by the vendor
type Color struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Kelvin     int     `json:"kelvin"`
}

// Light is one fixture from a getLights response
type Light struct {
	ID         string  `json:"id"`
	UUID       string  `json:"uuid,omitempty"`
	Label      string  `json:"label"`
	Connected  bool    `json:"connected"`
	Power      string  `json:"power"`
	Color      Color   `json:"color"`
	Brightness float64 `json:"brightness"` // 0.0 - 1.0
}

// IsOn reports whether the light is powered on
func (l Light) IsOn() bool {
	return l.Power == PowerOn
}

// BrightnessPercent returns the brightness as a rounded percentage
func (l Light) BrightnessPercent() int {
	return PercentFromFraction(l.Brightness)
}

// PercentFromFraction converts a 0-1 vendor fraction to a rounded 0-100 percentage
func PercentFromFraction(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// Result is the per-light outcome of a write call
type Result struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status string `json:"status"`
	Power  string `json:"power,omitempty"`
}

// Results is the body returned by setState, togglePower and breathe
type Results struct {
	Results []Result `json:"results"`
}

// String returns a pointer to s, for building StateUpdate and BreatheEffect
func String(s string) *string { return &s }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }
