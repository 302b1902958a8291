package lifx

import "encoding/json"

// StatePayload is the body of PUT /lights/{selector}/state.
// Unset fields are omitted so the vendor leaves those properties untouched.
type StatePayload struct {
	Power      json.RawMessage `json:"power,omitempty"`
	Brightness *float64        `json:"brightness,omitempty"` // 0.0 - 1.0
	Color      json.RawMessage `json:"color,omitempty"`
}

// IsEmpty reports whether the payload carries no fields
func (p StatePayload) IsEmpty() bool {
	return p.Power == nil && p.Brightness == nil && p.Color == nil
}

// BreathePayload is the body of POST /lights/{selector}/effects/breathe
type BreathePayload struct {
	Period    float64         `json:"period"`
	Cycles    int             `json:"cycles"`
	Persist   bool            `json:"persist"`
	PowerOn   bool            `json:"power_on"`
	Peak      float64         `json:"peak"`
	Color     json.RawMessage `json:"color,omitempty"`
	FromColor json.RawMessage `json:"from_color,omitempty"`
}

// Breathe effect defaults applied when the caller leaves a field out
const (
	DefaultBreathePeriod  = 2.0
	DefaultBreatheCycles  = 3
	DefaultBreathePersist = false
	DefaultBreathePowerOn = true
	DefaultBreathePeak    = 0.5
)

// DefaultBreathe returns a payload populated with the effect defaults
func DefaultBreathe() BreathePayload {
	return BreathePayload{
		Period:  DefaultBreathePeriod,
		Cycles:  DefaultBreatheCycles,
		Persist: DefaultBreathePersist,
		PowerOn: DefaultBreathePowerOn,
		Peak:    DefaultBreathePeak,
	}
}
