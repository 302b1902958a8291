// Package lifx provides a minimal client for the LIFX HTTP API (v1).
//
// This is a hand-written implementation covering the four endpoints the
// proxy relays: list lights, set state, toggle power and the breathe effect.
// Response bodies are returned as raw JSON so callers can relay them
// verbatim without a decode/encode round trip.
//
// The API uses bearer-token auth; the token is set once at construction.
package lifx
