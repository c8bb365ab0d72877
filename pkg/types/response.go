// Package types holds the JSON envelopes every storefront response uses.
package types

// SuccessEnvelope wraps successful payloads under a single data key, so
// pages and AJAX callers unwrap responses the same way.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a coded error. Details is only populated
// for codes whose metadata allows exposing them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
