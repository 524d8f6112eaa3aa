package types

// SuccessEnvelope wraps every successful portal API response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a coded error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
