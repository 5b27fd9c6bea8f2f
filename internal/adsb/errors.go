package adsb

import "errors"

// Domain-specific errors for snapshot retrieval.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTransport is returned when the HTTP exchange itself fails:
	// connection errors, timeouts, or a non-200 response.
	ErrTransport = errors.New("adsb: transport failure")

	// ErrDecode is returned when the response body is not valid JSON.
	ErrDecode = errors.New("adsb: response is not valid JSON")

	// ErrShape is returned when the JSON decodes but does not look like an
	// aircraft.json document (missing, null, or non-list "aircraft" key).
	ErrShape = errors.New("adsb: unexpected document shape")
)
