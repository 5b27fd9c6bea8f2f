package adsb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Document is one validated aircraft.json snapshot, ready to publish.
type Document struct {
	// Payload is the compacted JSON body. Compaction strips insignificant
	// whitespace but keeps the feeder's key order and number formatting,
	// so the published bytes stay faithful to what the receiver produced.
	Payload []byte

	// AircraftCount is the number of entries in the aircraft list.
	AircraftCount int

	// FetchedAt records when the snapshot was retrieved.
	FetchedAt time.Time
}

// parseDocument validates a raw aircraft.json body and compacts it.
//
// The body must be a JSON object carrying an "aircraft" key whose value is
// a list. A body that is not JSON fails with ErrDecode; a JSON body without
// that shape (missing key, null, or a non-list value) fails with ErrShape.
func parseDocument(body []byte, fetchedAt time.Time) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	raw, ok := top["aircraft"]
	if !ok {
		return nil, fmt.Errorf("%w: no aircraft key", ErrShape)
	}

	// json.Unmarshal accepts "null" into a slice without complaint, so the
	// null case is rejected explicitly before decoding the list.
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, fmt.Errorf("%w: aircraft is null", ErrShape)
	}

	var aircraft []json.RawMessage
	if err := json.Unmarshal(raw, &aircraft); err != nil {
		return nil, fmt.Errorf("%w: aircraft is not a list", ErrShape)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return &Document{
		Payload:       compact.Bytes(),
		AircraftCount: len(aircraft),
		FetchedAt:     fetchedAt,
	}, nil
}
