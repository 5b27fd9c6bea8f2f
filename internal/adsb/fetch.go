package adsb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchTimeout bounds the whole HTTP exchange for one snapshot, including
// connection setup and reading the body.
const fetchTimeout = 10 * time.Second

// errBodyLimit caps how much of an error response is read for diagnostics.
const errBodyLimit = 256

// Fetcher retrieves aircraft snapshots from a dump1090/tar1090 receiver's
// aircraft.json endpoint.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for the given aircraft.json URL.
//
// Parameters:
//   - url: Full endpoint URL (e.g., "http://adsbexchange.local/tar1090/data/aircraft.json")
//
// Returns:
//   - *Fetcher: Ready for use; each Fetch is bounded by a 10 second timeout
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		url: url,
		client: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch retrieves, validates, and compacts one snapshot.
//
// Failures are classified through the package sentinels: ErrTransport for
// network and HTTP-level problems, ErrDecode for bodies that are not JSON,
// and ErrShape for JSON that is not an aircraft.json document. Callers are
// expected to log and carry on; a receiver that is briefly unreachable is
// routine, not fatal.
//
// Parameters:
//   - ctx: Context for cancellation (shutdown aborts an in-flight fetch)
//
// Returns:
//   - *Document: Validated snapshot ready to publish
//   - error: Classified fetch failure
func (f *Fetcher) Fetch(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("%w: status %s: %s", ErrTransport, resp.Status, bytes.TrimSpace(excerpt))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	return parseDocument(body, time.Now())
}

// URL returns the endpoint this fetcher polls.
func (f *Fetcher) URL() string {
	return f.url
}
