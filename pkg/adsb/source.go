package adsb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single upstream request. A fetch in progress is
// never cancelled early; on expiry the result is abandoned and the caller
// takes its failure branch.
const DefaultTimeout = 10 * time.Second

// Batch is the result of normalizing one upstream response.
type Batch struct {
	// Aircraft holds every record that normalized cleanly.
	Aircraft []AircraftState

	// APITime is the server-side timestamp of the response, converted from
	// the source's native unit (OpenSky: seconds, ADSB.lol/proxy:
	// milliseconds).
	APITime time.Time

	// Malformed counts records that failed to normalize and were skipped.
	// A bad record never aborts the rest of the batch.
	Malformed int
}

// Source is the contract every upstream aircraft API implements. One
// implementation exists per wire format; field names and timestamp units are
// data-driven per source rather than baked into the call sites.
type Source interface {
	// Name identifies the source in logs and error values.
	Name() string

	// BuildRequest returns the request URL and headers for the configured
	// geographic query. Both are derived once from configuration.
	BuildRequest() (url string, header http.Header)

	// Fetch retrieves the raw JSON response. Blocking, bounded by the
	// client timeout; fails with *TimeoutError or *UpstreamError.
	Fetch(ctx context.Context) ([]byte, error)

	// Normalize converts a raw response into a Batch. A response that
	// parses to an empty or null payload fails with *UpstreamError.
	Normalize(raw []byte) (Batch, error)
}

// keyedSchema describes where a keyed-object source (ADSB.lol and the
// proxy speak the same shape) stores its timestamp and aircraft array.
type keyedSchema struct {
	timeField   string
	acField     string
	timeDivisor float64 // native unit per second, e.g. 1000 for millis
}

// fetchBytes performs a rate-limited GET and classifies failures into the
// timeout/upstream taxonomy.
func fetchBytes(ctx context.Context, client *http.Client, limiter *rate.Limiter, name, url string, header http.Header) ([]byte, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, &TimeoutError{Source: name, Timeout: client.Timeout, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{Source: name, Message: fmt.Sprintf("building request: %v", err)}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, &TimeoutError{Source: name, Timeout: client.Timeout, Err: err}
		}
		return nil, &UpstreamError{Source: name, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The 502s commonly seen from OpenSky dump a full HTML page; keep
		// only enough of the body to identify the failure.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &UpstreamError{
			Source:     name,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, &TimeoutError{Source: name, Timeout: client.Timeout, Err: err}
		}
		return nil, &UpstreamError{Source: name, Message: fmt.Sprintf("reading response: %v", err)}
	}

	return body, nil
}

// isTimeoutErr reports whether a transport error was a deadline expiry
// rather than a hard failure.
func isTimeoutErr(err error) bool {
	if err == nil {
		return false
	}
	if t, ok := err.(interface{ Timeout() bool }); ok && t.Timeout() {
		return true
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return isTimeoutErr(u.Unwrap())
	}
	return err == context.DeadlineExceeded
}

// newHTTPClient builds the shared client configuration for upstream calls.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// newSourceLimiter enforces a minimum interval between upstream calls.
// interval <= 0 disables the gate.
func newSourceLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
