package adsb

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError indicates the upstream request did not complete within the
// configured deadline. Recoverable: the caller keeps its previous aircraft
// set and retries on the next refresh interval.
type TimeoutError struct {
	Source  string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out after %v", e.Source, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// UpstreamError indicates the upstream answered but the response was
// unusable: a non-2xx status, or a body that parsed to an empty/null
// payload. Recoverable, retried next interval; distinguished from
// TimeoutError so callers can apply different backoff.
type UpstreamError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: bad response: %d %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// IsTimeout checks whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsUpstream checks whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
