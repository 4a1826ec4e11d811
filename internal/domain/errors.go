package domain

import (
	"errors"
	"fmt"
)

// Terminal, non-retryable outcomes. Both are normal results, not transport
// failures, and callers must be able to tell them apart: one means "no stop
// within search scope", the other "stop found but idle right now".
var (
	ErrNoStopNearby = errors.New("no stop nearby")
	ErrNoDepartures = errors.New("no current departures")
)

// ErrInvalidCoordinate rejects coordinates outside WGS-84 bounds before any
// upstream call is made.
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// ErrInvalidInterval rejects non-positive refresh intervals.
var ErrInvalidInterval = errors.New("refresh interval must be positive")

// UpstreamError is a per-call provider failure: network error, timeout, or a
// non-2xx response that survived the retry policy. It is never used for
// per-record malformation, which is absorbed where it occurs.
type UpstreamError struct {
	Provider string // "transit" or "traffic"
	Status   int    // HTTP status when one was received, 0 otherwise
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s provider: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstreamError reports whether err is (or wraps) a provider failure.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
