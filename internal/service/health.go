package service

import (
	"context"
	"errors"
	"sync/atomic"
)

// Health tracks whether the service has served at least one successful
// upstream call. Readiness flips once and never flips back.
type Health struct {
	ready atomic.Bool
}

// NewHealth creates an unready Health.
func NewHealth() *Health {
	return &Health{}
}

// MarkReady records the first successful upstream round trip. Safe on nil so
// services can run without a health tracker in tests.
func (h *Health) MarkReady() {
	if h == nil {
		return
	}
	h.ready.Store(true)
}

// CheckReadiness returns nil once at least one upstream call has succeeded,
// or an error describing why the service is not yet ready.
func (h *Health) CheckReadiness(_ context.Context) error {
	if h == nil || !h.ready.Load() {
		return errors.New("no successful upstream call yet")
	}
	return nil
}
