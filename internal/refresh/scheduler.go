// Package refresh periodically re-fetches the nearest-stop board and nearby
// incidents for subscribed coordinates and hands each result to a callback.
// Results are delivered to the subscriber only; nothing is persisted or
// pushed anywhere else.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/viatrafik/nearby/internal/domain"
	"github.com/viatrafik/nearby/internal/observability"
	"github.com/viatrafik/nearby/internal/service"
)

// BoardFetcher resolves a coordinate and fetches its departure board.
type BoardFetcher interface {
	ForCoordinate(ctx context.Context, coord domain.Coordinate) (service.Board, error)
}

// IncidentFetcher fetches incidents around a coordinate.
type IncidentFetcher interface {
	Nearby(ctx context.Context, coord domain.Coordinate, radiusMeters int) ([]domain.CanonicalIncident, error)
}

// Update is one refresh result for a subscribed coordinate. Err is set when a
// fetch failed; Board and Incidents hold whatever was fetched successfully.
type Update struct {
	Coordinate domain.Coordinate
	Board      service.Board
	Incidents  []domain.CanonicalIncident
	FetchedAt  time.Time
	Err        error
}

// Scheduler runs one refresh loop per subscription. Fetches are synchronous
// within a loop: a fetch that overruns the interval causes the next tick to
// be skipped, never queued behind it.
type Scheduler struct {
	boards    BoardFetcher
	incidents IncidentFetcher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	radius    int
}

// New creates a Scheduler. radius is the incident search radius in meters
// applied to every subscription.
func New(boards BoardFetcher, incidents IncidentFetcher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, radius int) *Scheduler {
	return &Scheduler{
		boards:    boards,
		incidents: incidents,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		radius:    radius,
	}
}

// Subscription is a handle to one running refresh loop.
type Subscription struct {
	id       string
	callback func(Update)
	cancel   context.CancelFunc
	done     chan struct{}

	mu        sync.Mutex
	cancelled bool
}

// ID returns the subscription identifier.
func (sub *Subscription) ID() string { return sub.id }

// Done is closed when the refresh loop has fully stopped.
func (sub *Subscription) Done() <-chan struct{} { return sub.done }

// Cancel stops the subscription. Once Cancel returns, the callback will not
// be invoked again; an invocation already in progress is allowed to finish
// first. Must not be called from inside the callback. Safe to call more than
// once.
func (sub *Subscription) Cancel() {
	sub.mu.Lock()
	already := sub.cancelled
	sub.cancelled = true
	sub.mu.Unlock()
	if !already {
		sub.cancel()
	}
}

// deliver invokes the callback unless the subscription has been cancelled.
// The lock spans the invocation so Cancel can promise no callback after it
// returns.
func (sub *Subscription) deliver(update Update) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.cancelled {
		return
	}
	sub.callback(update)
}

// Subscribe starts a refresh loop for coord: one immediate fetch, then one
// per interval. The loop also stops when ctx is cancelled. callback runs on
// the loop goroutine and must not block indefinitely.
func (s *Scheduler) Subscribe(ctx context.Context, coord domain.Coordinate, interval time.Duration, callback func(Update)) (*Subscription, error) {
	if !coord.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	if interval <= 0 {
		return nil, domain.ErrInvalidInterval
	}

	loopCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		id:       uuid.NewString(),
		callback: callback,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	s.metrics.ActiveSubscriptions.Inc()
	s.logger.Info("refresh subscription started",
		"subscription_id", sub.id,
		"lat", coord.Lat,
		"lng", coord.Lng,
		"interval", interval,
	)

	go s.run(loopCtx, coord, interval, sub)
	return sub, nil
}

func (s *Scheduler) run(ctx context.Context, coord domain.Coordinate, interval time.Duration, sub *Subscription) {
	defer close(sub.done)
	defer s.metrics.ActiveSubscriptions.Dec()
	defer s.logger.Info("refresh subscription stopped", "subscription_id", sub.id)

	s.fetchAndDeliver(ctx, coord, sub)

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.metrics.RefreshTicks.Inc()
			started := s.clock.Now()
			s.fetchAndDeliver(ctx, coord, sub)

			// A fetch longer than the interval leaves a tick pending.
			// Drop it so slow upstreams cause skipped refreshes, not a
			// backlog of catch-up fetches.
			if s.clock.Since(started) >= interval {
				select {
				case <-ticker.Chan():
					s.metrics.RefreshTicksSkipped.Inc()
				default:
				}
			}
		}
	}
}

// fetchAndDeliver performs one full refresh. A board or incident failure is
// logged and surfaced on the update; the other half is still delivered.
func (s *Scheduler) fetchAndDeliver(ctx context.Context, coord domain.Coordinate, sub *Subscription) {
	if ctx.Err() != nil {
		return
	}

	update := Update{Coordinate: coord, FetchedAt: s.clock.Now()}

	board, err := s.boards.ForCoordinate(ctx, coord)
	if err != nil {
		s.logger.Warn("refresh board fetch failed", "subscription_id", sub.id, "error", err)
		update.Err = err
	} else {
		update.Board = board
	}

	incidents, err := s.incidents.Nearby(ctx, coord, s.radius)
	if err != nil {
		s.logger.Warn("refresh incident fetch failed", "subscription_id", sub.id, "error", err)
		if update.Err == nil {
			update.Err = err
		}
	} else {
		update.Incidents = incidents
	}

	if ctx.Err() != nil {
		return
	}
	sub.deliver(update)
}
