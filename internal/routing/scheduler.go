package routing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// DefaultQuiet is the debounce window after the last stop-order change.
const DefaultQuiet = 600 * time.Millisecond

const computeTimeout = 30 * time.Second

// Scheduler debounces ETA recomputation per key (one key per van).
// Scheduling a new recompute cancels a still-pending timer outright; an
// in-flight network fetch is left to finish, but its result is discarded
// by generation check if a newer schedule superseded it before publish.
//
// Failures keep the previous ETA: they are logged and nothing is
// published; the next triggering change tries again.
type Scheduler struct {
	mu      sync.Mutex
	planner *Planner
	quiet   time.Duration
	log     *zap.Logger
	gens    map[string]uint64
	timers  map[string]*time.Timer
}

func NewScheduler(planner *Planner, quiet time.Duration, log *zap.Logger) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		planner: planner,
		quiet:   quiet,
		log:     log,
		gens:    make(map[string]uint64),
		timers:  make(map[string]*time.Timer),
	}
}

// Schedule queues a recompute for the key after the quiet period,
// replacing any pending one. publish runs only if no newer schedule for
// the same key arrived in the meantime.
func (s *Scheduler) Schedule(
	key string,
	origin domain.Coordinates,
	stops []domain.StopPoint,
	publish func(*Artifacts),
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[key]++
	gen := s.gens[key]
	if t := s.timers[key]; t != nil {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(s.quiet, func() {
		s.run(key, gen, origin, stops, publish)
	})
}

// Cancel drops any pending recompute for the key and invalidates in-flight
// ones so their results are discarded.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	if t := s.timers[key]; t != nil {
		t.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) run(key string, gen uint64, origin domain.Coordinates, stops []domain.StopPoint, publish func(*Artifacts)) {
	if s.superseded(key, gen) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), computeTimeout)
	defer cancel()

	artifacts, cached, err := s.planner.Compute(ctx, origin, stops)
	if err != nil {
		s.log.Warn("eta recompute failed; keeping previous eta",
			zap.String("key", key), zap.Error(err))
		return
	}
	if s.superseded(key, gen) {
		return
	}

	s.log.Debug("eta recomputed",
		zap.String("key", key),
		zap.Bool("cached", cached),
		zap.Int("total_minutes", artifacts.TotalMinutes))
	publish(artifacts)
}

// CachedArtifacts exposes the planner's cache lookup for read paths that
// only want already-computed results.
func (s *Scheduler) CachedArtifacts(origin domain.Coordinates, stops []domain.StopPoint) (*Artifacts, bool) {
	return s.planner.Cached(origin, stops)
}

func (s *Scheduler) superseded(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key] != gen
}
