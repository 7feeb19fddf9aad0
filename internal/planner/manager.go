package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/routing"
)

// Manager owns the planning sessions, one per date, and is the concurrency
// boundary: sessions themselves are single-threaded, the manager serializes
// every access (including ETA publishes arriving from the debounce
// scheduler's timer goroutines). Cross-user edits of the same date are not
// guarded beyond this; last write wins on save.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	roster     ports.RosterRepository
	routes     ports.RouteRepository
	sched      *routing.Scheduler
	origin     domain.Coordinates
	originName string
	log        *zap.Logger
}

func NewManager(
	roster ports.RosterRepository,
	routes ports.RouteRepository,
	sched *routing.Scheduler,
	origin domain.Coordinates,
	originName string,
	log *zap.Logger,
) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		roster:     roster,
		routes:     routes,
		sched:      sched,
		origin:     origin,
		originName: originName,
		log:        log,
	}
}

// With runs fn against the session for the date, loading or creating it
// first. All mutations and reads go through here.
func (m *Manager) With(ctx context.Context, date string, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.session(ctx, date)
	if err != nil {
		return err
	}
	return fn(sess)
}

// session returns the cached session for the date or builds one from the
// roster and any persisted record. Callers hold m.mu.
func (m *Manager) session(ctx context.Context, date string) (*Session, error) {
	if sess, ok := m.sessions[date]; ok {
		return sess, nil
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("load session: invalid date %q: %w", date, err)
	}

	kids, err := m.roster.ListKids(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: list kids: %w", err)
	}
	staff, err := m.roster.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: list staff: %w", err)
	}
	schools, err := m.roster.ListSchools(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: list schools: %w", err)
	}
	vans, err := m.roster.ListVans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: list vans: %w", err)
	}

	// The kid universe for the date is whoever attends that weekday.
	attending := make([]domain.Kid, 0, len(kids))
	for _, k := range kids {
		if k.AttendsOn(day.Weekday()) {
			attending = append(attending, k)
		}
	}

	var route *domain.Route
	rec, found, err := m.routes.LoadRoute(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load session: load route %s: %w", date, err)
	}
	if found {
		route = Restore(rec, vans, attending, m.origin, m.originName)
	} else {
		route = domain.NewRoute(date, vans, m.origin, m.originName)
	}

	sess := NewSession(route, attending, staff, schools)
	sess.SetStaleNotifier(func(vanID string) { m.scheduleRecompute(date, sess, vanID) })
	m.sessions[date] = sess
	return sess, nil
}

// scheduleRecompute hands the van's current stop list to the debounce
// scheduler. An emptied stop list cancels any pending recompute instead.
func (m *Manager) scheduleRecompute(date string, sess *Session, vanID string) {
	if m.sched == nil {
		return
	}
	key := date + "/" + vanID
	stops := sess.StopsFor(vanID)
	if len(stops) == 0 {
		m.sched.Cancel(key)
		return
	}
	m.sched.Schedule(key, m.origin, stops, func(a *routing.Artifacts) {
		m.publishETA(date, vanID, a)
	})
}

// publishETA writes a finished computation back into the session. It runs
// on a scheduler goroutine, so it re-acquires the manager lock and checks
// the stop order has not changed again since the fetch started.
func (m *Manager) publishETA(date, vanID string, a *routing.Artifacts) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[date]
	if !ok {
		return
	}
	if routing.Fingerprint(m.origin, sess.StopsFor(vanID)) != a.Fingerprint {
		return
	}
	sess.PublishETA(vanID, a.TotalMinutes)
	m.log.Info("van eta published",
		zap.String("date", date),
		zap.String("van_id", vanID),
		zap.Int("total_minutes", a.TotalMinutes))
}

// Artifacts returns the latest cached routing artifacts for the van's
// current stop order, for map display.
func (m *Manager) Artifacts(ctx context.Context, date, vanID string) (*routing.Artifacts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.session(ctx, date)
	if err != nil {
		return nil, err
	}
	stops := sess.StopsFor(vanID)
	if len(stops) == 0 {
		return nil, nil
	}
	if a, ok := m.plannerCache(stops); ok {
		return a, nil
	}
	return nil, nil
}

func (m *Manager) plannerCache(stops []domain.StopPoint) (*routing.Artifacts, bool) {
	if m.sched == nil {
		return nil, false
	}
	return m.sched.CachedArtifacts(m.origin, stops)
}

// Save persists the session. Vans are committed independently; a partial
// failure leaves the session dirty and reports which vans did not save.
func (m *Manager) Save(ctx context.Context, date string) (ports.SaveReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.session(ctx, date)
	if err != nil {
		return ports.SaveReport{}, err
	}

	report, err := m.routes.SaveRoute(ctx, Snapshot(sess.Route))
	if err != nil || !report.Complete() {
		m.log.Warn("route save incomplete",
			zap.String("date", date),
			zap.Strings("failed_vans", report.FailedVans),
			zap.Error(err))
		return report, err
	}
	sess.MarkSaved()
	return report, nil
}
