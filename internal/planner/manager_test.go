package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/adapters/directions"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/routing"
)

type fakeRoster struct {
	kids    []domain.Kid
	staff   []domain.Staff
	schools []domain.School
	vans    []domain.Van
}

func (f *fakeRoster) ListKids(ctx context.Context) ([]domain.Kid, error)    { return f.kids, nil }
func (f *fakeRoster) ListStaff(ctx context.Context) ([]domain.Staff, error) { return f.staff, nil }
func (f *fakeRoster) ListSchools(ctx context.Context) ([]domain.School, error) {
	return f.schools, nil
}
func (f *fakeRoster) ListVans(ctx context.Context) ([]domain.Van, error) { return f.vans, nil }

type fakeRouteRepo struct {
	rec     ports.RouteRecord
	found   bool
	saveErr error
}

func (f *fakeRouteRepo) SaveRoute(ctx context.Context, rec ports.RouteRecord) (ports.SaveReport, error) {
	var report ports.SaveReport
	if f.saveErr != nil {
		for _, vr := range rec.Vans {
			report.FailedVans = append(report.FailedVans, vr.VanID)
		}
		return report, f.saveErr
	}
	f.rec = rec
	f.found = true
	for _, vr := range rec.Vans {
		report.SavedVans = append(report.SavedVans, vr.VanID)
	}
	return report, nil
}

func (f *fakeRouteRepo) LoadRoute(ctx context.Context, date string) (ports.RouteRecord, bool, error) {
	return f.rec, f.found, nil
}

func weekdays() [7]bool {
	var a [7]bool
	for d := time.Monday; d <= time.Friday; d++ {
		a[d] = true
	}
	return a
}

func testRoster() *fakeRoster {
	noWednesday := weekdays()
	noWednesday[time.Wednesday] = false
	return &fakeRoster{
		kids: []domain.Kid{
			{KidID: "k1", Name: "Ava", SchoolID: "s1", Attendance: weekdays()},
			{KidID: "k2", Name: "Ben", SchoolID: "s1", Attendance: noWednesday},
		},
		staff: []domain.Staff{{StaffID: "st1", Name: "Marco"}},
		schools: []domain.School{
			{SchoolID: "s1", Name: "Lord Roberts", Coords: domain.Coordinates{Lat: 49.2863, Lng: -123.1345}},
		},
		vans: []domain.Van{{VanID: "v1", Name: "Van 1", Seats: 6, BoosterSeats: 2}},
	}
}

func TestManagerFiltersKidsByAttendance(t *testing.T) {
	m := NewManager(testRoster(), &fakeRouteRepo{}, nil, domain.Coordinates{}, "hub", nil)

	// 2026-09-02 is a Wednesday; Ben stays home.
	err := m.With(context.Background(), "2026-09-02", func(s *Session) error {
		if len(s.Kids) != 1 || s.Kids[0].KidID != "k1" {
			t.Fatalf("kid universe = %+v, want only k1", s.Kids)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = m.With(context.Background(), "2026-09-03", func(s *Session) error {
		if len(s.Kids) != 2 {
			t.Fatalf("kid universe = %d, want 2 on a thursday", len(s.Kids))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestManagerRejectsInvalidDate(t *testing.T) {
	m := NewManager(testRoster(), &fakeRouteRepo{}, nil, domain.Coordinates{}, "hub", nil)
	err := m.With(context.Background(), "02/09/2026", func(s *Session) error { return nil })
	if err == nil {
		t.Fatal("malformed date must be an error")
	}
}

func TestManagerRestoresPersistedSession(t *testing.T) {
	repo := &fakeRouteRepo{}
	m := NewManager(testRoster(), repo, nil, domain.Coordinates{}, "hub", nil)
	ctx := context.Background()

	err := m.With(ctx, "2026-09-03", func(s *Session) error {
		if err := s.AddKidToVan("k1", "v1"); err != nil {
			return err
		}
		return s.PromoteToDriver("st1", "v1")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Save(ctx, "2026-09-03"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second manager (fresh process) restores the same assignments.
	m2 := NewManager(testRoster(), repo, nil, domain.Coordinates{}, "hub", nil)
	err = m2.With(ctx, "2026-09-03", func(s *Session) error {
		if got := s.Route.KidVan("k1"); got != "v1" {
			t.Fatalf("restored kid van = %q, want v1", got)
		}
		if d := s.Route.Driver("v1"); d == nil || d.StaffID != "st1" {
			t.Fatalf("restored driver = %v, want st1", d)
		}
		if s.Route.Dirty {
			t.Fatal("a freshly restored session is not dirty")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestManagerSaveFailureKeepsDirty(t *testing.T) {
	repo := &fakeRouteRepo{saveErr: errors.New("disk full")}
	m := NewManager(testRoster(), repo, nil, domain.Coordinates{}, "hub", nil)
	ctx := context.Background()

	err := m.With(ctx, "2026-09-03", func(s *Session) error {
		return s.AddKidToVan("k1", "v1")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := m.Save(ctx, "2026-09-03")
	if err == nil {
		t.Fatal("expected save error")
	}
	if report.Complete() {
		t.Fatal("report must list the failed van")
	}

	err = m.With(ctx, "2026-09-03", func(s *Session) error {
		if !s.Route.Dirty {
			t.Fatal("session must stay dirty after a failed save")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestManagerPublishesDebouncedETA(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(300)
	rp, err := routing.NewPlanner(provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sched := routing.NewScheduler(rp, 10*time.Millisecond, nil)

	origin := domain.Coordinates{Lat: 49.2827, Lng: -123.1207}
	m := NewManager(testRoster(), &fakeRouteRepo{}, sched, origin, "hub", nil)
	ctx := context.Background()

	err = m.With(ctx, "2026-09-03", func(s *Session) error {
		return s.AddKidToVan("k1", "v1")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		var eta *int
		err := m.With(ctx, "2026-09-03", func(s *Session) error {
			eta = s.Route.VanETA["v1"]
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if eta != nil {
			// Origin -> s1 and back, 300s each way.
			if *eta != 10 {
				t.Fatalf("eta = %d, want 10", *eta)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for eta publish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	a, err := m.Artifacts(ctx, "2026-09-03", "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil || a.TotalMinutes != 10 {
		t.Fatalf("artifacts = %+v, want total 10", a)
	}
}
