package routing

import (
	"context"
	"testing"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/adapters/directions"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

var (
	testOrigin = domain.Coordinates{Lat: 49.2827, Lng: -123.1207}
	testStops  = []domain.StopPoint{
		{Coord: domain.Coordinates{Lat: 49.2863, Lng: -123.1345}, SchoolID: "s1"},
		{Coord: domain.Coordinates{Lat: 49.2561, Lng: -123.1686}, SchoolID: "s2"},
	}
)

func TestFingerprint(t *testing.T) {
	fp := Fingerprint(testOrigin, testStops)
	if fp != "49.282700,-123.120700|s1|s2" {
		t.Fatalf("fingerprint = %q", fp)
	}

	// Ad hoc stops without a school id fall back to coordinates.
	adhoc := []domain.StopPoint{{Coord: domain.Coordinates{Lat: 49.25, Lng: -123.1}}}
	fp = Fingerprint(testOrigin, adhoc)
	if fp != "49.282700,-123.120700|49.250000,-123.100000" {
		t.Fatalf("fingerprint = %q", fp)
	}

	// Order matters: a reorder is a different fingerprint.
	reversed := []domain.StopPoint{testStops[1], testStops[0]}
	if Fingerprint(testOrigin, testStops) == Fingerprint(testOrigin, reversed) {
		t.Fatal("reordered stops must fingerprint differently")
	}
}

func TestComputeDerivesLegAndTotalMinutes(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(300)
	p, err := NewPlanner(provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, cached, err := p.Compute(context.Background(), testOrigin, testStops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached {
		t.Fatal("first compute must not be cached")
	}

	// Three points per direction: two 300s legs, 5 minutes each.
	if len(a.ForwardLegs) != 2 || len(a.ReturnLegs) != 2 {
		t.Fatalf("legs = %d/%d, want 2/2", len(a.ForwardLegs), len(a.ReturnLegs))
	}
	for i, l := range a.ForwardLegs {
		if !l.Known || l.Minutes != 5 {
			t.Fatalf("forward leg %d = %+v, want 5 known minutes", i, l)
		}
	}
	if a.ForwardTotal != 10 || a.ReturnTotal != 10 || a.TotalMinutes != 20 {
		t.Fatalf("totals = %d/%d/%d, want 10/10/20", a.ForwardTotal, a.ReturnTotal, a.TotalMinutes)
	}
	if a.Forward.Geometry == "" || a.Return.Geometry == "" {
		t.Fatal("path geometries missing")
	}
}

func TestComputeCachesByFingerprint(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(300)
	p, err := NewPlanner(provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _, err := p.Compute(context.Background(), testOrigin, testStops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths, matrices := provider.Calls()
	if paths != 2 || matrices != 2 {
		t.Fatalf("calls = %d/%d, want 2/2 (forward and return)", paths, matrices)
	}

	second, cached, err := p.Compute(context.Background(), testOrigin, testStops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached || second != first {
		t.Fatal("identical stop order must be served from cache")
	}
	if paths, matrices := provider.Calls(); paths != 2 || matrices != 2 {
		t.Fatalf("calls after hit = %d/%d, want unchanged 2/2", paths, matrices)
	}

	if a, ok := p.Cached(testOrigin, testStops); !ok || a != first {
		t.Fatal("Cached should return the stored artifacts")
	}

	// A reorder misses the cache and fetches again.
	reversed := []domain.StopPoint{testStops[1], testStops[0]}
	if _, cached, err := p.Compute(context.Background(), testOrigin, reversed); err != nil || cached {
		t.Fatalf("reorder: cached=%v err=%v, want fresh compute", cached, err)
	}
}

func TestComputeExcludesUnroutableLegs(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(300)
	provider.Overrides = map[string]*float64{"0,1": nil}
	p, err := NewPlanner(provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _, err := p.Compute(context.Background(), testOrigin, testStops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.ForwardLegs[0].Known {
		t.Fatal("unroutable leg must be marked unknown")
	}
	// Unknown legs are excluded from totals, not counted as zero minutes
	// of a known leg.
	if a.ForwardTotal != 5 {
		t.Fatalf("forward total = %d, want 5", a.ForwardTotal)
	}
}

func TestComputeRejectsEmptyStops(t *testing.T) {
	p, err := NewPlanner(directions.NewMockDirectionsProvider(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := p.Compute(context.Background(), testOrigin, nil); err == nil {
		t.Fatal("empty stop list must be an error")
	}
}
