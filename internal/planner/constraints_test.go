package planner

import (
	"testing"
	"time"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

func TestNeedsBooster(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	young := time.Date(2019, 3, 14, 0, 0, 0, 0, time.UTC)
	if !NeedsBooster(domain.Kid{BirthDate: &young}, now) {
		t.Fatal("a seven-year-old needs a booster")
	}

	old := time.Date(2015, 1, 30, 0, 0, 0, 0, time.UTC)
	if NeedsBooster(domain.Kid{BirthDate: &old}, now) {
		t.Fatal("an eleven-year-old does not need a booster")
	}

	// Unknown birth date counts as needing one.
	if !NeedsBooster(domain.Kid{}, now) {
		t.Fatal("unknown birth date should default to needing a booster")
	}
}

func TestSeatsLeftCountsKidsAndDistinctStaff(t *testing.T) {
	s := testSession()
	if err := s.AddKidToVan("k1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddKidToVan("k2", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// st1 is responsible and helper: one body, one seat.
	if err := s.AddStaffToVan("st1", "v1", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.PromoteToDriver("st2", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 6 seats - 2 kids - 2 staff bodies.
	if got := s.SeatsLeft("v1"); got != 2 {
		t.Fatalf("seats left = %d, want 2", got)
	}
	if s.IsOverCapacity("v1") {
		t.Fatal("van is not over capacity")
	}
}

func TestCapacityFlagsAreAdvisory(t *testing.T) {
	s := testSession()
	s.Route.Vans[0].Seats = 1

	if err := s.AddKidToVan("k1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The second kid still goes in; capacity only flags the state.
	if err := s.AddKidToVan("k2", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.SeatsLeft("v1"); got != -1 {
		t.Fatalf("seats left = %d, want -1", got)
	}
	if !s.IsOverCapacity("v1") {
		t.Fatal("van should be flagged over capacity")
	}
}

func TestIsBoosterExceeded(t *testing.T) {
	s := testSession()
	s.Route.Vans[0].BoosterSeats = 1

	// Both kids have no birth date, so both count as needing boosters.
	if err := s.AddKidToVan("k1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddKidToVan("k2", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.CountBoosters("v1"); got != 2 {
		t.Fatalf("boosters = %d, want 2", got)
	}
	if !s.IsBoosterExceeded("v1") {
		t.Fatal("booster demand should exceed the single booster seat")
	}
}
