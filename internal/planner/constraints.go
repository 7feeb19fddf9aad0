package planner

import (
	"time"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// Kids under this age ride on a booster seat.
const boosterAgeYears = 9

// NeedsBooster reports whether the kid requires a booster seat. An unknown
// birth date counts as needing one (fail-safe: over- rather than
// under-estimate).
func NeedsBooster(kid domain.Kid, now time.Time) bool {
	if kid.BirthDate == nil {
		return true
	}
	return kid.BirthDate.AddDate(boosterAgeYears, 0, 0).After(now)
}

// CountBoosters returns how many kids currently in the van need a booster.
func (s *Session) CountBoosters(vanID string) int {
	now := s.now()
	n := 0
	for _, k := range s.Route.Kids[vanID] {
		if NeedsBooster(k, now) {
			n++
		}
	}
	return n
}

// occupants counts seats in use: assigned kids plus the distinct staff
// bodies aboard (driver and helpers; a responsible rides as one of those).
func (s *Session) occupants(vanID string) int {
	seen := make(map[string]struct{})
	for _, ra := range s.Route.Roles {
		if ra.VanID != vanID {
			continue
		}
		if ra.Role == domain.RoleDriver || ra.Role == domain.RoleHelper {
			seen[ra.StaffID] = struct{}{}
		}
	}
	return len(s.Route.Kids[vanID]) + len(seen)
}

// SeatsLeft returns the van's remaining seats; negative when overbooked.
func (s *Session) SeatsLeft(vanID string) int {
	van := s.Route.VanByID(vanID)
	if van == nil {
		return 0
	}
	return van.Seats - s.occupants(vanID)
}

// IsOverCapacity reports whether the van holds more bodies than seats.
// Capacity checks are advisory: they flag the state for the UI but never
// block an assignment.
func (s *Session) IsOverCapacity(vanID string) bool {
	return s.SeatsLeft(vanID) < 0
}

// IsBoosterExceeded reports whether booster need exceeds booster seats.
func (s *Session) IsBoosterExceeded(vanID string) bool {
	van := s.Route.VanByID(vanID)
	if van == nil {
		return false
	}
	return s.CountBoosters(vanID) > van.BoosterSeats
}
