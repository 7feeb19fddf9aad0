package planner

import (
	"fmt"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// allowTransition is the directed graph of legal status moves. Transitions
// to in_progress and finished originate on the execution side; the planner
// only observes them.
var allowTransition = map[domain.Status][]domain.Status{
	domain.StatusPlanning:       {domain.StatusWaitingToStart},
	domain.StatusWaitingToStart: {domain.StatusPlanning, domain.StatusInProgress},
	domain.StatusInProgress:     {domain.StatusFinished},
	domain.StatusFinished:       {},
}

// CanTransition reports whether from -> to is a legal status move.
func CanTransition(from, to domain.Status) bool {
	if from == to {
		return true
	}
	for _, s := range allowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Send advances planning -> waiting_to_start once the route is fully
// staffed: every attending kid assigned or absent, every van carrying kids
// has a driver, and every school-group has a responsible. The first
// violated precondition aborts the transition with its specific reason.
func (s *Session) Send() error {
	if s.Route.Status != domain.StatusPlanning {
		return reject("route has already been sent (%s)", s.Route.Status)
	}

	for _, k := range s.Kids {
		if s.Route.KidVan(k.KidID) == "" && !s.Route.IsAbsent(k.KidID) {
			return &PreconditionError{Reason: fmt.Sprintf("%s is not assigned to a van or marked absent", k.Name)}
		}
	}

	for _, van := range s.Route.Vans {
		if len(s.Route.Kids[van.VanID]) == 0 {
			continue
		}
		if s.Route.Driver(van.VanID) == nil {
			return &PreconditionError{Reason: fmt.Sprintf("no driver assigned for %s", van.Name)}
		}
		for _, schoolID := range s.Route.SchoolOrder[van.VanID] {
			if s.Route.ResponsibleFor(van.VanID, schoolID) == nil {
				return &PreconditionError{Reason: fmt.Sprintf(
					"no responsible assigned for %s in %s", s.schoolName(schoolID), van.Name,
				)}
			}
		}
	}

	s.Route.Status = domain.StatusWaitingToStart
	s.Route.Dirty = true
	return nil
}

// Reopen reverts waiting_to_start -> planning. It requires explicit user
// confirmation and is refused once the route is underway.
func (s *Session) Reopen(confirmed bool) error {
	switch s.Route.Status {
	case domain.StatusWaitingToStart:
	case domain.StatusInProgress, domain.StatusFinished:
		return reject("route is %s and can no longer be reopened", s.Route.Status)
	default:
		return reject("route is not locked")
	}
	if !confirmed {
		return &ConfirmationRequired{Reason: "reopening unlocks the route for editing; confirm to continue"}
	}
	s.Route.Status = domain.StatusPlanning
	s.Route.Dirty = true
	return nil
}

// ObserveStatus applies a status reported by the execution side.
func (s *Session) ObserveStatus(to domain.Status) error {
	if !CanTransition(s.Route.Status, to) {
		return fmt.Errorf("observe status: invalid transition %s -> %s", s.Route.Status, to)
	}
	if s.Route.Status != to {
		s.Route.Status = to
		s.Route.Dirty = true
	}
	return nil
}
