package planner

import (
	"errors"
	"testing"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// fullyStaffedSession assigns every kid, a driver per occupied van, and a
// responsible per school-group so Send succeeds.
func fullyStaffedSession(t *testing.T) *Session {
	t.Helper()
	s := testSession()
	for _, step := range []error{
		s.AddKidToVan("k1", "v1"),
		s.AddKidToVan("k2", "v1"),
		s.AddKidToVan("k3", "v2"),
		s.PromoteToDriver("st1", "v1"),
		s.PromoteToDriver("st2", "v2"),
		s.AddStaffToVan("st1", "v1", "s1"),
		s.AddStaffToVan("st3", "v2", "s2"),
	} {
		if step != nil {
			t.Fatalf("setup: %v", step)
		}
	}
	return s
}

func TestSendPreconditionUnassignedKid(t *testing.T) {
	s := testSession()
	if err := s.AddKidToVan("k1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Send()
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if pre.Reason != "Ben is not assigned to a van or marked absent" {
		t.Fatalf("reason = %q", pre.Reason)
	}
	if s.Route.Status != domain.StatusPlanning {
		t.Fatalf("status = %s, want planning", s.Route.Status)
	}
}

func TestSendPreconditionMissingDriver(t *testing.T) {
	s := fullyStaffedSession(t)
	if err := s.ReturnStaff("st1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Send()
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if pre.Reason != "no driver assigned for Van 1" {
		t.Fatalf("reason = %q", pre.Reason)
	}
}

func TestSendPreconditionMissingResponsible(t *testing.T) {
	s := fullyStaffedSession(t)
	s.removeResponsible("v2", "s2")

	err := s.Send()
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if pre.Reason != "no responsible assigned for Queen Elizabeth in Van 2" {
		t.Fatalf("reason = %q", pre.Reason)
	}
}

func TestSendIgnoresEmptyVansAndAbsents(t *testing.T) {
	s := testSession()
	for _, step := range []error{
		s.AddKidToVan("k1", "v1"),
		s.AddKidToVan("k2", "v1"),
		s.ReturnKid("k3", "", true),
		s.PromoteToDriver("st1", "v1"),
		s.AddStaffToVan("st2", "v1", "s1"),
	} {
		if step != nil {
			t.Fatalf("setup: %v", step)
		}
	}

	// v2 carries no kids, so it needs neither driver nor responsible.
	if err := s.Send(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Route.Status != domain.StatusWaitingToStart {
		t.Fatalf("status = %s, want waiting_to_start", s.Route.Status)
	}
}

func TestSendThenReopen(t *testing.T) {
	s := fullyStaffedSession(t)
	if err := s.Send(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Send(); !IsRejection(err) {
		t.Fatalf("expected rejection for double send, got %v", err)
	}

	err := s.Reopen(false)
	if !NeedsConfirmation(err) {
		t.Fatalf("expected confirmation prompt, got %v", err)
	}
	if s.Route.Status != domain.StatusWaitingToStart {
		t.Fatalf("status = %s, want waiting_to_start", s.Route.Status)
	}

	if err := s.Reopen(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Route.Status != domain.StatusPlanning {
		t.Fatalf("status = %s, want planning", s.Route.Status)
	}
}

func TestReopenRefusedOnceUnderway(t *testing.T) {
	s := fullyStaffedSession(t)
	if err := s.Send(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.ObserveStatus(domain.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Reopen(true); !IsRejection(err) {
		t.Fatalf("expected rejection, got %v", err)
	}

	if err := s.ObserveStatus(domain.StatusFinished); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Reopen(true); !IsRejection(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestObserveStatusRejectsIllegalTransitions(t *testing.T) {
	s := testSession()

	if err := s.ObserveStatus(domain.StatusInProgress); err == nil {
		t.Fatal("planning -> in_progress must be rejected")
	}
	if err := s.ObserveStatus(domain.StatusFinished); err == nil {
		t.Fatal("planning -> finished must be rejected")
	}
	// Observing the current status is a no-op, not an error.
	if err := s.ObserveStatus(domain.StatusPlanning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
