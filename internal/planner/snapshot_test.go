package planner

import (
	"testing"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

func TestSnapshotSkipsEmptyVans(t *testing.T) {
	s := fullyStaffedSession(t)
	if err := s.ReturnKid("k3", "v2", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.PublishETA("v1", 34)

	rec := Snapshot(s.Route)

	if rec.Date != "2026-09-01" || rec.Status != "planning" {
		t.Fatalf("session row = %s/%s", rec.Date, rec.Status)
	}
	if len(rec.AbsentIDs) != 1 || rec.AbsentIDs[0] != "k3" {
		t.Fatalf("absent ids = %v, want [k3]", rec.AbsentIDs)
	}
	if len(rec.Vans) != 1 {
		t.Fatalf("van records = %d, want 1 (v2 is empty)", len(rec.Vans))
	}

	vr := rec.Vans[0]
	if vr.VanID != "v1" || vr.DriverID != "st1" {
		t.Fatalf("van record = %+v", vr)
	}
	if vr.ETAMinutes == nil || *vr.ETAMinutes != 34 {
		t.Fatalf("eta = %v, want 34", vr.ETAMinutes)
	}
	if len(vr.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(vr.Stops))
	}
	for _, stop := range vr.Stops {
		if stop.StaffID != "st1" {
			t.Fatalf("stop %s responsible = %q, want st1", stop.KidID, stop.StaffID)
		}
		if stop.StopIndex != 0 {
			t.Fatalf("stop %s index = %d, want 0", stop.KidID, stop.StopIndex)
		}
	}
}

func TestRestoreRebuildsRolesAndOrder(t *testing.T) {
	s := fullyStaffedSession(t)
	rec := Snapshot(s.Route)

	restored := Restore(rec, s.Route.Vans, s.Kids, s.Route.StartCoords, "hub")

	if restored.Status != domain.StatusPlanning {
		t.Fatalf("status = %s, want planning", restored.Status)
	}
	if got := restored.KidVan("k1"); got != "v1" {
		t.Fatalf("k1 van = %q, want v1", got)
	}
	if got := restored.KidVan("k3"); got != "v2" {
		t.Fatalf("k3 van = %q, want v2", got)
	}
	if d := restored.Driver("v1"); d == nil || d.StaffID != "st1" {
		t.Fatalf("v1 driver = %v, want st1", d)
	}
	if resp := restored.ResponsibleFor("v1", "s1"); resp == nil || resp.StaffID != "st1" {
		t.Fatalf("v1/s1 responsible = %v, want st1", resp)
	}
	if resp := restored.ResponsibleFor("v2", "s2"); resp == nil || resp.StaffID != "st3" {
		t.Fatalf("v2/s2 responsible = %v, want st3", resp)
	}
	if order := restored.SchoolOrder["v1"]; len(order) != 1 || order[0] != "s1" {
		t.Fatalf("v1 order = %v, want [s1]", order)
	}
}

func TestRestoreDropsUnknownKidsAndRepairsOrder(t *testing.T) {
	vans := []domain.Van{{VanID: "v1", Name: "Van 1", Seats: 6}}
	kids := []domain.Kid{
		{KidID: "k1", Name: "Ava", SchoolID: "s1"},
		{KidID: "k2", Name: "Ben", SchoolID: "s2"},
	}
	rec := ports.RouteRecord{
		Date:   "2026-09-01",
		Status: "planning",
		Vans: []ports.VanRecord{{
			VanID:    "v1",
			DriverID: "st1",
			// s9 has no members; s2 is missing from the stored order.
			SchoolOrder: []string{"s9", "s1"},
			Stops: []ports.StopRecord{
				{KidID: "k-gone", StopIndex: 0},
				{KidID: "k1", StopIndex: 1},
				{KidID: "k2", StopIndex: 2},
			},
		}},
	}

	restored := Restore(rec, vans, kids, domain.Coordinates{}, "hub")

	if got := len(restored.Kids["v1"]); got != 2 {
		t.Fatalf("kids in van = %d, want 2 (unknown kid dropped)", got)
	}
	order := restored.SchoolOrder["v1"]
	if len(order) != 2 || order[0] != "s1" || order[1] != "s2" {
		t.Fatalf("repaired order = %v, want [s1 s2]", order)
	}
}
