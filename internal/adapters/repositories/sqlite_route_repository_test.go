package repositories

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection, or each pooled conn would see its own empty memory db.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func testRecord() ports.RouteRecord {
	eta := 34
	return ports.RouteRecord{
		Date:      "2026-09-01",
		Status:    "planning",
		AbsentIDs: []string{"k3"},
		Vans: []ports.VanRecord{{
			VanID:       "v1",
			DriverID:    "st1",
			HelperIDs:   []string{"st2"},
			SchoolOrder: []string{"s1", "s2"},
			ETAMinutes:  &eta,
			Stops: []ports.StopRecord{
				{KidID: "k1", StaffID: "st2", StopIndex: 0},
				{KidID: "k2", StaffID: "st2", StopIndex: 0},
				{KidID: "k4", StaffID: "", StopIndex: 1},
			},
		}},
	}
}

func TestSaveAndLoadRoute(t *testing.T) {
	repo := NewSqliteRouteRepository(openTestDB(t), nil)
	ctx := context.Background()

	report, err := repo.SaveRoute(ctx, testRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Complete() || len(report.SavedVans) != 1 {
		t.Fatalf("report = %+v, want one saved van", report)
	}

	got, found, err := repo.LoadRoute(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("saved route not found")
	}
	if got.Status != "planning" {
		t.Fatalf("status = %q, want planning", got.Status)
	}
	if len(got.AbsentIDs) != 1 || got.AbsentIDs[0] != "k3" {
		t.Fatalf("absent ids = %v, want [k3]", got.AbsentIDs)
	}
	if len(got.Vans) != 1 {
		t.Fatalf("vans = %d, want 1", len(got.Vans))
	}

	vr := got.Vans[0]
	if vr.DriverID != "st1" || len(vr.HelperIDs) != 1 || vr.HelperIDs[0] != "st2" {
		t.Fatalf("van record = %+v", vr)
	}
	if len(vr.SchoolOrder) != 2 || vr.SchoolOrder[0] != "s1" {
		t.Fatalf("school order = %v, want [s1 s2]", vr.SchoolOrder)
	}
	if vr.ETAMinutes == nil || *vr.ETAMinutes != 34 {
		t.Fatalf("eta = %v, want 34", vr.ETAMinutes)
	}
	// Stop rows come back in stop order, insertion order within a stop.
	if len(vr.Stops) != 3 || vr.Stops[0].KidID != "k1" || vr.Stops[1].KidID != "k2" || vr.Stops[2].KidID != "k4" {
		t.Fatalf("stops = %+v", vr.Stops)
	}
}

func TestLoadRouteNotFound(t *testing.T) {
	repo := NewSqliteRouteRepository(openTestDB(t), nil)

	_, found, err := repo.LoadRoute(context.Background(), "2026-09-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("found should be false for an unsaved date")
	}
}

func TestSaveRouteDropsEmptiedVans(t *testing.T) {
	repo := NewSqliteRouteRepository(openTestDB(t), nil)
	ctx := context.Background()

	rec := testRecord()
	rec.Vans = append(rec.Vans, ports.VanRecord{
		VanID:       "v2",
		DriverID:    "st3",
		SchoolOrder: []string{"s2"},
		Stops:       []ports.StopRecord{{KidID: "k5", StopIndex: 0}},
	})
	if _, err := repo.SaveRoute(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second save without v2: its record and stops disappear.
	if _, err := repo.SaveRoute(ctx, testRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, found, err := repo.LoadRoute(ctx, "2026-09-01")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(got.Vans) != 1 || got.Vans[0].VanID != "v1" {
		t.Fatalf("vans = %+v, want only v1", got.Vans)
	}
}

func TestSaveRouteOverwritesStops(t *testing.T) {
	repo := NewSqliteRouteRepository(openTestDB(t), nil)
	ctx := context.Background()

	if _, err := repo.SaveRoute(ctx, testRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := testRecord()
	rec.Vans[0].Stops = rec.Vans[0].Stops[:1]
	rec.Vans[0].ETAMinutes = nil
	if _, err := repo.SaveRoute(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _, err := repo.LoadRoute(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Vans[0].Stops) != 1 {
		t.Fatalf("stops = %+v, want the replaced single row", got.Vans[0].Stops)
	}
	if got.Vans[0].ETAMinutes != nil {
		t.Fatalf("eta = %v, want nil after stale save", got.Vans[0].ETAMinutes)
	}
}
