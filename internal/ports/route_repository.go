package ports

import "context"

// Persisted shape of a planning session, as read and written by the
// persistence collaborator: one session record keyed by (date, "pickup"),
// one record per van-with-kids, and per-kid stop rows scoped to the van.

type StopRecord struct {
	KidID     string
	StaffID   string
	StopIndex int
}

type VanRecord struct {
	VanID       string
	DriverID    string
	HelperIDs   []string
	SchoolOrder []string
	ETAMinutes  *int
	Stops       []StopRecord
}

type RouteRecord struct {
	Date      string
	Status    string
	AbsentIDs []string
	Vans      []VanRecord
}

// SaveReport describes the outcome of one persistence pass. Vans are saved
// independently (no multi-van transaction), so a batch can partially
// succeed: committed vans stay committed and FailedVans lists the rest.
type SaveReport struct {
	SavedVans  []string
	FailedVans []string
}

// Complete reports whether every van record was persisted.
func (r SaveReport) Complete() bool { return len(r.FailedVans) == 0 }

// Port: persistence for route-planning sessions.
type RouteRepository interface {
	// Upsert the session record, then each van record in its own
	// transaction with a full replace of that van's stop rows.
	SaveRoute(ctx context.Context, rec RouteRecord) (SaveReport, error)
	// Read back the session persisted for the date; found is false when
	// no session exists yet.
	LoadRoute(ctx context.Context, date string) (rec RouteRecord, found bool, err error)
}
