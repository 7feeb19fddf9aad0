package domain

// Status is the persisted lifecycle state of a route-planning session.
type Status string

const (
	StatusPlanning       Status = "planning"
	StatusWaitingToStart Status = "waiting_to_start"
	StatusInProgress     Status = "in_progress"
	StatusFinished       Status = "finished"
)

// Editable reports whether assignment mutations are permitted in this state.
func (s Status) Editable() bool { return s == StatusPlanning }

// Role names one kind of occupancy a staff member can hold within a van.
type Role string

const (
	RoleDriver      Role = "driver"
	RoleHelper      Role = "helper"
	RoleResponsible Role = "responsible"
)

// RoleAssignment is one occupancy record: a canonical staff id holding one
// role within one van. A person appearing in two role slots is simply two
// records sharing a StaffID; ID is a per-record instance id so copies can
// coexist. SchoolID is set only for responsible records (the school-group
// the staff member answers for).
type RoleAssignment struct {
	ID       string
	StaffID  string
	Role     Role
	VanID    string
	SchoolID string
}

// AssignmentEntry is the derived per-kid view of a van roster: the kid plus
// the staff id responsible for its school-group in that van ("" when the
// group has no responsible yet).
type AssignmentEntry struct {
	Kid     Kid
	StaffID string
}

// Route is the aggregate root of one day's pickup planning session.
//
// Kids, Absents, SchoolOrder, and Roles are the stored assignment state;
// everything else the UI shows (unassigned pools, staff-in-van, grouped
// views) is derived. VanETA maps van id to total forward+return minutes,
// with a nil entry meaning the stop order changed since the last compute.
type Route struct {
	Date        string
	Status      Status
	Vans        []Van
	Kids        map[string][]Kid
	Absents     []Kid
	SchoolOrder map[string][]string
	Roles       []RoleAssignment
	VanETA      map[string]*int
	StartCoords Coordinates
	OriginName  string
	Dirty       bool
}

// NewRoute returns an empty planning session for the given date.
func NewRoute(date string, vans []Van, start Coordinates, originName string) *Route {
	return &Route{
		Date:        date,
		Status:      StatusPlanning,
		Vans:        vans,
		Kids:        make(map[string][]Kid),
		SchoolOrder: make(map[string][]string),
		VanETA:      make(map[string]*int),
		StartCoords: start,
		OriginName:  originName,
	}
}

// VanByID returns the van config for id, or nil when unknown.
func (r *Route) VanByID(vanID string) *Van {
	for i := range r.Vans {
		if r.Vans[i].VanID == vanID {
			return &r.Vans[i]
		}
	}
	return nil
}

// KidVan returns the id of the van the kid currently rides in, or "".
func (r *Route) KidVan(kidID string) string {
	for vanID, kids := range r.Kids {
		for _, k := range kids {
			if k.KidID == kidID {
				return vanID
			}
		}
	}
	return ""
}

// IsAbsent reports whether the kid is in the absentee pool.
func (r *Route) IsAbsent(kidID string) bool {
	for _, k := range r.Absents {
		if k.KidID == kidID {
			return true
		}
	}
	return false
}

// Driver returns the driver role record for the van, or nil.
func (r *Route) Driver(vanID string) *RoleAssignment {
	for i := range r.Roles {
		if r.Roles[i].VanID == vanID && r.Roles[i].Role == RoleDriver {
			return &r.Roles[i]
		}
	}
	return nil
}

// Helpers returns the helper role records for the van.
func (r *Route) Helpers(vanID string) []RoleAssignment {
	var out []RoleAssignment
	for _, ra := range r.Roles {
		if ra.VanID == vanID && ra.Role == RoleHelper {
			out = append(out, ra)
		}
	}
	return out
}

// ResponsibleFor returns the responsible record for (van, school), or nil.
func (r *Route) ResponsibleFor(vanID, schoolID string) *RoleAssignment {
	for i := range r.Roles {
		ra := &r.Roles[i]
		if ra.VanID == vanID && ra.Role == RoleResponsible && ra.SchoolID == schoolID {
			return ra
		}
	}
	return nil
}

// StaffInVan returns the distinct staff ids occupying any role in the van,
// in first-appearance order. This is the denormalized visibility the UI
// uses to keep a pooled staff chip from being double-booked.
func (r *Route) StaffInVan(vanID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ra := range r.Roles {
		if ra.VanID != vanID {
			continue
		}
		if _, ok := seen[ra.StaffID]; ok {
			continue
		}
		seen[ra.StaffID] = struct{}{}
		out = append(out, ra.StaffID)
	}
	return out
}

// AssignedStaff returns the distinct staff ids holding any role on the route.
func (r *Route) AssignedStaff() map[string]struct{} {
	out := make(map[string]struct{}, len(r.Roles))
	for _, ra := range r.Roles {
		out[ra.StaffID] = struct{}{}
	}
	return out
}

// Entries returns the per-kid assignment view for a van, with each entry
// carrying the responsible staff id of its school-group.
func (r *Route) Entries(vanID string) []AssignmentEntry {
	kids := r.Kids[vanID]
	out := make([]AssignmentEntry, 0, len(kids))
	for _, k := range kids {
		staffID := ""
		if resp := r.ResponsibleFor(vanID, k.SchoolID); resp != nil {
			staffID = resp.StaffID
		}
		out = append(out, AssignmentEntry{Kid: k, StaffID: staffID})
	}
	return out
}

// SchoolCount returns how many kids of the given school ride in the van.
func (r *Route) SchoolCount(vanID, schoolID string) int {
	n := 0
	for _, k := range r.Kids[vanID] {
		if k.SchoolID == schoolID {
			n++
		}
	}
	return n
}

// InvalidateETA marks the van's ETA stale until the routing subsystem
// republishes it.
func (r *Route) InvalidateETA(vanID string) {
	r.VanETA[vanID] = nil
}
