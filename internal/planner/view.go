package planner

import "github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"

// Derived views over the route. The unassigned pools are never stored:
// they are always recomputed as roster-minus-consumed, which is what keeps
// the partition invariant (pool / one van / absents) from drifting.

// UnassignedKids returns attending kids not riding any van and not absent,
// in roster order.
func (s *Session) UnassignedKids() []domain.Kid {
	out := make([]domain.Kid, 0, len(s.Kids))
	for _, k := range s.Kids {
		if s.Route.KidVan(k.KidID) == "" && !s.Route.IsAbsent(k.KidID) {
			out = append(out, k)
		}
	}
	return out
}

// UnassignedKidsOfSchool returns the unassigned kids of one school,
// preserving roster order.
func (s *Session) UnassignedKidsOfSchool(schoolID string) []domain.Kid {
	var out []domain.Kid
	for _, k := range s.UnassignedKids() {
		if k.SchoolID == schoolID {
			out = append(out, k)
		}
	}
	return out
}

// UnassignedStaff returns staff holding no role on the route, in roster
// order.
func (s *Session) UnassignedStaff() []domain.Staff {
	consumed := s.Route.AssignedStaff()
	out := make([]domain.Staff, 0, len(s.Staff))
	for _, st := range s.Staff {
		if _, ok := consumed[st.StaffID]; !ok {
			out = append(out, st)
		}
	}
	return out
}

// SchoolGroup is one school's slice of a van roster plus its responsible.
type SchoolGroup struct {
	School  domain.School
	Kids    []domain.Kid
	StaffID string
}

// GroupedBySchool returns the van's kids grouped by school in stop order.
func (s *Session) GroupedBySchool(vanID string) []SchoolGroup {
	order := s.Route.SchoolOrder[vanID]
	out := make([]SchoolGroup, 0, len(order))
	for _, schoolID := range order {
		g := SchoolGroup{School: s.Schools[schoolID]}
		for _, k := range s.Route.Kids[vanID] {
			if k.SchoolID == schoolID {
				g.Kids = append(g.Kids, k)
			}
		}
		if resp := s.Route.ResponsibleFor(vanID, schoolID); resp != nil {
			g.StaffID = resp.StaffID
		}
		out = append(out, g)
	}
	return out
}

// StopsFor returns the van's ordered stop points (school coordinates in
// stop order) for the routing subsystem. The fixed origin is not included.
func (s *Session) StopsFor(vanID string) []domain.StopPoint {
	order := s.Route.SchoolOrder[vanID]
	out := make([]domain.StopPoint, 0, len(order))
	for _, schoolID := range order {
		sc, ok := s.Schools[schoolID]
		if !ok {
			continue
		}
		out = append(out, domain.StopPoint{Coord: sc.Coords, SchoolID: schoolID})
	}
	return out
}
