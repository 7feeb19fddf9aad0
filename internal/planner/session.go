package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// Session is the assignment store for one date's planning run: the Route
// aggregate plus the read-only roster universe it draws from.
//
// Every mutation is synchronous and atomic from the caller's perspective;
// callers (the session manager) serialize access, so no locking happens
// here. Mutations validate the route-lock guard first, apply exactly one
// state transition, and mark the route dirty on success.
type Session struct {
	Route   *domain.Route
	Kids    []domain.Kid
	Staff   []domain.Staff
	Schools map[string]domain.School

	now func() time.Time
	// Called whenever a van's ETA is invalidated, so the routing
	// subsystem can schedule a debounced recompute.
	onStale func(vanID string)
}

// NewSession builds a session over the attending kid universe for the
// route's date. Kids and staff are the roster records valid that day.
func NewSession(route *domain.Route, kids []domain.Kid, staff []domain.Staff, schools []domain.School) *Session {
	schoolMap := make(map[string]domain.School, len(schools))
	for _, sc := range schools {
		schoolMap[sc.SchoolID] = sc
	}
	return &Session{
		Route:   route,
		Kids:    kids,
		Staff:   staff,
		Schools: schoolMap,
		now:     time.Now,
	}
}

// SetStaleNotifier registers the callback fired when a van's stop order
// changes and its ETA goes stale.
func (s *Session) SetStaleNotifier(fn func(vanID string)) { s.onStale = fn }

// SetClock overrides the session clock.
func (s *Session) SetClock(now func() time.Time) { s.now = now }

func (s *Session) kidByID(kidID string) (domain.Kid, bool) {
	for _, k := range s.Kids {
		if k.KidID == kidID {
			return k, true
		}
	}
	return domain.Kid{}, false
}

func (s *Session) staffByID(staffID string) (domain.Staff, bool) {
	for _, st := range s.Staff {
		if st.StaffID == staffID {
			return st, true
		}
	}
	return domain.Staff{}, false
}

func (s *Session) schoolName(schoolID string) string {
	if sc, ok := s.Schools[schoolID]; ok {
		return sc.Name
	}
	return schoolID
}

// lockGuard refuses assignment mutations outside the planning state.
func (s *Session) lockGuard() error {
	if !s.Route.Status.Editable() {
		return reject("route is locked (%s); reopen it to make changes", s.Route.Status)
	}
	return nil
}

func (s *Session) markStale(vanID string) {
	s.Route.InvalidateETA(vanID)
	if s.onStale != nil {
		s.onStale(vanID)
	}
}

// AddKidToVan appends the kid to the van's roster. The responsible for the
// kid's school-group, if any, applies automatically since responsibility
// is scoped to (van, school). The school is registered at the end of the
// van's stop order when this is its first member, which stales the ETA.
func (s *Session) AddKidToVan(kidID, vanID string) error {
	if err := s.lockGuard(); err != nil {
		return err
	}
	if s.Route.VanByID(vanID) == nil {
		return reject("unknown van %q", vanID)
	}
	kid, ok := s.kidByID(kidID)
	if !ok {
		return reject("unknown kid %q", kidID)
	}
	if inVan := s.Route.KidVan(kidID); inVan != "" {
		return reject("%s is already assigned to a van", kid.Name)
	}
	if s.Route.IsAbsent(kidID) {
		return reject("%s is marked absent; return them first", kid.Name)
	}

	s.Route.Kids[vanID] = append(s.Route.Kids[vanID], kid)

	if !contains(s.Route.SchoolOrder[vanID], kid.SchoolID) {
		s.Route.SchoolOrder[vanID] = append(s.Route.SchoolOrder[vanID], kid.SchoolID)
		s.markStale(vanID)
	}

	s.Route.Dirty = true
	return nil
}

// ReturnKid removes the kid from fromVanID (when given) and moves it to
// the absentee pool or back to the derived unassigned pool. Removing the
// last member of a school-group prunes the school from the stop order,
// stales the van's ETA, and releases the group's responsible.
//
// Marking a kid absent is the one mutation permitted while the route is
// locked: a no-show after Send still has to be recorded.
func (s *Session) ReturnKid(kidID, fromVanID string, toAbsents bool) error {
	if !toAbsents {
		if err := s.lockGuard(); err != nil {
			return err
		}
	}
	kid, ok := s.kidByID(kidID)
	if !ok {
		return reject("unknown kid %q", kidID)
	}
	// Derive the source van when the caller did not name one, so a kid
	// can never sit in a van and the absentee pool at the same time.
	if fromVanID == "" {
		fromVanID = s.Route.KidVan(kidID)
	}

	if fromVanID != "" {
		kids := s.Route.Kids[fromVanID]
		idx := -1
		for i, k := range kids {
			if k.KidID == kidID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return reject("%s is not in that van", kid.Name)
		}
		s.Route.Kids[fromVanID] = append(kids[:idx], kids[idx+1:]...)
		s.pruneSchoolOrder(fromVanID)
	}

	s.removeFromAbsents(kidID)
	if toAbsents {
		s.Route.Absents = append(s.Route.Absents, kid)
	}

	s.Route.Dirty = true
	return nil
}

// removeFromAbsents drops the kid from the absentee pool if present.
func (s *Session) removeFromAbsents(kidID string) {
	for i, k := range s.Route.Absents {
		if k.KidID == kidID {
			s.Route.Absents = append(s.Route.Absents[:i], s.Route.Absents[i+1:]...)
			return
		}
	}
}

// pruneSchoolOrder repairs the van's stop order after any kid change:
// schools with no remaining members are dropped silently, their
// responsible records released, and the ETA staled. Orphan ids are a
// consistency repair, never an error.
func (s *Session) pruneSchoolOrder(vanID string) {
	order := s.Route.SchoolOrder[vanID]
	kept := order[:0]
	changed := false
	for _, schoolID := range order {
		if s.Route.SchoolCount(vanID, schoolID) > 0 {
			kept = append(kept, schoolID)
			continue
		}
		changed = true
		s.releaseResponsible(vanID, schoolID)
	}
	if changed {
		s.Route.SchoolOrder[vanID] = kept
		s.markStale(vanID)
	}
}

// AddStaffToVan makes the staff member responsible for the van's
// school-group. The person also boards as a helper unless already the
// van's driver or already riding as a helper.
func (s *Session) AddStaffToVan(staffID, vanID, schoolID string) error {
	if err := s.lockGuard(); err != nil {
		return err
	}
	if _, ok := s.staffByID(staffID); !ok {
		return reject("unknown staff %q", staffID)
	}
	if s.Route.SchoolCount(vanID, schoolID) == 0 {
		return reject("no kids from %s in that van", s.schoolName(schoolID))
	}
	if s.Route.ResponsibleFor(vanID, schoolID) != nil {
		return reject("the %s group already has a responsible; remove them first", s.schoolName(schoolID))
	}

	s.addRole(staffID, domain.RoleResponsible, vanID, schoolID)

	driver := s.Route.Driver(vanID)
	isDriver := driver != nil && driver.StaffID == staffID
	if !isDriver && !s.hasRole(staffID, vanID, domain.RoleHelper) {
		s.addRole(staffID, domain.RoleHelper, vanID, "")
	}

	s.Route.Dirty = true
	return nil
}

// ReturnStaff clears every role the staff member holds in the van,
// returning the person to the derived unassigned pool.
func (s *Session) ReturnStaff(staffID, vanID string) error {
	if err := s.lockGuard(); err != nil {
		return err
	}
	removed := false
	kept := s.Route.Roles[:0]
	for _, ra := range s.Route.Roles {
		if ra.VanID == vanID && ra.StaffID == staffID {
			removed = true
			continue
		}
		kept = append(kept, ra)
	}
	if !removed {
		return reject("staff %q has no role in that van", staffID)
	}
	s.Route.Roles = kept
	s.Route.Dirty = true
	return nil
}

// PromoteToDriver makes the staff member the van's driver. An outgoing
// driver becomes a helper under a fresh role record so both copies of the
// same person can coexist during a reorganization.
func (s *Session) PromoteToDriver(staffID, vanID string) error {
	if err := s.lockGuard(); err != nil {
		return err
	}
	if _, ok := s.staffByID(staffID); !ok {
		return reject("unknown staff %q", staffID)
	}
	if out := s.Route.Driver(vanID); out != nil {
		if out.StaffID == staffID {
			return reject("already the driver of that van")
		}
		outgoing := out.StaffID
		s.removeRoleByID(out.ID)
		s.addRole(outgoing, domain.RoleHelper, vanID, "")
	}
	// Invariant: a driver is never simultaneously a helper of the same van.
	s.removeHelper(vanID, staffID)
	s.addRole(staffID, domain.RoleDriver, vanID, "")
	s.Route.Dirty = true
	return nil
}

// DemoteFromDriver vacates the driver seat; the person stays aboard as a
// helper under a fresh role record.
func (s *Session) DemoteFromDriver(vanID string) error {
	if err := s.lockGuard(); err != nil {
		return err
	}
	driver := s.Route.Driver(vanID)
	if driver == nil {
		return reject("that van has no driver")
	}
	staffID := driver.StaffID
	s.removeRoleByID(driver.ID)
	if !s.hasRole(staffID, vanID, domain.RoleHelper) {
		s.addRole(staffID, domain.RoleHelper, vanID, "")
	}
	s.Route.Dirty = true
	return nil
}

// ReorderSchoolOrder moves one school within the van's stop order, staling
// the ETA.
func (s *Session) ReorderSchoolOrder(vanID string, fromIndex, toIndex int) error {
	if err := s.lockGuard(); err != nil {
		return err
	}
	order := s.Route.SchoolOrder[vanID]
	if fromIndex < 0 || fromIndex >= len(order) || toIndex < 0 || toIndex >= len(order) {
		return reject("stop order index out of range")
	}
	if fromIndex == toIndex {
		return nil
	}
	moved := order[fromIndex]
	order = append(order[:fromIndex], order[fromIndex+1:]...)
	order = append(order[:toIndex], append([]string{moved}, order[toIndex:]...)...)
	s.Route.SchoolOrder[vanID] = order
	s.markStale(vanID)
	s.Route.Dirty = true
	return nil
}

// PublishETA records the routing subsystem's combined forward+return
// minutes for the van. Publishing derived data is legal in any lifecycle
// state and does not dirty the route by itself.
func (s *Session) PublishETA(vanID string, minutes int) {
	m := minutes
	s.Route.VanETA[vanID] = &m
}

// MarkSaved clears the dirty flag after a fully successful save.
func (s *Session) MarkSaved() { s.Route.Dirty = false }

func (s *Session) addRole(staffID string, role domain.Role, vanID, schoolID string) {
	s.Route.Roles = append(s.Route.Roles, domain.RoleAssignment{
		ID:       uuid.NewString(),
		StaffID:  staffID,
		Role:     role,
		VanID:    vanID,
		SchoolID: schoolID,
	})
}

func (s *Session) hasRole(staffID, vanID string, role domain.Role) bool {
	for _, ra := range s.Route.Roles {
		if ra.StaffID == staffID && ra.VanID == vanID && ra.Role == role {
			return true
		}
	}
	return false
}

// releaseResponsible drops the (van, school) responsible record when its
// group dissolves. The staff member's companion helper record goes too,
// returning them to the unassigned pool, unless they still answer for
// another group in the van or hold its driver seat.
func (s *Session) releaseResponsible(vanID, schoolID string) {
	resp := s.Route.ResponsibleFor(vanID, schoolID)
	if resp == nil {
		return
	}
	staffID := resp.StaffID
	s.removeRoleByID(resp.ID)

	if s.hasRole(staffID, vanID, domain.RoleResponsible) {
		return
	}
	if d := s.Route.Driver(vanID); d != nil && d.StaffID == staffID {
		return
	}
	s.removeHelper(vanID, staffID)
}

func (s *Session) removeResponsible(vanID, schoolID string) {
	kept := s.Route.Roles[:0]
	for _, ra := range s.Route.Roles {
		if ra.VanID == vanID && ra.Role == domain.RoleResponsible && ra.SchoolID == schoolID {
			continue
		}
		kept = append(kept, ra)
	}
	s.Route.Roles = kept
}

func (s *Session) removeHelper(vanID, staffID string) {
	kept := s.Route.Roles[:0]
	for _, ra := range s.Route.Roles {
		if ra.VanID == vanID && ra.Role == domain.RoleHelper && ra.StaffID == staffID {
			continue
		}
		kept = append(kept, ra)
	}
	s.Route.Roles = kept
}

func (s *Session) removeRoleByID(id string) {
	for i, ra := range s.Route.Roles {
		if ra.ID == id {
			s.Route.Roles = append(s.Route.Roles[:i], s.Route.Roles[i+1:]...)
			return
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
