package planner

import "github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"

// The transition engine maps a drag gesture to exactly one assignment
// mutation sequence, or to a deliberate no-op. The UI layer only
// translates its native drag events into the Gesture shape below; nothing
// here knows about any gesture library.

// ContainerKind identifies a drop surface.
type ContainerKind string

const (
	// The derived unassigned pool. Never a write target.
	ContainerPool ContainerKind = "pool"
	// A van roster.
	ContainerVan ContainerKind = "van"
	// The absentee pool.
	ContainerAbsents ContainerKind = "absents"
	// A van's school stop-order list.
	ContainerOrder ContainerKind = "order"
	// A responsible slot bound to one kid's row.
	ContainerSlot ContainerKind = "slot"
)

// EntityKind identifies what is being dragged.
type EntityKind string

const (
	EntityKid         EntityKind = "kid"
	EntityStaff       EntityKind = "staff"
	EntitySchoolGroup EntityKind = "school_group"
	EntityOrderPill   EntityKind = "order_pill"
)

// Container locates a drop surface. VanID is set for van, order, and slot
// containers; KidID binds a slot to its row; Index is the position within
// an order list.
type Container struct {
	Kind  ContainerKind
	VanID string
	KidID string
	Index int
}

// Gesture is one drag/drop event. EntityID names the dragged kid, staff
// member, or school (for whole-group drags). Confirmed carries the result
// of a confirmation dialog when the engine asked for one.
type Gesture struct {
	Source      Container
	Destination Container
	EntityID    string
	Kind        EntityKind
	Confirmed   bool
}

// ApplyGesture interprets the gesture and applies the corresponding store
// mutation. Unsupported drops are silent no-ops; guarded drops return a
// Rejection or ConfirmationRequired and leave the route untouched.
func (s *Session) ApplyGesture(g Gesture) error {
	switch g.Kind {
	case EntityStaff:
		return s.applyStaffDrop(g)
	case EntityOrderPill:
		return s.applyOrderDrop(g)
	case EntitySchoolGroup:
		return s.applyGroupDrop(g)
	case EntityKid:
		return s.applyKidDrop(g)
	default:
		return nil
	}
}

// A staff chip lands only on a responsible slot; anywhere else it snaps
// back. Occupied slots refuse the drop outright, and making one person
// responsible for a second school-group in the same van needs explicit
// confirmation (a new role instance is created; the original group keeps
// its responsible).
func (s *Session) applyStaffDrop(g Gesture) error {
	if g.Destination.Kind != ContainerSlot {
		return nil
	}
	vanID := g.Destination.VanID
	kid, ok := s.kidByID(g.Destination.KidID)
	if !ok || s.Route.KidVan(kid.KidID) != vanID {
		return nil
	}

	if s.Route.ResponsibleFor(vanID, kid.SchoolID) != nil {
		return reject("the %s group already has a responsible; remove them first", s.schoolName(kid.SchoolID))
	}

	if s.responsibleElsewhereInVan(g.EntityID, vanID, kid.SchoolID) && !g.Confirmed {
		return &ConfirmationRequired{Reason: "this staff member is already responsible for another school in this van; confirm to assign them twice"}
	}

	return s.AddStaffToVan(g.EntityID, vanID, kid.SchoolID)
}

func (s *Session) responsibleElsewhereInVan(staffID, vanID, schoolID string) bool {
	for _, ra := range s.Route.Roles {
		if ra.StaffID == staffID && ra.VanID == vanID &&
			ra.Role == domain.RoleResponsible && ra.SchoolID != schoolID {
			return true
		}
	}
	return false
}

// A stop-order pill moves only within its own van's order list.
func (s *Session) applyOrderDrop(g Gesture) error {
	if g.Source.Kind != ContainerOrder || g.Destination.Kind != ContainerOrder {
		return nil
	}
	if g.Source.VanID != g.Destination.VanID {
		return nil
	}
	return s.ReorderSchoolOrder(g.Source.VanID, g.Source.Index, g.Destination.Index)
}

// A whole school group fans out to one AddKidToVan (or absent mark) per
// unassigned kid, preserving source order.
func (s *Session) applyGroupDrop(g Gesture) error {
	kids := s.UnassignedKidsOfSchool(g.EntityID)
	switch g.Destination.Kind {
	case ContainerVan:
		for _, k := range kids {
			if err := s.AddKidToVan(k.KidID, g.Destination.VanID); err != nil {
				return err
			}
		}
		return nil
	case ContainerAbsents:
		for _, k := range kids {
			if err := s.ReturnKid(k.KidID, "", true); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// A single kid: pool destinations are ignored (pool membership is derived,
// never written); absents and van destinations drain the source first.
func (s *Session) applyKidDrop(g Gesture) error {
	fromVan := s.Route.KidVan(g.EntityID)
	switch g.Destination.Kind {
	case ContainerAbsents:
		return s.ReturnKid(g.EntityID, fromVan, true)
	case ContainerVan:
		if fromVan == g.Destination.VanID {
			return nil
		}
		if fromVan != "" || s.Route.IsAbsent(g.EntityID) {
			if err := s.ReturnKid(g.EntityID, fromVan, false); err != nil {
				return err
			}
		}
		return s.AddKidToVan(g.EntityID, g.Destination.VanID)
	default:
		return nil
	}
}
