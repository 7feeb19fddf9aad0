package planner

import (
	"github.com/google/uuid"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// Snapshot flattens the route into its persisted record shape: the session
// row, one van record per van-with-kids, and per-kid stop rows carrying
// the responsible staff id and the school's stop index.
func Snapshot(route *domain.Route) ports.RouteRecord {
	rec := ports.RouteRecord{
		Date:   route.Date,
		Status: string(route.Status),
	}
	for _, k := range route.Absents {
		rec.AbsentIDs = append(rec.AbsentIDs, k.KidID)
	}

	for _, van := range route.Vans {
		kids := route.Kids[van.VanID]
		if len(kids) == 0 {
			continue
		}

		vr := ports.VanRecord{
			VanID:       van.VanID,
			SchoolOrder: append([]string(nil), route.SchoolOrder[van.VanID]...),
			ETAMinutes:  route.VanETA[van.VanID],
		}
		if d := route.Driver(van.VanID); d != nil {
			vr.DriverID = d.StaffID
		}
		for _, h := range route.Helpers(van.VanID) {
			vr.HelperIDs = append(vr.HelperIDs, h.StaffID)
		}

		stopIndex := make(map[string]int, len(vr.SchoolOrder))
		for i, schoolID := range vr.SchoolOrder {
			stopIndex[schoolID] = i
		}
		for _, kid := range kids {
			staffID := ""
			if resp := route.ResponsibleFor(van.VanID, kid.SchoolID); resp != nil {
				staffID = resp.StaffID
			}
			vr.Stops = append(vr.Stops, ports.StopRecord{
				KidID:     kid.KidID,
				StaffID:   staffID,
				StopIndex: stopIndex[kid.SchoolID],
			})
		}

		rec.Vans = append(rec.Vans, vr)
	}

	return rec
}

// Restore rebuilds the route aggregate from its persisted record. Role
// records are re-derived: driver and helper ids become fresh role
// instances, and each distinct (van, school) -> staff pairing in the stop
// rows becomes a responsible record. Kids no longer on the roster are
// dropped, and the stop order is pruned to the schools actually present.
func Restore(
	rec ports.RouteRecord,
	vans []domain.Van,
	kids []domain.Kid,
	start domain.Coordinates,
	originName string,
) *domain.Route {
	route := domain.NewRoute(rec.Date, vans, start, originName)
	route.Status = domain.Status(rec.Status)

	kidByID := make(map[string]domain.Kid, len(kids))
	for _, k := range kids {
		kidByID[k.KidID] = k
	}

	for _, id := range rec.AbsentIDs {
		if k, ok := kidByID[id]; ok {
			route.Absents = append(route.Absents, k)
		}
	}

	for _, vr := range rec.Vans {
		if route.VanByID(vr.VanID) == nil {
			continue
		}

		if vr.DriverID != "" {
			route.Roles = append(route.Roles, domain.RoleAssignment{
				ID: uuid.NewString(), StaffID: vr.DriverID, Role: domain.RoleDriver, VanID: vr.VanID,
			})
		}
		for _, helperID := range vr.HelperIDs {
			route.Roles = append(route.Roles, domain.RoleAssignment{
				ID: uuid.NewString(), StaffID: helperID, Role: domain.RoleHelper, VanID: vr.VanID,
			})
		}

		responsible := make(map[string]string)
		for _, stop := range vr.Stops {
			k, ok := kidByID[stop.KidID]
			if !ok {
				continue
			}
			route.Kids[vr.VanID] = append(route.Kids[vr.VanID], k)
			if stop.StaffID != "" {
				responsible[k.SchoolID] = stop.StaffID
			}
		}
		for schoolID, staffID := range responsible {
			route.Roles = append(route.Roles, domain.RoleAssignment{
				ID: uuid.NewString(), StaffID: staffID, Role: domain.RoleResponsible,
				VanID: vr.VanID, SchoolID: schoolID,
			})
		}

		present := make(map[string]struct{})
		for _, k := range route.Kids[vr.VanID] {
			present[k.SchoolID] = struct{}{}
		}
		for _, schoolID := range vr.SchoolOrder {
			if _, ok := present[schoolID]; ok {
				route.SchoolOrder[vr.VanID] = append(route.SchoolOrder[vr.VanID], schoolID)
				delete(present, schoolID)
			}
		}
		// Schools present but missing from the stored order get appended.
		for _, k := range route.Kids[vr.VanID] {
			if _, ok := present[k.SchoolID]; ok {
				route.SchoolOrder[vr.VanID] = append(route.SchoolOrder[vr.VanID], k.SchoolID)
				delete(present, k.SchoolID)
			}
		}

		route.VanETA[vr.VanID] = vr.ETAMinutes
	}

	return route
}
