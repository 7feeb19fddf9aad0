package domain

import "time"

// Roster records are supplied by the roster provider and are read-only
// to the planning core. Role occupancy (driver/helper/responsible) is
// tracked as route-scoped assignment state, never on the records below.

// Kid is a child enrolled in the pickup service.
type Kid struct {
	KidID     string
	Name      string
	SchoolID  string
	BirthDate *time.Time
	// Weekly attendance flags indexed by time.Weekday.
	Attendance [7]bool
}

// AttendsOn reports whether the kid is scheduled for pickup on the given weekday.
func (k Kid) AttendsOn(day time.Weekday) bool { return k.Attendance[day] }

// Staff is a staff member who may occupy driver, helper, or responsible roles.
type Staff struct {
	StaffID string
	Name    string
}

// School is a pickup stop with a fixed location and dismissal time.
type School struct {
	SchoolID      string
	Name          string
	Coords        Coordinates
	DismissalTime string
}

// Van is a vehicle with seat and booster-seat capacity.
type Van struct {
	VanID        string
	Name         string
	Seats        int
	BoosterSeats int
}
