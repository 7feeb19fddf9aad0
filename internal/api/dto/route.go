package dto

// Wire shapes for the planning surface. The UI receives the full derived
// view of a session on every read and after every accepted mutation.

type KidResponse struct {
	KidID        string `json:"kid_id"`
	Name         string `json:"name"`
	SchoolID     string `json:"school_id"`
	NeedsBooster bool   `json:"needs_booster"`
}

type StaffResponse struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
}

type SchoolResponse struct {
	SchoolID      string  `json:"school_id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	DismissalTime string  `json:"dismissal_time"`
}

type VanConfigResponse struct {
	VanID        string `json:"van_id"`
	Name         string `json:"name"`
	Seats        int    `json:"seats"`
	BoosterSeats int    `json:"booster_seats"`
}

type RosterResponse struct {
	Kids    []KidResponse       `json:"kids"`
	Staff   []StaffResponse     `json:"staff"`
	Schools []SchoolResponse    `json:"schools"`
	Vans    []VanConfigResponse `json:"vans"`
}

type SchoolGroupResponse struct {
	SchoolID string        `json:"school_id"`
	Name     string        `json:"name"`
	StaffID  string        `json:"staff_id,omitempty"`
	Kids     []KidResponse `json:"kids"`
}

type VanPlanResponse struct {
	VanID           string                `json:"van_id"`
	Name            string                `json:"name"`
	DriverID        string                `json:"driver_id,omitempty"`
	HelperIDs       []string              `json:"helper_ids"`
	StaffInVan      []string              `json:"staff_in_van"`
	Groups          []SchoolGroupResponse `json:"groups"`
	SchoolOrder     []string              `json:"school_order"`
	SeatsLeft       int                   `json:"seats_left"`
	BoosterCount    int                   `json:"booster_count"`
	OverCapacity    bool                  `json:"over_capacity"`
	BoosterExceeded bool                  `json:"booster_exceeded"`
	ETATotalMinutes *int                  `json:"eta_total_minutes"`
}

type RoutePlanResponse struct {
	Date            string            `json:"date"`
	Status          string            `json:"status"`
	OriginName      string            `json:"origin_name"`
	Dirty           bool              `json:"dirty"`
	Vans            []VanPlanResponse `json:"vans"`
	UnassignedKids  []KidResponse     `json:"unassigned_kids"`
	UnassignedStaff []StaffResponse   `json:"unassigned_staff"`
	Absents         []KidResponse     `json:"absents"`
}

type SaveResponse struct {
	Saved      bool     `json:"saved"`
	FailedVans []string `json:"failed_vans,omitempty"`
	Message    string   `json:"message,omitempty"`
}

type LegResponse struct {
	Minutes int  `json:"minutes"`
	Known   bool `json:"known"`
}

type PathResponse struct {
	Fingerprint     string        `json:"fingerprint"`
	ForwardGeometry string        `json:"forward_geometry"`
	ReturnGeometry  string        `json:"return_geometry"`
	ForwardLegs     []LegResponse `json:"forward_legs"`
	ReturnLegs      []LegResponse `json:"return_legs"`
	ForwardMinutes  int           `json:"forward_minutes"`
	ReturnMinutes   int           `json:"return_minutes"`
	TotalMinutes    int           `json:"total_minutes"`
}
