package dto

type ContainerRequest struct {
	Kind  string `json:"kind"`
	VanID string `json:"van_id,omitempty"`
	KidID string `json:"kid_id,omitempty"`
	Index int    `json:"index,omitempty"`
}

// GestureRequest is the wire form of one drag/drop event. Confirmed is set
// when the client re-issues a gesture after a confirmation prompt.
type GestureRequest struct {
	Date        string           `json:"date"`
	Source      ContainerRequest `json:"source"`
	Destination ContainerRequest `json:"destination"`
	EntityID    string           `json:"entity_id"`
	Kind        string           `json:"kind"`
	Confirmed   bool             `json:"confirmed"`
}

type DateRequest struct {
	Date string `json:"date"`
}

type ReopenRequest struct {
	Date      string `json:"date"`
	Confirmed bool   `json:"confirmed"`
}

type StatusRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// ErrorResponse carries a user-facing message. ConfirmationRequired tells
// the client to show a dialog and retry with confirmed=true.
type ErrorResponse struct {
	Error                string `json:"error"`
	ConfirmationRequired bool   `json:"confirmation_required,omitempty"`
}
