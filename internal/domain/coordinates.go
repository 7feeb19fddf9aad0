package domain

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lng float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }

// StopPoint is one entry of an ordered stop list handed to the routing
// subsystem. SchoolID is empty for ad hoc points.
type StopPoint struct {
	Coord    Coordinates
	SchoolID string
}
