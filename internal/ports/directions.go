package ports

import (
	"context"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// PathResult is the drivable geometry for one direction of a stop sequence.
type PathResult struct {
	// Encoded polyline for map display.
	Geometry string
	// Optional per-leg metrics in stop order; may be empty when the
	// directions endpoint omits segment detail.
	LegDurationSeconds []int
	LegDistanceMeters  []int
	DurationSeconds    int
	DistanceMeters     int
}

// MatrixResult is the pairwise travel matrix for an ordered point list.
// Cells are nil when the service could not route that pair.
type MatrixResult struct {
	Durations [][]*float64
	Distances [][]*float64
}

// Contract for retrieving drivable paths and travel-time matrices from an
// external directions service.
type DirectionsProvider interface {
	// Return the path geometry visiting the points in order.
	GetPath(ctx context.Context, points []domain.Coordinates) (PathResult, error)
	// Return the full pairwise duration/distance matrix for the points.
	GetMatrix(ctx context.Context, points []domain.Coordinates) (MatrixResult, error)
}
