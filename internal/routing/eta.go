package routing

import (
	"math"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// Leg is the travel time of one adjacent hop in a stop sequence. Known is
// false when the matrix had no routable value for the pair; unknown legs
// are excluded from totals, never counted as zero.
type Leg struct {
	Minutes int
	Known   bool
}

// legsFromMatrix reads the adjacent-index cells matrix[i][i+1] of a
// travel-time matrix, rounding seconds to the nearest minute.
func legsFromMatrix(m ports.MatrixResult) []Leg {
	n := len(m.Durations)
	if n < 2 {
		return nil
	}
	legs := make([]Leg, 0, n-1)
	for i := 0; i < n-1; i++ {
		row := m.Durations[i]
		if i+1 >= len(row) || row[i+1] == nil {
			legs = append(legs, Leg{})
			continue
		}
		legs = append(legs, Leg{
			Minutes: int(math.Round(*row[i+1] / 60)),
			Known:   true,
		})
	}
	return legs
}

// totalMinutes sums the known legs of one direction.
func totalMinutes(legs []Leg) int {
	total := 0
	for _, l := range legs {
		if l.Known {
			total += l.Minutes
		}
	}
	return total
}

// Artifacts bundles everything one stop-order fingerprint produced: both
// path geometries, both matrices, the derived per-leg minutes, and the
// combined forward+return total published as the van's ETA.
type Artifacts struct {
	Fingerprint   string
	Forward       ports.PathResult
	Return        ports.PathResult
	ForwardMatrix ports.MatrixResult
	ReturnMatrix  ports.MatrixResult
	ForwardLegs   []Leg
	ReturnLegs    []Leg
	ForwardTotal  int
	ReturnTotal   int
	TotalMinutes  int
}
