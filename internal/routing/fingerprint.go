package routing

import (
	"fmt"
	"strings"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// Fingerprint derives the cache key for an ordered stop list: the origin
// coordinate plus each stop's school id in order, falling back to the
// coordinate pair for stops without one. Two stop lists with the same
// fingerprint are identical for caching purposes.
func Fingerprint(origin domain.Coordinates, stops []domain.StopPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.6f,%.6f", origin.Lat, origin.Lng)
	for _, s := range stops {
		if s.SchoolID != "" {
			b.WriteByte('|')
			b.WriteString(s.SchoolID)
			continue
		}
		fmt.Fprintf(&b, "|%.6f,%.6f", s.Coord.Lat, s.Coord.Lng)
	}
	return b.String()
}
