package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/platform/obs"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// ORSDirectionsProvider implements DirectionsProvider using
// OpenRouteService: the directions endpoint for path geometry and the
// matrix endpoint for pairwise travel times. External calls retry with
// backoff. The provider is safe for concurrent use.
type ORSDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewORSDirectionsProvider(apiKey string) (*ORSDirectionsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDirectionsProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
	}

	return provider, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
	} `json:"routes"`
}

// GetPath requests the drivable path visiting the points in order and
// returns its encoded geometry plus total and per-segment metrics.
func (o *ORSDirectionsProvider) GetPath(
	ctx context.Context,
	points []domain.Coordinates,
) (_ ports.PathResult, err error) {
	defer obs.Time(ctx, "ors.GetPath")(&err)

	if len(points) < 2 {
		return ports.PathResult{}, errors.New("get ORS path: need at least two points")
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{Coordinates: coordsList(points)})
	if err != nil {
		return ports.PathResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.PathResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.PathResult{}, fmt.Errorf("decode directions response: %w", err)
	}
	if len(dr.Routes) == 0 {
		return ports.PathResult{}, errors.New("directions response contains no routes")
	}

	route := dr.Routes[0]
	out := ports.PathResult{
		Geometry:        route.Geometry,
		DurationSeconds: roundToInt(route.Summary.Duration),
		DistanceMeters:  roundToInt(route.Summary.Distance),
	}
	for _, seg := range route.Segments {
		out.LegDurationSeconds = append(out.LegDurationSeconds, roundToInt(seg.Duration))
		out.LegDistanceMeters = append(out.LegDistanceMeters, roundToInt(seg.Distance))
	}

	return out, nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// GetMatrix requests the full pairwise duration/distance matrix for the
// points. Unroutable pairs come back as nil cells and are passed through
// untouched; the ETA derivation decides how to treat them.
func (o *ORSDirectionsProvider) GetMatrix(
	ctx context.Context,
	points []domain.Coordinates,
) (_ ports.MatrixResult, err error) {
	defer obs.Time(ctx, "ors.GetMatrix")(&err)

	if len(points) < 2 {
		return ports.MatrixResult{}, errors.New("get ORS matrix: need at least two points")
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(matrixRequest{
		Locations: coordsList(points),
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return ports.MatrixResult{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.MatrixResult{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.MatrixResult{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Durations) != len(points) {
		return ports.MatrixResult{}, fmt.Errorf(
			"expected %d matrix rows; got %d", len(points), len(mr.Durations),
		)
	}

	return ports.MatrixResult{Durations: mr.Durations, Distances: mr.Distances}, nil
}

func coordsList(points []domain.Coordinates) [][]float64 {
	out := make([][]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.CoordsToList())
	}
	return out
}

// ORS returns float metrics; round to nearest integer for domain consistency.
func roundToInt(v float64) int { return int(math.Round(v)) }
