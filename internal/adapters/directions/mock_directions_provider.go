package directions

import (
	"context"
	"fmt"
	"sync"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// MockDirectionsProvider serves deterministic paths and matrices from a
// fixed per-leg duration, counting calls so tests can assert cache
// behavior. Leg overrides allow individual pairs to differ or to be
// unroutable (nil matrix cells).
type MockDirectionsProvider struct {
	mu sync.Mutex

	// Seconds used for every adjacent leg unless overridden.
	LegSeconds float64
	// Keyed "i,j" by point index; a nil value marks the pair unroutable.
	Overrides map[string]*float64

	PathCalls   int
	MatrixCalls int
	Err         error
}

func NewMockDirectionsProvider(legSeconds float64) *MockDirectionsProvider {
	return &MockDirectionsProvider{LegSeconds: legSeconds}
}

// SetErr makes subsequent calls fail with err (nil restores success).
func (p *MockDirectionsProvider) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Err = err
}

// Calls returns how many path and matrix requests were served.
func (p *MockDirectionsProvider) Calls() (path, matrix int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PathCalls, p.MatrixCalls
}

func (p *MockDirectionsProvider) GetPath(ctx context.Context, points []domain.Coordinates) (ports.PathResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PathCalls++
	if p.Err != nil {
		return ports.PathResult{}, p.Err
	}

	legs := len(points) - 1
	out := ports.PathResult{Geometry: fmt.Sprintf("poly-%d", legs)}
	for i := 0; i < legs; i++ {
		sec := int(p.LegSeconds)
		out.LegDurationSeconds = append(out.LegDurationSeconds, sec)
		out.LegDistanceMeters = append(out.LegDistanceMeters, sec*10)
		out.DurationSeconds += sec
		out.DistanceMeters += sec * 10
	}
	return out, nil
}

func (p *MockDirectionsProvider) GetMatrix(ctx context.Context, points []domain.Coordinates) (ports.MatrixResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.MatrixCalls++
	if p.Err != nil {
		return ports.MatrixResult{}, p.Err
	}

	n := len(points)
	durations := make([][]*float64, n)
	for i := range durations {
		durations[i] = make([]*float64, n)
		for j := range durations[i] {
			if i == j {
				zero := 0.0
				durations[i][j] = &zero
				continue
			}
			if v, ok := p.Overrides[fmt.Sprintf("%d,%d", i, j)]; ok {
				durations[i][j] = v
				continue
			}
			sec := p.LegSeconds
			durations[i][j] = &sec
		}
	}
	return ports.MatrixResult{Durations: durations}, nil
}
