package routing

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/platform/obs"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
)

// Bounded LRU over stop-order fingerprints. Reorders within a planning
// session bounce between a handful of orderings, so a small cache absorbs
// nearly all repeat traffic.
const cacheSize = 16

type directionFetch struct {
	path   ports.PathResult
	matrix ports.MatrixResult
	err    error
}

// Planner turns an ordered stop list into forward and return route
// artifacts, caching by fingerprint and fetching both directions from the
// directions service concurrently.
type Planner struct {
	provider ports.DirectionsProvider
	cache    *lru.Cache[string, *Artifacts]
}

func NewPlanner(provider ports.DirectionsProvider) (*Planner, error) {
	cache, err := lru.New[string, *Artifacts](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("new routing planner: %w", err)
	}
	return &Planner{provider: provider, cache: cache}, nil
}

// Compute returns the artifacts for origin + stops in order. A fingerprint
// hit short-circuits straight to the cached artifacts (cached=true) with
// no network traffic; a miss issues the two path and two matrix requests,
// derives the leg and total minutes, and caches the result.
func (p *Planner) Compute(
	ctx context.Context,
	origin domain.Coordinates,
	stops []domain.StopPoint,
) (_ *Artifacts, cached bool, err error) {
	defer obs.Time(ctx, "routing.Compute")(&err)

	if len(stops) == 0 {
		return nil, false, fmt.Errorf("compute route: stop list is empty")
	}

	fp := Fingerprint(origin, stops)
	if a, ok := p.cache.Get(fp); ok {
		return a, true, nil
	}

	forwardPts := make([]domain.Coordinates, 0, 1+len(stops))
	forwardPts = append(forwardPts, origin)
	for _, s := range stops {
		forwardPts = append(forwardPts, s.Coord)
	}
	returnPts := make([]domain.Coordinates, len(forwardPts))
	for i, pt := range forwardPts {
		returnPts[len(forwardPts)-1-i] = pt
	}

	// Forward and return are independent; fetch them in parallel.
	forwardCh := make(chan directionFetch, 1)
	returnCh := make(chan directionFetch, 1)
	go func() { forwardCh <- p.fetchDirection(ctx, forwardPts) }()
	go func() { returnCh <- p.fetchDirection(ctx, returnPts) }()

	forward := <-forwardCh
	back := <-returnCh
	if forward.err != nil {
		return nil, false, fmt.Errorf("compute route: forward direction: %w", forward.err)
	}
	if back.err != nil {
		return nil, false, fmt.Errorf("compute route: return direction: %w", back.err)
	}

	a := &Artifacts{
		Fingerprint:   fp,
		Forward:       forward.path,
		Return:        back.path,
		ForwardMatrix: forward.matrix,
		ReturnMatrix:  back.matrix,
		ForwardLegs:   legsFromMatrix(forward.matrix),
		ReturnLegs:    legsFromMatrix(back.matrix),
	}
	a.ForwardTotal = totalMinutes(a.ForwardLegs)
	a.ReturnTotal = totalMinutes(a.ReturnLegs)
	a.TotalMinutes = a.ForwardTotal + a.ReturnTotal

	p.cache.Add(fp, a)
	return a, false, nil
}

// fetchDirection obtains the path geometry and travel matrix for one
// direction of the stop sequence.
func (p *Planner) fetchDirection(ctx context.Context, points []domain.Coordinates) directionFetch {
	path, err := p.provider.GetPath(ctx, points)
	if err != nil {
		return directionFetch{err: fmt.Errorf("get path: %w", err)}
	}
	matrix, err := p.provider.GetMatrix(ctx, points)
	if err != nil {
		return directionFetch{err: fmt.Errorf("get matrix: %w", err)}
	}
	return directionFetch{path: path, matrix: matrix}
}

// Cached returns the artifacts stored for the fingerprint, if any, without
// touching the provider.
func (p *Planner) Cached(origin domain.Coordinates, stops []domain.StopPoint) (*Artifacts, bool) {
	return p.cache.Get(Fingerprint(origin, stops))
}
