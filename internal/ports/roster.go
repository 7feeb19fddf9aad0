package ports

import (
	"context"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
)

// Port: a boundary for reading roster records from a data source.
// The planning core treats everything returned here as read-only.
type RosterRepository interface {
	ListKids(ctx context.Context) ([]domain.Kid, error)
	ListStaff(ctx context.Context) ([]domain.Staff, error)
	ListSchools(ctx context.Context) ([]domain.School, error)
	ListVans(ctx context.Context) ([]domain.Van, error)
}
