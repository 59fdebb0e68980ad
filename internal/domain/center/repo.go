package center

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Center) error
	GetByID(ctx context.Context, id uuid.UUID) (*Center, error)
	Update(ctx context.Context, c *Center) error
	ListByNGO(ctx context.Context, ngoID uuid.UUID, limit, offset int) ([]*Center, int, error)
	// ListActiveWithLocation returns active centers that have coordinates,
	// for the nearby search.
	ListActiveWithLocation(ctx context.Context) ([]*Center, error)
}
