package organization

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Update(ctx context.Context, o *Organization) error
	List(ctx context.Context, kind Kind, limit, offset int) ([]*Organization, int, error)
	IncrementServedHospitals(ctx context.Context, id uuid.UUID) error
}
