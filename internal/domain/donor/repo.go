package donor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

type Filter struct {
	BloodGroup blood.Group
	City       string
	Available  *bool
}

type Repository interface {
	Create(ctx context.Context, d *Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donor, error)
	Update(ctx context.Context, d *Donor) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Donor, int, error)
	RecordDonation(ctx context.Context, id uuid.UUID, at time.Time) error
}
