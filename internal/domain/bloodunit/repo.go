package bloodunit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

// ErrVersionConflict means an update lost an optimistic-concurrency race:
// the row's version moved between read and write.
var ErrVersionConflict = errors.New("blood unit was modified concurrently")

type Filter struct {
	NGOID      uuid.UUID
	CenterID   uuid.UUID
	Status     Status
	BloodGroup blood.Group
}

type Repository interface {
	Create(ctx context.Context, u *BloodUnit) error
	GetByID(ctx context.Context, id uuid.UUID) (*BloodUnit, error)
	// Update writes status, holder, and notes guarded by the unit's version.
	// Returns ErrVersionConflict when the stored version no longer matches.
	Update(ctx context.Context, u *BloodUnit) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*BloodUnit, int, error)
	// ListExpiring returns available units of the NGO expiring inside
	// [from, to], ordered by expiry ascending.
	ListExpiring(ctx context.Context, ngoID uuid.UUID, from, to time.Time) ([]*BloodUnit, error)
	// ApplyTransfer writes the version-guarded unit update and the ledger
	// append in one transaction so a failure leaves neither behind.
	ApplyTransfer(ctx context.Context, u *BloodUnit, rec *TransferRecord) error
	ListTransfers(ctx context.Context, unitID uuid.UUID) ([]*TransferRecord, error)
}
