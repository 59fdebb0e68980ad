package bloodrequest

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrVersionConflict means a status write lost an optimistic-concurrency
// race against another writer.
var ErrVersionConflict = errors.New("blood request was modified concurrently")

type Filter struct {
	HospitalID uuid.UUID
	NGOID      uuid.UUID
	Status     Status
}

type Repository interface {
	// Create inserts the request and its items in one transaction.
	Create(ctx context.Context, r *BloodRequest) error
	// GetByID returns the request with its items populated.
	GetByID(ctx context.Context, id uuid.UUID) (*BloodRequest, error)
	// Update writes status and delivery fields guarded by the request's
	// version. Returns ErrVersionConflict when the stored version moved.
	Update(ctx context.Context, r *BloodRequest) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*BloodRequest, int, error)
	AppendNote(ctx context.Context, n *RequestNote) error
	ListNotes(ctx context.Context, requestID uuid.UUID) ([]*RequestNote, error)
}
