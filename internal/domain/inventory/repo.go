package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

type Repository interface {
	// AggregateCenter scans blood units whose center and current holder
	// both match the center, grouped by blood group.
	AggregateCenter(ctx context.Context, centerID uuid.UUID) (map[blood.Group]GroupCount, error)
	// SaveCenterInventory writes the rebuilt counts onto the center row.
	SaveCenterInventory(ctx context.Context, centerID uuid.UUID, counts map[blood.Group]GroupCount) error
	// ListCenterSummaries returns the NGO's centers with their stored
	// inventory snapshots.
	ListCenterSummaries(ctx context.Context, ngoID uuid.UUID) ([]*CenterSummary, error)
	// ListExpiring returns the NGO's available units expiring inside
	// [from, to], ordered by expiry ascending.
	ListExpiring(ctx context.Context, ngoID uuid.UUID, from, to time.Time) ([]*ExpiringUnit, error)
}
