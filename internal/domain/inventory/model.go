// Package inventory maintains the derived per-center blood stock summary.
// Blood unit rows stay the source of truth; the summary is a materialized
// cache rebuilt in full after every unit mutation, stale at worst until the
// next rebuild.
package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

// GroupCount is one blood group's stock at a center: units physically
// there vs. units still available for transfer.
type GroupCount struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

type CenterSummary struct {
	CenterID   uuid.UUID                  `json:"center_id"`
	CenterName string                     `json:"center_name"`
	CenterKind string                     `json:"center_kind"`
	Groups     map[blood.Group]GroupCount `json:"groups"`
}

// ExpiringUnit is one available unit close to the end of its shelf life.
type ExpiringUnit struct {
	UnitID        uuid.UUID   `json:"unit_id"`
	CenterID      uuid.UUID   `json:"center_id"`
	BloodGroup    blood.Group `json:"blood_group"`
	ExpiresAt     time.Time   `json:"expires_at"`
	DaysRemaining int         `json:"days_remaining"`
}

// Summary is the NGO-wide inventory view.
type Summary struct {
	NGOID        uuid.UUID        `json:"ngo_id"`
	Centers      []*CenterSummary `json:"centers"`
	ExpiringSoon []*ExpiringUnit  `json:"expiring_soon"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// emptyCounts is the zeroed full blood-group grid, so summaries always
// carry every group and rebuilds are byte-for-byte deterministic.
func emptyCounts() map[blood.Group]GroupCount {
	m := make(map[blood.Group]GroupCount, 8)
	for _, g := range blood.Groups() {
		m[g] = GroupCount{}
	}
	return m
}
