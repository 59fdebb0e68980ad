package bloodunit

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

// ShelfLife is how long whole blood keeps after collection.
const ShelfLife = 42 * 24 * time.Hour

const DefaultVolumeML = 450
const MinVolumeML = 100

type Status string

const (
	StatusProcessing Status = "processing"
	StatusAvailable  Status = "available"
	StatusAssigned   Status = "assigned"
	StatusUsed       Status = "used"
	StatusExpired    Status = "expired"
	StatusDiscarded  Status = "discarded"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusAvailable, StatusAssigned, StatusUsed, StatusExpired, StatusDiscarded:
		return true
	}
	return false
}

// transitions is the enforced lifecycle graph. used, expired, and discarded
// are terminal.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusAvailable, StatusDiscarded},
	StatusAvailable:  {StatusAssigned, StatusUsed, StatusExpired, StatusDiscarded},
	StatusAssigned:   {StatusUsed, StatusExpired, StatusDiscarded},
}

// CanTransition reports whether the lifecycle graph has an edge from→to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HolderKind identifies what sort of entity physically holds a unit.
type HolderKind string

const (
	HolderNGO      HolderKind = "ngo"
	HolderCenter   HolderKind = "center"
	HolderHospital HolderKind = "hospital"
)

func ValidHolderKind(k HolderKind) bool {
	return k == HolderNGO || k == HolderCenter || k == HolderHospital
}

// HealthMetrics are optional screening readings captured at collection.
type HealthMetrics struct {
	Hemoglobin    *float64 `json:"hemoglobin,omitempty"`
	BloodPressure *string  `json:"blood_pressure,omitempty"`
	WeightKG      *float64 `json:"weight_kg,omitempty"`
}

// BloodUnit is one physical donation tracked through its lifecycle. The
// collecting NGO keeps exclusive mutation rights; holder changes record
// physical possession only.
type BloodUnit struct {
	ID          uuid.UUID   `json:"id"`
	DonorID     uuid.UUID   `json:"donor_id"`
	NGOID       uuid.UUID   `json:"ngo_id"`
	CenterID    uuid.UUID   `json:"center_id"`
	CenterKind  string      `json:"center_kind"`
	BloodGroup  blood.Group `json:"blood_group"`
	VolumeML    int         `json:"volume_ml"`
	CollectedAt time.Time   `json:"collected_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Status      Status      `json:"status"`
	HolderID    uuid.UUID   `json:"holder_id"`
	HolderKind  HolderKind  `json:"holder_kind"`
	Notes       *string     `json:"notes,omitempty"`

	HealthMetrics *HealthMetrics `json:"health_metrics,omitempty"`

	// Version guards read-modify-write updates; a stale write loses.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Transfers is the populated ledger, only filled on detail reads.
	Transfers []*TransferRecord `json:"transfers,omitempty"`
}

// ExpiredBy reports whether the unit's shelf life has lapsed at t.
func (u *BloodUnit) ExpiredBy(t time.Time) bool {
	return !t.Before(u.ExpiresAt)
}

// TransferRecord is one entry of a unit's append-only transfer ledger. The
// ledger is never rewritten; the `to` of the latest entry always matches
// the unit's current holder.
type TransferRecord struct {
	ID         uuid.UUID  `json:"id"`
	UnitID     uuid.UUID  `json:"unit_id"`
	FromID     uuid.UUID  `json:"from_id"`
	FromKind   HolderKind `json:"from_kind"`
	ToID       uuid.UUID  `json:"to_id"`
	ToKind     HolderKind `json:"to_kind"`
	Reason     *string    `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
