package center

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes permanent blood banks from time-boxed donation camps.
type Kind string

const (
	KindBloodBank    Kind = "blood_bank"
	KindDonationCamp Kind = "donation_camp"
)

func ValidKind(k Kind) bool {
	return k == KindBloodBank || k == KindDonationCamp
}

type Center struct {
	ID        uuid.UUID `json:"id"`
	NGOID     uuid.UUID `json:"ngo_id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	State     *string   `json:"state,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`

	// Camp window; nil for permanent blood banks.
	CampStartAt *time.Time `json:"camp_start_at,omitempty"`
	CampEndAt   *time.Time `json:"camp_end_at,omitempty"`

	// BloodInventory is a derived cache written only by the inventory
	// aggregator; blood_unit rows remain the source of truth.
	BloodInventory json.RawMessage `json:"blood_inventory,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// DistanceKm is populated by Nearby, never stored.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

const earthRadiusKm = 6371.0

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
