package organization

import (
	"time"

	"github.com/google/uuid"
)

// Kind separates the two organization flavors sharing one table.
type Kind string

const (
	KindNGO      Kind = "ngo"
	KindHospital Kind = "hospital"
)

func ValidKind(k Kind) bool {
	return k == KindNGO || k == KindHospital
}

type Organization struct {
	ID              uuid.UUID `json:"id"`
	Kind            Kind      `json:"kind"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone,omitempty"`
	Address         *string   `json:"address,omitempty"`
	City            *string   `json:"city,omitempty"`
	State           *string   `json:"state,omitempty"`
	Verified        bool      `json:"verified"`
	ServedHospitals int       `json:"served_hospitals"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
