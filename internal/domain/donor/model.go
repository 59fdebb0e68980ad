package donor

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

// DonationInterval is the minimum gap between whole-blood donations.
const DonationInterval = 90 * 24 * time.Hour

type Donor struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          *string     `json:"phone,omitempty"`
	BloodGroup     blood.Group `json:"blood_group"`
	DateOfBirth    *time.Time  `json:"date_of_birth,omitempty"`
	Address        *string     `json:"address,omitempty"`
	City           *string     `json:"city,omitempty"`
	State          *string     `json:"state,omitempty"`
	LastDonationAt *time.Time  `json:"last_donation_at,omitempty"`
	Available      bool        `json:"available"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// NextEligibleAt is derived from LastDonationAt, never stored.
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
}

// ComputeEligibility fills NextEligibleAt from the last donation date.
func (d *Donor) ComputeEligibility() {
	if d.LastDonationAt == nil {
		d.NextEligibleAt = nil
		return
	}
	next := d.LastDonationAt.Add(DonationInterval)
	d.NextEligibleAt = &next
}

// EligibleAt reports whether the donor may donate at the given time.
func (d *Donor) EligibleAt(t time.Time) bool {
	if !d.Available {
		return false
	}
	if d.LastDonationAt == nil {
		return true
	}
	return !t.Before(d.LastDonationAt.Add(DonationInterval))
}
