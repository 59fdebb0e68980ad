package donor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       *string     `json:"phone"`
	BloodGroup  blood.Group `json:"blood_group"`
	DateOfBirth *time.Time  `json:"date_of_birth"`
	Address     *string     `json:"address"`
	City        *string     `json:"city"`
	State       *string     `json:"state"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Donor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, apperr.Validation("email is required")
	}
	if !blood.ValidGroup(in.BloodGroup) {
		return nil, apperr.Validation("invalid blood group: %s", in.BloodGroup)
	}
	d := &Donor{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       in.Phone,
		BloodGroup:  in.BloodGroup,
		DateOfBirth: in.DateOfBirth,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Available:   true,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.Get(ctx, d.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Donor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("donor not found")
	}
	d.ComputeEligibility()
	return d, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Donor, int, error) {
	if f.BloodGroup != "" && !blood.ValidGroup(f.BloodGroup) {
		return nil, 0, apperr.Validation("invalid blood group: %s", f.BloodGroup)
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	for _, d := range items {
		d.ComputeEligibility()
	}
	return items, total, nil
}

type UpdateInput struct {
	Name       *string      `json:"name"`
	Email      *string      `json:"email"`
	Phone      *string      `json:"phone"`
	BloodGroup *blood.Group `json:"blood_group"`
	Address    *string      `json:"address"`
	City       *string      `json:"city"`
	State      *string      `json:"state"`
	Available  *bool        `json:"available"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Donor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("donor not found")
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		d.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		d.Phone = in.Phone
	}
	if in.BloodGroup != nil {
		if !blood.ValidGroup(*in.BloodGroup) {
			return nil, apperr.Validation("invalid blood group: %s", *in.BloodGroup)
		}
		d.BloodGroup = *in.BloodGroup
	}
	if in.Address != nil {
		d.Address = in.Address
	}
	if in.City != nil {
		d.City = in.City
	}
	if in.State != nil {
		d.State = in.State
	}
	if in.Available != nil {
		d.Available = *in.Available
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, apperr.Internal(err)
	}
	d.ComputeEligibility()
	return d, nil
}

// Exists reports whether a donor record is present. The unit lifecycle uses
// it to validate references before registering a donation.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperr.Validation("unknown donor: %s", id)
	}
	return nil
}

// RecordDonation advances the donor's last donation date when a unit is
// collected. Later timestamps win; out-of-order registrations never move
// the date backwards.
func (s *Service) RecordDonation(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := s.repo.RecordDonation(ctx, id, at); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
