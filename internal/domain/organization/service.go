package organization

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Kind    Kind    `json:"kind"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Organization, error) {
	if !ValidKind(in.Kind) {
		return nil, apperr.Validation("kind must be ngo or hospital")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, apperr.Validation("email is required")
	}
	o := &Organization{
		Kind:    in.Kind,
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   in.Phone,
		Address: in.Address,
		City:    in.City,
		State:   in.State,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.Get(ctx, o.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("organization not found")
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, kind Kind, limit, offset int) ([]*Organization, int, error) {
	if kind != "" && !ValidKind(kind) {
		return nil, 0, apperr.Validation("kind must be ngo or hospital")
	}
	items, total, err := s.repo.List(ctx, kind, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

type UpdateInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
}

// Update edits an organization profile. Organizations may only edit
// themselves; admins may edit anyone and flip the verified flag.
func (s *Service) Update(ctx context.Context, caller auth.Principal, id uuid.UUID, in UpdateInput, verified *bool) (*Organization, error) {
	if caller.Kind != auth.ActorAdmin && caller.ID != id {
		return nil, apperr.Forbidden("cannot edit another organization")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("organization not found")
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return nil, apperr.Validation("email cannot be empty")
		}
		o.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		o.Phone = in.Phone
	}
	if in.Address != nil {
		o.Address = in.Address
	}
	if in.City != nil {
		o.City = in.City
	}
	if in.State != nil {
		o.State = in.State
	}
	if verified != nil {
		if caller.Kind != auth.ActorAdmin {
			return nil, apperr.Forbidden("only admins can change verification")
		}
		o.Verified = *verified
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, apperr.Internal(err)
	}
	return o, nil
}

// EnsureNGO fails with a validation error unless id names an NGO. The
// request lifecycle uses it to validate references on create.
func (s *Service) EnsureNGO(ctx context.Context, id uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil || o.Kind != KindNGO {
		return apperr.Validation("unknown NGO: %s", id)
	}
	return nil
}

// IncrementServedHospitals bumps the NGO's fulfillment counter. Called by
// the request lifecycle when a request completes; deliberately not
// idempotent, one increment per completion transition.
func (s *Service) IncrementServedHospitals(ctx context.Context, ngoID uuid.UUID) error {
	if err := s.repo.IncrementServedHospitals(ctx, ngoID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
