package center

import (
	"context"
	"sort"
	"strings"
	"time"

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
	Kind        Kind       `json:"kind"`
	Name        string     `json:"name"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	State       *string    `json:"state"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	CampStartAt *time.Time `json:"camp_start_at"`
	CampEndAt   *time.Time `json:"camp_end_at"`
}

func (s *Service) Create(ctx context.Context, caller auth.Principal, in CreateInput) (*Center, error) {
	if !ValidKind(in.Kind) {
		return nil, apperr.Validation("kind must be blood_bank or donation_camp")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperr.Validation("latitude and longitude must be given together")
	}
	if in.Kind == KindDonationCamp {
		if in.CampStartAt == nil || in.CampEndAt == nil {
			return nil, apperr.Validation("donation camps need a camp window")
		}
		if !in.CampEndAt.After(*in.CampStartAt) {
			return nil, apperr.Validation("camp window must end after it starts")
		}
	}
	c := &Center{
		NGOID:       caller.ID,
		Kind:        in.Kind,
		Name:        strings.TrimSpace(in.Name),
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CampStartAt: in.CampStartAt,
		CampEndAt:   in.CampEndAt,
		Active:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.Get(ctx, c.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Center, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("center not found")
	}
	return c, nil
}

func (s *Service) ListByNGO(ctx context.Context, ngoID uuid.UUID, limit, offset int) ([]*Center, int, error) {
	items, total, err := s.repo.ListByNGO(ctx, ngoID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

type UpdateInput struct {
	Name        *string    `json:"name"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	State       *string    `json:"state"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	CampStartAt *time.Time `json:"camp_start_at"`
	CampEndAt   *time.Time `json:"camp_end_at"`
	Active      *bool      `json:"active"`
}

func (s *Service) Update(ctx context.Context, caller auth.Principal, id uuid.UUID, in UpdateInput) (*Center, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("center not found")
	}
	if caller.Kind != auth.ActorAdmin && c.NGOID != caller.ID {
		return nil, apperr.NotFound("center not found")
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		c.Address = in.Address
	}
	if in.City != nil {
		c.City = in.City
	}
	if in.State != nil {
		c.State = in.State
	}
	if in.Latitude != nil {
		c.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		c.Longitude = in.Longitude
	}
	if in.CampStartAt != nil {
		c.CampStartAt = in.CampStartAt
	}
	if in.CampEndAt != nil {
		c.CampEndAt = in.CampEndAt
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

// Nearby returns active centers within radiusKm of the given point, closest
// first. The candidate set is small enough that the distance filter runs in
// process rather than in SQL.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]*Center, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("invalid coordinates")
	}
	if radiusKm <= 0 {
		radiusKm = 50
	}
	candidates, err := s.repo.ListActiveWithLocation(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var result []*Center
	for _, c := range candidates {
		d := haversineKm(lat, lng, *c.Latitude, *c.Longitude)
		if d <= radiusKm {
			dist := d
			c.DistanceKm = &dist
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return *result[i].DistanceKm < *result[j].DistanceKm
	})
	return result, nil
}

// CenterOwner resolves a center's owning NGO and kind. The unit lifecycle
// uses it to check that a registration targets a center of the calling NGO.
func (s *Service) CenterOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, "", apperr.Validation("unknown center: %s", id)
	}
	return c.NGOID, string(c.Kind), nil
}
