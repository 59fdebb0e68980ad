package organization

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*Organization
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Organization)}
}

func (m *mockRepo) Create(_ context.Context, o *Organization) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Organization, error) {
	o, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, o *Organization) error {
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, kind Kind, limit, offset int) ([]*Organization, int, error) {
	var result []*Organization
	for _, o := range m.items {
		if kind == "" || o.Kind == kind {
			result = append(result, o)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) IncrementServedHospitals(_ context.Context, id uuid.UUID) error {
	o, ok := m.items[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	if o.Kind == KindNGO {
		o.ServedHospitals++
	}
	return nil
}

func seedOrg(m *mockRepo, kind Kind) *Organization {
	o := &Organization{ID: uuid.New(), Kind: kind, Name: "Red Drop", Email: "contact@reddrop.org"}
	m.items[o.ID] = o
	return o
}

// -- Tests --

func TestCreateOrganization(t *testing.T) {
	svc := NewService(newMockRepo())
	o, err := svc.Create(context.Background(), CreateInput{Kind: KindNGO, Name: "Red Drop", Email: "contact@reddrop.org"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if o.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if o.Kind != KindNGO {
		t.Errorf("kind = %s, want ngo", o.Kind)
	}
}

func TestCreateOrganization_InvalidKind(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), CreateInput{Kind: "clinic", Name: "X", Email: "x@x.org"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrganization_NameRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), CreateInput{Kind: KindHospital, Name: "  ", Email: "x@x.org"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetOrganization_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateOrganization_SelfOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	o := seedOrg(repo, KindNGO)
	other := auth.Principal{ID: uuid.New(), Kind: auth.ActorNGO}

	_, err := svc.Update(context.Background(), other, o.ID, UpdateInput{}, nil)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	self := auth.Principal{ID: o.ID, Kind: auth.ActorNGO}
	name := "Red Drop Foundation"
	updated, err := svc.Update(context.Background(), self, o.ID, UpdateInput{Name: &name}, nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name = %s, want %s", updated.Name, name)
	}
}

func TestUpdateOrganization_VerifiedIsAdminOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	o := seedOrg(repo, KindHospital)
	v := true

	self := auth.Principal{ID: o.ID, Kind: auth.ActorHospital}
	_, err := svc.Update(context.Background(), self, o.ID, UpdateInput{}, &v)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := auth.Principal{ID: uuid.New(), Kind: auth.ActorAdmin}
	updated, err := svc.Update(context.Background(), admin, o.ID, UpdateInput{}, &v)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Verified {
		t.Error("expected verified to be set")
	}
}

func TestIncrementServedHospitals(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	o := seedOrg(repo, KindNGO)

	for i := 0; i < 3; i++ {
		if err := svc.IncrementServedHospitals(context.Background(), o.ID); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}
	got, _ := repo.GetByID(context.Background(), o.ID)
	if got.ServedHospitals != 3 {
		t.Errorf("served_hospitals = %d, want 3", got.ServedHospitals)
	}
}
