package donor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*Donor
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Donor)}
}

func (m *mockRepo) Create(_ context.Context, d *Donor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Donor, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, d *Donor) error {
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Donor, int, error) {
	var result []*Donor
	for _, d := range m.items {
		if f.BloodGroup != "" && d.BloodGroup != f.BloodGroup {
			continue
		}
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockRepo) RecordDonation(_ context.Context, id uuid.UUID, at time.Time) error {
	d, ok := m.items[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	if d.LastDonationAt == nil || at.After(*d.LastDonationAt) {
		d.LastDonationAt = &at
	}
	return nil
}

// -- Tests --

func TestCreateDonor(t *testing.T) {
	svc := NewService(newMockRepo())
	d, err := svc.Create(context.Background(), CreateInput{Name: "Asha", Email: "asha@example.com", BloodGroup: blood.ONeg})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !d.Available {
		t.Error("new donors should start available")
	}
	if d.NextEligibleAt != nil {
		t.Error("donor with no donation history should have no eligibility date")
	}
}

func TestCreateDonor_InvalidBloodGroup(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), CreateInput{Name: "Asha", Email: "a@b.c", BloodGroup: "Z+"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordDonation_NeverMovesBackwards(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	d, _ := svc.Create(context.Background(), CreateInput{Name: "Asha", Email: "a@b.c", BloodGroup: blood.APos})

	later := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	earlier := later.AddDate(0, 0, -30)

	if err := svc.RecordDonation(context.Background(), d.ID, later); err != nil {
		t.Fatalf("RecordDonation failed: %v", err)
	}
	if err := svc.RecordDonation(context.Background(), d.ID, earlier); err != nil {
		t.Fatalf("RecordDonation failed: %v", err)
	}

	got, _ := svc.Get(context.Background(), d.ID)
	if !got.LastDonationAt.Equal(later) {
		t.Errorf("last donation = %v, want %v", got.LastDonationAt, later)
	}
	want := later.Add(DonationInterval)
	if got.NextEligibleAt == nil || !got.NextEligibleAt.Equal(want) {
		t.Errorf("next eligible = %v, want %v", got.NextEligibleAt, want)
	}
}

func TestEligibleAt(t *testing.T) {
	last := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	d := &Donor{Available: true, LastDonationAt: &last}

	if d.EligibleAt(last.Add(30 * 24 * time.Hour)) {
		t.Error("donor should not be eligible 30 days after donating")
	}
	if !d.EligibleAt(last.Add(DonationInterval)) {
		t.Error("donor should be eligible exactly at the interval boundary")
	}

	d.Available = false
	if d.EligibleAt(last.Add(DonationInterval)) {
		t.Error("unavailable donor should never be eligible")
	}
}

func TestExists(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	d, _ := svc.Create(context.Background(), CreateInput{Name: "Asha", Email: "a@b.c", BloodGroup: blood.BNeg})

	if err := svc.Exists(context.Background(), d.ID); err != nil {
		t.Errorf("Exists failed for known donor: %v", err)
	}
	if err := svc.Exists(context.Background(), uuid.New()); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for unknown donor, got %v", err)
	}
}
