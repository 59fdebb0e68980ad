package inventory

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/domain/blood"
)

// -- Mock Repository --
//
// The mock keeps a flat list of fake unit rows and aggregates over them the
// way the SQL does, so recompute behaves like a genuine full rescan.

type fakeUnit struct {
	id         uuid.UUID
	ngoID      uuid.UUID
	centerID   uuid.UUID
	holderID   uuid.UUID
	holderKind string
	group      blood.Group
	status     string
	expiresAt  time.Time
}

type mockRepo struct {
	units   []*fakeUnit
	centers map[uuid.UUID]*CenterSummary // stored snapshots keyed by center
	ngoOf   map[uuid.UUID]uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		centers: make(map[uuid.UUID]*CenterSummary),
		ngoOf:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRepo) addCenter(ngoID uuid.UUID, name string) uuid.UUID {
	id := uuid.New()
	m.centers[id] = &CenterSummary{CenterID: id, CenterName: name, CenterKind: "blood_bank", Groups: emptyCounts()}
	m.ngoOf[id] = ngoID
	return id
}

func (m *mockRepo) AggregateCenter(_ context.Context, centerID uuid.UUID) (map[blood.Group]GroupCount, error) {
	counts := emptyCounts()
	for _, u := range m.units {
		if u.centerID != centerID || u.holderID != centerID || u.holderKind != "center" {
			continue
		}
		gc := counts[u.group]
		gc.Total++
		if u.status == "available" {
			gc.Available++
		}
		counts[u.group] = gc
	}
	return counts, nil
}

func (m *mockRepo) SaveCenterInventory(_ context.Context, centerID uuid.UUID, counts map[blood.Group]GroupCount) error {
	m.centers[centerID].Groups = counts
	return nil
}

func (m *mockRepo) ListCenterSummaries(_ context.Context, ngoID uuid.UUID) ([]*CenterSummary, error) {
	var result []*CenterSummary
	for id, cs := range m.centers {
		if m.ngoOf[id] == ngoID {
			cp := *cs
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockRepo) ListExpiring(_ context.Context, ngoID uuid.UUID, from, to time.Time) ([]*ExpiringUnit, error) {
	var result []*ExpiringUnit
	for _, u := range m.units {
		if u.ngoID != ngoID || u.status != "available" {
			continue
		}
		if u.expiresAt.Before(from) || u.expiresAt.After(to) {
			continue
		}
		result = append(result, &ExpiringUnit{
			UnitID: u.id, CenterID: u.centerID, BloodGroup: u.group, ExpiresAt: u.expiresAt,
		})
	}
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].ExpiresAt.Before(result[i].ExpiresAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *mockRepo) addUnit(ngoID, centerID uuid.UUID, group blood.Group, status string, expiresAt time.Time) *fakeUnit {
	u := &fakeUnit{
		id: uuid.New(), ngoID: ngoID, centerID: centerID,
		holderID: centerID, holderKind: "center",
		group: group, status: status, expiresAt: expiresAt,
	}
	m.units = append(m.units, u)
	return u
}

// -- Tests --

func TestRecompute(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, zerolog.Nop())
	ngo := uuid.New()
	c := repo.addCenter(ngo, "central")

	exp := time.Now().Add(30 * 24 * time.Hour)
	repo.addUnit(ngo, c, blood.OPos, "available", exp)
	repo.addUnit(ngo, c, blood.OPos, "processing", exp)
	repo.addUnit(ngo, c, blood.ANeg, "available", exp)

	if err := svc.Recompute(context.Background(), c); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	got := repo.centers[c].Groups
	if got[blood.OPos] != (GroupCount{Total: 2, Available: 1}) {
		t.Errorf("O+ = %+v, want {2 1}", got[blood.OPos])
	}
	if got[blood.ANeg] != (GroupCount{Total: 1, Available: 1}) {
		t.Errorf("A- = %+v, want {1 1}", got[blood.ANeg])
	}
	if got[blood.ABPos] != (GroupCount{}) {
		t.Errorf("AB+ = %+v, want zero", got[blood.ABPos])
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, zerolog.Nop())
	ngo := uuid.New()
	c := repo.addCenter(ngo, "central")
	repo.addUnit(ngo, c, blood.BPos, "available", time.Now().Add(time.Hour))

	if err := svc.Recompute(context.Background(), c); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	first := repo.centers[c].Groups
	if err := svc.Recompute(context.Background(), c); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if !reflect.DeepEqual(first, repo.centers[c].Groups) {
		t.Error("two rebuilds with no intervening mutation diverged")
	}
}

func TestRecompute_IgnoresUnitsNotHeldAtCenter(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, zerolog.Nop())
	ngo := uuid.New()
	c := repo.addCenter(ngo, "central")

	// collected here but physically transferred elsewhere
	gone := repo.addUnit(ngo, c, blood.OPos, "assigned", time.Now().Add(time.Hour))
	gone.holderID = uuid.New()
	gone.holderKind = "hospital"

	if err := svc.Recompute(context.Background(), c); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if got := repo.centers[c].Groups[blood.OPos]; got != (GroupCount{}) {
		t.Errorf("O+ = %+v, transferred-out unit should not count", got)
	}
}

func TestSummary(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, zerolog.Nop())
	ngo := uuid.New()
	c := repo.addCenter(ngo, "central")
	repo.addCenter(uuid.New(), "foreign")

	now := time.Now()
	repo.addUnit(ngo, c, blood.OPos, "available", now.Add(5*24*time.Hour))
	repo.addUnit(ngo, c, blood.OPos, "available", now.Add(2*24*time.Hour))
	repo.addUnit(ngo, c, blood.OPos, "available", now.Add(30*24*time.Hour))
	_ = svc.Recompute(context.Background(), c)

	s, err := svc.Summary(context.Background(), ngo)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(s.Centers) != 1 {
		t.Fatalf("got %d centers, want only the NGO's own", len(s.Centers))
	}
	if got := s.Centers[0].Groups[blood.OPos]; got != (GroupCount{Total: 3, Available: 3}) {
		t.Errorf("O+ = %+v, want {3 3}", got)
	}
	if len(s.ExpiringSoon) != 2 {
		t.Fatalf("got %d expiring units, want 2 inside the window", len(s.ExpiringSoon))
	}
	if s.ExpiringSoon[0].DaysRemaining > s.ExpiringSoon[1].DaysRemaining {
		t.Error("expiring units not sorted by days remaining")
	}
	if s.ExpiringSoon[0].DaysRemaining != 1 && s.ExpiringSoon[0].DaysRemaining != 2 {
		t.Errorf("days remaining = %d, want about 2", s.ExpiringSoon[0].DaysRemaining)
	}
}
