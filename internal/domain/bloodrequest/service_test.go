package bloodrequest

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	requests map[uuid.UUID]*BloodRequest
	notes    map[uuid.UUID][]*RequestNote
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		requests: make(map[uuid.UUID]*BloodRequest),
		notes:    make(map[uuid.UUID][]*RequestNote),
	}
}

func copyRequest(r *BloodRequest) *BloodRequest {
	cp := *r
	cp.Items = append([]*RequestItem(nil), r.Items...)
	return &cp
}

func (m *mockRepo) Create(_ context.Context, r *BloodRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for i, item := range r.Items {
		item.ID = uuid.New()
		item.RequestID = r.ID
		item.Position = i
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.requests[r.ID] = copyRequest(r)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*BloodRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return copyRequest(r), nil
}

func (m *mockRepo) Update(_ context.Context, r *BloodRequest) error {
	stored, ok := m.requests[r.ID]
	if !ok {
		return fmt.Errorf("not found")
	}
	if stored.Version != r.Version {
		return ErrVersionConflict
	}
	r.Version++
	m.requests[r.ID] = copyRequest(r)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*BloodRequest, int, error) {
	var result []*BloodRequest
	for _, r := range m.requests {
		if f.HospitalID != uuid.Nil && r.HospitalID != f.HospitalID {
			continue
		}
		if f.NGOID != uuid.Nil && r.NGOID != f.NGOID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		result = append(result, copyRequest(r))
	}
	return result, len(result), nil
}

func (m *mockRepo) AppendNote(_ context.Context, n *RequestNote) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.notes[n.RequestID] = append(m.notes[n.RequestID], n)
	return nil
}

func (m *mockRepo) ListNotes(_ context.Context, requestID uuid.UUID) ([]*RequestNote, error) {
	return m.notes[requestID], nil
}

// -- Mock organization directory --

type mockOrgs struct {
	ngos       map[uuid.UUID]bool
	increments map[uuid.UUID]int
}

func newMockOrgs(ngos ...uuid.UUID) *mockOrgs {
	m := &mockOrgs{ngos: make(map[uuid.UUID]bool), increments: make(map[uuid.UUID]int)}
	for _, id := range ngos {
		m.ngos[id] = true
	}
	return m
}

func (m *mockOrgs) EnsureNGO(_ context.Context, id uuid.UUID) error {
	if !m.ngos[id] {
		return apperr.Validation("unknown NGO: %s", id)
	}
	return nil
}

func (m *mockOrgs) IncrementServedHospitals(_ context.Context, ngoID uuid.UUID) error {
	m.increments[ngoID]++
	return nil
}

// -- Fixture --

type fixture struct {
	svc      *Service
	repo     *mockRepo
	orgs     *mockOrgs
	hospital auth.Principal
	ngo      auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ngoID := uuid.New()
	f := &fixture{
		repo:     newMockRepo(),
		orgs:     newMockOrgs(ngoID),
		hospital: auth.Principal{ID: uuid.New(), Kind: auth.ActorHospital},
		ngo:      auth.Principal{ID: ngoID, Kind: auth.ActorNGO},
	}
	f.svc = NewService(f.repo, f.orgs, zerolog.Nop())
	return f
}

func (f *fixture) create(t *testing.T) *BloodRequest {
	t.Helper()
	r, err := f.svc.Create(context.Background(), f.hospital, CreateInput{
		NGOID: f.ngo.ID,
		Items: []ItemInput{{BloodGroup: blood.OPos, Units: 2}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return r
}

func (f *fixture) advance(t *testing.T, id uuid.UUID, steps ...Status) *BloodRequest {
	t.Helper()
	var r *BloodRequest
	var err error
	for _, s := range steps {
		r, err = f.svc.AdvanceStatus(context.Background(), f.ngo, id, AdvanceInput{Status: s})
		if err != nil {
			t.Fatalf("AdvanceStatus to %s failed: %v", s, err)
		}
	}
	return r
}

// -- Tests --

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	if r.Status != StatusPending {
		t.Errorf("status = %s, want pending", r.Status)
	}
	if r.HospitalID != f.hospital.ID || r.NGOID != f.ngo.ID {
		t.Errorf("parties = %s/%s", r.HospitalID, r.NGOID)
	}
	if r.Urgency != UrgencyRegular {
		t.Errorf("urgency = %s, want regular default", r.Urgency)
	}
	if len(r.Items) != 1 || r.Items[0].Units != 2 {
		t.Errorf("items = %+v", r.Items)
	}
}

func TestCreateRequest_EmptyItems(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.hospital, CreateInput{NGOID: f.ngo.ID})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequest_ZeroUnits(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.hospital, CreateInput{
		NGOID: f.ngo.ID,
		Items: []ItemInput{{BloodGroup: blood.OPos, Units: 0}},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequest_UnknownNGO(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.hospital, CreateInput{
		NGOID: uuid.New(),
		Items: []ItemInput{{BloodGroup: blood.OPos, Units: 1}},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvanceStatus_FollowsGraph(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	// pending → en_route skips accepted and processing.
	_, err := f.svc.AdvanceStatus(context.Background(), f.ngo, r.ID, AdvanceInput{Status: StatusEnRoute})
	if !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}

	got := f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute)
	if got.Status != StatusEnRoute {
		t.Errorf("status = %s, want en_route", got.Status)
	}

	// rejected is terminal.
	r2 := f.create(t)
	f.advance(t, r2.ID, StatusRejected)
	_, err = f.svc.AdvanceStatus(context.Background(), f.ngo, r2.ID, AdvanceInput{Status: StatusAccepted})
	if !apperr.IsKind(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state on rejected request, got %v", err)
	}
}

func TestAdvanceStatus_ForeignNGOSeesNotFound(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	stranger := auth.Principal{ID: uuid.New(), Kind: auth.ActorNGO}
	_, err := f.svc.AdvanceStatus(context.Background(), stranger, r.ID, AdvanceInput{Status: StatusAccepted})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdvanceStatus_RecordsEstimatedDelivery(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	eta := time.Now().Add(6 * time.Hour)
	got, err := f.svc.AdvanceStatus(context.Background(), f.ngo, r.ID, AdvanceInput{Status: StatusAccepted, EstimatedDeliveryAt: &eta})
	if err != nil {
		t.Fatalf("AdvanceStatus failed: %v", err)
	}
	if got.EstimatedDeliveryAt == nil || !got.EstimatedDeliveryAt.Equal(eta) {
		t.Errorf("estimated delivery = %v, want %v", got.EstimatedDeliveryAt, eta)
	}
}

func TestAdvanceStatus_DeliveredStampsTime(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	got := f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute, StatusDelivered)
	if got.DeliveredAt == nil {
		t.Error("expected delivered_at to be stamped")
	}
}

func TestAdvanceStatus_CompletedIncrementsCounter(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute, StatusDelivered, StatusCompleted)
	if f.orgs.increments[f.ngo.ID] != 1 {
		t.Errorf("counter incremented %d times, want 1", f.orgs.increments[f.ngo.ID])
	}
}

func TestAdvanceStatus_AppendsNote(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	note := "verified stock"
	_, err := f.svc.AdvanceStatus(context.Background(), f.ngo, r.ID, AdvanceInput{Status: StatusAccepted, Note: &note})
	if err != nil {
		t.Fatalf("AdvanceStatus failed: %v", err)
	}
	notes := f.repo.notes[r.ID]
	if len(notes) != 1 || notes[0].Body != note || notes[0].AuthorKind != "ngo" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestConfirmDelivery(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute)

	got, err := f.svc.ConfirmDelivery(context.Background(), f.hospital, r.ID, ConfirmInput{ReceivedBy: "Dr. Rao"})
	if err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	if got.Status != StatusDelivered {
		t.Errorf("status = %s, want delivered", got.Status)
	}
	if got.ReceivedBy == nil || *got.ReceivedBy != "Dr. Rao" {
		t.Errorf("received_by = %v", got.ReceivedBy)
	}
	if got.DeliveredAt == nil {
		t.Error("expected delivered_at to be stamped")
	}
	if got.ConfirmationCode == nil || !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(*got.ConfirmationCode) {
		t.Errorf("confirmation code = %v, want 6 upper-case alphanumerics", got.ConfirmationCode)
	}
}

func TestConfirmDelivery_RequiresEnRoute(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	_, err := f.svc.ConfirmDelivery(context.Background(), f.hospital, r.ID, ConfirmInput{ReceivedBy: "Dr. Rao"})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for pending request, got %v", err)
	}

	f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute, StatusDelivered)
	_, err = f.svc.ConfirmDelivery(context.Background(), f.hospital, r.ID, ConfirmInput{ReceivedBy: "Dr. Rao"})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for delivered request, got %v", err)
	}
}

func TestConfirmDelivery_KeepsSuppliedCode(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute)

	code := "AB12CD"
	got, err := f.svc.ConfirmDelivery(context.Background(), f.hospital, r.ID, ConfirmInput{ReceivedBy: "Dr. Rao", ConfirmationCode: &code})
	if err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	if got.ConfirmationCode == nil || *got.ConfirmationCode != code {
		t.Errorf("confirmation code = %v, want supplied %s", got.ConfirmationCode, code)
	}
}

func TestConfirmDelivery_WrongHospital(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute)

	stranger := auth.Principal{ID: uuid.New(), Kind: auth.ActorHospital}
	_, err := f.svc.ConfirmDelivery(context.Background(), stranger, r.ID, ConfirmInput{ReceivedBy: "Dr. Rao"})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBindTransfer_AdvancesPendingToProcessing(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	if err := f.svc.BindTransfer(context.Background(), r.ID, f.ngo.ID, f.hospital.ID); err != nil {
		t.Fatalf("BindTransfer failed: %v", err)
	}
	got, _ := f.repo.GetByID(context.Background(), r.ID)
	if got.Status != StatusProcessing {
		t.Errorf("status = %s, want processing", got.Status)
	}
}

func TestBindTransfer_NoOpPastAccepted(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	f.advance(t, r.ID, StatusAccepted, StatusProcessing, StatusEnRoute)

	if err := f.svc.BindTransfer(context.Background(), r.ID, f.ngo.ID, f.hospital.ID); err != nil {
		t.Fatalf("BindTransfer failed: %v", err)
	}
	got, _ := f.repo.GetByID(context.Background(), r.ID)
	if got.Status != StatusEnRoute {
		t.Errorf("status = %s, binding should not rewind an en-route request", got.Status)
	}
}

func TestBindTransfer_WrongParties(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	err := f.svc.BindTransfer(context.Background(), r.ID, uuid.New(), f.hospital.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_ScopedToCaller(t *testing.T) {
	f := newFixture(t)
	f.create(t)

	otherHospital := auth.Principal{ID: uuid.New(), Kind: auth.ActorHospital}
	items, total, err := f.svc.List(context.Background(), otherHospital, Filter{}, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("foreign hospital sees %d requests, want 0", total)
	}

	items, total, err = f.svc.List(context.Background(), f.ngo, Filter{}, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("owning NGO sees %d requests, want 1", total)
	}
}

func TestConfirmationCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	re := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := confirmationCode()
		if err != nil {
			t.Fatalf("confirmationCode failed: %v", err)
		}
		if !re.MatchString(code) {
			t.Fatalf("code %q does not match format", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("codes are not varying")
	}
}
