package bloodrequest

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/auth"
	"github.com/lifelink/lifelink/internal/platform/metrics"
)

// OrganizationDirectory validates references and keeps the NGO fulfillment
// counter. Implemented by the organization service.
type OrganizationDirectory interface {
	EnsureNGO(ctx context.Context, id uuid.UUID) error
	IncrementServedHospitals(ctx context.Context, ngoID uuid.UUID) error
}

type Service struct {
	repo    Repository
	orgs    OrganizationDirectory
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, orgs OrganizationDirectory, logger zerolog.Logger) *Service {
	return &Service{repo: repo, orgs: orgs, logger: logger, now: time.Now}
}

func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

type ItemInput struct {
	BloodGroup blood.Group `json:"blood_group"`
	Units      int         `json:"units"`
}

type CreateInput struct {
	NGOID   uuid.UUID   `json:"ngo_id"`
	Items   []ItemInput `json:"blood_groups"`
	Urgency Urgency     `json:"urgency"`
	Note    *string     `json:"notes"`
}

// Create opens a request from the calling hospital to the named NGO.
func (s *Service) Create(ctx context.Context, caller auth.Principal, in CreateInput) (*BloodRequest, error) {
	if in.NGOID == uuid.Nil {
		return nil, apperr.Validation("ngo_id is required")
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("at least one blood group entry is required")
	}
	for _, item := range in.Items {
		if !blood.ValidGroup(item.BloodGroup) {
			return nil, apperr.Validation("invalid blood group: %s", item.BloodGroup)
		}
		if item.Units < 1 {
			return nil, apperr.Validation("units must be at least 1")
		}
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = UrgencyRegular
	}
	if !ValidUrgency(urgency) {
		return nil, apperr.Validation("urgency must be emergency, regular, or future_need")
	}
	if err := s.orgs.EnsureNGO(ctx, in.NGOID); err != nil {
		return nil, err
	}

	r := &BloodRequest{
		HospitalID: caller.ID,
		NGOID:      in.NGOID,
		Urgency:    urgency,
		Status:     StatusPending,
	}
	for _, item := range in.Items {
		r.Items = append(r.Items, &RequestItem{BloodGroup: item.BloodGroup, Units: item.Units})
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, apperr.Internal(err)
	}
	s.appendNote(ctx, r.ID, caller, in.Note)
	if s.metrics != nil {
		s.metrics.RequestTransitions.WithLabelValues(string(StatusPending)).Inc()
	}
	return s.Get(ctx, caller, r.ID)
}

// Get returns a request with items and notes. Visible to the two parties
// and admins.
func (s *Service) Get(ctx context.Context, caller auth.Principal, id uuid.UUID) (*BloodRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("blood request not found")
	}
	if caller.Kind != auth.ActorAdmin && r.HospitalID != caller.ID && r.NGOID != caller.ID {
		return nil, apperr.NotFound("blood request not found")
	}
	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	r.Notes = notes
	return r, nil
}

// List returns requests scoped to the caller's side of the exchange.
func (s *Service) List(ctx context.Context, caller auth.Principal, f Filter, limit, offset int) ([]*BloodRequest, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("invalid status: %s", f.Status)
	}
	switch caller.Kind {
	case auth.ActorHospital:
		f.HospitalID = caller.ID
	case auth.ActorNGO:
		f.NGOID = caller.ID
	case auth.ActorAdmin:
	default:
		return nil, 0, apperr.Forbidden("requests are visible to hospitals and NGOs only")
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

type AdvanceInput struct {
	Status              Status     `json:"status"`
	Note                *string    `json:"notes"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_time"`
	DeliveredBy         *string    `json:"delivered_by"`
}

// AdvanceStatus moves a request along the fulfillment graph. Only the
// owning NGO advances; the hospital's only transition is ConfirmDelivery.
func (s *Service) AdvanceStatus(ctx context.Context, caller auth.Principal, id uuid.UUID, in AdvanceInput) (*BloodRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("blood request not found")
	}
	if caller.Kind != auth.ActorAdmin && r.NGOID != caller.ID {
		return nil, apperr.NotFound("blood request not found")
	}
	if !ValidStatus(in.Status) {
		return nil, apperr.Validation("invalid status: %s", in.Status)
	}
	if !CanTransition(r.Status, in.Status) {
		return nil, apperr.InvalidState("cannot move a %s request to %s", r.Status, in.Status)
	}

	r.Status = in.Status
	if in.EstimatedDeliveryAt != nil && (in.Status == StatusAccepted || in.Status == StatusProcessing) {
		r.EstimatedDeliveryAt = in.EstimatedDeliveryAt
	}
	if in.DeliveredBy != nil {
		r.DeliveredBy = in.DeliveredBy
	}
	if in.Status == StatusDelivered {
		now := s.now()
		r.DeliveredAt = &now
	}
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperr.Conflict("blood request was modified concurrently, retry")
		}
		return nil, apperr.Internal(err)
	}

	if in.Status == StatusCompleted {
		if err := s.orgs.IncrementServedHospitals(ctx, r.NGOID); err != nil {
			s.logger.Warn().Err(err).Str("ngo_id", r.NGOID.String()).Msg("failed to bump served-hospital counter")
		}
	}
	s.appendNote(ctx, r.ID, caller, in.Note)
	if s.metrics != nil {
		s.metrics.RequestTransitions.WithLabelValues(string(in.Status)).Inc()
	}
	return s.Get(ctx, caller, r.ID)
}

type ConfirmInput struct {
	ReceivedBy       string  `json:"received_by"`
	ConfirmationCode *string `json:"confirmation_code"`
	Note             *string `json:"notes"`
}

// ConfirmDelivery is the hospital's acknowledgment of a request that is en
// route. Any other current status reads as not found, matching how the
// lookup is scoped.
func (s *Service) ConfirmDelivery(ctx context.Context, caller auth.Principal, id uuid.UUID, in ConfirmInput) (*BloodRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("blood request not found")
	}
	if (caller.Kind != auth.ActorAdmin && r.HospitalID != caller.ID) || r.Status != StatusEnRoute {
		return nil, apperr.NotFound("no en-route request to confirm")
	}
	if strings.TrimSpace(in.ReceivedBy) == "" {
		return nil, apperr.Validation("received_by is required")
	}

	now := s.now()
	receivedBy := strings.TrimSpace(in.ReceivedBy)
	code := in.ConfirmationCode
	if code == nil || *code == "" {
		generated, err := confirmationCode()
		if err != nil {
			return nil, apperr.Internal(err)
		}
		code = &generated
	}

	r.Status = StatusDelivered
	r.DeliveredAt = &now
	r.ReceivedBy = &receivedBy
	r.ConfirmationCode = code
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperr.Conflict("blood request was modified concurrently, retry")
		}
		return nil, apperr.Internal(err)
	}

	s.appendNote(ctx, r.ID, caller, in.Note)
	if s.metrics != nil {
		s.metrics.RequestTransitions.WithLabelValues(string(StatusDelivered)).Inc()
	}
	return s.Get(ctx, caller, r.ID)
}

// BindTransfer advances a pending or accepted request to processing when a
// unit transfer fulfills it. Any other current status is a no-op; a request
// that does not match the transfer's parties is an error.
func (s *Service) BindTransfer(ctx context.Context, requestID, ngoID, hospitalID uuid.UUID) error {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return apperr.NotFound("blood request not found")
	}
	if r.NGOID != ngoID || r.HospitalID != hospitalID {
		return apperr.NotFound("blood request not found")
	}
	if r.Status != StatusPending && r.Status != StatusAccepted {
		return nil
	}

	r.Status = StatusProcessing
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return apperr.Conflict("blood request was modified concurrently, retry")
		}
		return apperr.Internal(err)
	}
	if s.metrics != nil {
		s.metrics.RequestTransitions.WithLabelValues(string(StatusProcessing)).Inc()
	}
	return nil
}

func (s *Service) appendNote(ctx context.Context, requestID uuid.UUID, author auth.Principal, body *string) {
	if body == nil || strings.TrimSpace(*body) == "" {
		return
	}
	n := &RequestNote{
		RequestID:  requestID,
		AuthorID:   author.ID,
		AuthorKind: string(author.Kind),
		Body:       strings.TrimSpace(*body),
	}
	if err := s.repo.AppendNote(ctx, n); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID.String()).Msg("failed to append request note")
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// confirmationCode generates a 6-character upper-case alphanumeric code.
func confirmationCode() (string, error) {
	var b [6]byte
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b[:]), nil
}
