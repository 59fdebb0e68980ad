package bloodunit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/auth"
	"github.com/lifelink/lifelink/internal/platform/metrics"
)

// DonorDirectory validates donor references and records collection dates.
// Implemented by the donor service.
type DonorDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) error
	RecordDonation(ctx context.Context, id uuid.UUID, at time.Time) error
}

// CenterDirectory resolves a center's owning NGO and kind. Implemented by
// the center service.
type CenterDirectory interface {
	CenterOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, string, error)
}

// InventoryNotifier triggers an inventory rebuild for a center after any
// unit mutation that could change its counts.
type InventoryNotifier interface {
	CenterChanged(ctx context.Context, centerID uuid.UUID) error
}

// RequestBinder advances an associated blood request when a transfer
// fulfills it. Implemented by the bloodrequest service; wired in main.
type RequestBinder interface {
	BindTransfer(ctx context.Context, requestID, ngoID, hospitalID uuid.UUID) error
}

type Service struct {
	repo      Repository
	donors    DonorDirectory
	centers   CenterDirectory
	inventory InventoryNotifier
	binder    RequestBinder
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, donors DonorDirectory, centers CenterDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		donors:  donors,
		centers: centers,
		logger:  logger,
		now:     time.Now,
	}
}

// SetInventoryNotifier and SetRequestBinder are wired in main after all
// services exist, to avoid a construction cycle between the unit, request,
// and inventory services.
func (s *Service) SetInventoryNotifier(n InventoryNotifier) { s.inventory = n }
func (s *Service) SetRequestBinder(b RequestBinder)         { s.binder = b }
func (s *Service) SetMetrics(m *metrics.Metrics)            { s.metrics = m }

type RegisterInput struct {
	DonorID       uuid.UUID      `json:"donor_id"`
	CenterID      uuid.UUID      `json:"center_id"`
	BloodGroup    blood.Group    `json:"blood_group"`
	VolumeML      *int           `json:"volume_ml"`
	CollectedAt   *time.Time     `json:"collected_at"`
	HealthMetrics *HealthMetrics `json:"health_metrics"`
}

// Register records a donation collected at one of the calling NGO's
// centers. The unit starts in processing with the center as holder.
func (s *Service) Register(ctx context.Context, caller auth.Principal, in RegisterInput) (*BloodUnit, error) {
	if in.DonorID == uuid.Nil {
		return nil, apperr.Validation("donor_id is required")
	}
	if in.CenterID == uuid.Nil {
		return nil, apperr.Validation("center_id is required")
	}
	if !blood.ValidGroup(in.BloodGroup) {
		return nil, apperr.Validation("invalid blood group: %s", in.BloodGroup)
	}

	volume := DefaultVolumeML
	if in.VolumeML != nil {
		volume = *in.VolumeML
	}
	if volume < MinVolumeML {
		return nil, apperr.Validation("volume must be at least %d ml", MinVolumeML)
	}

	ownerNGO, centerKind, err := s.centers.CenterOwner(ctx, in.CenterID)
	if err != nil {
		return nil, err
	}
	ngoID := caller.ID
	if caller.Kind == auth.ActorAdmin {
		ngoID = ownerNGO
	} else if ownerNGO != caller.ID {
		return nil, apperr.Validation("center is not operated by the calling NGO")
	}

	if err := s.donors.Exists(ctx, in.DonorID); err != nil {
		return nil, err
	}

	collected := s.now()
	if in.CollectedAt != nil {
		collected = *in.CollectedAt
	}

	u := &BloodUnit{
		DonorID:       in.DonorID,
		NGOID:         ngoID,
		CenterID:      in.CenterID,
		CenterKind:    centerKind,
		BloodGroup:    in.BloodGroup,
		VolumeML:      volume,
		CollectedAt:   collected,
		ExpiresAt:     collected.Add(ShelfLife),
		Status:        StatusProcessing,
		HolderID:      in.CenterID,
		HolderKind:    HolderCenter,
		HealthMetrics: in.HealthMetrics,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.donors.RecordDonation(ctx, in.DonorID, collected); err != nil {
		s.logger.Warn().Err(err).Str("donor_id", in.DonorID.String()).Msg("failed to record donation date")
	}
	s.notifyCenter(ctx, u.CenterID)
	if s.metrics != nil {
		s.metrics.UnitsRegistered.Inc()
	}
	return s.reload(ctx, u.ID)
}

// Get returns a unit with its populated transfer ledger. Visible to the
// owning NGO, the current holder, and admins.
func (s *Service) Get(ctx context.Context, caller auth.Principal, id uuid.UUID) (*BloodUnit, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("blood unit not found")
	}
	if caller.Kind != auth.ActorAdmin && u.NGOID != caller.ID && u.HolderID != caller.ID {
		return nil, apperr.NotFound("blood unit not found")
	}
	s.applyExpiry(ctx, u)
	transfers, err := s.repo.ListTransfers(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u.Transfers = transfers
	return u, nil
}

// List returns the calling NGO's units. Admins may scope by filter instead.
func (s *Service) List(ctx context.Context, caller auth.Principal, f Filter, limit, offset int) ([]*BloodUnit, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("invalid status: %s", f.Status)
	}
	if f.BloodGroup != "" && !blood.ValidGroup(f.BloodGroup) {
		return nil, 0, apperr.Validation("invalid blood group: %s", f.BloodGroup)
	}
	if caller.Kind != auth.ActorAdmin {
		f.NGOID = caller.ID
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	for _, u := range items {
		s.applyExpiry(ctx, u)
	}
	return items, total, nil
}

// SetStatus moves a unit along the lifecycle graph.
func (s *Service) SetStatus(ctx context.Context, caller auth.Principal, id uuid.UUID, newStatus Status, notes *string) (*BloodUnit, error) {
	u, err := s.ownedUnit(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !ValidStatus(newStatus) {
		return nil, apperr.Validation("invalid status: %s", newStatus)
	}
	s.applyExpiry(ctx, u)
	if u.Status == newStatus {
		return u, nil
	}
	if !CanTransition(u.Status, newStatus) {
		return nil, apperr.InvalidState("cannot move a %s unit to %s", u.Status, newStatus)
	}

	u.Status = newStatus
	if notes != nil {
		u.Notes = notes
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperr.Conflict("blood unit was modified concurrently, retry")
		}
		return nil, apperr.Internal(err)
	}

	s.notifyCenter(ctx, u.CenterID)
	if s.metrics != nil {
		s.metrics.UnitStatusChanges.WithLabelValues(string(newStatus)).Inc()
	}
	return u, nil
}

type TransferInput struct {
	ToID      uuid.UUID  `json:"to_id"`
	ToKind    HolderKind `json:"to_kind"`
	Reason    *string    `json:"reason"`
	RequestID *uuid.UUID `json:"request_id"`
}

// Transfer moves physical possession of an available unit to another
// entity, appending a ledger entry and updating the holder atomically.
// Transferring to a hospital assigns the unit; supplying a request id
// additionally advances that request to processing.
func (s *Service) Transfer(ctx context.Context, caller auth.Principal, id uuid.UUID, in TransferInput) (*BloodUnit, error) {
	u, err := s.ownedUnit(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.ToID == uuid.Nil {
		return nil, apperr.Validation("to_id is required")
	}
	if !ValidHolderKind(in.ToKind) {
		return nil, apperr.Validation("to_kind must be ngo, center, or hospital")
	}

	s.applyExpiry(ctx, u)
	if u.Status != StatusAvailable {
		return nil, apperr.InvalidState("cannot transfer a unit that is not available")
	}

	rec := &TransferRecord{
		UnitID:     u.ID,
		FromID:     u.HolderID,
		FromKind:   u.HolderKind,
		ToID:       in.ToID,
		ToKind:     in.ToKind,
		Reason:     in.Reason,
		OccurredAt: s.now(),
	}

	sourceCenter := u.CenterID
	u.HolderID = in.ToID
	u.HolderKind = in.ToKind
	if in.ToKind == HolderHospital {
		u.Status = StatusAssigned
	}

	if err := s.repo.ApplyTransfer(ctx, u, rec); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperr.Conflict("blood unit was modified concurrently, retry")
		}
		return nil, apperr.Internal(err)
	}

	if in.RequestID != nil && in.ToKind == HolderHospital && s.binder != nil {
		if err := s.binder.BindTransfer(ctx, *in.RequestID, u.NGOID, in.ToID); err != nil {
			s.logger.Warn().Err(err).
				Str("unit_id", u.ID.String()).
				Str("request_id", in.RequestID.String()).
				Msg("transfer committed but request binding failed")
		}
	}

	s.notifyCenter(ctx, sourceCenter)
	if in.ToKind == HolderCenter {
		s.notifyCenter(ctx, in.ToID)
	}
	if s.metrics != nil {
		s.metrics.UnitTransfers.WithLabelValues(string(in.ToKind)).Inc()
	}
	return s.Get(ctx, caller, u.ID)
}

// ListExpiringSoon returns the NGO's available units whose shelf life ends
// within the given number of days, soonest first.
func (s *Service) ListExpiringSoon(ctx context.Context, caller auth.Principal, withinDays int) ([]*BloodUnit, error) {
	if withinDays <= 0 {
		withinDays = 7
	}
	now := s.now()
	items, err := s.repo.ListExpiring(ctx, caller.ID, now, now.Add(time.Duration(withinDays)*24*time.Hour))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *Service) ownedUnit(ctx context.Context, caller auth.Principal, id uuid.UUID) (*BloodUnit, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("blood unit not found")
	}
	if caller.Kind != auth.ActorAdmin && u.NGOID != caller.ID {
		return nil, apperr.NotFound("blood unit not found")
	}
	return u, nil
}

// applyExpiry lazily flips an available unit past its shelf life to
// expired. Persisted best-effort; a lost race just means another reader
// already flipped it.
func (s *Service) applyExpiry(ctx context.Context, u *BloodUnit) {
	if u.Status != StatusAvailable || !u.ExpiredBy(s.now()) {
		return
	}
	u.Status = StatusExpired
	if err := s.repo.Update(ctx, u); err != nil && !errors.Is(err, ErrVersionConflict) {
		s.logger.Warn().Err(err).Str("unit_id", u.ID.String()).Msg("failed to persist unit expiry")
		return
	}
	s.notifyCenter(ctx, u.CenterID)
	if s.metrics != nil {
		s.metrics.UnitStatusChanges.WithLabelValues(string(StatusExpired)).Inc()
	}
}

func (s *Service) notifyCenter(ctx context.Context, centerID uuid.UUID) {
	if s.inventory == nil {
		return
	}
	if err := s.inventory.CenterChanged(ctx, centerID); err != nil {
		s.logger.Warn().Err(err).Str("center_id", centerID.String()).Msg("inventory recompute failed")
	}
}

func (s *Service) reload(ctx context.Context, id uuid.UUID) (*BloodUnit, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}
