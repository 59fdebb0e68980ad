package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/cache"
	"github.com/lifelink/lifelink/internal/platform/metrics"
)

// ExpiringWindow is how far ahead the summary looks for units near the end
// of their shelf life.
const ExpiringWindow = 7 * 24 * time.Hour

type Service struct {
	repo    Repository
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, c *cache.Cache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger, now: time.Now}
}

func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

func centerKey(id uuid.UUID) string {
	return "inventory:center:" + id.String()
}

// Recompute rebuilds one center's inventory snapshot from blood unit rows.
// Always a full rescan, never a delta, so concurrent rebuilds converge on
// the same value whatever the interleaving.
func (s *Service) Recompute(ctx context.Context, centerID uuid.UUID) error {
	counts, err := s.repo.AggregateCenter(ctx, centerID)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.repo.SaveCenterInventory(ctx, centerID, counts); err != nil {
		return apperr.Internal(err)
	}
	if err := s.cache.SetJSON(ctx, centerKey(centerID), counts); err != nil {
		s.logger.Warn().Err(err).Str("center_id", centerID.String()).Msg("failed to refresh inventory cache")
	}
	if s.metrics != nil {
		s.metrics.InventoryRebuilds.Inc()
	}
	return nil
}

// CenterChanged makes the service usable as the unit lifecycle's inventory
// notifier.
func (s *Service) CenterChanged(ctx context.Context, centerID uuid.UUID) error {
	return s.Recompute(ctx, centerID)
}

// Summary assembles the NGO-wide view: per-center per-group counts, cache
// first with the stored snapshot as fallback, plus the expiring-soon list
// sorted by days remaining.
func (s *Service) Summary(ctx context.Context, ngoID uuid.UUID) (*Summary, error) {
	centers, err := s.repo.ListCenterSummaries(ctx, ngoID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	for _, cs := range centers {
		var cached map[blood.Group]GroupCount
		err := s.cache.GetJSON(ctx, centerKey(cs.CenterID), &cached)
		switch {
		case err == nil:
			cs.Groups = cached
		case errors.Is(err, cache.ErrMiss):
			// stored snapshot stands; backfill the cache for next time
			if err := s.cache.SetJSON(ctx, centerKey(cs.CenterID), cs.Groups); err != nil {
				s.logger.Warn().Err(err).Str("center_id", cs.CenterID.String()).Msg("failed to backfill inventory cache")
			}
		default:
			s.logger.Warn().Err(err).Str("center_id", cs.CenterID.String()).Msg("inventory cache read failed")
		}
	}

	now := s.now()
	expiring, err := s.repo.ListExpiring(ctx, ngoID, now, now.Add(ExpiringWindow))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for _, e := range expiring {
		e.DaysRemaining = int(e.ExpiresAt.Sub(now).Hours() / 24)
	}

	return &Summary{
		NGOID:        ngoID,
		Centers:      centers,
		ExpiringSoon: expiring,
		GeneratedAt:  now,
	}, nil
}
