package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type invRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &invRepoPG{pool: pool}
}

func (r *invRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *invRepoPG) AggregateCenter(ctx context.Context, centerID uuid.UUID) (map[blood.Group]GroupCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT blood_group,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'available')
		FROM blood_unit
		WHERE center_id = $1 AND holder_id = $1 AND holder_kind = 'center'
		GROUP BY blood_group`, centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := emptyCounts()
	for rows.Next() {
		var g blood.Group
		var total, available int
		if err := rows.Scan(&g, &total, &available); err != nil {
			return nil, err
		}
		counts[g] = GroupCount{Total: total, Available: available}
	}
	return counts, rows.Err()
}

func (r *invRepoPG) SaveCenterInventory(ctx context.Context, centerID uuid.UUID, counts map[blood.Group]GroupCount) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE center SET blood_inventory = $2, updated_at = NOW() WHERE id = $1`,
		centerID, counts)
	return err
}

func (r *invRepoPG) ListCenterSummaries(ctx context.Context, ngoID uuid.UUID) ([]*CenterSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, kind, blood_inventory FROM center
		WHERE ngo_id = $1 ORDER BY name ASC`, ngoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*CenterSummary
	for rows.Next() {
		var cs CenterSummary
		if err := rows.Scan(&cs.CenterID, &cs.CenterName, &cs.CenterKind, &cs.Groups); err != nil {
			return nil, err
		}
		if cs.Groups == nil {
			cs.Groups = emptyCounts()
		}
		items = append(items, &cs)
	}
	return items, rows.Err()
}

func (r *invRepoPG) ListExpiring(ctx context.Context, ngoID uuid.UUID, from, to time.Time) ([]*ExpiringUnit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, center_id, blood_group, expires_at FROM blood_unit
		WHERE ngo_id = $1 AND status = 'available' AND expires_at BETWEEN $2 AND $3
		ORDER BY expires_at ASC`, ngoID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ExpiringUnit
	for rows.Next() {
		var e ExpiringUnit
		if err := rows.Scan(&e.UnitID, &e.CenterID, &e.BloodGroup, &e.ExpiresAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
