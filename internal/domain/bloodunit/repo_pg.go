package bloodunit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifelink/lifelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type unitRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &unitRepoPG{pool: pool}
}

func (r *unitRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const unitCols = `id, donor_id, ngo_id, center_id, center_kind, blood_group, volume_ml,
	collected_at, expires_at, status, holder_id, holder_kind, notes, health_metrics,
	version, created_at, updated_at`

func (r *unitRepoPG) scanRow(row pgx.Row) (*BloodUnit, error) {
	var u BloodUnit
	err := row.Scan(&u.ID, &u.DonorID, &u.NGOID, &u.CenterID, &u.CenterKind, &u.BloodGroup, &u.VolumeML,
		&u.CollectedAt, &u.ExpiresAt, &u.Status, &u.HolderID, &u.HolderKind, &u.Notes, &u.HealthMetrics,
		&u.Version, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *unitRepoPG) Create(ctx context.Context, u *BloodUnit) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blood_unit (id, donor_id, ngo_id, center_id, center_kind, blood_group, volume_ml,
			collected_at, expires_at, status, holder_id, holder_kind, notes, health_metrics)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		u.ID, u.DonorID, u.NGOID, u.CenterID, u.CenterKind, u.BloodGroup, u.VolumeML,
		u.CollectedAt, u.ExpiresAt, u.Status, u.HolderID, u.HolderKind, u.Notes, u.HealthMetrics)
	return err
}

func (r *unitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*BloodUnit, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+unitCols+` FROM blood_unit WHERE id = $1`, id))
}

func (r *unitRepoPG) update(ctx context.Context, q queryable, u *BloodUnit) error {
	tag, err := q.Exec(ctx, `
		UPDATE blood_unit SET status=$2, holder_id=$3, holder_kind=$4, notes=$5,
			version = version + 1, updated_at=NOW()
		WHERE id = $1 AND version = $6`,
		u.ID, u.Status, u.HolderID, u.HolderKind, u.Notes, u.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	u.Version++
	return nil
}

func (r *unitRepoPG) Update(ctx context.Context, u *BloodUnit) error {
	return r.update(ctx, r.conn(ctx), u)
}

func (r *unitRepoPG) ApplyTransfer(ctx context.Context, u *BloodUnit, rec *TransferRecord) error {
	return db.WithTx(ctx, r.pool, func(txCtx context.Context) error {
		if err := r.update(txCtx, r.conn(txCtx), u); err != nil {
			return err
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		_, err := r.conn(txCtx).Exec(txCtx, `
			INSERT INTO blood_unit_transfer (id, unit_id, from_id, from_kind, to_id, to_kind, reason, occurred_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			rec.ID, rec.UnitID, rec.FromID, rec.FromKind, rec.ToID, rec.ToKind, rec.Reason, rec.OccurredAt)
		return err
	})
}

func (r *unitRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*BloodUnit, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.NGOID != uuid.Nil {
		args = append(args, f.NGOID)
		where += fmt.Sprintf(` AND ngo_id = $%d`, len(args))
	}
	if f.CenterID != uuid.Nil {
		args = append(args, f.CenterID)
		where += fmt.Sprintf(` AND center_id = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.BloodGroup != "" {
		args = append(args, f.BloodGroup)
		where += fmt.Sprintf(` AND blood_group = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blood_unit`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+unitCols+` FROM blood_unit`+where+
			` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BloodUnit
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *unitRepoPG) ListExpiring(ctx context.Context, ngoID uuid.UUID, from, to time.Time) ([]*BloodUnit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+unitCols+` FROM blood_unit
		WHERE ngo_id = $1 AND status = 'available' AND expires_at BETWEEN $2 AND $3
		ORDER BY expires_at ASC`, ngoID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BloodUnit
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *unitRepoPG) ListTransfers(ctx context.Context, unitID uuid.UUID) ([]*TransferRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, unit_id, from_id, from_kind, to_id, to_kind, reason, occurred_at
		FROM blood_unit_transfer WHERE unit_id = $1 ORDER BY occurred_at ASC, id ASC`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TransferRecord
	for rows.Next() {
		var t TransferRecord
		if err := rows.Scan(&t.ID, &t.UnitID, &t.FromID, &t.FromKind, &t.ToID, &t.ToKind, &t.Reason, &t.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, rows.Err()
}
