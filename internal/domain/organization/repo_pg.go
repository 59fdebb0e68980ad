package organization

import (
	"context"
	"fmt"

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

type orgRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &orgRepoPG{pool: pool}
}

func (r *orgRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orgCols = `id, kind, name, email, phone, address, city, state,
	verified, served_hospitals, created_at, updated_at`

func (r *orgRepoPG) scanRow(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Kind, &o.Name, &o.Email, &o.Phone, &o.Address, &o.City, &o.State,
		&o.Verified, &o.ServedHospitals, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *orgRepoPG) Create(ctx context.Context, o *Organization) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO organization (id, kind, name, email, phone, address, city, state, verified)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.Kind, o.Name, o.Email, o.Phone, o.Address, o.City, o.State, o.Verified)
	return err
}

func (r *orgRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+orgCols+` FROM organization WHERE id = $1`, id))
}

func (r *orgRepoPG) Update(ctx context.Context, o *Organization) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE organization SET name=$2, email=$3, phone=$4, address=$5, city=$6, state=$7,
			verified=$8, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Name, o.Email, o.Phone, o.Address, o.City, o.State, o.Verified)
	return err
}

func (r *orgRepoPG) List(ctx context.Context, kind Kind, limit, offset int) ([]*Organization, int, error) {
	where := ``
	args := []interface{}{}
	if kind != "" {
		where = ` WHERE kind = $1`
		args = append(args, kind)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM organization`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+orgCols+` FROM organization`+where+
			` ORDER BY name ASC LIMIT $%d OFFSET $%d`, n+1, n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Organization
	for rows.Next() {
		o, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *orgRepoPG) IncrementServedHospitals(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE organization SET served_hospitals = served_hospitals + 1, updated_at=NOW()
		WHERE id = $1 AND kind = 'ngo'`, id)
	return err
}
