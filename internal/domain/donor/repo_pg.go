package donor

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

type donorRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &donorRepoPG{pool: pool}
}

func (r *donorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const donorCols = `id, name, email, phone, blood_group, date_of_birth, address, city, state,
	last_donation_at, available, created_at, updated_at`

func (r *donorRepoPG) scanRow(row pgx.Row) (*Donor, error) {
	var d Donor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.BloodGroup, &d.DateOfBirth,
		&d.Address, &d.City, &d.State, &d.LastDonationAt, &d.Available, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *donorRepoPG) Create(ctx context.Context, d *Donor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donor (id, name, email, phone, blood_group, date_of_birth, address, city, state, available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.Name, d.Email, d.Phone, d.BloodGroup, d.DateOfBirth, d.Address, d.City, d.State, d.Available)
	return err
}

func (r *donorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+donorCols+` FROM donor WHERE id = $1`, id))
}

func (r *donorRepoPG) Update(ctx context.Context, d *Donor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE donor SET name=$2, email=$3, phone=$4, blood_group=$5, date_of_birth=$6,
			address=$7, city=$8, state=$9, available=$10, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Email, d.Phone, d.BloodGroup, d.DateOfBirth,
		d.Address, d.City, d.State, d.Available)
	return err
}

func (r *donorRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Donor, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.BloodGroup != "" {
		args = append(args, f.BloodGroup)
		where += fmt.Sprintf(` AND blood_group = $%d`, len(args))
	}
	if f.City != "" {
		args = append(args, f.City)
		where += fmt.Sprintf(` AND LOWER(city) = LOWER($%d)`, len(args))
	}
	if f.Available != nil {
		args = append(args, *f.Available)
		where += fmt.Sprintf(` AND available = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donor`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+donorCols+` FROM donor`+where+
			` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Donor
	for rows.Next() {
		d, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *donorRepoPG) RecordDonation(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE donor SET last_donation_at = GREATEST(COALESCE(last_donation_at, $2), $2), updated_at=NOW()
		WHERE id = $1`, id, at)
	return err
}
