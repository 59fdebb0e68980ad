package center

import (
	"context"

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

type centerRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &centerRepoPG{pool: pool}
}

func (r *centerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const centerCols = `id, ngo_id, kind, name, address, city, state, latitude, longitude,
	camp_start_at, camp_end_at, blood_inventory, active, created_at, updated_at`

func (r *centerRepoPG) scanRow(row pgx.Row) (*Center, error) {
	var c Center
	err := row.Scan(&c.ID, &c.NGOID, &c.Kind, &c.Name, &c.Address, &c.City, &c.State,
		&c.Latitude, &c.Longitude, &c.CampStartAt, &c.CampEndAt, &c.BloodInventory,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *centerRepoPG) Create(ctx context.Context, c *Center) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO center (id, ngo_id, kind, name, address, city, state, latitude, longitude,
			camp_start_at, camp_end_at, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.NGOID, c.Kind, c.Name, c.Address, c.City, c.State, c.Latitude, c.Longitude,
		c.CampStartAt, c.CampEndAt, c.Active)
	return err
}

func (r *centerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Center, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+centerCols+` FROM center WHERE id = $1`, id))
}

func (r *centerRepoPG) Update(ctx context.Context, c *Center) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE center SET name=$2, address=$3, city=$4, state=$5, latitude=$6, longitude=$7,
			camp_start_at=$8, camp_end_at=$9, active=$10, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Address, c.City, c.State, c.Latitude, c.Longitude,
		c.CampStartAt, c.CampEndAt, c.Active)
	return err
}

func (r *centerRepoPG) ListByNGO(ctx context.Context, ngoID uuid.UUID, limit, offset int) ([]*Center, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM center WHERE ngo_id = $1`, ngoID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+centerCols+` FROM center WHERE ngo_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ngoID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Center
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *centerRepoPG) ListActiveWithLocation(ctx context.Context) ([]*Center, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+centerCols+` FROM center
		 WHERE active AND latitude IS NOT NULL AND longitude IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Center
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
