package bloodrequest

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

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &requestRepoPG{pool: pool}
}

func (r *requestRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const requestCols = `id, hospital_id, ngo_id, urgency, status,
	estimated_delivery_at, delivered_at, delivered_by, received_by, confirmation_code,
	version, created_at, updated_at`

func (r *requestRepoPG) scanRow(row pgx.Row) (*BloodRequest, error) {
	var br BloodRequest
	err := row.Scan(&br.ID, &br.HospitalID, &br.NGOID, &br.Urgency, &br.Status,
		&br.EstimatedDeliveryAt, &br.DeliveredAt, &br.DeliveredBy, &br.ReceivedBy, &br.ConfirmationCode,
		&br.Version, &br.CreatedAt, &br.UpdatedAt)
	return &br, err
}

func (r *requestRepoPG) Create(ctx context.Context, br *BloodRequest) error {
	if br.ID == uuid.Nil {
		br.ID = uuid.New()
	}
	return db.WithTx(ctx, r.pool, func(txCtx context.Context) error {
		_, err := r.conn(txCtx).Exec(txCtx, `
			INSERT INTO blood_request (id, hospital_id, ngo_id, urgency, status)
			VALUES ($1,$2,$3,$4,$5)`,
			br.ID, br.HospitalID, br.NGOID, br.Urgency, br.Status)
		if err != nil {
			return err
		}
		for i, item := range br.Items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.RequestID = br.ID
			item.Position = i
			_, err := r.conn(txCtx).Exec(txCtx, `
				INSERT INTO blood_request_item (id, request_id, blood_group, units, position)
				VALUES ($1,$2,$3,$4,$5)`,
				item.ID, item.RequestID, item.BloodGroup, item.Units, item.Position)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*BloodRequest, error) {
	br, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+requestCols+` FROM blood_request WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	br.Items, err = r.listItems(ctx, id)
	return br, err
}

func (r *requestRepoPG) listItems(ctx context.Context, requestID uuid.UUID) ([]*RequestItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, request_id, blood_group, units, position
		FROM blood_request_item WHERE request_id = $1 ORDER BY position ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RequestItem
	for rows.Next() {
		var it RequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.BloodGroup, &it.Units, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *requestRepoPG) Update(ctx context.Context, br *BloodRequest) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE blood_request SET status=$2, estimated_delivery_at=$3, delivered_at=$4,
			delivered_by=$5, received_by=$6, confirmation_code=$7,
			version = version + 1, updated_at=NOW()
		WHERE id = $1 AND version = $8`,
		br.ID, br.Status, br.EstimatedDeliveryAt, br.DeliveredAt,
		br.DeliveredBy, br.ReceivedBy, br.ConfirmationCode, br.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	br.Version++
	return nil
}

func (r *requestRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*BloodRequest, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.HospitalID != uuid.Nil {
		args = append(args, f.HospitalID)
		where += fmt.Sprintf(` AND hospital_id = $%d`, len(args))
	}
	if f.NGOID != uuid.Nil {
		args = append(args, f.NGOID)
		where += fmt.Sprintf(` AND ngo_id = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blood_request`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+requestCols+` FROM blood_request`+where+
			` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BloodRequest
	for rows.Next() {
		br, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, br)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, br := range items {
		br.Items, err = r.listItems(ctx, br.ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *requestRepoPG) AppendNote(ctx context.Context, n *RequestNote) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blood_request_note (id, request_id, author_id, author_kind, body)
		VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.RequestID, n.AuthorID, n.AuthorKind, n.Body)
	return err
}

func (r *requestRepoPG) ListNotes(ctx context.Context, requestID uuid.UUID) ([]*RequestNote, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, request_id, author_id, author_kind, body, created_at
		FROM blood_request_note WHERE request_id = $1 ORDER BY created_at ASC, id ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []*RequestNote
	for rows.Next() {
		var n RequestNote
		if err := rows.Scan(&n.ID, &n.RequestID, &n.AuthorID, &n.AuthorKind, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
