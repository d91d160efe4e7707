package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-warung/internal/money"
)

// PGRepo stores orders in Postgres. A partial unique index on
// payment_reference closes the race between the assembler's existence check
// and the insert, so a retried confirmation can never record twice.
type PGRepo struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, order_number, customer_name, phone_number, created_at, status, payment_reference, items, total_paid_minor`

// Insert writes the order, or returns the already-stored order when the
// payment reference has been recorded before.
func (r *PGRepo) Insert(ctx context.Context, o Order) (Order, bool, error) {
	if r == nil || r.Pool == nil {
		return Order{}, false, errors.New("order: repo not configured")
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, false, fmt.Errorf("encode order items: %w", err)
	}
	const stmt = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (payment_reference) WHERE payment_reference IS NOT NULL DO NOTHING
RETURNING id`
	var insertedID string
	err = r.Pool.QueryRow(ctx, stmt,
		o.ID, o.Number, o.CustomerName, o.PhoneNumber, o.CreatedAt,
		string(o.Status), nullableRef(o.PaymentReference), items, o.TotalPaid.MinorUnits(),
	).Scan(&insertedID)
	if err == nil {
		return o, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Order{}, false, fmt.Errorf("insert order: %w", err)
	}
	existing, found, err := r.FindByPaymentReference(ctx, o.PaymentReference)
	if err != nil {
		return Order{}, false, err
	}
	if !found {
		return Order{}, false, errors.New("order: insert conflicted but no stored order was found")
	}
	return existing, false, nil
}

// FindByPaymentReference looks up the order recorded for a gateway charge.
func (r *PGRepo) FindByPaymentReference(ctx context.Context, ref string) (Order, bool, error) {
	if ref == "" {
		return Order{}, false, nil
	}
	row := r.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_reference = $1`, ref)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, false, nil
		}
		return Order{}, false, fmt.Errorf("find order by payment reference: %w", err)
	}
	return o, true, nil
}

// Get loads one order by id.
func (r *PGRepo) Get(ctx context.Context, id string) (Order, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns recent orders, optionally narrowed by status.
func (r *PGRepo) List(ctx context.Context, status *Status, limit int) ([]Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = r.Pool.Query(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
			string(*status), limit)
	} else {
		rows, err = r.Pool.Query(ctx,
			`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	orders := make([]Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus applies a status transition.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o          Order
		status     string
		ref        pgtype.Text
		items      []byte
		totalMinor int64
		createdAt  time.Time
	)
	if err := row.Scan(&o.ID, &o.Number, &o.CustomerName, &o.PhoneNumber, &createdAt, &status, &ref, &items, &totalMinor); err != nil {
		return Order{}, err
	}
	o.CreatedAt = createdAt
	o.Status = Status(status)
	if ref.Valid {
		o.PaymentReference = ref.String
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return Order{}, err
		}
	}
	o.TotalPaid = money.FromMinorUnits(totalMinor)
	return o, nil
}

func nullableRef(ref string) pgtype.Text {
	if ref == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: ref, Valid: true}
}
