package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// counterName is the fixed key of the storefront's daily counter row.
const counterName = "orders"

// PGStore backs the counter with a single Postgres row. The day comparison
// and increment happen in one upsert statement, so the reset on a new
// business day needs no scheduled job and concurrent callers serialize on
// the row.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Allocate returns the next counter value for the given business day.
func (s *PGStore) Allocate(ctx context.Context, day string, base int64) (int64, error) {
	if s == nil || s.Pool == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnavailable, "pool not configured")
	}
	const stmt = `
INSERT INTO order_counters (name, day, last_value)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET
  last_value = CASE WHEN order_counters.day = EXCLUDED.day
                    THEN order_counters.last_value + 1
                    ELSE EXCLUDED.last_value END,
  day = EXCLUDED.day
RETURNING last_value`
	var value int64
	if err := s.Pool.QueryRow(ctx, stmt, counterName, day, base).Scan(&value); err != nil {
		return 0, errors.Join(ErrUnavailable, err)
	}
	return value, nil
}
