package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a menu item id has no catalog row.
var ErrNotFound = errors.New("menu: item not found")

// Store reads menu items from Postgres. Variants and add-on groups are kept
// as JSONB documents; the catalog is authored externally and read-only here.
type Store struct {
	Pool *pgxpool.Pool
}

const itemColumns = `id, name, dimension, variants, add_ons`

// Get loads a single menu item.
func (s *Store) Get(ctx context.Context, id string) (MenuItem, error) {
	if s == nil || s.Pool == nil {
		return MenuItem{}, errors.New("menu: store not configured")
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MenuItem{}, ErrNotFound
		}
		return MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

// GetBatch loads the requested ids in one query. Ids without a row are
// omitted from the result rather than reported as errors.
func (s *Store) GetBatch(ctx context.Context, ids []string) (map[string]MenuItem, error) {
	result := make(map[string]MenuItem, len(ids))
	if s == nil || s.Pool == nil {
		return result, errors.New("menu: store not configured")
	}
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return result, fmt.Errorf("batch menu items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return result, fmt.Errorf("scan menu item: %w", err)
		}
		result[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("batch menu items: %w", err)
	}
	return result, nil
}

// List returns the full catalog ordered by name for the public menu view.
func (s *Store) List(ctx context.Context) ([]MenuItem, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("menu: store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()
	items := make([]MenuItem, 0, 32)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (MenuItem, error) {
	var (
		item     MenuItem
		dim      string
		variants []byte
		addOns   []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &dim, &variants, &addOns); err != nil {
		return MenuItem{}, err
	}
	item.Dimension = Dimension(dim)
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &item.Variants); err != nil {
			return MenuItem{}, err
		}
	}
	if len(addOns) > 0 {
		if err := json.Unmarshal(addOns, &item.AddOns); err != nil {
			return MenuItem{}, err
		}
	}
	return item, nil
}
