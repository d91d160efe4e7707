package order

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an order id has no row.
var ErrNotFound = errors.New("order: not found")

// Repo persists orders. Insert must enforce at-most-one order per non-empty
// payment reference: when a conflicting order already exists it returns the
// stored order with inserted=false instead of writing a second row.
type Repo interface {
	Insert(ctx context.Context, o Order) (stored Order, inserted bool, err error)
	FindByPaymentReference(ctx context.Context, ref string) (Order, bool, error)
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, status *Status, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
