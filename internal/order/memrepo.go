package order

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-process Repo for tests and local runs. The mutex
// makes the reference check and insert a single atomic step, mirroring the
// unique-index guarantee of PGRepo.
type MemoryRepo struct {
	mu     sync.Mutex
	byID   map[string]Order
	byRef  map[string]string
	serial []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Order),
		byRef: make(map[string]string),
	}
}

func (r *MemoryRepo) Insert(_ context.Context, o Order) (Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.PaymentReference != "" {
		if id, ok := r.byRef[o.PaymentReference]; ok {
			return r.byID[id], false, nil
		}
		r.byRef[o.PaymentReference] = o.ID
	}
	r.byID[o.ID] = o
	r.serial = append(r.serial, o.ID)
	return o, true, nil
}

func (r *MemoryRepo) FindByPaymentReference(_ context.Context, ref string) (Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref == "" {
		return Order{}, false, nil
	}
	id, ok := r.byRef[ref]
	if !ok {
		return Order{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *MemoryRepo) List(_ context.Context, status *Status, limit int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]Order, 0, limit)
	for _, id := range r.serial {
		o := r.byID[id]
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	r.byID[id] = o
	return nil
}
