// Package sequence allocates the human-presentable order numbers printed on
// receipts and called out for pickup. Numbers restart at a base value on the
// first allocation of each business day and increase strictly within it.
package sequence

import (
	"context"
	"errors"
	"time"
)

// DefaultBase is the first order number issued on a new business day.
const DefaultBase = 1000

// ErrUnavailable wraps transient counter-store failures. Callers should
// retry the allocation with backoff; pricing does not need to be redone.
var ErrUnavailable = errors.New("sequence: counter store unavailable")

// CounterStore performs the atomic read-modify-write against the daily
// counter. Day is the business-date key; base is the value to reset to when
// the stored day differs. Two concurrent calls must never return the same
// value.
type CounterStore interface {
	Allocate(ctx context.Context, day string, base int64) (int64, error)
}

// Sequencer issues order numbers keyed to the business day.
type Sequencer struct {
	Store    CounterStore
	Base     int64
	Location *time.Location
	Now      func() time.Time
}

// Next allocates the next order number for the current business day.
func (s *Sequencer) Next(ctx context.Context) (int64, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("sequence: sequencer not configured")
	}
	base := s.Base
	if base <= 0 {
		base = DefaultBase
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	day := now().In(loc).Format("2006-01-02")
	return s.Store.Allocate(ctx, day, base)
}
