package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/backend-warung/internal/pricing"
	"github.com/noah-isme/backend-warung/internal/sequence"
)

// Assembler turns a verified cart into a persisted order exactly once per
// payment reference. A replayed confirmation for a reference that is
// already recorded returns the stored order untouched.
type Assembler struct {
	Repo Repo
	Seq  *sequence.Sequencer
	Now  func() time.Time

	// SequenceRetries bounds retry attempts on a transiently unavailable
	// counter store. Pricing and verification are not redone on retry.
	SequenceRetries int
	RetryBackoff    time.Duration
}

// Assemble persists the order. The replayed flag is true when an order for
// the payment reference already existed.
func (a *Assembler) Assemble(ctx context.Context, lines []pricing.CartLine, customer CustomerInfo, paymentRef string, breakdown pricing.Breakdown) (Order, bool, error) {
	if a == nil || a.Repo == nil || a.Seq == nil {
		return Order{}, false, errors.New("order: assembler not configured")
	}
	if paymentRef != "" {
		existing, found, err := a.Repo.FindByPaymentReference(ctx, paymentRef)
		if err != nil {
			return Order{}, false, err
		}
		if found {
			return existing, true, nil
		}
	}

	number, err := a.nextNumber(ctx)
	if err != nil {
		return Order{}, false, err
	}
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	o := Order{
		ID:               fmt.Sprintf("%d_%d", now.UnixMilli(), number),
		Number:           number,
		CustomerName:     customer.Name,
		PhoneNumber:      customer.Phone,
		CreatedAt:        now,
		Status:           StatusNew,
		PaymentReference: paymentRef,
		Items:            lines,
		TotalPaid:        breakdown.Total,
	}
	stored, inserted, err := a.Repo.Insert(ctx, o)
	if err != nil {
		return Order{}, false, err
	}
	return stored, !inserted, nil
}

func (a *Assembler) nextNumber(ctx context.Context) (int64, error) {
	attempts := a.SequenceRetries
	if attempts < 1 {
		attempts = 3
	}
	backoff := a.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		number, err := a.Seq.Next(ctx)
		if err == nil {
			return number, nil
		}
		lastErr = err
		if !errors.Is(err, sequence.ErrUnavailable) {
			return 0, err
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return 0, lastErr
}
