// Package payment abstracts the external payment gateway. The gateway
// charges the customer out of band; this service only opens intents and
// reads back what was actually charged so checkout can verify it.
package payment

import (
	"context"
	"errors"
)

// ErrIntentNotFound is returned when a claimed intent id is unknown to the
// gateway.
var ErrIntentNotFound = errors.New("payment: intent not found")

// IntentStatus is the gateway-side lifecycle of a charge.
type IntentStatus string

const (
	IntentRequiresPayment IntentStatus = "requires_payment"
	IntentSucceeded       IntentStatus = "succeeded"
	IntentCanceled        IntentStatus = "canceled"
)

// Intent is the gateway's record of a pending or completed charge. Amount
// is in minor currency units, already rounded by the gateway.
type Intent struct {
	ID               string       `json:"id"`
	AmountMinorUnits int64        `json:"amountMinorUnits"`
	Status           IntentStatus `json:"status"`
}

// Gateway is the payment provider client. Amounts always travel as integer
// minor units; all calls are I/O and honor the context deadline.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64) (Intent, error)
	UpdateIntent(ctx context.Context, id string, amountMinorUnits int64) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
}
