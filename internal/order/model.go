package order

import (
	"time"

	"github.com/noah-isme/backend-warung/internal/money"
	"github.com/noah-isme/backend-warung/internal/pricing"
)

// Status is the order lifecycle state. Orders are created as StatusNew and
// moved to StatusResolved by staff; they are never deleted by this service.
type Status string

const (
	StatusNew      Status = "new"
	StatusResolved Status = "resolved"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	return s == StatusNew || s == StatusResolved
}

// CustomerInfo is the contact detail captured at checkout.
type CustomerInfo struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// Order is a persisted, verified purchase. ID is derived from the creation
// timestamp and the daily order number; PaymentReference is empty for
// orders recorded without a gateway charge.
type Order struct {
	ID               string             `json:"id"`
	Number           int64              `json:"orderNumber"`
	CustomerName     string             `json:"customerName"`
	PhoneNumber      string             `json:"phoneNumber"`
	CreatedAt        time.Time          `json:"createdAt"`
	Status           Status             `json:"status"`
	PaymentReference string             `json:"paymentReference,omitempty"`
	Items            []pricing.CartLine `json:"items"`
	TotalPaid        money.Money        `json:"totalPaid"`
}
