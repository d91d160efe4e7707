package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-warung/internal/common"
	"github.com/noah-isme/backend-warung/internal/lock"
	"github.com/noah-isme/backend-warung/internal/obs"
	"github.com/noah-isme/backend-warung/internal/order"
	"github.com/noah-isme/backend-warung/internal/payment"
	"github.com/noah-isme/backend-warung/internal/pricing"
	"github.com/noah-isme/backend-warung/internal/sequence"
	"github.com/noah-isme/backend-warung/internal/verify"
)

// Input is the checkout request body. Without a payment reference the
// service opens a gateway intent for the verified total; with one it
// verifies the charged amount and records the order.
type Input struct {
	Lines            []pricing.CartLine `json:"lines" validate:"required,min=1,dive"`
	Customer         order.CustomerInfo `json:"customer" validate:"required"`
	PaymentReference string             `json:"paymentReference"`
}

// Output is the checkout response. Exactly one of PaymentIntent or Order is
// set depending on which phase the request was in.
type Output struct {
	Breakdown     pricing.Breakdown `json:"breakdown"`
	PaymentIntent *payment.Intent   `json:"paymentIntent,omitempty"`
	Order         *order.Order      `json:"order,omitempty"`
	Replayed      bool              `json:"replayed,omitempty"`
}

// Service orchestrates pricing, verification, sequencing, and persistence.
// Verification is a hard gate: no order is sequenced or written unless the
// gateway-charged amount agrees with the server-recomputed total.
type Service struct {
	Pricer    *pricing.Pricer
	Gateway   payment.Gateway
	Assembler *order.Assembler
	Locker    *lock.Locker
	LockTTL   time.Duration

	MinChargeMinorUnits int64
	ToleranceMinorUnits int64

	Log *zerolog.Logger
}

// Quote prices the cart for instant client feedback. It shares the exact
// pricing path used at the trust boundary, so the preview can never drift
// from what checkout will verify.
func (s *Service) Quote(ctx context.Context, lines []pricing.CartLine) (pricing.Breakdown, error) {
	if s == nil || s.Pricer == nil {
		return pricing.Breakdown{}, errors.New("checkout: service not configured")
	}
	if obs.CartQuoteTotal != nil {
		obs.CartQuoteTotal.Inc()
	}
	return s.Pricer.PriceCart(ctx, lines)
}

// Checkout executes the full flow for one request.
func (s *Service) Checkout(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Pricer == nil || s.Gateway == nil || s.Assembler == nil {
		return Output{}, errors.New("checkout: service not configured")
	}
	breakdown, err := s.Pricer.PriceCart(ctx, in.Lines)
	if err != nil {
		s.countCheckout("pricing_error")
		return Output{}, err
	}
	totalMinor := breakdown.Total.MinorUnits()

	if err := verify.MinimumCharge(totalMinor, s.MinChargeMinorUnits); err != nil {
		s.countCheckout("below_minimum")
		return Output{}, &common.AppError{
			Code:       "BELOW_MINIMUM_CHARGE",
			Message:    "cart total is below the minimum chargeable amount",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
			Details:    map[string]any{"totalMinorUnits": totalMinor, "minimumMinorUnits": s.MinChargeMinorUnits},
		}
	}

	if in.PaymentReference == "" {
		intent, err := s.Gateway.CreateIntent(ctx, totalMinor)
		if err != nil {
			s.countCheckout("gateway_error")
			return Output{}, fmt.Errorf("create payment intent: %w", err)
		}
		s.countCheckout("intent_created")
		return Output{Breakdown: breakdown, PaymentIntent: &intent}, nil
	}

	// A gateway failure here must read as "not verified", never as
	// verified: fail closed.
	intent, err := s.Gateway.RetrieveIntent(ctx, in.PaymentReference)
	if err != nil {
		s.countCheckout("gateway_error")
		if errors.Is(err, payment.ErrIntentNotFound) {
			return Output{}, &common.AppError{
				Code:       "UNKNOWN_PAYMENT_REFERENCE",
				Message:    "payment reference is unknown to the gateway",
				HTTPStatus: http.StatusConflict,
				Err:        err,
			}
		}
		return Output{}, &common.AppError{
			Code:       "VERIFICATION_UNAVAILABLE",
			Message:    "unable to verify the charged amount",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}
	if intent.Status != payment.IntentSucceeded {
		s.countCheckout("payment_incomplete")
		return Output{}, &common.AppError{
			Code:       "PAYMENT_NOT_COMPLETED",
			Message:    "payment has not completed at the gateway",
			HTTPStatus: http.StatusConflict,
		}
	}

	if err := verify.Amount(totalMinor, intent.AmountMinorUnits, s.ToleranceMinorUnits); err != nil {
		var mismatch *verify.AmountMismatchError
		if errors.As(err, &mismatch) {
			s.logger().Warn().
				Int64("server_minor_units", mismatch.ServerMinorUnits).
				Int64("asserted_minor_units", mismatch.AssertedMinorUnits).
				Str("payment_reference", in.PaymentReference).
				Msg("amount verification failed")
		}
		if obs.VerificationTotal != nil {
			obs.VerificationTotal.WithLabelValues("mismatch").Inc()
		}
		s.countCheckout("amount_mismatch")
		return Output{}, &common.AppError{
			Code:       "AMOUNT_MISMATCH",
			Message:    "charged amount does not match the computed total",
			HTTPStatus: http.StatusConflict,
			Err:        err,
			Details:    map[string]any{"serverMinorUnits": totalMinor, "assertedMinorUnits": intent.AmountMinorUnits},
		}
	}
	if obs.VerificationTotal != nil {
		obs.VerificationTotal.WithLabelValues("ok").Inc()
	}

	var (
		o        order.Order
		replayed bool
	)
	assemble := func(ctx context.Context) error {
		var err error
		o, replayed, err = s.Assembler.Assemble(ctx, in.Lines, in.Customer, in.PaymentReference, breakdown)
		return err
	}
	if s.Locker != nil {
		err = s.Locker.WithLock(ctx, "checkout:"+in.PaymentReference, s.LockTTL, assemble)
	} else {
		err = assemble(ctx)
	}
	if err != nil {
		if errors.Is(err, sequence.ErrUnavailable) {
			s.countCheckout("sequence_unavailable")
			return Output{}, &common.AppError{
				Code:       "SEQUENCE_UNAVAILABLE",
				Message:    "order number allocation is temporarily unavailable",
				HTTPStatus: http.StatusServiceUnavailable,
				Err:        err,
			}
		}
		s.countCheckout("persist_error")
		return Output{}, err
	}
	if replayed {
		s.countCheckout("replayed")
	} else {
		s.countCheckout("created")
	}
	return Output{Breakdown: breakdown, Order: &o, Replayed: replayed}, nil
}

func (s *Service) countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}

var nopLogger = zerolog.Nop()

func (s *Service) logger() *zerolog.Logger {
	if s.Log == nil {
		return &nopLogger
	}
	return s.Log
}
