// Package verify is the anti-tampering checkpoint between pricing and any
// money-moving side effect. Amounts asserted by clients or reported by the
// payment gateway are never trusted until they agree with the
// server-recomputed total.
package verify

import "fmt"

// DefaultToleranceMinorUnits absorbs rounding differences between
// independent minor-unit conversions. Two cents is economically irrelevant
// while large enough to avoid false rejections.
const DefaultToleranceMinorUnits = 2

// AmountMismatchError reports a rejected amount with both values for fraud
// investigation.
type AmountMismatchError struct {
	ServerMinorUnits   int64
	AssertedMinorUnits int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: server computed %d, asserted %d minor units", e.ServerMinorUnits, e.AssertedMinorUnits)
}

// BelowMinimumChargeError reports a total under the gateway's minimum
// chargeable amount. This is a gateway constraint, not a pricing defect.
type BelowMinimumChargeError struct {
	TotalMinorUnits   int64
	MinimumMinorUnits int64
}

func (e *BelowMinimumChargeError) Error() string {
	return fmt.Sprintf("total %d minor units is below the minimum chargeable amount %d", e.TotalMinorUnits, e.MinimumMinorUnits)
}

// Amount accepts the asserted amount only when it agrees with the server
// total within the tolerance. A negative tolerance falls back to the
// default.
func Amount(serverMinorUnits, assertedMinorUnits, toleranceMinorUnits int64) error {
	if toleranceMinorUnits < 0 {
		toleranceMinorUnits = DefaultToleranceMinorUnits
	}
	diff := serverMinorUnits - assertedMinorUnits
	if diff < 0 {
		diff = -diff
	}
	if diff > toleranceMinorUnits {
		return &AmountMismatchError{ServerMinorUnits: serverMinorUnits, AssertedMinorUnits: assertedMinorUnits}
	}
	return nil
}

// MinimumCharge rejects totals the gateway would refuse to charge. It must
// run before any gateway call.
func MinimumCharge(totalMinorUnits, minimumMinorUnits int64) error {
	if totalMinorUnits < minimumMinorUnits {
		return &BelowMinimumChargeError{TotalMinorUnits: totalMinorUnits, MinimumMinorUnits: minimumMinorUnits}
	}
	return nil
}
