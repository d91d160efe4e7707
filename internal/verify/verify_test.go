package verify

import (
	"errors"
	"testing"
)

func TestAmountExactMatch(t *testing.T) {
	if err := Amount(1000, 1000, 2); err != nil {
		t.Fatalf("expected exact match to pass, got %v", err)
	}
}

func TestAmountWithinTolerance(t *testing.T) {
	if err := Amount(1000, 1002, 2); err != nil {
		t.Fatalf("expected 2 minor units to be tolerated, got %v", err)
	}
	if err := Amount(1000, 998, 2); err != nil {
		t.Fatalf("tolerance is symmetric, got %v", err)
	}
}

func TestAmountBeyondTolerance(t *testing.T) {
	err := Amount(1000, 1003, 2)
	if err == nil {
		t.Fatal("expected mismatch beyond tolerance")
	}
	var mismatch *AmountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected AmountMismatchError, got %T", err)
	}
	if mismatch.ServerMinorUnits != 1000 || mismatch.AssertedMinorUnits != 1003 {
		t.Fatalf("mismatch error carries wrong values: %+v", mismatch)
	}
}

func TestAmountNegativeToleranceUsesDefault(t *testing.T) {
	if err := Amount(1000, 1002, -1); err != nil {
		t.Fatalf("expected default tolerance to apply, got %v", err)
	}
	if err := Amount(1000, 1003, -1); err == nil {
		t.Fatal("expected mismatch beyond the default tolerance")
	}
}

func TestAmountZeroToleranceIsStrict(t *testing.T) {
	if err := Amount(1000, 1001, 0); err == nil {
		t.Fatal("expected zero tolerance to reject a 1-unit difference")
	}
}

func TestMinimumCharge(t *testing.T) {
	if err := MinimumCharge(50, 50); err != nil {
		t.Fatalf("expected total at minimum to pass, got %v", err)
	}
	err := MinimumCharge(49, 50)
	if err == nil {
		t.Fatal("expected total under minimum to be rejected")
	}
	var below *BelowMinimumChargeError
	if !errors.As(err, &below) {
		t.Fatalf("expected BelowMinimumChargeError, got %T", err)
	}
	if below.TotalMinorUnits != 49 || below.MinimumMinorUnits != 50 {
		t.Fatalf("error carries wrong values: %+v", below)
	}
}
