package pricing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-warung/internal/menu"
	"github.com/noah-isme/backend-warung/internal/money"
)

type stubCatalog struct {
	items map[string]menu.MenuItem
	err   error
}

func (s stubCatalog) GetMenuItemsBatch(_ context.Context, ids []string) (map[string]menu.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make(map[string]menu.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

func testPricer(items ...menu.MenuItem) *Pricer {
	byID := make(map[string]menu.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &Pricer{
		Catalog: stubCatalog{items: byID},
		TaxRate: decimal.RequireFromString("0.13"),
	}
}

func TestPriceCartCustomizedLine(t *testing.T) {
	p := testPricer(milkTea())
	lines := []CartLine{{
		ItemID:   "milk-tea",
		Quantity: 2,
		Customizations: Customizations{
			"Temperature": {"cold"},
			"Toppings":    {"Pearl"},
		},
	}}
	breakdown, err := p.PriceCart(context.Background(), lines)
	if err != nil {
		t.Fatalf("price cart: %v", err)
	}
	if len(breakdown.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(breakdown.Lines))
	}
	line := breakdown.Lines[0]
	if !line.UnitPrice.Equal(money.MustParse("4.25")) {
		t.Fatalf("expected unit 4.25, got %s", line.UnitPrice)
	}
	if !line.LineTotal.Equal(money.MustParse("8.50")) {
		t.Fatalf("expected line total 8.50, got %s", line.LineTotal)
	}
	if !breakdown.Subtotal.Equal(money.MustParse("8.50")) {
		t.Fatalf("expected subtotal 8.50, got %s", breakdown.Subtotal)
	}
}

func TestPriceCartTaxAndTotal(t *testing.T) {
	item := menu.MenuItem{
		ID:       "set-meal",
		Name:     "Set Meal",
		Variants: []menu.PricingVariant{{Key: "regular", Price: money.MustParse("10.00")}},
	}
	p := testPricer(item)
	breakdown, err := p.PriceCart(context.Background(), []CartLine{{ItemID: "set-meal", Quantity: 1}})
	if err != nil {
		t.Fatalf("price cart: %v", err)
	}
	if !breakdown.Subtotal.Equal(money.MustParse("10.00")) {
		t.Fatalf("expected subtotal 10.00, got %s", breakdown.Subtotal)
	}
	if !breakdown.Tax.Equal(money.MustParse("1.30")) {
		t.Fatalf("expected tax 1.30, got %s", breakdown.Tax)
	}
	if !breakdown.Total.Equal(money.MustParse("11.30")) {
		t.Fatalf("expected total 11.30, got %s", breakdown.Total)
	}
	if breakdown.Total.MinorUnits() != 1130 {
		t.Fatalf("expected 1130 minor units, got %d", breakdown.Total.MinorUnits())
	}
}

func TestPriceCartDropsNonPositiveQuantities(t *testing.T) {
	p := testPricer(milkTea())
	lines := []CartLine{
		{ItemID: "milk-tea", Quantity: 0},
		{ItemID: "milk-tea", Quantity: -3},
		{ItemID: "milk-tea", Quantity: 1, Customizations: Customizations{"Temperature": {"hot"}}},
	}
	breakdown, err := p.PriceCart(context.Background(), lines)
	if err != nil {
		t.Fatalf("price cart: %v", err)
	}
	if len(breakdown.Lines) != 1 {
		t.Fatalf("expected only the positive line, got %d", len(breakdown.Lines))
	}
	if !breakdown.Subtotal.Equal(money.MustParse("3.00")) {
		t.Fatalf("expected subtotal 3.00, got %s", breakdown.Subtotal)
	}
}

func TestPriceCartSkipsUnknownItems(t *testing.T) {
	p := testPricer(milkTea())
	lines := []CartLine{
		{ItemID: "discontinued", Quantity: 1},
		{ItemID: "milk-tea", Quantity: 1, Customizations: Customizations{"Temperature": {"hot"}}},
	}
	breakdown, err := p.PriceCart(context.Background(), lines)
	if err != nil {
		t.Fatalf("price cart: %v", err)
	}
	if len(breakdown.Lines) != 1 {
		t.Fatalf("expected unknown item to be skipped, got %d lines", len(breakdown.Lines))
	}
	if breakdown.Lines[0].ItemID != "milk-tea" {
		t.Fatalf("unexpected line item %s", breakdown.Lines[0].ItemID)
	}
}

func TestPriceCartDeterministic(t *testing.T) {
	p := testPricer(milkTea())
	lines := []CartLine{{
		ItemID:         "milk-tea",
		Quantity:       3,
		Customizations: Customizations{"Temperature": {"cold"}, "Toppings": {"Pearl", "Jelly"}},
	}}
	first, err := p.PriceCart(context.Background(), lines)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := p.PriceCart(context.Background(), lines)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !first.Total.Equal(second.Total) || !first.Subtotal.Equal(second.Subtotal) {
		t.Fatalf("pricing not deterministic: %s vs %s", first.Total, second.Total)
	}
}

func TestPriceCartLogsDegradedLines(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	p := testPricer(milkTea())
	p.Log = &log

	lines := []CartLine{
		{ItemID: "discontinued", Quantity: 1},
		{ItemID: "milk-tea", Quantity: 1, Customizations: Customizations{"Temperature": {"lukewarm"}}},
	}
	breakdown, err := p.PriceCart(context.Background(), lines)
	if err != nil {
		t.Fatalf("price cart: %v", err)
	}
	if !breakdown.Subtotal.Equal(money.MustParse("3.00")) {
		t.Fatalf("expected first-variant fallback subtotal 3.00, got %s", breakdown.Subtotal)
	}

	logged := buf.String()
	if !strings.Contains(logged, "discontinued") {
		t.Fatalf("expected skipped item to be logged, got %q", logged)
	}
	if !strings.Contains(logged, "lukewarm") || !strings.Contains(logged, "milk-tea") {
		t.Fatalf("expected unmatched variant choice to be logged, got %q", logged)
	}
}

func TestPriceCartCatalogFailureFailsCall(t *testing.T) {
	p := &Pricer{
		Catalog: stubCatalog{err: errors.New("db down")},
		TaxRate: decimal.RequireFromString("0.13"),
	}
	if _, err := p.PriceCart(context.Background(), []CartLine{{ItemID: "milk-tea", Quantity: 1}}); err == nil {
		t.Fatal("expected catalog failure to fail the call")
	}
}

func TestPriceCartEmptyCart(t *testing.T) {
	p := testPricer()
	breakdown, err := p.PriceCart(context.Background(), nil)
	if err != nil {
		t.Fatalf("price cart: %v", err)
	}
	if !breakdown.Total.IsZero() || len(breakdown.Lines) != 0 {
		t.Fatalf("expected zero breakdown, got %+v", breakdown)
	}
}
