package menu

import (
	"github.com/noah-isme/backend-warung/internal/money"
)

// Dimension names the variant axis a menu item is priced on. It is decided
// at catalog-authoring time so pricing never has to guess which field of a
// variant row is populated.
type Dimension string

const (
	// DimensionNone marks single-price items with no customer choice.
	DimensionNone Dimension = ""
	// DimensionSize prices by portion size.
	DimensionSize Dimension = "size"
	// DimensionTemperature prices hot versus cold preparations.
	DimensionTemperature Dimension = "temperature"
)

// Label returns the customization key under which the customer's variant
// choice is stored.
func (d Dimension) Label() string {
	switch d {
	case DimensionSize:
		return "Size"
	case DimensionTemperature:
		return "Temperature"
	default:
		return ""
	}
}

// PricingVariant is one selectable base price of a menu item.
type PricingVariant struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Price money.Money `json:"price"`
}

// SelectionMode distinguishes radio-style from checkbox-style groups.
type SelectionMode string

const (
	// SelectSingle allows exactly one choice, stored as a bare string.
	SelectSingle SelectionMode = "single"
	// SelectMultiple allows a set of choices, stored as a list.
	SelectMultiple SelectionMode = "multiple"
)

// Choice is an individual add-on option. Price may be zero.
type Choice struct {
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
}

// AddOnGroup is a named set of optional modifiers attached to a menu item.
// When both FreeLimit and OveragePrice are set the group is priced on the
// free-allowance model; otherwise each chosen option costs its own price.
type AddOnGroup struct {
	Title         string        `json:"title"`
	Choices       []Choice      `json:"choices"`
	SelectionMode SelectionMode `json:"selectionMode"`
	FreeLimit     *int          `json:"freeLimit,omitempty"`
	OveragePrice  *money.Money  `json:"overagePrice,omitempty"`
}

// IsFreeAllowance reports whether the group uses free-allowance pricing.
func (g AddOnGroup) IsFreeAllowance() bool {
	return g.FreeLimit != nil && g.OveragePrice != nil
}

// MenuItem is a catalog entry. Read-only to this service; rows are written
// by external catalog management.
type MenuItem struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Dimension Dimension        `json:"dimension"`
	Variants  []PricingVariant `json:"variants"`
	AddOns    []AddOnGroup     `json:"addOns"`
}
