package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-warung/internal/menu"
	"github.com/noah-isme/backend-warung/internal/money"
)

// CartLine is one item in a customer's cart. Quantity must be positive to
// contribute; non-positive lines are dropped silently during pricing.
type CartLine struct {
	ItemID         string         `json:"itemId" validate:"required"`
	Quantity       int            `json:"quantity"`
	Customizations Customizations `json:"customizations"`
}

// LineSummary is one priced entry of the itemized breakdown.
type LineSummary struct {
	ItemID    string      `json:"itemId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unitPrice"`
	LineTotal money.Money `json:"lineTotal"`
}

// Breakdown is the server-computed pricing of a full cart.
type Breakdown struct {
	Subtotal money.Money   `json:"subtotal"`
	Tax      money.Money   `json:"tax"`
	Total    money.Money   `json:"total"`
	Lines    []LineSummary `json:"lines"`
}

// CatalogLookup is the catalog dependency of Pricer, satisfied by
// *menu.Service. Ids that resolve nowhere are omitted from the map.
type CatalogLookup interface {
	GetMenuItemsBatch(ctx context.Context, ids []string) (map[string]menu.MenuItem, error)
}

// Pricer prices a whole cart against the catalog. It is the single source
// of truth for totals: client-submitted prices are never consulted.
type Pricer struct {
	Catalog CatalogLookup
	TaxRate decimal.Decimal
	Log     *zerolog.Logger
}

// PriceCart computes the breakdown for the given lines. Lines with
// non-positive quantities and lines whose item id is absent from the
// resolved catalog are skipped without error, so carts referencing removed
// menu items still price the remainder. Catalog I/O failures do fail the
// call; pricing must not proceed on a partial fetch.
func (p *Pricer) PriceCart(ctx context.Context, lines []CartLine) (Breakdown, error) {
	if p == nil || p.Catalog == nil {
		return Breakdown{}, errors.New("pricing: pricer not configured")
	}
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Quantity > 0 {
			ids = append(ids, line.ItemID)
		}
	}
	items, err := p.Catalog.GetMenuItemsBatch(ctx, ids)
	if err != nil {
		return Breakdown{}, fmt.Errorf("resolve cart items: %w", err)
	}

	breakdown := Breakdown{Lines: make([]LineSummary, 0, len(lines))}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		item, ok := items[line.ItemID]
		if !ok {
			p.logger().Debug().Str("item_id", line.ItemID).Msg("cart line skipped: item not in catalog")
			continue
		}
		unit := p.unitPrice(item, line.Customizations)
		lineTotal := unit.MulQty(line.Quantity)
		breakdown.Lines = append(breakdown.Lines, LineSummary{
			ItemID:    item.ID,
			Name:      item.Name,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		breakdown.Subtotal = breakdown.Subtotal.Add(lineTotal)
	}
	breakdown.Tax = breakdown.Subtotal.Percent(p.TaxRate)
	breakdown.Total = breakdown.Subtotal.Add(breakdown.Tax)
	return breakdown, nil
}

func (p *Pricer) unitPrice(item menu.MenuItem, custom Customizations) money.Money {
	base, matched := ResolveBase(item, custom)
	if !matched && len(item.Variants) > 1 {
		choice := custom[item.Dimension.Label()].First()
		evt := p.logger().Warn().Str("item_id", item.ID)
		if choice == "" {
			evt.Msg("no variant choice supplied; priced at first declared variant")
		} else {
			evt.Str("choice", choice).Msg("variant choice matched nothing; priced at first declared variant")
		}
	}
	total := base
	for _, group := range item.AddOns {
		total = total.Add(GroupContribution(group, custom[group.Title]))
	}
	return total
}

var nopLogger = zerolog.Nop()

func (p *Pricer) logger() *zerolog.Logger {
	if p.Log == nil {
		return &nopLogger
	}
	return p.Log
}
