package pricing

import (
	"github.com/noah-isme/backend-warung/internal/menu"
	"github.com/noah-isme/backend-warung/internal/money"
)

// ResolveBase picks the base price for an item. Single-variant items have
// exactly one price and any variant customization is ignored. Multi-variant
// items are matched on the customer's choice under the dimension label; when
// the stated choice matches no declared variant (or nothing was supplied)
// the first declared variant's price is used so a degenerate customization
// never blocks pricing. The second return value reports whether the
// customer's choice matched a declared variant.
func ResolveBase(item menu.MenuItem, custom Customizations) (money.Money, bool) {
	if len(item.Variants) == 0 {
		return money.Zero, false
	}
	if len(item.Variants) == 1 {
		return item.Variants[0].Price, true
	}
	choice := custom[item.Dimension.Label()].First()
	for _, v := range item.Variants {
		if v.Key == choice {
			return v.Price, true
		}
	}
	return item.Variants[0].Price, false
}

// GroupContribution prices one add-on group against the customer's
// selection. An absent or empty selection contributes nothing.
//
// Free-allowance groups charge a flat overage price per selection beyond
// the free limit; which specific choices were picked is irrelevant.
// Standard groups sum the individual prices of recognised choices; unknown
// names contribute nothing.
func GroupContribution(group menu.AddOnGroup, sel Selection) money.Money {
	if sel.Count() == 0 {
		return money.Zero
	}
	if group.IsFreeAllowance() {
		extra := sel.Count() - *group.FreeLimit
		if extra <= 0 {
			return money.Zero
		}
		return group.OveragePrice.MulQty(extra)
	}
	total := money.Zero
	for _, name := range sel {
		for _, choice := range group.Choices {
			if choice.Name == name {
				total = total.Add(choice.Price)
				break
			}
		}
	}
	return total
}

// UnitPrice computes the verified price of one customized menu item: the
// resolved base variant plus every add-on group's contribution. Malformed
// customizations degrade to cheaper-or-equal prices rather than errors.
func UnitPrice(item menu.MenuItem, custom Customizations) money.Money {
	base, _ := ResolveBase(item, custom)
	total := base
	for _, group := range item.AddOns {
		total = total.Add(GroupContribution(group, custom[group.Title]))
	}
	return total
}
