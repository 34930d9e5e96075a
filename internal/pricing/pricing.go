// Package pricing computes effective (discounted) prices and cart totals.
// All functions are pure: settings are passed explicitly by the caller and
// never looked up ambiently.
package pricing

import (
	"math"

	"salonpos/backend/internal/domain"
)

// All catalog prices are tax-inclusive at 10% consumption tax.
const taxDivisor = 1.1

// Totals is the derived money state of one cart. Subtotal and Tax are
// derived from the tax-inclusive Total so that Subtotal+Tax == Total holds
// exactly, with no independent-rounding drift.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// EffectivePrice returns the tax-inclusive price actually charged for item
// given the other items in the same cart.
//
// Offers contribute nothing directly; their effect is a post-hoc adjustment
// in Total. A haircut is discounted to DiscountCutWithPerm whenever the
// cart contains a perm, or capped at DiscountCutWithColor when the cart
// contains a color and the haircut's own price exceeds the cap. The perm
// rule dominates the color rule, and the color cap never raises a price.
func EffectivePrice(item domain.LineItem, cart []domain.LineItem, settings domain.PriceSettings) int64 {
	if item.Category == domain.CategoryOffer {
		return 0
	}
	if item.Category == domain.CategoryHaircut {
		if hasCategory(cart, domain.CategoryPerm) {
			return settings.DiscountCutWithPerm
		}
		if hasCategory(cart, domain.CategoryColor) && item.BasePrice > settings.DiscountCutWithColor {
			return settings.DiscountCutWithColor
		}
	}
	return item.BasePrice
}

// Total sums the effective prices of all non-offer items, applies the
// cart's offer adjustment if one is present, and derives the tax-exclusive
// subtotal and consumption tax from the tax-inclusive result.
func Total(cart []domain.LineItem, settings domain.PriceSettings) Totals {
	var sum int64
	var offer *domain.LineItem
	for i := range cart {
		if offer == nil && cart[i].Category == domain.CategoryOffer {
			offer = &cart[i]
		}
		sum += EffectivePrice(cart[i], cart, settings)
	}
	if offer != nil {
		sum = applyOffer(sum, *offer)
	}

	subtotal := int64(math.Round(float64(sum) / taxDivisor))
	return Totals{
		Subtotal: subtotal,
		Tax:      sum - subtotal,
		Total:    sum,
	}
}

// Change is the amount returned to the customer, never negative.
func Change(total int64, payment int64) int64 {
	if payment <= total {
		return 0
	}
	return payment - total
}

// applyOffer adjusts the cart sum for one offer line. Percentage offers
// store the percent in the price field (sign ignored); fixed offers store a
// negative amount and the result is floored at zero.
func applyOffer(sum int64, offer domain.LineItem) int64 {
	switch offer.DiscountKind {
	case domain.DiscountPercentage:
		pct := math.Abs(float64(offer.BasePrice))
		return int64(math.Round(float64(sum) * (1 - pct/100)))
	case domain.DiscountFixed:
		adjusted := sum + offer.BasePrice
		if adjusted < 0 {
			return 0
		}
		return adjusted
	default:
		return sum
	}
}

func hasCategory(cart []domain.LineItem, category string) bool {
	for _, item := range cart {
		if item.Category == category {
			return true
		}
	}
	return false
}
