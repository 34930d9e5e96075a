// Package catalog shapes menu and product lists for display and resolves
// configured price overrides before items are placed in a cart.
package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"salonpos/backend/internal/domain"
)

// CategoryOrder is the display order of menu sections.
var CategoryOrder = []string{
	domain.CategoryHaircut,
	domain.CategoryColor,
	domain.CategoryPerm,
	domain.CategoryOption,
	domain.CategoryOffer,
}

// FallbackMenus is the built-in service menu used when the catalog store is
// unavailable. Prices are tax-inclusive at 10%.
func FallbackMenus() []domain.MenuItem {
	return []domain.MenuItem{
		{Name: "カット", Category: domain.CategoryHaircut, DisplayOrder: 1, PriceIncludingTax: 4400},
		{Name: "前髪カット", Category: domain.CategoryHaircut, DisplayOrder: 2, PriceIncludingTax: 1100},
		{Name: "おしゃれ染め", Category: domain.CategoryColor, DisplayOrder: 10, PriceIncludingTax: 7000},
		{Name: "白髪染め", Category: domain.CategoryColor, DisplayOrder: 11, PriceIncludingTax: 5500},
		{Name: "ナチュラルパーマ", Category: domain.CategoryPerm, DisplayOrder: 20, PriceIncludingTax: 7500},
		{Name: "縮毛矯正", Category: domain.CategoryPerm, DisplayOrder: 21, PriceIncludingTax: 12000},
		{Name: "オプションA", Category: domain.CategoryOption, DisplayOrder: 30, PriceIncludingTax: 500},
		{Name: "500円引き", Category: domain.CategoryOffer, DisplayOrder: 40, PriceIncludingTax: -500, DiscountKind: domain.DiscountFixed},
		{Name: "10%OFF", Category: domain.CategoryOffer, DisplayOrder: 41, PriceIncludingTax: -10, DiscountKind: domain.DiscountPercentage},
	}
}

// FallbackProducts is the built-in retail product list.
func FallbackProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "シャンプー", Category: domain.CategoryProduct, PriceIncludingTax: 1870},
		{ID: 2, Name: "トリートメント", Category: domain.CategoryProduct, PriceIncludingTax: 2200},
		{ID: 3, Name: "ヘアワックス", Category: domain.CategoryProduct, PriceIncludingTax: 1320},
	}
}

// Group buckets menus by category in CategoryOrder, each section sorted by
// (display_order, name). Categories outside CategoryOrder are appended in
// name order so an extended catalog still renders.
func Group(menus []domain.MenuItem) []domain.CatalogSection {
	byCategory := make(map[string][]domain.MenuItem)
	for _, m := range menus {
		byCategory[m.Category] = append(byCategory[m.Category], m)
	}

	known := make(map[string]bool, len(CategoryOrder))
	order := make([]string, 0, len(byCategory))
	for _, cat := range CategoryOrder {
		known[cat] = true
		if len(byCategory[cat]) > 0 {
			order = append(order, cat)
		}
	}
	extras := make([]string, 0)
	for cat := range byCategory {
		if !known[cat] {
			extras = append(extras, cat)
		}
	}
	slices.Sort(extras)
	order = append(order, extras...)

	sections := make([]domain.CatalogSection, 0, len(order))
	for _, cat := range order {
		section := byCategory[cat]
		slices.SortFunc(section, func(a, b domain.MenuItem) int {
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder - b.DisplayOrder
			}
			return strings.Compare(a.Name, b.Name)
		})
		sections = append(sections, domain.CatalogSection{Category: cat, Menus: section})
	}
	return sections
}

// MenuPriceKey is the stable override key for a menu item: the catalog id
// when present, otherwise "category:name".
func MenuPriceKey(m domain.MenuItem) string {
	if m.ID != 0 {
		return strconv.FormatInt(m.ID, 10)
	}
	category := m.Category
	if category == "" {
		category = domain.CategoryOption
	}
	return fmt.Sprintf("%s:%s", category, m.Name)
}

// EffectiveMenuPrice applies a configured override to a menu item's price.
// Only non-negative overrides apply; offers keep their catalog amount.
func EffectiveMenuPrice(m domain.MenuItem, settings domain.PriceSettings) int64 {
	if over, ok := settings.MenuPriceOverrides[MenuPriceKey(m)]; ok && over >= 0 {
		return over
	}
	return m.PriceIncludingTax
}

// EffectiveProductPrice applies a configured override to a product price.
func EffectiveProductPrice(p domain.Product, settings domain.PriceSettings) int64 {
	key := strconv.FormatInt(p.ID, 10)
	if over, ok := settings.ProductPriceOverrides[key]; ok && over >= 0 {
		return over
	}
	return p.PriceIncludingTax
}
