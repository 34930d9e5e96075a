package catalog

import (
	"testing"

	"salonpos/backend/internal/domain"
)

func TestGroupOrdersSectionsAndMenus(t *testing.T) {
	menus := []domain.MenuItem{
		{Name: "オプションA", Category: domain.CategoryOption, DisplayOrder: 30},
		{Name: "前髪カット", Category: domain.CategoryHaircut, DisplayOrder: 2},
		{Name: "カット", Category: domain.CategoryHaircut, DisplayOrder: 1},
		{Name: "白髪染め", Category: domain.CategoryColor, DisplayOrder: 11},
	}

	sections := Group(menus)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	if sections[0].Category != domain.CategoryHaircut || sections[1].Category != domain.CategoryColor {
		t.Fatalf("sections out of order: %v, %v", sections[0].Category, sections[1].Category)
	}
	if sections[0].Menus[0].Name != "カット" {
		t.Fatalf("menus must sort by display order, got %q first", sections[0].Menus[0].Name)
	}
}

func TestGroupSortsByNameWithinSameDisplayOrder(t *testing.T) {
	menus := []domain.MenuItem{
		{Name: "b", Category: domain.CategoryOption, DisplayOrder: 1},
		{Name: "a", Category: domain.CategoryOption, DisplayOrder: 1},
	}
	sections := Group(menus)
	if sections[0].Menus[0].Name != "a" {
		t.Fatalf("ties must break by name, got %q first", sections[0].Menus[0].Name)
	}
}

func TestMenuPriceKey(t *testing.T) {
	if key := MenuPriceKey(domain.MenuItem{ID: 42, Name: "カット", Category: domain.CategoryHaircut}); key != "42" {
		t.Fatalf("id-bearing menu must key by id, got %q", key)
	}
	if key := MenuPriceKey(domain.MenuItem{Name: "カット", Category: domain.CategoryHaircut}); key != "haircut:カット" {
		t.Fatalf("unexpected key %q", key)
	}
	if key := MenuPriceKey(domain.MenuItem{Name: "謎"}); key != "option:謎" {
		t.Fatalf("missing category must default to option, got %q", key)
	}
}

func TestEffectiveMenuPriceOverride(t *testing.T) {
	menu := domain.MenuItem{Name: "カット", Category: domain.CategoryHaircut, PriceIncludingTax: 4400}
	settings := domain.DefaultPriceSettings()

	if got := EffectiveMenuPrice(menu, settings); got != 4400 {
		t.Fatalf("no override must keep catalog price, got %d", got)
	}

	settings.MenuPriceOverrides["haircut:カット"] = 3900
	if got := EffectiveMenuPrice(menu, settings); got != 3900 {
		t.Fatalf("override not applied, got %d", got)
	}

	settings.MenuPriceOverrides["haircut:カット"] = -1
	if got := EffectiveMenuPrice(menu, settings); got != 4400 {
		t.Fatalf("negative override must be ignored, got %d", got)
	}
}

func TestEffectiveProductPriceOverride(t *testing.T) {
	product := domain.Product{ID: 1, Name: "シャンプー", PriceIncludingTax: 1870}
	settings := domain.DefaultPriceSettings()
	settings.ProductPriceOverrides["1"] = 1500

	if got := EffectiveProductPrice(product, settings); got != 1500 {
		t.Fatalf("product override not applied, got %d", got)
	}
}
