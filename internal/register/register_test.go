package register

import (
	"testing"

	"salonpos/backend/internal/domain"
)

func cut() domain.CatalogItem {
	return domain.CatalogItem{Name: "カット", Category: domain.CategoryHaircut, Price: 4400}
}

func color() domain.CatalogItem {
	return domain.CatalogItem{Name: "おしゃれ染め", Category: domain.CategoryColor, Price: 7000}
}

func shampoo() domain.CatalogItem {
	return domain.CatalogItem{ProductID: "1", Name: "シャンプー", Category: domain.CategoryProduct, Price: 1870}
}

func offer(name string, price int64, kind string) domain.CatalogItem {
	return domain.CatalogItem{Name: name, Category: domain.CategoryOffer, Price: price, DiscountKind: kind}
}

func TestNewHasPlaceholderCustomer(t *testing.T) {
	r := New()
	customers := r.Customers()
	if len(customers) != 1 {
		t.Fatalf("expected 1 initial customer, got %d", len(customers))
	}
	if customers[0].Name != "Customer 1" {
		t.Fatalf("expected placeholder name, got %q", customers[0].Name)
	}
	r.EnsureCustomer()
	if len(r.Customers()) != 1 {
		t.Fatalf("EnsureCustomer must be idempotent")
	}
}

func TestAddItemToggleUnique(t *testing.T) {
	r := New()
	if _, ok := r.AddItem(cut()); !ok {
		t.Fatalf("first add should succeed")
	}
	if _, ok := r.AddItem(cut()); ok {
		t.Fatalf("duplicate add of toggle-unique item must be refused")
	}
	if len(r.Items()) != 1 {
		t.Fatalf("expected 1 item, got %d", len(r.Items()))
	}
	if !r.IsSelected(GroupKey("カット", domain.CategoryHaircut)) {
		t.Fatalf("expected item to be selected")
	}
}

func TestToggleIdempotence(t *testing.T) {
	r := New()
	r.ToggleItem(cut())
	r.ToggleItem(cut())
	if len(r.Items()) != 0 {
		t.Fatalf("toggle twice must leave the cart unchanged, got %d items", len(r.Items()))
	}
	if r.IsSelected(GroupKey("カット", domain.CategoryHaircut)) {
		t.Fatalf("toggle index must be cleared")
	}
}

func TestProductRepeatAddsExpressQuantity(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		if _, ok := r.AddItem(shampoo()); !ok {
			t.Fatalf("product add %d refused", i)
		}
	}
	if len(r.Items()) != 3 {
		t.Fatalf("expected 3 product lines, got %d", len(r.Items()))
	}
}

func TestLineItemIDsUnique(t *testing.T) {
	r := New()
	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		item, ok := r.AddItem(shampoo())
		if !ok {
			t.Fatalf("add %d refused", i)
		}
		if seen[item.ID] {
			t.Fatalf("duplicate line item id %d", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestOfferExclusivity(t *testing.T) {
	r := New()
	r.AddItem(domain.CatalogItem{Name: "オプションA", Category: domain.CategoryOption, Price: 500})
	r.AddItem(offer("500円引き", -500, domain.DiscountFixed))
	r.AddItem(offer("10%OFF", -10, domain.DiscountPercentage))

	offers := 0
	var kept domain.LineItem
	for _, it := range r.Items() {
		if it.Category == domain.CategoryOffer {
			offers++
			kept = it
		}
	}
	if offers != 1 {
		t.Fatalf("expected exactly 1 offer line, got %d", offers)
	}
	if kept.Name != "10%OFF" {
		t.Fatalf("second offer must replace the first, kept %q", kept.Name)
	}
	// The replacement keeps the offer's position.
	if r.Items()[1].Category != domain.CategoryOffer {
		t.Fatalf("offer must stay at its original position")
	}
	// Re-adding the selected offer is a refusal, not a duplicate.
	if _, ok := r.AddItem(offer("10%OFF", -10, domain.DiscountPercentage)); ok {
		t.Fatalf("re-adding the selected offer must be refused")
	}
}

func TestRemoveItem(t *testing.T) {
	r := New()
	item, _ := r.AddItem(cut())
	if !r.RemoveItem(item.ID) {
		t.Fatalf("remove of existing item failed")
	}
	if r.RemoveItem(item.ID) {
		t.Fatalf("remove of unknown id must report false")
	}
	if r.IsSelected(GroupKey("カット", domain.CategoryHaircut)) {
		t.Fatalf("toggle entry must be cleared on removal")
	}
}

func TestAddCustomerPrependsAndEvictsPlaceholder(t *testing.T) {
	r := New()
	r.AddCustomer("佐藤")
	customers := r.Customers()
	if len(customers) != 1 {
		t.Fatalf("empty placeholder must be evicted, got %d customers", len(customers))
	}
	if customers[0].Name != "佐藤" {
		t.Fatalf("expected named customer first, got %q", customers[0].Name)
	}
	if r.CurrentIndex() != 0 {
		t.Fatalf("new customer must be selected")
	}

	// A placeholder with items is not evicted.
	r2 := New()
	r2.AddItem(cut())
	r2.AddCustomer("鈴木")
	if len(r2.Customers()) != 2 {
		t.Fatalf("placeholder with items must be kept, got %d customers", len(r2.Customers()))
	}
}

func TestRemoveCustomerKeepsIndexValid(t *testing.T) {
	r := New()
	r.AddItem(cut())
	r.AddCustomer("佐藤")
	r.AddCustomer("鈴木")
	// Order: 鈴木(0), 佐藤(1), Customer 1(2). Select the last.
	if !r.SetCurrentIndex(2) {
		t.Fatalf("select index 2 failed")
	}
	customers := r.Customers()
	if !r.RemoveCustomer(customers[0].ID) {
		t.Fatalf("remove failed")
	}
	// The selected logical customer moved from index 2 to 1.
	if r.CurrentIndex() != 1 {
		t.Fatalf("expected index 1 after removal before selection, got %d", r.CurrentIndex())
	}
	if r.Customers()[r.CurrentIndex()].Name != "Customer 1" {
		t.Fatalf("selection must stay on the same logical customer")
	}
}

func TestRemoveLastCustomerRefused(t *testing.T) {
	r := New()
	id := r.Customers()[0].ID
	if r.RemoveCustomer(id) {
		t.Fatalf("removing the last customer must be refused")
	}
	if len(r.Customers()) != 1 {
		t.Fatalf("customer list must be unchanged")
	}
}

func TestSetCurrentIndexOutOfRange(t *testing.T) {
	r := New()
	if r.SetCurrentIndex(1) || r.SetCurrentIndex(-1) {
		t.Fatalf("out-of-range selection must be rejected")
	}
	if r.CurrentIndex() != 0 {
		t.Fatalf("index must be unchanged after rejected selection")
	}
}

func TestPaymentClampedNonNegative(t *testing.T) {
	r := New()
	r.SetPaymentAmount(-100)
	if r.PaymentAmount() != 0 {
		t.Fatalf("negative payment must clamp to 0, got %d", r.PaymentAmount())
	}
	r.SetPaymentAmount(10000)
	if r.PaymentAmount() != 10000 {
		t.Fatalf("payment not stored")
	}
}

func TestCustomerIsolation(t *testing.T) {
	settings := domain.DefaultPriceSettings()
	r := New()
	r.AddItem(color())
	r.AddCustomer("佐藤")
	r.AddItem(cut())

	// 佐藤 has only a haircut; the other customer's color must not
	// trigger the cap.
	totals := r.Totals(settings)
	if totals.Total != 4400 {
		t.Fatalf("discount leaked across customers: total %d", totals.Total)
	}
}

func TestClearScopes(t *testing.T) {
	r := New()
	r.AddItem(cut())
	r.AddCustomer("佐藤")
	r.AddItem(color())
	r.SetPaymentAmount(10000)

	r.Clear()
	if len(r.Items()) != 0 {
		t.Fatalf("current cart must be empty after Clear")
	}
	if r.PaymentAmount() != 0 {
		t.Fatalf("payment must reset on Clear")
	}
	// The other customer's cart is untouched.
	r.SetCurrentIndex(1)
	if len(r.Items()) != 1 {
		t.Fatalf("Clear must not touch other customers")
	}

	r.ClearAllCustomers()
	for i := range r.Customers() {
		r.SetCurrentIndex(i)
		if len(r.Items()) != 0 {
			t.Fatalf("customer %d not cleared", i)
		}
	}
}

func TestItemsForSaveUsesEffectivePrices(t *testing.T) {
	settings := domain.DefaultPriceSettings()
	r := New()
	r.AddItem(cut())
	r.AddItem(color())

	lines := r.ItemsForSave(settings)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Price != 2500 {
		t.Fatalf("haircut must be saved at its capped price, got %d", lines[0].Price)
	}
	if lines[1].Price != 7000 {
		t.Fatalf("color must be saved at base price, got %d", lines[1].Price)
	}
}

func TestBatchTotalEqualsSumOfIndependentTotals(t *testing.T) {
	settings := domain.DefaultPriceSettings()
	r := New()
	r.AddItem(cut())
	r.AddItem(color())
	first := r.Totals(settings).Total

	r.AddCustomer("佐藤")
	r.AddItem(domain.CatalogItem{Name: "ナチュラルパーマ", Category: domain.CategoryPerm, Price: 7500})
	r.AddItem(cut())
	second := r.Totals(settings).Total

	if got := r.AllCustomersTotal(settings); got != first+second {
		t.Fatalf("batch total %d != %d + %d", got, first, second)
	}

	lines := r.AllCustomersItemsForSave(settings)
	if len(lines) != 4 {
		t.Fatalf("expected 4 flattened lines, got %d", len(lines))
	}
	for _, line := range lines {
		if line.CustomerName == "" {
			t.Fatalf("batch lines must carry the customer name")
		}
	}
}

func TestStateReconciles(t *testing.T) {
	settings := domain.DefaultPriceSettings()
	r := New()
	r.AddItem(cut())
	r.AddItem(color())
	r.SetPaymentAmount(10000)

	state := r.State(settings)
	if state.Subtotal+state.Tax != state.Total {
		t.Fatalf("state must reconcile: %d + %d != %d", state.Subtotal, state.Tax, state.Total)
	}
	if state.Change != 500 {
		t.Fatalf("expected change 500, got %d", state.Change)
	}
	if len(state.Items) != 2 || state.Items[0].EffectivePrice != 2500 {
		t.Fatalf("state items must carry effective prices")
	}
}
