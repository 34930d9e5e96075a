// Package register owns the multi-customer cart state of one register
// session: selected line items per customer, the toggle index, the shared
// tendered amount, and the derived totals. The register itself is not
// goroutine safe; callers serialize access per session.
package register

import (
	"fmt"
	"regexp"
	"strings"

	"salonpos/backend/internal/domain"
	"salonpos/backend/internal/pricing"
	"salonpos/backend/internal/xid"
)

// placeholderName matches auto-generated customer names so that an unused
// placeholder can be evicted when a named customer is added.
var placeholderName = regexp.MustCompile(`^Customer \d+$`)

type customerState struct {
	id    string
	name  string
	items []domain.LineItem
	// groupKey -> line item id, for toggle-unique categories.
	selected map[string]int64
}

// Register holds the cart state for one session. Mutating operations
// report whether they changed anything instead of failing silently, so
// callers can distinguish stale-UI no-ops from applied changes.
type Register struct {
	customers []*customerState
	current   int
	payment   int64
	// Monotonic line item id counter, register-scoped. Wall-clock ids
	// collide under rapid sequential adds; a counter cannot.
	nextItemID int64
}

// New returns a register with one empty placeholder customer, so a total
// is always computable.
func New() *Register {
	r := &Register{}
	r.EnsureCustomer()
	return r
}

func (r *Register) currentCustomer() *customerState {
	if r.current < 0 || r.current >= len(r.customers) {
		return nil
	}
	return r.customers[r.current]
}

// GroupKey derives the toggle identity of a catalog item: name+category
// for services and offers. Products toggle by catalog id for display
// grouping only and never enter the toggle index.
func GroupKey(name, category string) string {
	return name + category
}

// Customers returns a snapshot of all customers in display order.
func (r *Register) Customers() []domain.Customer {
	out := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		items := make([]domain.LineItem, len(c.items))
		copy(items, c.items)
		out = append(out, domain.Customer{ID: c.id, Name: c.name, Items: items})
	}
	return out
}

func (r *Register) CurrentIndex() int {
	return r.current
}

// SetCurrentIndex selects which customer's cart subsequent operations act
// on. Out-of-range indexes are rejected.
func (r *Register) SetCurrentIndex(i int) bool {
	if i < 0 || i >= len(r.customers) {
		return false
	}
	r.current = i
	return true
}

// AddCustomer prepends a customer and selects it. An empty name gets a
// generated placeholder; a supplied name additionally evicts a lone
// item-less placeholder customer so empty defaults never accumulate.
func (r *Register) AddCustomer(name string) domain.Customer {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Customer %d", len(r.customers)+1)
	} else {
		r.evictEmptyPlaceholder()
	}

	c := &customerState{
		id:       xid.New("cust"),
		name:     name,
		selected: make(map[string]int64),
	}
	r.customers = append([]*customerState{c}, r.customers...)
	r.current = 0
	return domain.Customer{ID: c.id, Name: c.name}
}

func (r *Register) evictEmptyPlaceholder() {
	for i, c := range r.customers {
		if len(c.items) == 0 && placeholderName.MatchString(c.name) {
			r.customers = append(r.customers[:i], r.customers[i+1:]...)
			if r.current > i {
				r.current--
			}
			return
		}
	}
}

// EnsureCustomer guarantees at least one customer exists. Idempotent.
func (r *Register) EnsureCustomer() {
	if len(r.customers) == 0 {
		r.AddCustomer("")
	}
}

// RemoveCustomer removes the identified customer. The last remaining
// customer cannot be removed. The current selection stays on the same
// logical customer where possible.
func (r *Register) RemoveCustomer(id string) bool {
	if len(r.customers) <= 1 {
		return false
	}
	idx := -1
	for i, c := range r.customers {
		if c.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	r.customers = append(r.customers[:idx], r.customers[idx+1:]...)
	if r.current > idx {
		r.current--
	} else if r.current >= len(r.customers) {
		r.current = len(r.customers) - 1
	}
	return true
}

// AddItem places a catalog item into the current customer's cart.
//
// Offers are exclusive: a different offer replaces the existing one in
// place, while re-adding the selected offer is refused. Toggle-unique
// categories refuse duplicates by group key. Products always append, so
// repeat adds express quantity. The second return reports whether the cart
// changed.
func (r *Register) AddItem(sel domain.CatalogItem) (domain.LineItem, bool) {
	cur := r.currentCustomer()
	if cur == nil {
		return domain.LineItem{}, false
	}

	key := GroupKey(sel.Name, sel.Category)
	r.nextItemID++
	item := domain.LineItem{
		ID:        r.nextItemID,
		Name:      sel.Name,
		BasePrice: sel.Price,
		Category:  sel.Category,
	}

	switch sel.Category {
	case domain.CategoryOffer:
		if _, dup := cur.selected[key]; dup {
			return domain.LineItem{}, false
		}
		item.GroupKey = key
		item.DiscountKind = sel.DiscountKind
		if item.DiscountKind == domain.DiscountNone {
			item.DiscountKind = domain.DiscountFixed
		}
		replaced := false
		for i := range cur.items {
			if cur.items[i].Category == domain.CategoryOffer {
				delete(cur.selected, cur.items[i].GroupKey)
				cur.items[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			cur.items = append(cur.items, item)
		}
		cur.selected[key] = item.ID
	case domain.CategoryProduct:
		item.ProductID = sel.ProductID
		cur.items = append(cur.items, item)
	default:
		if _, dup := cur.selected[key]; dup {
			return domain.LineItem{}, false
		}
		item.GroupKey = key
		cur.items = append(cur.items, item)
		cur.selected[key] = item.ID
	}
	return item, true
}

// RemoveItem deletes a line item from the current customer's cart and
// clears its toggle entry.
func (r *Register) RemoveItem(id int64) bool {
	cur := r.currentCustomer()
	if cur == nil {
		return false
	}
	for i, it := range cur.items {
		if it.ID == id {
			if it.GroupKey != "" {
				delete(cur.selected, it.GroupKey)
			}
			cur.items = append(cur.items[:i], cur.items[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleItem removes the item if its group key is selected, otherwise adds
// it. Returns whether the item is selected after the call and whether the
// cart changed.
func (r *Register) ToggleItem(sel domain.CatalogItem) (selected bool, changed bool) {
	cur := r.currentCustomer()
	if cur == nil {
		return false, false
	}
	key := GroupKey(sel.Name, sel.Category)
	if id, ok := cur.selected[key]; ok {
		return false, r.RemoveItem(id)
	}
	_, added := r.AddItem(sel)
	return added, added
}

// IsSelected reports membership in the current customer's toggle index.
func (r *Register) IsSelected(groupKey string) bool {
	cur := r.currentCustomer()
	if cur == nil {
		return false
	}
	_, ok := cur.selected[groupKey]
	return ok
}

// Items returns a copy of the current customer's cart in insertion order.
func (r *Register) Items() []domain.LineItem {
	cur := r.currentCustomer()
	if cur == nil {
		return nil
	}
	items := make([]domain.LineItem, len(cur.items))
	copy(items, cur.items)
	return items
}

func (r *Register) PaymentAmount() int64 {
	return r.payment
}

// SetPaymentAmount records the tendered amount, clamped to non-negative.
// The amount is shared across customers, scoped to the next checkout.
func (r *Register) SetPaymentAmount(amount int64) {
	if amount < 0 {
		amount = 0
	}
	r.payment = amount
}

// Totals computes the current customer's subtotal, tax, and total under
// the given settings.
func (r *Register) Totals(settings domain.PriceSettings) pricing.Totals {
	return pricing.Total(r.Items(), settings)
}

// Change is the change due on the current customer's total at the current
// payment amount, floored at zero.
func (r *Register) Change(settings domain.PriceSettings) int64 {
	return pricing.Change(r.Totals(settings).Total, r.payment)
}

// Clear empties the current customer's cart and resets the shared payment
// amount.
func (r *Register) Clear() {
	cur := r.currentCustomer()
	if cur != nil {
		cur.items = nil
		cur.selected = make(map[string]int64)
	}
	r.payment = 0
}

// ClearAllCustomers empties every customer's cart and resets the payment
// amount. Customer entities themselves persist.
func (r *Register) ClearAllCustomers() {
	for _, c := range r.customers {
		c.items = nil
		c.selected = make(map[string]int64)
	}
	r.payment = 0
}

// ItemsForSave flattens the current customer's cart into receipt lines
// with effective prices resolved.
func (r *Register) ItemsForSave(settings domain.PriceSettings) []domain.ReceiptItem {
	cur := r.currentCustomer()
	if cur == nil {
		return nil
	}
	return receiptLines(cur, settings, false)
}

// AllCustomersTotal sums every customer's independently-discounted total
// for a combined checkout. Discounts never cross customer boundaries.
func (r *Register) AllCustomersTotal(settings domain.PriceSettings) int64 {
	var total int64
	for _, c := range r.customers {
		total += pricing.Total(c.items, settings).Total
	}
	return total
}

// AllCustomersItemsForSave flattens every customer's cart for a combined
// checkout, each priced against its own customer's cart only.
func (r *Register) AllCustomersItemsForSave(settings domain.PriceSettings) []domain.ReceiptItem {
	var out []domain.ReceiptItem
	for _, c := range r.customers {
		out = append(out, receiptLines(c, settings, true)...)
	}
	return out
}

func receiptLines(c *customerState, settings domain.PriceSettings, withCustomer bool) []domain.ReceiptItem {
	lines := make([]domain.ReceiptItem, 0, len(c.items))
	for _, it := range c.items {
		line := domain.ReceiptItem{
			Name:     it.Name,
			Price:    pricing.EffectivePrice(it, c.items, settings),
			Category: it.Category,
		}
		if withCustomer {
			line.CustomerName = c.name
		}
		lines = append(lines, line)
	}
	return lines
}

// State assembles the renderable view of the register for one settings
// snapshot: customers, the current cart with effective prices, and the
// derived money fields.
func (r *Register) State(settings domain.PriceSettings) domain.RegisterState {
	items := r.Items()
	views := make([]domain.LineItemView, 0, len(items))
	for _, it := range items {
		views = append(views, domain.LineItemView{
			LineItem:       it,
			EffectivePrice: pricing.EffectivePrice(it, items, settings),
		})
	}
	totals := pricing.Total(items, settings)
	return domain.RegisterState{
		Customers:            r.Customers(),
		CurrentCustomerIndex: r.current,
		Items:                views,
		Subtotal:             totals.Subtotal,
		Tax:                  totals.Tax,
		Total:                totals.Total,
		Payment:              r.payment,
		Change:               pricing.Change(totals.Total, r.payment),
	}
}
