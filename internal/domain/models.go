package domain

import "time"

// Item categories. Offer and product are structurally special: offers are
// exclusive per cart and carry a discount kind, products may repeat.
const (
	CategoryHaircut = "haircut"
	CategoryColor   = "color"
	CategoryPerm    = "perm"
	CategoryOption  = "option"
	CategoryOffer   = "offer"
	CategoryProduct = "product"
)

const (
	DiscountNone       = ""
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// MenuItem is a salon service menu entry. Prices are tax-inclusive yen.
type MenuItem struct {
	ID                int64  `json:"id,omitempty"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	DisplayOrder      int    `json:"display_order"`
	PriceIncludingTax int64  `json:"price_including_tax"`
	DiscountKind      string `json:"discount_kind,omitempty"`
}

// Product is a retail item sold alongside services.
type Product struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	PriceIncludingTax int64  `json:"price_including_tax"`
}

// CatalogItem is the normalized input for placing a catalog entry into a
// cart: a menu item or product with its display price already resolved
// against any configured override.
type CatalogItem struct {
	ProductID    string `json:"product_id,omitempty"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	DiscountKind string `json:"discount_kind,omitempty"`
}

// LineItem is one line in a customer's cart. BasePrice is the tax-inclusive
// price at the time of add; the charged price is computed by the pricing
// engine against the rest of the cart.
type LineItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BasePrice    int64  `json:"base_price"`
	Category     string `json:"category"`
	GroupKey     string `json:"group_key,omitempty"`
	ProductID    string `json:"product_id,omitempty"`
	DiscountKind string `json:"discount_kind,omitempty"`
}

type Customer struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []LineItem `json:"items"`
}

// PriceSettings holds the configurable discount amounts and per-item price
// overrides. Override maps are keyed by menu key (catalog id, or
// "category:name" for id-less menus) and product id respectively.
type PriceSettings struct {
	DiscountCutWithColor  int64            `json:"discount_cut_with_color"`
	DiscountCutWithPerm   int64            `json:"discount_cut_with_perm"`
	MenuPriceOverrides    map[string]int64 `json:"menu_price_overrides"`
	ProductPriceOverrides map[string]int64 `json:"product_price_overrides"`
}

func DefaultPriceSettings() PriceSettings {
	return PriceSettings{
		DiscountCutWithColor:  2500,
		DiscountCutWithPerm:   0,
		MenuPriceOverrides:    map[string]int64{},
		ProductPriceOverrides: map[string]int64{},
	}
}

type ReceiptItem struct {
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	Category     string `json:"category"`
	CustomerName string `json:"customer_name,omitempty"`
}

type Receipt struct {
	ID        string        `json:"id"`
	Items     []ReceiptItem `json:"items"`
	Total     int64         `json:"total"`
	Payment   int64         `json:"payment"`
	Change    int64         `json:"change"`
	CreatedAt time.Time     `json:"created_at"`
}

// CatalogSection groups menu items of one category for display, sorted by
// (display_order, name).
type CatalogSection struct {
	Category string     `json:"category"`
	Menus    []MenuItem `json:"menus"`
}

type CatalogResponse struct {
	Sections []CatalogSection `json:"sections"`
	Products []Product        `json:"products"`
	Fallback bool             `json:"fallback"`
}

// LineItemView is a cart line with its effective (charged) price resolved.
type LineItemView struct {
	LineItem
	EffectivePrice int64 `json:"effective_price"`
}

// RegisterState is the full renderable state of one register session.
type RegisterState struct {
	Customers            []Customer     `json:"customers"`
	CurrentCustomerIndex int            `json:"current_customer_index"`
	Items                []LineItemView `json:"items"`
	Subtotal             int64          `json:"subtotal"`
	Tax                  int64          `json:"tax"`
	Total                int64          `json:"total"`
	Payment              int64          `json:"payment"`
	Change               int64          `json:"change"`
}

// ItemChangeResponse is the result of an add or toggle: whether the cart
// actually changed, plus the resulting register state. A refused duplicate
// add reports changed=false with the state untouched.
type ItemChangeResponse struct {
	Changed bool `json:"changed"`
	RegisterState
}

const (
	CheckoutModeIndividual = "individual"
	CheckoutModeBatch      = "batch"
)

type CheckoutRequest struct {
	Mode string `json:"mode"`
}

type CheckoutResponse struct {
	ReceiptID string `json:"receipt_id"`
	ItemCount int    `json:"item_count"`
	Total     int64  `json:"total"`
	Payment   int64  `json:"payment"`
	Change    int64  `json:"change"`
	CreatedAt string `json:"created_at"`
}

type AddCustomerRequest struct {
	Name string `json:"name"`
}

type SelectCustomerRequest struct {
	Index int `json:"index"`
}

type PaymentRequest struct {
	// Amount arrives as free-form JSON: non-numeric input is coerced to 0
	// so the register always stays computable.
	Amount any `json:"amount"`
}

type ClearRequest struct {
	Scope string `json:"scope"` // "current" or "all"
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
