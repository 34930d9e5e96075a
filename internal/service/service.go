package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"salonpos/backend/internal/cache"
	"salonpos/backend/internal/catalog"
	"salonpos/backend/internal/domain"
	"salonpos/backend/internal/pricing"
	"salonpos/backend/internal/register"
	"salonpos/backend/internal/store"
	"salonpos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service orchestrates register sessions against the durable collaborators:
// the catalog and receipt repository and the price-settings store fronted
// by a cache. Each register is logically single-threaded; the per-session
// mutex serializes concurrent HTTP handlers onto it.
type Service struct {
	repo          store.Repository
	settingsCache cache.SettingsCache
	settingsTTL   time.Duration
	retentionDays int

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu  sync.Mutex
	reg *register.Register
}

func New(repo store.Repository, settingsCache cache.SettingsCache, settingsTTL time.Duration, retentionDays int) *Service {
	if settingsCache == nil {
		settingsCache = cache.NoopSettingsCache{}
	}
	if settingsTTL <= 0 {
		settingsTTL = 30 * time.Second
	}
	if retentionDays < 1 {
		retentionDays = 7
	}
	return &Service{
		repo:          repo,
		settingsCache: settingsCache,
		settingsTTL:   settingsTTL,
		retentionDays: retentionDays,
		sessions:      make(map[string]*session),
	}
}

func (s *Service) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{reg: register.New()}
		s.sessions[id] = sess
	}
	return sess
}

// LoadPriceSettings returns the current price settings, consulting the
// cache first. Missing or unreadable settings degrade to defaults: the
// register must always be able to compute a total.
func (s *Service) LoadPriceSettings(ctx context.Context) domain.PriceSettings {
	if cached, hit, err := s.settingsCache.Get(ctx); err == nil && hit && cached != nil {
		return sanitizeSettings(*cached)
	} else if err != nil {
		log.Printf("[service] settings cache read failed: %v", err)
	}

	stored, err := s.repo.GetPriceSettings(ctx)
	if err != nil {
		if err != store.ErrNotFound {
			log.Printf("[service] settings load failed, using defaults: %v", err)
		}
		return domain.DefaultPriceSettings()
	}

	settings := sanitizeSettings(*stored)
	if err := s.settingsCache.Set(ctx, &settings, s.settingsTTL); err != nil {
		log.Printf("[service] settings cache write failed: %v", err)
	}
	return settings
}

// SavePriceSettings persists settings and invalidates the cached copy.
// Negative discounts and overrides are coerced to 0 rather than rejected.
func (s *Service) SavePriceSettings(ctx context.Context, settings domain.PriceSettings) error {
	settings = sanitizeSettings(settings)
	if err := s.repo.SavePriceSettings(ctx, settings); err != nil {
		return err
	}
	if err := s.settingsCache.Invalidate(ctx); err != nil {
		log.Printf("[service] settings cache invalidate failed: %v", err)
	}

	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] price settings saved by %s: cut_with_color=%d cut_with_perm=%d overrides=%d/%d",
		actor.Username, settings.DiscountCutWithColor, settings.DiscountCutWithPerm,
		len(settings.MenuPriceOverrides), len(settings.ProductPriceOverrides))
	return nil
}

func sanitizeSettings(settings domain.PriceSettings) domain.PriceSettings {
	if settings.DiscountCutWithColor < 0 {
		settings.DiscountCutWithColor = 0
	}
	if settings.DiscountCutWithPerm < 0 {
		settings.DiscountCutWithPerm = 0
	}
	settings.MenuPriceOverrides = sanitizeOverrides(settings.MenuPriceOverrides)
	settings.ProductPriceOverrides = sanitizeOverrides(settings.ProductPriceOverrides)
	return settings
}

func sanitizeOverrides(overrides map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(overrides))
	for key, value := range overrides {
		if value < 0 {
			value = 0
		}
		out[key] = value
	}
	return out
}

// Catalog returns the grouped service menu and product list with price
// overrides applied. A failed or empty catalog read degrades to the
// built-in fallback catalog instead of an error.
func (s *Service) Catalog(ctx context.Context) domain.CatalogResponse {
	settings := s.LoadPriceSettings(ctx)
	fallback := false

	menus, err := s.repo.ListMenus(ctx)
	if err != nil || len(menus) == 0 {
		if err != nil {
			log.Printf("[service] menu catalog unavailable, using fallback: %v", err)
		}
		menus = catalog.FallbackMenus()
		fallback = true
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil || len(products) == 0 {
		if err != nil {
			log.Printf("[service] product catalog unavailable, using fallback: %v", err)
		}
		products = catalog.FallbackProducts()
		fallback = true
	}

	for i := range menus {
		if menus[i].Category == domain.CategoryOffer {
			continue
		}
		menus[i].PriceIncludingTax = catalog.EffectiveMenuPrice(menus[i], settings)
	}
	for i := range products {
		products[i].PriceIncludingTax = catalog.EffectiveProductPrice(products[i], settings)
	}

	return domain.CatalogResponse{
		Sections: catalog.Group(menus),
		Products: products,
		Fallback: fallback,
	}
}

func validateSelection(sel domain.CatalogItem) error {
	if strings.TrimSpace(sel.Name) == "" || strings.TrimSpace(sel.Category) == "" {
		return store.ErrInvalidInput
	}
	return nil
}

// AddItem places a catalog item into the session's current cart. The bool
// reports whether the cart changed; a refused duplicate of a toggle-unique
// item leaves the state as-is.
func (s *Service) AddItem(ctx context.Context, sessionID string, sel domain.CatalogItem) (domain.RegisterState, bool, error) {
	if err := validateSelection(sel); err != nil {
		return domain.RegisterState{}, false, err
	}
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	_, changed := sess.reg.AddItem(sel)
	return sess.reg.State(settings), changed, nil
}

func (s *Service) ToggleItem(ctx context.Context, sessionID string, sel domain.CatalogItem) (domain.RegisterState, bool, error) {
	if err := validateSelection(sel); err != nil {
		return domain.RegisterState{}, false, err
	}
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	_, changed := sess.reg.ToggleItem(sel)
	return sess.reg.State(settings), changed, nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID string, itemID int64) (domain.RegisterState, error) {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.reg.RemoveItem(itemID) {
		return domain.RegisterState{}, store.ErrNotFound
	}
	return sess.reg.State(settings), nil
}

func (s *Service) AddCustomer(ctx context.Context, sessionID string, name string) (domain.RegisterState, error) {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.reg.AddCustomer(name)
	return sess.reg.State(settings), nil
}

func (s *Service) SelectCustomer(ctx context.Context, sessionID string, index int) (domain.RegisterState, error) {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.reg.SetCurrentIndex(index) {
		return domain.RegisterState{}, store.ErrInvalidInput
	}
	return sess.reg.State(settings), nil
}

func (s *Service) RemoveCustomer(ctx context.Context, sessionID string, customerID string) (domain.RegisterState, error) {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.reg.RemoveCustomer(customerID) {
		return domain.RegisterState{}, store.ErrInvalidInput
	}
	return sess.reg.State(settings), nil
}

func (s *Service) SetPayment(ctx context.Context, sessionID string, amount int64) (domain.RegisterState, error) {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.reg.SetPaymentAmount(amount)
	return sess.reg.State(settings), nil
}

func (s *Service) State(ctx context.Context, sessionID string) domain.RegisterState {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.reg.State(settings)
}

func (s *Service) Clear(ctx context.Context, sessionID string, scope string) (domain.RegisterState, error) {
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch scope {
	case "", "current":
		sess.reg.Clear()
	case "all":
		sess.reg.ClearAllCustomers()
	default:
		return domain.RegisterState{}, store.ErrInvalidInput
	}
	return sess.reg.State(settings), nil
}

// Checkout finalizes the current customer (individual) or every customer
// (batch) into one receipt. A failed receipt write propagates and leaves
// the register untouched; the charged scope is cleared only after the
// receipt is durably saved.
func (s *Service) Checkout(ctx context.Context, sessionID string, mode string) (domain.CheckoutResponse, error) {
	if mode == "" {
		mode = domain.CheckoutModeIndividual
	}
	if mode != domain.CheckoutModeIndividual && mode != domain.CheckoutModeBatch {
		return domain.CheckoutResponse{}, store.ErrInvalidInput
	}
	settings := s.LoadPriceSettings(ctx)

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var items []domain.ReceiptItem
	var total int64
	if mode == domain.CheckoutModeBatch {
		items = sess.reg.AllCustomersItemsForSave(settings)
		total = sess.reg.AllCustomersTotal(settings)
	} else {
		items = sess.reg.ItemsForSave(settings)
		total = sess.reg.Totals(settings).Total
	}
	if len(items) == 0 {
		return domain.CheckoutResponse{}, store.ErrInvalidInput
	}

	payment := sess.reg.PaymentAmount()
	receipt := domain.Receipt{
		ID:        xid.New("rcpt"),
		Items:     items,
		Total:     total,
		Payment:   payment,
		Change:    pricing.Change(total, payment),
		CreatedAt: time.Now().UTC(),
	}

	saved, err := s.repo.SaveReceipt(ctx, receipt)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("save receipt: %w", err)
	}

	if mode == domain.CheckoutModeBatch {
		sess.reg.ClearAllCustomers()
	} else {
		sess.reg.Clear()
	}

	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] checkout session=%s mode=%s receipt=%s items=%d total=%d by=%s",
		sessionID, mode, saved.ID, len(saved.Items), saved.Total, actor.Username)

	return domain.CheckoutResponse{
		ReceiptID: saved.ID,
		ItemCount: len(saved.Items),
		Total:     saved.Total,
		Payment:   saved.Payment,
		Change:    saved.Change,
		CreatedAt: saved.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *Service) ListReceipts(ctx context.Context, days int) ([]domain.Receipt, error) {
	if days < 1 {
		days = s.retentionDays
	}
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return s.repo.ListReceiptsSince(ctx, cutoff)
}

func (s *Service) DeleteReceipt(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}
	return s.repo.DeleteReceipt(ctx, id)
}

func (s *Service) ClearReceipts(ctx context.Context) error {
	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] receipt history cleared by %s", actor.Username)
	return s.repo.ClearReceipts(ctx)
}
