package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"salonpos/backend/internal/catalog"
	"salonpos/backend/internal/domain"
	"salonpos/backend/internal/store"
	"salonpos/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	receipts        []domain.Receipt
	settings        *domain.PriceSettings
	menus           []domain.MenuItem
	products        []domain.Product
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store preloaded with the built-in salon catalog and
// dev user accounts.
func NewSeeded() *Store {
	return &Store{
		receipts:        make([]domain.Receipt, 0, 64),
		menus:           catalog.FallbackMenus(),
		products:        catalog.FallbackProducts(),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) SaveReceipt(_ context.Context, receipt domain.Receipt) (*domain.Receipt, error) {
	if len(receipt.Items) == 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if receipt.ID == "" {
		receipt.ID = xid.New("rcpt")
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now().UTC()
	}
	items := make([]domain.ReceiptItem, len(receipt.Items))
	copy(items, receipt.Items)
	receipt.Items = items

	s.receipts = append(s.receipts, receipt)
	saved := receipt
	return &saved, nil
}

func (s *Store) ListReceiptsSince(_ context.Context, cutoff time.Time) ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Receipt, 0, len(s.receipts))
	for _, r := range s.receipts {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		items := make([]domain.ReceiptItem, len(r.Items))
		copy(items, r.Items)
		r.Items = items
		result = append(result, r)
	}

	slices.SortFunc(result, func(a, b domain.Receipt) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})

	return result, nil
}

func (s *Store) DeleteReceipt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.receipts {
		if r.ID == id {
			s.receipts = append(s.receipts[:i], s.receipts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ClearReceipts(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts = s.receipts[:0]
	return nil
}

func (s *Store) GetPriceSettings(_ context.Context) (*domain.PriceSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, store.ErrNotFound
	}
	copied := copySettings(*s.settings)
	return &copied, nil
}

func (s *Store) SavePriceSettings(_ context.Context, settings domain.PriceSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := copySettings(settings)
	s.settings = &copied
	return nil
}

func copySettings(settings domain.PriceSettings) domain.PriceSettings {
	menuOverrides := make(map[string]int64, len(settings.MenuPriceOverrides))
	for k, v := range settings.MenuPriceOverrides {
		menuOverrides[k] = v
	}
	productOverrides := make(map[string]int64, len(settings.ProductPriceOverrides))
	for k, v := range settings.ProductPriceOverrides {
		productOverrides[k] = v
	}
	settings.MenuPriceOverrides = menuOverrides
	settings.ProductPriceOverrides = productOverrides
	return settings
}

func (s *Store) ListMenus(_ context.Context) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	menus := make([]domain.MenuItem, len(s.menus))
	copy(menus, s.menus)
	return menus, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	return products, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrInvalidInput
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
