package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonpos/backend/internal/domain"
	"salonpos/backend/internal/store"
)

func TestSaveReceiptRejectsEmptyItems(t *testing.T) {
	s := NewSeeded()

	_, err := s.SaveReceipt(context.Background(), domain.Receipt{})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListReceiptsSinceFiltersAndSortsNewestFirst(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	now := time.Now().UTC()

	item := []domain.ReceiptItem{{Name: "カット", Price: 4400, Category: "haircut"}}
	old := domain.Receipt{ID: "rcpt-old", Items: item, Total: 4400, CreatedAt: now.Add(-10 * 24 * time.Hour)}
	mid := domain.Receipt{ID: "rcpt-mid", Items: item, Total: 4400, CreatedAt: now.Add(-2 * time.Hour)}
	fresh := domain.Receipt{ID: "rcpt-new", Items: item, Total: 4400, CreatedAt: now}

	for _, r := range []domain.Receipt{old, fresh, mid} {
		if _, err := s.SaveReceipt(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	receipts, err := s.ListReceiptsSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("receipts = %d, want 2 inside the window", len(receipts))
	}
	if receipts[0].ID != "rcpt-new" || receipts[1].ID != "rcpt-mid" {
		t.Fatalf("unexpected order: %s, %s", receipts[0].ID, receipts[1].ID)
	}
}

func TestDeleteReceipt(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	saved, err := s.SaveReceipt(ctx, domain.Receipt{
		Items: []domain.ReceiptItem{{Name: "カット", Price: 4400, Category: "haircut"}},
		Total: 4400,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.DeleteReceipt(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteReceipt(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestPriceSettingsCopiedOnReadAndWrite(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	original := domain.PriceSettings{
		DiscountCutWithColor: 2500,
		MenuPriceOverrides:   map[string]int64{"haircut:カット": 4000},
	}
	if err := s.SavePriceSettings(ctx, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's map after save must not leak into the store.
	original.MenuPriceOverrides["haircut:カット"] = 1

	loaded, err := s.GetPriceSettings(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.MenuPriceOverrides["haircut:カット"] != 4000 {
		t.Fatalf("override = %d, want 4000", loaded.MenuPriceOverrides["haircut:カット"])
	}

	// Same for the returned copy.
	loaded.MenuPriceOverrides["haircut:カット"] = 2
	again, err := s.GetPriceSettings(ctx)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.MenuPriceOverrides["haircut:カット"] != 4000 {
		t.Fatalf("stored settings mutated through returned copy")
	}
}

func TestGetPriceSettingsNotFoundWhenUnset(t *testing.T) {
	s := NewSeeded()

	_, err := s.GetPriceSettings(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSeededCatalogAndUsers(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	menus, err := s.ListMenus(ctx)
	if err != nil || len(menus) == 0 {
		t.Fatalf("menus: %v (%d)", err, len(menus))
	}
	products, err := s.ListProducts(ctx)
	if err != nil || len(products) == 0 {
		t.Fatalf("products: %v (%d)", err, len(products))
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	roles := map[string]string{}
	for _, u := range users {
		roles[u.Username] = u.Role
	}
	if roles["admin"] != "admin" || roles["staff"] != "staff" {
		t.Fatalf("seed users missing: %v", roles)
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	err := s.CreateUser(ctx, domain.UserAccount{Username: "admin", Password: "x", Role: "admin"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for duplicate username", err)
	}
}
