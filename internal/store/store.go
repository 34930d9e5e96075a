package store

import (
	"context"
	"errors"
	"time"

	"salonpos/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repository is the persistence boundary of the register: receipts,
// durable price settings, the service/product catalog, and auth accounts.
type Repository interface {
	SaveReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error)
	ListReceiptsSince(ctx context.Context, cutoff time.Time) ([]domain.Receipt, error)
	DeleteReceipt(ctx context.Context, id string) error
	ClearReceipts(ctx context.Context) error

	GetPriceSettings(ctx context.Context) (*domain.PriceSettings, error)
	SavePriceSettings(ctx context.Context, settings domain.PriceSettings) error

	ListMenus(ctx context.Context) ([]domain.MenuItem, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
