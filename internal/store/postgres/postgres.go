package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"salonpos/backend/internal/domain"
	"salonpos/backend/internal/store"
	"salonpos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error) {
	if len(receipt.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	if receipt.ID == "" {
		receipt.ID = xid.New("rcpt")
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now().UTC()
	}

	items, err := json.Marshal(receipt.Items)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts (id, items, total, payment, change, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, receipt.ID, items, receipt.Total, receipt.Payment, receipt.Change, receipt.CreatedAt)
	if err != nil {
		return nil, err
	}

	saved := receipt
	return &saved, nil
}

func (s *Store) ListReceiptsSince(ctx context.Context, cutoff time.Time) ([]domain.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, items, total, payment, change, created_at
		FROM receipts
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]domain.Receipt, 0, 64)
	for rows.Next() {
		var r domain.Receipt
		var items []byte
		if err := rows.Scan(&r.ID, &items, &r.Total, &r.Payment, &r.Change, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &r.Items); err != nil {
			return nil, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return receipts, nil
}

func (s *Store) DeleteReceipt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ClearReceipts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM receipts`)
	return err
}

// Price settings live in a single-row table keyed by id=1; the override
// maps are stored as jsonb.
func (s *Store) GetPriceSettings(ctx context.Context) (*domain.PriceSettings, error) {
	var settings domain.PriceSettings
	var menuOverrides, productOverrides []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT discount_cut_with_color, discount_cut_with_perm, menu_price_overrides, product_price_overrides
		FROM price_settings
		WHERE id = 1
	`).Scan(&settings.DiscountCutWithColor, &settings.DiscountCutWithPerm, &menuOverrides, &productOverrides)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(menuOverrides, &settings.MenuPriceOverrides); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(productOverrides, &settings.ProductPriceOverrides); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) SavePriceSettings(ctx context.Context, settings domain.PriceSettings) error {
	menuOverrides, err := json.Marshal(settings.MenuPriceOverrides)
	if err != nil {
		return err
	}
	productOverrides, err := json.Marshal(settings.ProductPriceOverrides)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO price_settings (id, discount_cut_with_color, discount_cut_with_perm, menu_price_overrides, product_price_overrides, updated_at)
		VALUES (1,$1,$2,$3,$4,now())
		ON CONFLICT (id) DO UPDATE
		SET discount_cut_with_color = $1, discount_cut_with_perm = $2, menu_price_overrides = $3, product_price_overrides = $4, updated_at = now()
	`, settings.DiscountCutWithColor, settings.DiscountCutWithPerm, menuOverrides, productOverrides)
	return err
}

func (s *Store) ListMenus(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, display_order, price_including_tax, COALESCE(discount_kind, '')
		FROM menus
		ORDER BY display_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	menus := make([]domain.MenuItem, 0, 32)
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.DisplayOrder, &m.PriceIncludingTax, &m.DiscountKind); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return menus, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price_including_tax
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceIncludingTax); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
