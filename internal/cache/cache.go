package cache

import (
	"context"
	"time"

	"salonpos/backend/internal/domain"
)

// SettingsCache fronts the price-settings store. Settings are read before
// every price computation, so the durable store only sees a read when the
// cached copy expires or is invalidated by a save.
type SettingsCache interface {
	Get(ctx context.Context) (*domain.PriceSettings, bool, error)
	Set(ctx context.Context, settings *domain.PriceSettings, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopSettingsCache struct{}

func (NoopSettingsCache) Get(_ context.Context) (*domain.PriceSettings, bool, error) {
	return nil, false, nil
}

func (NoopSettingsCache) Set(_ context.Context, _ *domain.PriceSettings, _ time.Duration) error {
	return nil
}

func (NoopSettingsCache) Invalidate(_ context.Context) error {
	return nil
}
