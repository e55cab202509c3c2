package cache

import (
	"context"
	"time"

	"fuelbook/backend/internal/domain"
)

// SummaryCache keeps the hot summary counters close to the read path. A
// miss is not an error; callers fall through to the store. Invalidate is
// called after every write set that touches a counter.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*domain.SummaryResponse, bool, error)
	Set(ctx context.Context, key string, value *domain.SummaryResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(_ context.Context, _ string) (*domain.SummaryResponse, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ string, _ *domain.SummaryResponse, _ time.Duration) error {
	return nil
}

func (NoopSummaryCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
