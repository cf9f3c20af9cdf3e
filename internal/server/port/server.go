package port

import (
	"context"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
)

type Repo interface {
	Create(ctx context.Context, server domain.ServerDomain) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ServerDomain, error)
	GetByFilter(ctx context.Context, filter domain.ServerFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.ServerDomain, int, error)
	Update(ctx context.Context, server domain.ServerDomain) error
	Delete(ctx context.Context, id int64) error
	UpdateLastScan(ctx context.Context, id int64, at time.Time) error
	// GetDueForScan returns active servers whose last scan is absent or
	// older than the cutoff.
	GetDueForScan(ctx context.Context, cutoff time.Time) ([]domain.ServerDomain, error)
}
