package port

import (
	"context"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
)

type Repo interface {
	// Upsert creates the row or, when (server, path) already exists,
	// updates the inferred fields in place. Returns the row's id either way.
	Upsert(ctx context.Context, site domain.SiteDomain) (string, error)
	GetByID(ctx context.Context, id string) (*domain.SiteDomain, error)
	GetByFilter(ctx context.Context, filter domain.SiteFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.SiteDomain, int, error)
	UpdateImmutability(ctx context.Context, id string, immutable bool, folderStatus map[string]bool, checkedAt time.Time) error
}
