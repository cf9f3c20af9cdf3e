package port

import (
	"context"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
)

type Service interface {
	UpsertDiscovered(ctx context.Context, site domain.SiteDomain) (string, error)
	GetSiteByID(ctx context.Context, id string) (*domain.SiteDomain, error)
	GetSites(ctx context.Context, filter domain.SiteFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.SiteDomain, int, error)
	SetImmutability(ctx context.Context, id string, immutable bool, folderStatus map[string]bool, checkedAt time.Time) error
}
