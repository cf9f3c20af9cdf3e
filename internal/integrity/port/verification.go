package port

import (
	"context"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
)

type Repo interface {
	Create(ctx context.Context, v domain.Verification) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Verification, error)
	GetBySite(ctx context.Context, siteID string, limit, offset int) ([]domain.Verification, int, error)
	// HasActive reports whether a pending or running run exists for the
	// site. The service checks it before creating a new run.
	HasActive(ctx context.Context, siteID string) (bool, error)
	MarkRunning(ctx context.Context, id string) error
	// Complete persists counters, structured results and findings together
	// and flips the run to completed.
	Complete(ctx context.Context, v domain.Verification) error
	MarkFailed(ctx context.Context, id string, message string) error

	GetBaseline(ctx context.Context, siteID, filePath string) (*domain.FileChecksum, error)
	SaveBaseline(ctx context.Context, checksum domain.FileChecksum) error
}
