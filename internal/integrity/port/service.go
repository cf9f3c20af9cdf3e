package port

import (
	"context"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
)

// StartResult carries the ids a start request produces: the run row and the
// queued job that will execute it.
type StartResult struct {
	VerificationID string
	JobID          int64
}

type Service interface {
	// StartVerification creates a pending run and enqueues the job that
	// executes it. A site with a pending or running run is rejected before
	// any row is created.
	StartVerification(ctx context.Context, siteID string, vtype domain.VerificationType) (*StartResult, error)
	GetVerificationByID(ctx context.Context, id string) (*domain.Verification, error)
	GetSiteVerifications(ctx context.Context, siteID string, limit, offset int) ([]domain.Verification, int, error)
}
