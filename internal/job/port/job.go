package port

import (
	"context"
	"encoding/json"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
)

type Repo interface {
	Create(ctx context.Context, job domain.Job) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Job, error)
	GetByFilter(ctx context.Context, filter domain.JobFilters, limit, offset int, sortOptions ...domain.SortOption) ([]domain.Job, int, error)
	// ClaimOldestPending atomically flips the oldest pending job to running.
	// found is false when the queue is empty or another worker won the row.
	ClaimOldestPending(ctx context.Context) (job *domain.Job, found bool, err error)
	MarkCompleted(ctx context.Context, id int64, result json.RawMessage) error
	MarkFailed(ctx context.Context, id int64, message string) error
	UpdateProgress(ctx context.Context, id int64, current, total int) error
	AppendLog(ctx context.Context, id int64, line string) error
	HasActiveJob(ctx context.Context, module, action string, serverID int64) (bool, error)
}
