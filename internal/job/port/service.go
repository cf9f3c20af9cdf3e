package port

import (
	"context"
	"encoding/json"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
)

type Service interface {
	CreateJob(ctx context.Context, job domain.Job) (int64, error)
	GetJobByID(ctx context.Context, id int64) (*domain.Job, error)
	GetJobs(ctx context.Context, filter domain.JobFilters, limit, offset int, sortOptions ...domain.SortOption) ([]domain.Job, int, error)
	ClaimNextJob(ctx context.Context) (*domain.Job, bool, error)
	CompleteJob(ctx context.Context, id int64, result json.RawMessage) error
	FailJob(ctx context.Context, id int64, message string) error
	UpdateProgress(ctx context.Context, id int64, current, total int) error
	AppendLog(ctx context.Context, id int64, line string) error
	HasActiveJob(ctx context.Context, module, action string, serverID int64) (bool, error)
}
