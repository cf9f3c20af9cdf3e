package job

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
)

var (
	ErrJobOnCreate     = errors.New("error on creating job")
	ErrJobNotFound     = errors.New("job not found")
	ErrInvalidJobInput = errors.New("invalid job input")
	ErrUnknownJobKind  = errors.New("unknown job module/action")
)

// service implements jobPort.Service
type service struct {
	repo jobPort.Repo
}

// NewJobService creates a new job queue service
func NewJobService(repo jobPort.Repo) jobPort.Service {
	return &service{repo: repo}
}

// CreateJob validates and persists a new pending job.
func (s *service) CreateJob(ctx context.Context, job domain.Job) (int64, error) {
	if job.Module == "" || job.Action == "" {
		return 0, ErrInvalidJobInput
	}
	if !domain.ValidKind(job.Module, job.Action) {
		log.Printf("Job Service: rejected job with unknown kind %s/%s", job.Module, job.Action)
		return 0, ErrUnknownJobKind
	}

	// Queue rows always start pending; the worker owns every later change.
	job.Status = domain.JobStatusPending
	job.Progress = 0
	job.Total = 0

	id, err := s.repo.Create(ctx, job)
	if err != nil {
		log.Printf("Job Service: failed to create %s/%s job: %v", job.Module, job.Action, err)
		return 0, ErrJobOnCreate
	}

	log.Printf("Job Service: created %s/%s job with ID: %d", job.Module, job.Action, id)
	return id, nil
}

// GetJobByID retrieves a single job by its ID
func (s *service) GetJobByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// GetJobs retrieves jobs based on filter, pagination, and sorting
func (s *service) GetJobs(ctx context.Context, filter domain.JobFilters, limit, offset int, sortOptions ...domain.SortOption) ([]domain.Job, int, error) {
	return s.repo.GetByFilter(ctx, filter, limit, offset, sortOptions...)
}

// ClaimNextJob hands the worker the oldest pending job, already marked
// running. The conditional update in the repo makes the claim atomic.
func (s *service) ClaimNextJob(ctx context.Context) (*domain.Job, bool, error) {
	return s.repo.ClaimOldestPending(ctx)
}

// CompleteJob finalizes a running job with its result payload.
func (s *service) CompleteJob(ctx context.Context, id int64, result json.RawMessage) error {
	return s.repo.MarkCompleted(ctx, id, result)
}

// FailJob finalizes a running job with an error message.
func (s *service) FailJob(ctx context.Context, id int64, message string) error {
	return s.repo.MarkFailed(ctx, id, message)
}

// UpdateProgress records engine progress while the job is running.
func (s *service) UpdateProgress(ctx context.Context, id int64, current, total int) error {
	return s.repo.UpdateProgress(ctx, id, current, total)
}

// AppendLog appends one line to the job's freeform log.
func (s *service) AppendLog(ctx context.Context, id int64, line string) error {
	return s.repo.AppendLog(ctx, id, line)
}

// HasActiveJob reports whether a pending or running job of the given kind
// exists for the server. The scheduler uses it to avoid piling up scans.
func (s *service) HasActiveJob(ctx context.Context, module, action string, serverID int64) (bool, error) {
	return s.repo.HasActiveJob(ctx, module, action, serverID)
}
