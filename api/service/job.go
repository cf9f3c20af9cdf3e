package service

import (
	"context"
	"encoding/json"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
)

var (
	ErrJobNotFound     = job.ErrJobNotFound
	ErrInvalidJobInput = job.ErrInvalidJobInput
	ErrUnknownJobKind  = job.ErrUnknownJobKind
)

// JobService is the API-facing wrapper over the job queue: request/response
// structs in, domain service underneath.
type JobService struct {
	service jobPort.Service
}

func NewJobService(srv jobPort.Service) *JobService {
	return &JobService{service: srv}
}

type CreateJobRequest struct {
	ServerID *int64          `json:"server_id,omitempty"`
	SiteID   *string         `json:"site_id,omitempty"`
	Module   string          `json:"module"`
	Action   string          `json:"action"`
	Params   json.RawMessage `json:"params,omitempty"`
}

type CreateJobResponse struct {
	ID int64 `json:"id"`
}

type JobListResponse struct {
	Contents []domain.Job `json:"contents"`
	Count    int          `json:"count"`
}

func (s *JobService) CreateJob(ctx context.Context, req CreateJobRequest) (*CreateJobResponse, error) {
	logger.DebugContext(ctx, "API Service: creating %s/%s job", req.Module, req.Action)

	id, err := s.service.CreateJob(ctx, domain.Job{
		ServerID: req.ServerID,
		SiteID:   req.SiteID,
		Module:   req.Module,
		Action:   req.Action,
		Params:   req.Params,
	})
	if err != nil {
		return nil, err
	}
	return &CreateJobResponse{ID: id}, nil
}

func (s *JobService) GetJobByID(ctx context.Context, id int64) (*domain.Job, error) {
	return s.service.GetJobByID(ctx, id)
}

func (s *JobService) GetJobs(ctx context.Context, filter domain.JobFilters, page, limit int, sorts ...domain.SortOption) (*JobListResponse, error) {
	jobs, total, err := s.service.GetJobs(ctx, filter, limit, page*limit, sorts...)
	if err != nil {
		return nil, err
	}
	return &JobListResponse{Contents: jobs, Count: total}, nil
}
