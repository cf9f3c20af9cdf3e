package service

import (
	"context"
	"encoding/json"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
)

var ErrSiteNotFound = site.ErrSiteNotFound

// SiteService is the read surface over discovered sites plus the lock and
// unlock triggers, which run through the job queue like every other
// long-running operation.
type SiteService struct {
	service sitePort.Service
	jobs    jobPort.Service
}

func NewSiteService(srv sitePort.Service, jobs jobPort.Service) *SiteService {
	return &SiteService{service: srv, jobs: jobs}
}

type SiteListResponse struct {
	Contents []domain.SiteDomain `json:"contents"`
	Count    int                 `json:"count"`
}

type ToggleImmutabilityResponse struct {
	JobID int64 `json:"job_id"`
}

type FixPermissionsRequest struct {
	DryRun bool   `json:"dry_run"`
	Owner  string `json:"owner,omitempty"`
	Group  string `json:"group,omitempty"`
}

type FixPermissionsResponse struct {
	JobID int64 `json:"job_id"`
}

func (s *SiteService) GetSiteByID(ctx context.Context, id string) (*domain.SiteDomain, error) {
	return s.service.GetSiteByID(ctx, id)
}

func (s *SiteService) GetSites(ctx context.Context, filter domain.SiteFilter, page, limit int, sorts ...domain.SortOption) (*SiteListResponse, error) {
	sites, total, err := s.service.GetSites(ctx, filter, limit, page*limit, sorts...)
	if err != nil {
		return nil, err
	}
	return &SiteListResponse{Contents: sites, Count: total}, nil
}

// Lock enqueues an immutability lock job for the site.
func (s *SiteService) Lock(ctx context.Context, siteID string) (*ToggleImmutabilityResponse, error) {
	return s.toggle(ctx, siteID, jobDomain.ActionLock)
}

// Unlock enqueues the inverse job.
func (s *SiteService) Unlock(ctx context.Context, siteID string) (*ToggleImmutabilityResponse, error) {
	return s.toggle(ctx, siteID, jobDomain.ActionUnlock)
}

// FixPermissions enqueues a permission-repair job for the site.
func (s *SiteService) FixPermissions(ctx context.Context, siteID string, req FixPermissionsRequest) (*FixPermissionsResponse, error) {
	st, err := s.service.GetSiteByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	params, err := json.Marshal(jobDomain.FixPermissionsParams{
		SiteID: st.ID,
		DryRun: req.DryRun,
		Owner:  req.Owner,
		Group:  req.Group,
	})
	if err != nil {
		return nil, err
	}

	jobID, err := s.jobs.CreateJob(ctx, jobDomain.Job{
		SiteID:   &st.ID,
		ServerID: &st.ServerID,
		Module:   jobDomain.ModuleImmutability,
		Action:   jobDomain.ActionFixPerms,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	return &FixPermissionsResponse{JobID: jobID}, nil
}

func (s *SiteService) toggle(ctx context.Context, siteID, action string) (*ToggleImmutabilityResponse, error) {
	st, err := s.service.GetSiteByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	params, err := json.Marshal(jobDomain.ImmutabilityParams{SiteID: st.ID})
	if err != nil {
		return nil, err
	}

	jobID, err := s.jobs.CreateJob(ctx, jobDomain.Job{
		SiteID:   &st.ID,
		ServerID: &st.ServerID,
		Module:   jobDomain.ModuleImmutability,
		Action:   action,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	return &ToggleImmutabilityResponse{JobID: jobID}, nil
}
