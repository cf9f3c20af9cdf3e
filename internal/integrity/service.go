package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
	integrityPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/port"
	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
)

var (
	ErrVerificationNotFound     = errors.New("verification not found")
	ErrVerificationInProgress   = errors.New("a verification is already in progress for this site")
	ErrInvalidVerificationInput = errors.New("invalid verification input")
	ErrVerificationOnCreate     = errors.New("error on creating verification")
)

type service struct {
	repo  integrityPort.Repo
	sites sitePort.Service
	jobs  jobPort.Service
}

func NewVerificationService(repo integrityPort.Repo, sites sitePort.Service, jobs jobPort.Service) integrityPort.Service {
	return &service{repo: repo, sites: sites, jobs: jobs}
}

// StartVerification is the concurrency guard of the integrity module: the
// duplicate check happens before any row or job is created.
func (s *service) StartVerification(ctx context.Context, siteID string, vtype domain.VerificationType) (*integrityPort.StartResult, error) {
	if vtype == "" {
		vtype = domain.VerificationTypeFull
	}
	if !domain.ValidType(vtype) {
		return nil, ErrInvalidVerificationInput
	}

	site, err := s.sites.GetSiteByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.HasActive(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	if active {
		log.Printf("Integrity Service: rejected duplicate verification for site %s", site.ID)
		return nil, ErrVerificationInProgress
	}

	verification := domain.Verification{
		ID:        uuid.NewString(),
		SiteID:    site.ID,
		Type:      vtype,
		Status:    domain.VerificationStatusPending,
		StartedAt: time.Now(),
	}

	verificationID, err := s.repo.Create(ctx, verification)
	if err != nil {
		log.Printf("Integrity Service: failed to create verification for site %s: %v", site.ID, err)
		return nil, ErrVerificationOnCreate
	}

	params, err := json.Marshal(jobDomain.VerifyParams{VerificationID: verificationID})
	if err != nil {
		return nil, err
	}

	jobID, err := s.jobs.CreateJob(ctx, jobDomain.Job{
		SiteID:   &site.ID,
		ServerID: &site.ServerID,
		Module:   jobDomain.ModuleIntegrity,
		Action:   jobDomain.ActionVerify,
		Params:   params,
	})
	if err != nil {
		// The run row stays pending but unclaimed; mark it failed so the
		// guard does not block the site forever.
		if failErr := s.repo.MarkFailed(ctx, verificationID, "failed to enqueue verification job"); failErr != nil {
			log.Printf("Integrity Service: could not fail orphaned verification %s: %v", verificationID, failErr)
		}
		return nil, err
	}

	log.Printf("Integrity Service: started %s verification %s for site %s (job %d)", vtype, verificationID, site.ID, jobID)
	return &integrityPort.StartResult{VerificationID: verificationID, JobID: jobID}, nil
}

func (s *service) GetVerificationByID(ctx context.Context, id string) (*domain.Verification, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVerificationNotFound
	}
	return v, nil
}

func (s *service) GetSiteVerifications(ctx context.Context, siteID string, limit, offset int) ([]domain.Verification, int, error) {
	return s.repo.GetBySite(ctx, siteID, limit, offset)
}
