package service

import (
	"context"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
	integrityPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/port"
)

var (
	ErrVerificationNotFound     = integrity.ErrVerificationNotFound
	ErrVerificationInProgress   = integrity.ErrVerificationInProgress
	ErrInvalidVerificationInput = integrity.ErrInvalidVerificationInput
)

// VerificationService exposes starting a run and reading results.
type VerificationService struct {
	service integrityPort.Service
}

func NewVerificationService(srv integrityPort.Service) *VerificationService {
	return &VerificationService{service: srv}
}

type StartVerificationRequest struct {
	Type string `json:"type,omitempty"`
}

type StartVerificationResponse struct {
	VerificationID string `json:"verification_id"`
	JobID          int64  `json:"job_id"`
}

type VerificationListResponse struct {
	Contents []domain.Verification `json:"contents"`
	Count    int                   `json:"count"`
}

func (s *VerificationService) StartVerification(ctx context.Context, siteID string, req StartVerificationRequest) (*StartVerificationResponse, error) {
	result, err := s.service.StartVerification(ctx, siteID, domain.VerificationType(req.Type))
	if err != nil {
		return nil, err
	}
	return &StartVerificationResponse{
		VerificationID: result.VerificationID,
		JobID:          result.JobID,
	}, nil
}

func (s *VerificationService) GetVerificationByID(ctx context.Context, id string) (*domain.Verification, error) {
	return s.service.GetVerificationByID(ctx, id)
}

func (s *VerificationService) GetSiteVerifications(ctx context.Context, siteID string, page, limit int) (*VerificationListResponse, error) {
	verifications, total, err := s.service.GetSiteVerifications(ctx, siteID, limit, page*limit)
	if err != nil {
		return nil, err
	}
	return &VerificationListResponse{Contents: verifications, Count: total}, nil
}
