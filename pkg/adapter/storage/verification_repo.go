package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	integrityDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
	integrityPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
	typesMapper "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types/mapper"
	"gorm.io/gorm"
)

type verificationRepo struct {
	db *gorm.DB
}

func NewVerificationRepo(db *gorm.DB) integrityPort.Repo {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) Create(ctx context.Context, v integrityDomain.Verification) (string, error) {
	row, err := typesMapper.VerificationDomain2Storage(v)
	if err != nil {
		return "", err
	}
	if row.StartedAt.IsZero() {
		row.StartedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *verificationRepo) GetByID(ctx context.Context, id string) (*integrityDomain.Verification, error) {
	var row types.ChecksumVerification
	err := r.db.WithContext(ctx).
		Preload("UnauthorizedFinds").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return typesMapper.VerificationStorage2Domain(row), nil
}

func (r *verificationRepo) GetBySite(ctx context.Context, siteID string, limit, offset int) ([]integrityDomain.Verification, int, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&types.ChecksumVerification{}).Where("site_id = ?", siteID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []types.ChecksumVerification
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	verifications := make([]integrityDomain.Verification, 0, len(rows))
	for _, row := range rows {
		verifications = append(verifications, *typesMapper.VerificationStorage2Domain(row))
	}
	return verifications, int(total), nil
}

func (r *verificationRepo) HasActive(ctx context.Context, siteID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&types.ChecksumVerification{}).
		Where("site_id = ? AND status IN ?", siteID,
			[]string{string(integrityDomain.VerificationStatusPending), string(integrityDomain.VerificationStatusRunning)}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *verificationRepo) MarkRunning(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&types.ChecksumVerification{}).
		Where("id = ? AND status = ?", id, string(integrityDomain.VerificationStatusPending)).
		Update("status", string(integrityDomain.VerificationStatusRunning))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("verification is not pending")
	}
	return nil
}

// Complete writes the counters, results and findings in one transaction so
// a failure persists nothing partial.
func (r *verificationRepo) Complete(ctx context.Context, v integrityDomain.Verification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var results *string
		if v.Results != nil {
			encoded, err := json.Marshal(v.Results)
			if err != nil {
				return err
			}
			s := string(encoded)
			results = &s
		}

		res := tx.Model(&types.ChecksumVerification{}).
			Where("id = ? AND status = ?", v.ID, string(integrityDomain.VerificationStatusRunning)).
			Updates(map[string]interface{}{
				"status":             string(integrityDomain.VerificationStatusCompleted),
				"total_files":        v.TotalFiles,
				"verified_files":     v.VerifiedFiles,
				"modified_files":     v.ModifiedFiles,
				"unauthorized_files": v.UnauthorizedFiles,
				"missing_files":      v.MissingFiles,
				"results":            results,
				"completed_at":       time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("verification is not running")
		}

		if len(v.Findings) == 0 {
			return nil
		}

		rows := make([]types.UnauthorizedFile, 0, len(v.Findings))
		for _, f := range v.Findings {
			row := typesMapper.UnauthorizedFileDomain2Storage(f)
			row.VerificationID = v.ID
			if row.DetectedAt.IsZero() {
				row.DetectedAt = time.Now()
			}
			rows = append(rows, *row)
		}
		return tx.Create(&rows).Error
	})
}

func (r *verificationRepo) MarkFailed(ctx context.Context, id string, message string) error {
	return r.db.WithContext(ctx).
		Model(&types.ChecksumVerification{}).
		Where("id = ? AND status IN ?", id,
			[]string{string(integrityDomain.VerificationStatusPending), string(integrityDomain.VerificationStatusRunning)}).
		Updates(map[string]interface{}{
			"status":       string(integrityDomain.VerificationStatusFailed),
			"error":        message,
			"completed_at": time.Now(),
		}).Error
}

func (r *verificationRepo) GetBaseline(ctx context.Context, siteID, filePath string) (*integrityDomain.FileChecksum, error) {
	var row types.FileChecksum
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND file_path = ? AND is_original = ?", siteID, filePath, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return typesMapper.ChecksumStorage2Domain(row), nil
}

func (r *verificationRepo) SaveBaseline(ctx context.Context, checksum integrityDomain.FileChecksum) error {
	row := typesMapper.ChecksumDomain2Storage(checksum)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(row).Error
}
