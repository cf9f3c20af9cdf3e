package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
	typesMapper "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types/mapper"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/query"
	"gorm.io/gorm"
)

// Columns job listings may be ordered by. Anything else from the request
// falls back to created_at so no raw identifier reaches the ORDER BY clause.
var jobSortFields = map[string]bool{
	"id":          true,
	"server_id":   true,
	"site_id":     true,
	"module":      true,
	"action":      true,
	"status":      true,
	"progress":    true,
	"created_at":  true,
	"started_at":  true,
	"finished_at": true,
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) jobPort.Repo {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job jobDomain.Job) (int64, error) {
	row := typesMapper.JobDomain2Storage(job)
	row.CreatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*jobDomain.Job, error) {
	var row types.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return typesMapper.JobStorage2Domain(row), nil
}

func (r *jobRepo) GetByFilter(ctx context.Context, filter jobDomain.JobFilters, limit, offset int, sortOptions ...jobDomain.SortOption) ([]jobDomain.Job, int, error) {
	qb := query.NewGormQueryBuilder(r.db.WithContext(ctx).Model(&types.Job{}))

	if filter.Status != "" {
		qb.AddFilter("status = ?", filter.Status)
	}
	if filter.Module != "" {
		qb.AddFilter("module = ?", filter.Module)
	}
	if filter.SiteID != "" {
		qb.AddFilter("site_id = ?", filter.SiteID)
	}
	if filter.ServerID != nil {
		qb.AddFilter("server_id = ?", *filter.ServerID)
	}

	var total int64
	if err := qb.BuildForCount().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if len(sortOptions) == 0 {
		sortOptions = []jobDomain.SortOption{{Field: "created_at", Order: "desc"}}
	}
	for _, sort := range sortOptions {
		field := sort.Field
		if !jobSortFields[field] {
			field = "created_at"
		}
		order := "ASC"
		if sort.Order == "desc" {
			order = "DESC"
		}
		qb.AddSort(field, order)
	}
	qb.SetPagination(limit, offset)

	var rows []types.Job
	if err := qb.Build().Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]jobDomain.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, *typesMapper.JobStorage2Domain(row))
	}
	return jobs, int(total), nil
}

// ClaimOldestPending selects the oldest pending job and flips it to running
// with a conditional update. Zero rows affected means another worker won
// the row; the caller simply polls again.
func (r *jobRepo) ClaimOldestPending(ctx context.Context) (*jobDomain.Job, bool, error) {
	var row types.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", string(jobDomain.JobStatusPending)).
		Order("created_at ASC, id ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&types.Job{}).
		Where("id = ? AND status = ?", row.ID, string(jobDomain.JobStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(jobDomain.JobStatusRunning),
			"started_at": now,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	row.Status = string(jobDomain.JobStatusRunning)
	row.StartedAt = &now
	return typesMapper.JobStorage2Domain(row), true, nil
}

func (r *jobRepo) MarkCompleted(ctx context.Context, id int64, result json.RawMessage) error {
	updates := map[string]interface{}{
		"status":      string(jobDomain.JobStatusCompleted),
		"finished_at": time.Now(),
	}
	if len(result) > 0 {
		updates["result"] = string(result)
	}
	return r.finalize(ctx, id, updates)
}

func (r *jobRepo) MarkFailed(ctx context.Context, id int64, message string) error {
	return r.finalize(ctx, id, map[string]interface{}{
		"status":      string(jobDomain.JobStatusFailed),
		"error":       message,
		"finished_at": time.Now(),
	})
}

// finalize guards the terminal transition: only a running job can finish,
// which keeps terminal states immutable at the storage level too.
func (r *jobRepo) finalize(ctx context.Context, id int64, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&types.Job{}).
		Where("id = ? AND status = ?", id, string(jobDomain.JobStatusRunning)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %d is not running", id)
	}
	return nil
}

func (r *jobRepo) UpdateProgress(ctx context.Context, id int64, current, total int) error {
	return r.db.WithContext(ctx).
		Model(&types.Job{}).
		Where("id = ? AND status = ?", id, string(jobDomain.JobStatusRunning)).
		Updates(map[string]interface{}{
			"progress": current,
			"total":    total,
		}).Error
}

func (r *jobRepo) AppendLog(ctx context.Context, id int64, line string) error {
	entry := fmt.Sprintf("[%s] %s\n", time.Now().Format(time.RFC3339), line)
	return r.db.WithContext(ctx).
		Model(&types.Job{}).
		Where("id = ?", id).
		Update("log", gorm.Expr("CONCAT(COALESCE(log, ''), ?)", entry)).Error
}

func (r *jobRepo) HasActiveJob(ctx context.Context, module, action string, serverID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&types.Job{}).
		Where("module = ? AND action = ? AND server_id = ? AND status IN ?",
			module, action, serverID,
			[]string{string(jobDomain.JobStatusPending), string(jobDomain.JobStatusRunning)}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
