package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
	typesMapper "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types/mapper"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/query"
	"gorm.io/gorm"
)

// Columns site listings may be ordered by; unknown request fields fall back
// to path.
var siteSortFields = map[string]bool{
	"id":           true,
	"server_id":    true,
	"path":         true,
	"domain":       true,
	"wp_version":   true,
	"is_immutable": true,
	"created_at":   true,
	"updated_at":   true,
}

type siteRepo struct {
	db *gorm.DB
}

func NewSiteRepo(db *gorm.DB) sitePort.Repo {
	return &siteRepo{db: db}
}

// Upsert keys on (server_id, path): an existing row keeps its id and the
// immutability state, only the re-inferred fields change. Rows absent from
// a scan are deliberately left alone.
func (r *siteRepo) Upsert(ctx context.Context, site siteDomain.SiteDomain) (string, error) {
	var existing types.Site
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND path = ?", site.ServerID, site.Path).
		First(&existing).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}

		row, mapErr := typesMapper.SiteDomain2Storage(site)
		if mapErr != nil {
			return "", mapErr
		}
		row.CreatedAt = time.Now()
		if createErr := r.db.WithContext(ctx).Create(row).Error; createErr != nil {
			return "", createErr
		}
		return row.ID, nil
	}

	updateErr := r.db.WithContext(ctx).
		Model(&types.Site{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"domain":     site.Domain,
			"wp_version": site.WPVersion,
			"updated_at": time.Now(),
		}).Error
	if updateErr != nil {
		return "", updateErr
	}
	return existing.ID, nil
}

func (r *siteRepo) GetByID(ctx context.Context, id string) (*siteDomain.SiteDomain, error) {
	var row types.Site
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return typesMapper.SiteStorage2Domain(row), nil
}

func (r *siteRepo) GetByFilter(ctx context.Context, filter siteDomain.SiteFilter, limit, offset int, sortOptions ...siteDomain.SortOption) ([]siteDomain.SiteDomain, int, error) {
	qb := query.NewGormQueryBuilder(r.db.WithContext(ctx).Model(&types.Site{}))

	if filter.ServerID != nil {
		qb.AddFilter("server_id = ?", *filter.ServerID)
	}
	if filter.Domain != "" {
		qb.AddFilter("domain LIKE ?", "%"+filter.Domain+"%")
	}

	var total int64
	if err := qb.BuildForCount().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if len(sortOptions) == 0 {
		sortOptions = []siteDomain.SortOption{{Field: "path", Order: "asc"}}
	}
	for _, sort := range sortOptions {
		field := sort.Field
		if !siteSortFields[field] {
			field = "path"
		}
		order := "ASC"
		if sort.Order == "desc" {
			order = "DESC"
		}
		qb.AddSort(field, order)
	}
	qb.SetPagination(limit, offset)

	var rows []types.Site
	if err := qb.Build().Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	sites := make([]siteDomain.SiteDomain, 0, len(rows))
	for _, row := range rows {
		sites = append(sites, *typesMapper.SiteStorage2Domain(row))
	}
	return sites, int(total), nil
}

func (r *siteRepo) UpdateImmutability(ctx context.Context, id string, immutable bool, folderStatus map[string]bool, checkedAt time.Time) error {
	updates := map[string]interface{}{
		"is_immutable":            immutable,
		"immutability_checked_at": checkedAt,
		"updated_at":              time.Now(),
	}
	if folderStatus != nil {
		encoded, err := json.Marshal(folderStatus)
		if err != nil {
			return err
		}
		updates["folder_status"] = string(encoded)
	}

	res := r.db.WithContext(ctx).
		Model(&types.Site{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
