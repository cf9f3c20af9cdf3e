package storage

import (
	"context"
	"errors"
	"time"

	serverDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
	typesMapper "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types/mapper"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/query"
	"gorm.io/gorm"
)

// Columns server listings may be ordered by; unknown request fields fall
// back to created_at. Credential columns are deliberately absent.
var serverSortFields = map[string]bool{
	"id":           true,
	"name":         true,
	"host":         true,
	"port":         true,
	"active":       true,
	"last_scan_at": true,
	"created_at":   true,
	"updated_at":   true,
}

type serverRepo struct {
	db *gorm.DB
}

func NewServerRepo(db *gorm.DB) serverPort.Repo {
	return &serverRepo{db: db}
}

func (r *serverRepo) Create(ctx context.Context, server serverDomain.ServerDomain) (int64, error) {
	row, err := typesMapper.ServerDomain2Storage(server)
	if err != nil {
		return 0, err
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *serverRepo) GetByID(ctx context.Context, id int64) (*serverDomain.ServerDomain, error) {
	var row types.Server
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return typesMapper.ServerStorage2Domain(row), nil
}

func (r *serverRepo) GetByFilter(ctx context.Context, filter serverDomain.ServerFilter, limit, offset int, sortOptions ...serverDomain.SortOption) ([]serverDomain.ServerDomain, int, error) {
	qb := query.NewGormQueryBuilder(r.db.WithContext(ctx).Model(&types.Server{}))

	if filter.Name != "" {
		qb.AddFilter("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Host != "" {
		qb.AddFilter("host LIKE ?", "%"+filter.Host+"%")
	}
	if filter.Active != nil {
		qb.AddFilter("active = ?", *filter.Active)
	}

	var total int64
	if err := qb.BuildForCount().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if len(sortOptions) == 0 {
		sortOptions = []serverDomain.SortOption{{Field: "created_at", Order: "desc"}}
	}
	for _, sort := range sortOptions {
		field := sort.Field
		if !serverSortFields[field] {
			field = "created_at"
		}
		order := "ASC"
		if sort.Order == "desc" {
			order = "DESC"
		}
		qb.AddSort(field, order)
	}
	qb.SetPagination(limit, offset)

	var rows []types.Server
	if err := qb.Build().Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	servers := make([]serverDomain.ServerDomain, 0, len(rows))
	for _, row := range rows {
		servers = append(servers, *typesMapper.ServerStorage2Domain(row))
	}
	return servers, int(total), nil
}

func (r *serverRepo) Update(ctx context.Context, server serverDomain.ServerDomain) error {
	row, err := typesMapper.ServerDomain2Storage(server)
	if err != nil {
		return err
	}
	// Save writes the full row so cleared fields (a removed key path, a
	// deactivated server) persist too.
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *serverRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&types.Server{}).Error
}

func (r *serverRepo) UpdateLastScan(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&types.Server{}).
		Where("id = ?", id).
		Update("last_scan_at", at).Error
}

func (r *serverRepo) GetDueForScan(ctx context.Context, cutoff time.Time) ([]serverDomain.ServerDomain, error) {
	var rows []types.Server
	err := r.db.WithContext(ctx).
		Where("active = ? AND (last_scan_at IS NULL OR last_scan_at < ?)", true, cutoff).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	servers := make([]serverDomain.ServerDomain, 0, len(rows))
	for _, row := range rows {
		servers = append(servers, *typesMapper.ServerStorage2Domain(row))
	}
	return servers, nil
}
