package port

import (
	"context"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
)

type Service interface {
	CreateServer(ctx context.Context, server domain.ServerDomain) (int64, error)
	GetServerByID(ctx context.Context, id int64) (*domain.ServerDomain, error)
	GetServers(ctx context.Context, filter domain.ServerFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.ServerDomain, int, error)
	UpdateServer(ctx context.Context, req domain.UpdateRequest) error
	DeleteServer(ctx context.Context, id int64) error
	UpdateLastScan(ctx context.Context, id int64, at time.Time) error
	GetDueForScan(ctx context.Context, cutoff time.Time) ([]domain.ServerDomain, error)
}
