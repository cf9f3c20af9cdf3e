package site

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
)

var (
	ErrSiteNotFound     = errors.New("site not found")
	ErrInvalidSiteInput = errors.New("invalid site input")
	ErrSiteOnUpsert     = errors.New("error on upserting site")
)

type service struct {
	repo sitePort.Repo
}

func NewSiteService(repo sitePort.Repo) sitePort.Service {
	return &service{repo: repo}
}

// UpsertDiscovered records one installation found by a scan. A new row gets
// a fresh UUID; an existing (server, path) row keeps its id and picks up the
// re-inferred version and domain.
func (s *service) UpsertDiscovered(ctx context.Context, site domain.SiteDomain) (string, error) {
	if site.ServerID == 0 || site.Path == "" {
		return "", ErrInvalidSiteInput
	}
	if !filepath.IsAbs(site.Path) {
		log.Printf("Site Service: rejecting relative path %q", site.Path)
		return "", ErrInvalidSiteInput
	}

	site.Path = filepath.Clean(site.Path)
	if site.ID == "" {
		site.ID = uuid.NewString()
	}

	id, err := s.repo.Upsert(ctx, site)
	if err != nil {
		log.Printf("Site Service: upsert failed for server %d path %s: %v", site.ServerID, site.Path, err)
		return "", ErrSiteOnUpsert
	}
	return id, nil
}

func (s *service) GetSiteByID(ctx context.Context, id string) (*domain.SiteDomain, error) {
	site, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrSiteNotFound
	}
	return site, nil
}

func (s *service) GetSites(ctx context.Context, filter domain.SiteFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.SiteDomain, int, error) {
	return s.repo.GetByFilter(ctx, filter, limit, offset, sortOptions...)
}

func (s *service) SetImmutability(ctx context.Context, id string, immutable bool, folderStatus map[string]bool, checkedAt time.Time) error {
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}
	return s.repo.UpdateImmutability(ctx, id, immutable, folderStatus, checkedAt)
}
