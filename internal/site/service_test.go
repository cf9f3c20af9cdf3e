package site_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
)

type MockSiteRepo struct {
	mock.Mock
}

func (m *MockSiteRepo) Upsert(ctx context.Context, s domain.SiteDomain) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func (m *MockSiteRepo) GetByID(ctx context.Context, id string) (*domain.SiteDomain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SiteDomain), args.Error(1)
}

func (m *MockSiteRepo) GetByFilter(ctx context.Context, filter domain.SiteFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.SiteDomain, int, error) {
	args := m.Called(ctx, filter, limit, offset, sortOptions)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SiteDomain), args.Int(1), args.Error(2)
}

func (m *MockSiteRepo) UpdateImmutability(ctx context.Context, id string, immutable bool, folderStatus map[string]bool, checkedAt time.Time) error {
	args := m.Called(ctx, id, immutable, folderStatus, checkedAt)
	return args.Error(0)
}

func TestUpsertDiscovered(t *testing.T) {
	tests := []struct {
		name      string
		site      domain.SiteDomain
		setupMock func(*MockSiteRepo)
		wantErr   error
		wantID    string
	}{
		{
			name: "new site gets a uuid and a cleaned path",
			site: domain.SiteDomain{ServerID: 7, Path: "/var/www/example//public_html/"},
			setupMock: func(repo *MockSiteRepo) {
				repo.On("Upsert", mock.Anything, mock.MatchedBy(func(s domain.SiteDomain) bool {
					return s.ID != "" && s.Path == "/var/www/example/public_html"
				})).Return("site-1", nil)
			},
			wantID: "site-1",
		},
		{
			name:    "missing server id rejected",
			site:    domain.SiteDomain{Path: "/var/www/example"},
			wantErr: site.ErrInvalidSiteInput,
		},
		{
			name:    "relative path rejected",
			site:    domain.SiteDomain{ServerID: 7, Path: "www/example"},
			wantErr: site.ErrInvalidSiteInput,
		},
		{
			name: "repo failure surfaces as upsert error",
			site: domain.SiteDomain{ServerID: 7, Path: "/var/www/example"},
			setupMock: func(repo *MockSiteRepo) {
				repo.On("Upsert", mock.Anything, mock.Anything).Return("", errors.New("duplicate key"))
			},
			wantErr: site.ErrSiteOnUpsert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSiteRepo)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			srv := site.NewSiteService(repo)

			id, err := srv.UpsertDiscovered(context.Background(), tt.site)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.setupMock == nil {
					repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			repo.AssertExpectations(t)
		})
	}
}

func TestGetSiteByID_NotFound(t *testing.T) {
	repo := new(MockSiteRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, nil)
	srv := site.NewSiteService(repo)

	got, err := srv.GetSiteByID(context.Background(), "missing")

	assert.ErrorIs(t, err, site.ErrSiteNotFound)
	assert.Nil(t, got)
}

func TestSetImmutability_DefaultsCheckedAt(t *testing.T) {
	repo := new(MockSiteRepo)
	repo.On("UpdateImmutability", mock.Anything, "site-1", true,
		map[string]bool{domain.FolderRoot: true},
		mock.MatchedBy(func(ts time.Time) bool { return !ts.IsZero() }),
	).Return(nil)
	srv := site.NewSiteService(repo)

	err := srv.SetImmutability(context.Background(), "site-1", true,
		map[string]bool{domain.FolderRoot: true}, time.Time{})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
