package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/encrypt"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
)

// MockServerRepo is a mock implementation of the serverPort.Repo interface
type MockServerRepo struct {
	mock.Mock
}

func (m *MockServerRepo) Create(ctx context.Context, srv domain.ServerDomain) (int64, error) {
	args := m.Called(ctx, srv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServerRepo) GetByID(ctx context.Context, id int64) (*domain.ServerDomain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServerDomain), args.Error(1)
}

func (m *MockServerRepo) GetByFilter(ctx context.Context, filter domain.ServerFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.ServerDomain, int, error) {
	args := m.Called(ctx, filter, limit, offset, sortOptions)
	return args.Get(0).([]domain.ServerDomain), args.Get(1).(int), args.Error(2)
}

func (m *MockServerRepo) Update(ctx context.Context, srv domain.ServerDomain) error {
	args := m.Called(ctx, srv)
	return args.Error(0)
}

func (m *MockServerRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServerRepo) UpdateLastScan(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockServerRepo) GetDueForScan(ctx context.Context, cutoff time.Time) ([]domain.ServerDomain, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.ServerDomain), args.Error(1)
}

func TestServerService_CreateServer_SealsCredentials(t *testing.T) {
	repo := new(MockServerRepo)

	var stored domain.ServerDomain
	repo.On("Create", mock.Anything, mock.MatchedBy(func(srv domain.ServerDomain) bool {
		stored = srv
		return true
	})).Return(int64(3), nil)

	svc := server.NewServerService(repo)
	id, err := svc.CreateServer(context.Background(), domain.ServerDomain{
		Name:     "web01",
		Host:     "10.0.0.5",
		Username: "deploy",
		Password: "hunter2",
		SSHKey:   "raw-private-key",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	// Stored material must not be plaintext but must decrypt back.
	assert.NotEqual(t, "hunter2", stored.Password)
	assert.NotEqual(t, "raw-private-key", stored.SSHKey)

	password, err := encrypt.DecryptSecret(stored.Password)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)

	key, err := encrypt.DecryptSecret(stored.SSHKey)
	require.NoError(t, err)
	assert.Equal(t, "raw-private-key", key)

	// Port defaults to 22 when left unset.
	assert.Equal(t, uint(22), stored.Port)
}

func TestServerService_CreateServer_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input domain.ServerDomain
	}{
		{"missing name", domain.ServerDomain{Host: "10.0.0.5"}},
		{"missing host", domain.ServerDomain{Name: "web01"}},
		{"empty scan path", domain.ServerDomain{Name: "web01", Host: "10.0.0.5", ScanPaths: []string{"/var/www", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockServerRepo)
			svc := server.NewServerService(repo)

			_, err := svc.CreateServer(context.Background(), tt.input)
			assert.ErrorIs(t, err, server.ErrInvalidServerInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestServerService_GetServerByID_OpensCredentials(t *testing.T) {
	sealed, err := encrypt.EncryptSecret("hunter2")
	require.NoError(t, err)

	repo := new(MockServerRepo)
	repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.ServerDomain{
		ID:       3,
		Name:     "web01",
		Host:     "10.0.0.5",
		Password: sealed,
	}, nil)

	svc := server.NewServerService(repo)
	got, err := svc.GetServerByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Password)
}

func TestServerService_GetServerByID_NotFound(t *testing.T) {
	repo := new(MockServerRepo)
	repo.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	svc := server.NewServerService(repo)
	_, err := svc.GetServerByID(context.Background(), 404)

	assert.ErrorIs(t, err, server.ErrServerNotFound)
}

func TestServerService_GetServers_BlanksCredentials(t *testing.T) {
	sealed, err := encrypt.EncryptSecret("hunter2")
	require.NoError(t, err)

	repo := new(MockServerRepo)
	repo.On("GetByFilter", mock.Anything, mock.Anything, 10, 0, mock.Anything).Return([]domain.ServerDomain{
		{ID: 1, Name: "web01", Password: sealed, SSHKey: sealed},
	}, 1, nil)

	svc := server.NewServerService(repo)
	servers, total, err := svc.GetServers(context.Background(), domain.ServerFilter{}, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, servers[0].Password)
	assert.Empty(t, servers[0].SSHKey)
}

func TestServerService_GetDueForScan_DropsUndecryptableServers(t *testing.T) {
	sealed, err := encrypt.EncryptSecret("hunter2")
	require.NoError(t, err)

	cutoff := time.Now().Add(-24 * time.Hour)
	repo := new(MockServerRepo)
	repo.On("GetDueForScan", mock.Anything, cutoff).Return([]domain.ServerDomain{
		{ID: 1, Name: "web01", Password: sealed},
		{ID: 2, Name: "web02", Password: "%%% not an envelope %%%"},
		{ID: 3, Name: "web03", Password: sealed},
	}, nil)

	svc := server.NewServerService(repo)
	due, err := svc.GetDueForScan(context.Background(), cutoff)

	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, int64(1), due[0].ID)
	assert.Equal(t, int64(3), due[1].ID)
	assert.Equal(t, "hunter2", due[0].Password)
	assert.Equal(t, "hunter2", due[1].Password)
}

func TestServerService_UpdateServer_MergesAndReseals(t *testing.T) {
	sealedOld, err := encrypt.EncryptSecret("old-password")
	require.NoError(t, err)

	existing := &domain.ServerDomain{
		ID:       3,
		Name:     "web01",
		Host:     "10.0.0.5",
		Port:     22,
		Password: sealedOld,
		Active:   true,
	}

	repo := new(MockServerRepo)
	repo.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)

	var updated domain.ServerDomain
	repo.On("Update", mock.Anything, mock.MatchedBy(func(srv domain.ServerDomain) bool {
		updated = srv
		return true
	})).Return(nil)

	newName := "web01-renamed"
	newPassword := "new-password"
	svc := server.NewServerService(repo)
	err = svc.UpdateServer(context.Background(), domain.UpdateRequest{
		ID:       3,
		Name:     &newName,
		Password: &newPassword,
	})

	require.NoError(t, err)
	assert.Equal(t, "web01-renamed", updated.Name)
	assert.Equal(t, "10.0.0.5", updated.Host) // untouched field kept

	password, err := encrypt.DecryptSecret(updated.Password)
	require.NoError(t, err)
	assert.Equal(t, "new-password", password)
}

func TestServerService_UpdateServer_KeepsStoredEnvelope(t *testing.T) {
	sealed, err := encrypt.EncryptSecret("stored-password")
	require.NoError(t, err)

	repo := new(MockServerRepo)
	repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.ServerDomain{
		ID: 3, Name: "web01", Host: "10.0.0.5", Password: sealed,
	}, nil)

	var updated domain.ServerDomain
	repo.On("Update", mock.Anything, mock.MatchedBy(func(srv domain.ServerDomain) bool {
		updated = srv
		return true
	})).Return(nil)

	newName := "web02"
	svc := server.NewServerService(repo)
	err = svc.UpdateServer(context.Background(), domain.UpdateRequest{ID: 3, Name: &newName})

	require.NoError(t, err)
	// Password not in the request: envelope passes through unchanged.
	assert.Equal(t, sealed, updated.Password)
}

func TestServerService_DeleteServer_NotFound(t *testing.T) {
	repo := new(MockServerRepo)
	repo.On("GetByID", mock.Anything, int64(404)).Return(nil, nil)

	svc := server.NewServerService(repo)
	err := svc.DeleteServer(context.Background(), 404)

	assert.ErrorIs(t, err, server.ErrServerNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
