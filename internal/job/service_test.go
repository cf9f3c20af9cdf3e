package job_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
)

// MockJobRepo is a mock implementation of the jobPort.Repo interface
type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, j domain.Job) (int64, error) {
	args := m.Called(ctx, j)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) GetByFilter(ctx context.Context, filter domain.JobFilters, limit, offset int, sortOptions ...domain.SortOption) ([]domain.Job, int, error) {
	args := m.Called(ctx, filter, limit, offset, sortOptions)
	return args.Get(0).([]domain.Job), args.Get(1).(int), args.Error(2)
}

func (m *MockJobRepo) ClaimOldestPending(ctx context.Context) (*domain.Job, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Job), args.Bool(1), args.Error(2)
}

func (m *MockJobRepo) MarkCompleted(ctx context.Context, id int64, result json.RawMessage) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockJobRepo) MarkFailed(ctx context.Context, id int64, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockJobRepo) UpdateProgress(ctx context.Context, id int64, current, total int) error {
	args := m.Called(ctx, id, current, total)
	return args.Error(0)
}

func (m *MockJobRepo) AppendLog(ctx context.Context, id int64, line string) error {
	args := m.Called(ctx, id, line)
	return args.Error(0)
}

func (m *MockJobRepo) HasActiveJob(ctx context.Context, module, action string, serverID int64) (bool, error) {
	args := m.Called(ctx, module, action, serverID)
	return args.Bool(0), args.Error(1)
}

func TestJobService_CreateJob(t *testing.T) {
	serverID := int64(7)

	tests := []struct {
		name          string
		inputJob      domain.Job
		setupMock     func(*MockJobRepo)
		expectedError error
		expectedID    int64
	}{
		{
			name: "successful creation forces pending status",
			inputJob: domain.Job{
				ServerID: &serverID,
				Module:   domain.ModuleDiscovery,
				Action:   domain.ActionScan,
				Status:   domain.JobStatusCompleted, // caller cannot pick a status
				Progress: 42,
			},
			setupMock: func(repo *MockJobRepo) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(j domain.Job) bool {
					return j.Status == domain.JobStatusPending && j.Progress == 0 && j.Total == 0
				})).Return(int64(11), nil)
			},
			expectedID: 11,
		},
		{
			name:          "missing module is rejected",
			inputJob:      domain.Job{Action: domain.ActionScan},
			setupMock:     func(repo *MockJobRepo) {},
			expectedError: job.ErrInvalidJobInput,
		},
		{
			name:          "unknown module/action pair is rejected",
			inputJob:      domain.Job{Module: domain.ModuleDiscovery, Action: domain.ActionLock},
			setupMock:     func(repo *MockJobRepo) {},
			expectedError: job.ErrUnknownJobKind,
		},
		{
			name:     "repo failure surfaces as create error",
			inputJob: domain.Job{Module: domain.ModuleIntegrity, Action: domain.ActionVerify},
			setupMock: func(repo *MockJobRepo) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("domain.Job")).
					Return(int64(0), errors.New("db down"))
			},
			expectedError: job.ErrJobOnCreate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockJobRepo)
			tt.setupMock(repo)

			svc := job.NewJobService(repo)
			id, err := svc.CreateJob(context.Background(), tt.inputJob)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestJobService_GetJobByID_NotFound(t *testing.T) {
	repo := new(MockJobRepo)
	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

	svc := job.NewJobService(repo)
	got, err := svc.GetJobByID(context.Background(), 99)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, job.ErrJobNotFound)
}

func TestJobService_ClaimNextJob_EmptyQueue(t *testing.T) {
	repo := new(MockJobRepo)
	repo.On("ClaimOldestPending", mock.Anything).Return(nil, false, nil)

	svc := job.NewJobService(repo)
	got, found, err := svc.ClaimNextJob(context.Background())

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}
