package storage_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage"
)

type JobRepoTestSuite struct {
	db     *sql.DB
	gormDB *gorm.DB
	mock   sqlmock.Sqlmock
	repo   jobPort.Repo
	ctx    context.Context
}

func setupJobRepoTest(t *testing.T) *JobRepoTestSuite {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(gormMysql.New(gormMysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return &JobRepoTestSuite{
		db:     db,
		gormDB: gormDB,
		mock:   mock,
		repo:   storage.NewJobRepo(gormDB),
		ctx:    context.Background(),
	}
}

func (suite *JobRepoTestSuite) tearDown() {
	suite.db.Close()
}

func pendingJobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "server_id", "module", "action", "status", "progress", "total", "created_at"}).
		AddRow(1, 7, jobDomain.ModuleDiscovery, jobDomain.ActionScan, "pending", 0, 0, time.Now())
}

func TestJobRepository_Create(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec("INSERT INTO `jobs`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	suite.mock.ExpectCommit()

	serverID := int64(7)
	id, err := suite.repo.Create(suite.ctx, jobDomain.Job{
		ServerID: &serverID,
		Module:   jobDomain.ModuleDiscovery,
		Action:   jobDomain.ActionScan,
		Status:   jobDomain.JobStatusPending,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, suite.mock.ExpectationsWereMet())
}

func TestJobRepository_ClaimOldestPending_Success(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectQuery("SELECT \\* FROM `jobs` WHERE status = \\?").
		WillReturnRows(pendingJobRows())

	// The conditional update is the claim itself.
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec("UPDATE `jobs` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	job, found, err := suite.repo.ClaimOldestPending(suite.ctx)

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), job.ID)
	assert.Equal(t, jobDomain.JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)
	assert.NoError(t, suite.mock.ExpectationsWereMet())
}

func TestJobRepository_ClaimOldestPending_LostRace(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectQuery("SELECT \\* FROM `jobs` WHERE status = \\?").
		WillReturnRows(pendingJobRows())

	// Zero rows affected: someone else flipped the row first.
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec("UPDATE `jobs` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	suite.mock.ExpectCommit()

	job, found, err := suite.repo.ClaimOldestPending(suite.ctx)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, job)
}

func TestJobRepository_ClaimOldestPending_EmptyQueue(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectQuery("SELECT \\* FROM `jobs` WHERE status = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	job, found, err := suite.repo.ClaimOldestPending(suite.ctx)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, job)
}

func TestJobRepository_MarkCompleted_RequiresRunning(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	// The guard matches zero rows when the job is not running.
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec("UPDATE `jobs` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	suite.mock.ExpectCommit()

	err := suite.repo.MarkCompleted(suite.ctx, 1, []byte(`{"ok":true}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestJobRepository_MarkFailed(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec("UPDATE `jobs` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectCommit()

	err := suite.repo.MarkFailed(suite.ctx, 1, "connection refused")

	assert.NoError(t, err)
	assert.NoError(t, suite.mock.ExpectationsWereMet())
}

func TestJobRepository_HasActiveJob(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectQuery("SELECT count\\(\\*\\) FROM `jobs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active, err := suite.repo.HasActiveJob(suite.ctx, jobDomain.ModuleDiscovery, jobDomain.ActionScan, 7)

	require.NoError(t, err)
	assert.True(t, active)
}

func TestJobRepository_GetByFilter_SortFieldAllowList(t *testing.T) {
	tests := []struct {
		name      string
		sort      jobDomain.SortOption
		wantOrder string
	}{
		{
			name:      "known column passes through",
			sort:      jobDomain.SortOption{Field: "status", Order: "desc"},
			wantOrder: "ORDER BY status DESC",
		},
		{
			name:      "unknown identifier falls back to created_at",
			sort:      jobDomain.SortOption{Field: "(SELECT password FROM servers LIMIT 1)", Order: "asc"},
			wantOrder: "ORDER BY created_at ASC",
		},
		{
			name:      "quoted injection falls back to created_at",
			sort:      jobDomain.SortOption{Field: "id; DROP TABLE jobs", Order: "asc"},
			wantOrder: "ORDER BY created_at ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := setupJobRepoTest(t)
			defer suite.tearDown()

			suite.mock.ExpectQuery("SELECT count\\(\\*\\) FROM `jobs`").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			suite.mock.ExpectQuery("SELECT \\* FROM `jobs` .*" + regexp.QuoteMeta(tt.wantOrder)).
				WillReturnRows(pendingJobRows())

			_, total, err := suite.repo.GetByFilter(suite.ctx,
				jobDomain.JobFilters{Status: "pending"}, 10, 0, tt.sort)

			require.NoError(t, err)
			assert.Equal(t, 1, total)
			assert.NoError(t, suite.mock.ExpectationsWereMet())
		})
	}
}

func TestJobRepository_GetByID_NotFoundIsNil(t *testing.T) {
	suite := setupJobRepoTest(t)
	defer suite.tearDown()

	suite.mock.ExpectQuery("SELECT \\* FROM `jobs` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	job, err := suite.repo.GetByID(suite.ctx, 99)

	require.NoError(t, err)
	assert.Nil(t, job)
}
