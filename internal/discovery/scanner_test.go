package discovery_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/discovery"
	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/remote"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server"
	serverDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
)

// MockServerService is a mock implementation of the serverPort.Service interface
type MockServerService struct {
	mock.Mock
}

func (m *MockServerService) CreateServer(ctx context.Context, srv serverDomain.ServerDomain) (int64, error) {
	args := m.Called(ctx, srv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServerService) GetServerByID(ctx context.Context, id int64) (*serverDomain.ServerDomain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*serverDomain.ServerDomain), args.Error(1)
}

func (m *MockServerService) GetServers(ctx context.Context, filter serverDomain.ServerFilter, limit, offset int, sortOptions ...serverDomain.SortOption) ([]serverDomain.ServerDomain, int, error) {
	args := m.Called(ctx, filter, limit, offset, sortOptions)
	return args.Get(0).([]serverDomain.ServerDomain), args.Get(1).(int), args.Error(2)
}

func (m *MockServerService) UpdateServer(ctx context.Context, req serverDomain.UpdateRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockServerService) DeleteServer(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServerService) UpdateLastScan(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockServerService) GetDueForScan(ctx context.Context, cutoff time.Time) ([]serverDomain.ServerDomain, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]serverDomain.ServerDomain), args.Error(1)
}

// MockSiteService is a mock implementation of the sitePort.Service interface
type MockSiteService struct {
	mock.Mock
}

func (m *MockSiteService) UpsertDiscovered(ctx context.Context, site siteDomain.SiteDomain) (string, error) {
	args := m.Called(ctx, site)
	return args.String(0), args.Error(1)
}

func (m *MockSiteService) GetSiteByID(ctx context.Context, id string) (*siteDomain.SiteDomain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*siteDomain.SiteDomain), args.Error(1)
}

func (m *MockSiteService) GetSites(ctx context.Context, filter siteDomain.SiteFilter, limit, offset int, sortOptions ...siteDomain.SortOption) ([]siteDomain.SiteDomain, int, error) {
	args := m.Called(ctx, filter, limit, offset, sortOptions)
	return args.Get(0).([]siteDomain.SiteDomain), args.Get(1).(int), args.Error(2)
}

func (m *MockSiteService) SetImmutability(ctx context.Context, id string, immutable bool, folderStatus map[string]bool, checkedAt time.Time) error {
	args := m.Called(ctx, id, immutable, folderStatus, checkedAt)
	return args.Error(0)
}

// MockJobService is a mock implementation of the jobPort.Service interface
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) CreateJob(ctx context.Context, j jobDomain.Job) (int64, error) {
	args := m.Called(ctx, j)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobService) GetJobByID(ctx context.Context, id int64) (*jobDomain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobDomain.Job), args.Error(1)
}

func (m *MockJobService) GetJobs(ctx context.Context, filter jobDomain.JobFilters, limit, offset int, sortOptions ...jobDomain.SortOption) ([]jobDomain.Job, int, error) {
	args := m.Called(ctx, filter, limit, offset, sortOptions)
	return args.Get(0).([]jobDomain.Job), args.Get(1).(int), args.Error(2)
}

func (m *MockJobService) ClaimNextJob(ctx context.Context) (*jobDomain.Job, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*jobDomain.Job), args.Bool(1), args.Error(2)
}

func (m *MockJobService) CompleteJob(ctx context.Context, id int64, result json.RawMessage) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockJobService) FailJob(ctx context.Context, id int64, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockJobService) UpdateProgress(ctx context.Context, id int64, current, total int) error {
	args := m.Called(ctx, id, current, total)
	return args.Error(0)
}

func (m *MockJobService) AppendLog(ctx context.Context, id int64, line string) error {
	args := m.Called(ctx, id, line)
	return args.Error(0)
}

func (m *MockJobService) HasActiveJob(ctx context.Context, module, action string, serverID int64) (bool, error) {
	args := m.Called(ctx, module, action, serverID)
	return args.Bool(0), args.Error(1)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeWordPress lays down the markers of a complete install.
func writeWordPress(t *testing.T, root, version, home string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "wp-includes", "version.php"),
		"<?php\n$wp_version = '"+version+"';\n$wp_db_version = 57155;\n")
	writeFile(t, filepath.Join(root, "wp-admin", "index.php"), "<?php\nrequire_once __DIR__ . '/admin.php';\n")
	writeFile(t, filepath.Join(root, "wp-login.php"), "<?php\nrequire __DIR__ . '/wp-load.php';\n")

	config := "<?php\n"
	if home != "" {
		config += "define( 'WP_HOME', '" + home + "' );\n"
	}
	config += "define( 'DB_NAME', 'wp' );\n"
	writeFile(t, filepath.Join(root, "wp-config.php"), config)
}

func newLooseJobService() *MockJobService {
	jobs := new(MockJobService)
	jobs.On("UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	jobs.On("AppendLog", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return jobs
}

func TestScanner_ExecuteDiscovery_WildcardFixtureTree(t *testing.T) {
	root := t.TempDir()
	wpRoot := filepath.Join(root, "hosting", "example.com", "public_html")
	writeWordPress(t, wpRoot, "6.4.2", "https://example.com")

	// A sibling account with no WordPress must not produce a site.
	writeFile(t, filepath.Join(root, "hosting", "static.example", "public_html", "index.html"), "<html></html>")

	pattern := filepath.Join(root, "hosting", "*", "public_html")
	servers := new(MockServerService)
	servers.On("GetServerByID", mock.Anything, int64(7)).Return(&serverDomain.ServerDomain{
		ID: 7, Name: "web01", Host: "localhost", ScanPaths: []string{pattern},
	}, nil)
	servers.On("UpdateLastScan", mock.Anything, int64(7), mock.Anything).Return(nil)

	sites := new(MockSiteService)
	var upserted []siteDomain.SiteDomain
	sites.On("UpsertDiscovered", mock.Anything, mock.MatchedBy(func(s siteDomain.SiteDomain) bool {
		upserted = append(upserted, s)
		return true
	})).Return("site-1", nil)

	scanner := discovery.NewScanner(servers, sites, newLooseJobService(), remote.NewFactory(remote.Options{}))
	raw, err := scanner.ExecuteDiscovery(context.Background(), 7, 5)
	require.NoError(t, err)

	require.Len(t, upserted, 1)
	assert.Equal(t, int64(7), upserted[0].ServerID)
	assert.Equal(t, wpRoot, upserted[0].Path)
	assert.Equal(t, "6.4.2", upserted[0].WPVersion)
	assert.Equal(t, "example.com", upserted[0].Domain)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, float64(1), result["sites_found"])
	assert.Equal(t, float64(2), result["paths_scanned"])
}

func TestScanner_ExecuteDiscovery_NestedInstallFoundOnce(t *testing.T) {
	root := t.TempDir()
	wpRoot := filepath.Join(root, "www", "blog")
	writeWordPress(t, wpRoot, "6.5.0", "")

	servers := new(MockServerService)
	servers.On("GetServerByID", mock.Anything, int64(7)).Return(&serverDomain.ServerDomain{
		ID: 7, Host: "127.0.0.1", ScanPaths: []string{root},
	}, nil)
	servers.On("UpdateLastScan", mock.Anything, int64(7), mock.Anything).Return(nil)

	sites := new(MockSiteService)
	var upserted []siteDomain.SiteDomain
	sites.On("UpsertDiscovered", mock.Anything, mock.MatchedBy(func(s siteDomain.SiteDomain) bool {
		upserted = append(upserted, s)
		return true
	})).Return("site-1", nil)

	scanner := discovery.NewScanner(servers, sites, newLooseJobService(), remote.NewFactory(remote.Options{}))
	_, err := scanner.ExecuteDiscovery(context.Background(), 7, 5)
	require.NoError(t, err)

	// The install two levels down is found; the walk does not descend into
	// it and re-report subdirectories.
	require.Len(t, upserted, 1)
	assert.Equal(t, wpRoot, upserted[0].Path)
	// No WP_HOME configured: the domain falls back to the directory name.
	assert.Equal(t, "blog", upserted[0].Domain)
}

func TestScanner_ExecuteDiscovery_LocalHeuristicAcceptsThreeMarkers(t *testing.T) {
	root := t.TempDir()
	wpRoot := filepath.Join(root, "site")

	// version.php, wp-login.php and wp-config.php but no wp-admin: the
	// relaxed local rule still accepts it.
	writeFile(t, filepath.Join(wpRoot, "wp-includes", "version.php"), "<?php\n$wp_version = '6.2.1';\n")
	writeFile(t, filepath.Join(wpRoot, "wp-login.php"), "<?php\n")
	writeFile(t, filepath.Join(wpRoot, "wp-config.php"), "<?php\ndefine( 'WP_SITEURL', 'https://shop.example.org/' );\n")

	servers := new(MockServerService)
	servers.On("GetServerByID", mock.Anything, int64(7)).Return(&serverDomain.ServerDomain{
		ID: 7, Host: "localhost", ScanPaths: []string{root},
	}, nil)
	servers.On("UpdateLastScan", mock.Anything, int64(7), mock.Anything).Return(nil)

	sites := new(MockSiteService)
	var upserted []siteDomain.SiteDomain
	sites.On("UpsertDiscovered", mock.Anything, mock.MatchedBy(func(s siteDomain.SiteDomain) bool {
		upserted = append(upserted, s)
		return true
	})).Return("site-1", nil)

	scanner := discovery.NewScanner(servers, sites, newLooseJobService(), remote.NewFactory(remote.Options{}))
	_, err := scanner.ExecuteDiscovery(context.Background(), 7, 5)
	require.NoError(t, err)

	require.Len(t, upserted, 1)
	assert.Equal(t, "6.2.1", upserted[0].WPVersion)
	assert.Equal(t, "shop.example.org", upserted[0].Domain)
}

func TestScanner_ExecuteDiscovery_NoScanPaths(t *testing.T) {
	servers := new(MockServerService)
	servers.On("GetServerByID", mock.Anything, int64(7)).Return(&serverDomain.ServerDomain{
		ID: 7, Host: "localhost",
	}, nil)

	scanner := discovery.NewScanner(servers, new(MockSiteService), newLooseJobService(), remote.NewFactory(remote.Options{}))
	_, err := scanner.ExecuteDiscovery(context.Background(), 7, 5)

	assert.ErrorIs(t, err, server.ErrNoScanPaths)
}
