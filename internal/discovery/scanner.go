package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/remote"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
)

// maxSearchDepth bounds how far below a scan root the marker search
// descends.
const maxSearchDepth = 4

// Marker files used by the WordPress detection heuristics.
const (
	markerVersion = "wp-includes/version.php"
	markerAdmin   = "wp-admin/index.php"
	markerLogin   = "wp-login.php"
	markerConfig  = "wp-config.php"
)

var (
	versionRe = regexp.MustCompile(`\$wp_version\s*=\s*'([^']+)'`)
	homeRe    = regexp.MustCompile(`define\s*\(\s*['"]WP_HOME['"]\s*,\s*['"]([^'"]+)['"]`)
	siteURLRe = regexp.MustCompile(`define\s*\(\s*['"]WP_SITEURL['"]\s*,\s*['"]([^'"]+)['"]`)
)

// Scanner discovers WordPress installations under a server's configured
// scan paths and upserts them into the site catalog.
type Scanner struct {
	servers     serverPort.Service
	sites       sitePort.Service
	jobs        jobPort.Service
	newExecutor remote.Factory
}

func NewScanner(servers serverPort.Service, sites sitePort.Service, jobs jobPort.Service, newExecutor remote.Factory) *Scanner {
	return &Scanner{
		servers:     servers,
		sites:       sites,
		jobs:        jobs,
		newExecutor: newExecutor,
	}
}

// scanResult is the payload stored on a completed discovery job.
type scanResult struct {
	ServerID     int64    `json:"server_id"`
	PathsScanned int      `json:"paths_scanned"`
	SitesFound   int      `json:"sites_found"`
	Sites        []string `json:"sites"`
}

// ExecuteDiscovery scans one server. A single failing pattern or site is
// logged and skipped; only a connection-level failure aborts the whole scan.
func (s *Scanner) ExecuteDiscovery(ctx context.Context, serverID int64, jobID int64) (json.RawMessage, error) {
	srv, err := s.servers.GetServerByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if len(srv.ScanPaths) == 0 {
		return nil, server.ErrNoScanPaths
	}

	executor, err := s.newExecutor(*srv)
	if err != nil {
		return nil, err
	}
	defer executor.Close()

	local := remote.IsLocalHost(srv.Host)

	roots := s.expandScanPaths(ctx, executor, srv.ScanPaths, jobID)

	result := scanResult{ServerID: serverID, PathsScanned: len(roots)}
	for i, root := range roots {
		s.logLine(ctx, jobID, fmt.Sprintf("searching %s", root))

		found, err := s.findInstallations(ctx, executor, root, local)
		if err != nil {
			// Partial-scan semantics: one broken root does not sink the
			// rest of the server.
			s.logLine(ctx, jobID, fmt.Sprintf("search under %s failed: %v", root, err))
			continue
		}

		for _, installPath := range found {
			site, err := s.describeInstallation(ctx, executor, srv.ID, installPath)
			if err != nil {
				s.logLine(ctx, jobID, fmt.Sprintf("could not describe %s: %v", installPath, err))
				continue
			}

			if _, err := s.sites.UpsertDiscovered(ctx, site); err != nil {
				s.logLine(ctx, jobID, fmt.Sprintf("could not record %s: %v", installPath, err))
				continue
			}

			result.SitesFound++
			result.Sites = append(result.Sites, installPath)
			s.logLine(ctx, jobID, fmt.Sprintf("found WordPress %s at %s", site.WPVersion, installPath))
		}

		s.progress(ctx, jobID, i+1, len(roots))
	}

	if err := s.servers.UpdateLastScan(ctx, srv.ID, time.Now()); err != nil {
		log.Printf("Discovery: could not update last scan for server %d: %v", srv.ID, err)
	}

	return json.Marshal(result)
}

// expandScanPaths turns the configured patterns into validated candidate
// roots, preserving order. Wildcard patterns expand through the executor so
// remote patterns glob on the remote filesystem.
func (s *Scanner) expandScanPaths(ctx context.Context, executor remote.Executor, patterns []string, jobID int64) []string {
	var roots []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		candidates := []string{pattern}

		if strings.ContainsAny(pattern, "*?[") {
			expanded, err := executor.ExpandWildcard(ctx, pattern)
			if err != nil {
				s.logLine(ctx, jobID, fmt.Sprintf("pattern %s failed to expand: %v", pattern, err))
				continue
			}
			candidates = expanded
		}

		for _, c := range candidates {
			c = filepath.Clean(c)
			if seen[c] {
				continue
			}

			ok, err := executor.DirectoryExists(ctx, c)
			if err != nil {
				s.logLine(ctx, jobID, fmt.Sprintf("cannot probe %s: %v", c, err))
				continue
			}
			if !ok {
				continue
			}

			seen[c] = true
			roots = append(roots, c)
		}
	}
	return roots
}

// findInstallations searches root depth-first, up to maxSearchDepth levels,
// for directories passing the marker heuristics. A qualifying directory is
// not descended into further. The visited set keeps symlink cycles from
// looping the walk.
func (s *Scanner) findInstallations(ctx context.Context, executor remote.Executor, root string, local bool) ([]string, error) {
	var found []string
	visited := make(map[string]bool)

	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		dir = filepath.Clean(dir)
		if visited[dir] {
			return nil
		}
		visited[dir] = true

		isWP, err := s.isWordPress(ctx, executor, dir, local)
		if err != nil {
			return err
		}
		if isWP {
			found = append(found, dir)
			return nil
		}

		if depth >= maxSearchDepth {
			return nil
		}

		subdirs, err := listSubdirectories(ctx, executor, dir)
		if err != nil {
			return err
		}
		for _, sub := range subdirs {
			if err := walk(sub, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return found, nil
}

// isWordPress applies the detection heuristics. Both backends accept the
// two-marker pair; local scans additionally accept three of the four known
// markers. The asymmetry is deliberate: remote probes cost a round trip
// each, so the remote rule stays at two.
func (s *Scanner) isWordPress(ctx context.Context, executor remote.Executor, dir string, local bool) (bool, error) {
	versionOK, err := executor.FileExists(ctx, path.Join(dir, markerVersion))
	if err != nil {
		return false, err
	}
	adminOK, err := executor.FileExists(ctx, path.Join(dir, markerAdmin))
	if err != nil {
		return false, err
	}

	if versionOK && adminOK {
		return true, nil
	}
	if !local {
		return false, nil
	}

	count := 0
	for _, ok := range []bool{versionOK, adminOK} {
		if ok {
			count++
		}
	}
	for _, marker := range []string{markerLogin, markerConfig} {
		ok, err := executor.FileExists(ctx, path.Join(dir, marker))
		if err != nil {
			return false, err
		}
		if ok {
			count++
		}
	}
	return count >= 3, nil
}

// describeInstallation extracts the version and public URL for one
// discovered root. Extraction failures degrade to empty fields rather than
// failing the site.
func (s *Scanner) describeInstallation(ctx context.Context, executor remote.Executor, serverID int64, installPath string) (siteDomain.SiteDomain, error) {
	site := siteDomain.SiteDomain{
		ServerID: serverID,
		Path:     installPath,
	}

	version, err := extractHead(ctx, executor, path.Join(installPath, markerVersion), versionRe)
	if err != nil {
		log.Printf("Discovery: version extraction failed for %s: %v", installPath, err)
	}
	site.WPVersion = version

	site.Domain = s.inferDomain(ctx, executor, installPath)
	return site, nil
}

// inferDomain reads the site URL from wp-config.php constants, preferring
// WP_HOME over WP_SITEURL, and falls back to the last path segment.
func (s *Scanner) inferDomain(ctx context.Context, executor remote.Executor, installPath string) string {
	configPath := path.Join(installPath, markerConfig)

	for _, re := range []*regexp.Regexp{homeRe, siteURLRe} {
		url, err := extractHead(ctx, executor, configPath, re)
		if err != nil {
			log.Printf("Discovery: config read failed for %s: %v", installPath, err)
			break
		}
		if url != "" {
			return stripScheme(url)
		}
	}
	return path.Base(installPath)
}

// extractHead reads the head of a file and returns the regex's first
// capture group, or empty when the file is unreadable or does not match.
func extractHead(ctx context.Context, executor remote.Executor, filePath string, re *regexp.Regexp) (string, error) {
	res, err := executor.Execute(ctx, fmt.Sprintf("head -n 60 %s 2>/dev/null", remote.ShellQuote(filePath)))
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", nil
	}

	if m := re.FindStringSubmatch(res.Stdout); len(m) > 1 {
		return m[1], nil
	}
	return "", nil
}

func listSubdirectories(ctx context.Context, executor remote.Executor, dir string) ([]string, error) {
	cmd := fmt.Sprintf("find %s -mindepth 1 -maxdepth 1 -type d 2>/dev/null", remote.ShellQuote(dir))
	res, err := executor.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var subdirs []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			subdirs = append(subdirs, line)
		}
	}
	return subdirs, nil
}

func stripScheme(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimSuffix(url, "/")
}

func (s *Scanner) progress(ctx context.Context, jobID int64, current, total int) {
	if err := s.jobs.UpdateProgress(ctx, jobID, current, total); err != nil {
		log.Printf("Discovery: progress update for job %d failed: %v", jobID, err)
	}
}

func (s *Scanner) logLine(ctx context.Context, jobID int64, line string) {
	if err := s.jobs.AppendLog(ctx, jobID, line); err != nil {
		log.Printf("Discovery: log append for job %d failed: %v", jobID, err)
	}
}
