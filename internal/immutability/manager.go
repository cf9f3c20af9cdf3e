package immutability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"
	"time"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/remote"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
)

var (
	ErrInvalidSitePath = errors.New("site path must be absolute")
	ErrSiteLocked      = errors.New("site is immutable; unlock before changing permissions")
)

// excludedDirs are subtrees the attribute toggle never touches, relative to
// the site root. WordPress and its plugins must keep writing there while
// the rest of the tree is locked.
var excludedDirs = []string{
	"wp-content/uploads",
	"wp-content/cache",
	"wp-content/w3tc-config",
	"wp-content/languages",
	"wp-content/wpml",
	"wp-content/uploads/wpml",
}

// probedFolders are the well-known locations the status probe reports on.
var probedFolders = map[string]string{
	siteDomain.FolderRoot:       "",
	siteDomain.FolderLanguages:  "wp-content/languages",
	siteDomain.FolderUploads:    "wp-content/uploads",
	siteDomain.FolderW3TCConfig: "wp-content/w3tc-config",
}

// Manager toggles the filesystem immutable attribute across a site tree.
type Manager struct {
	sites       sitePort.Service
	servers     serverPort.Service
	newExecutor remote.Factory
}

func NewManager(sites sitePort.Service, servers serverPort.Service, newExecutor remote.Factory) *Manager {
	return &Manager{
		sites:       sites,
		servers:     servers,
		newExecutor: newExecutor,
	}
}

// Lock sets the immutable attribute on every regular file of the site
// outside the exclusion list.
func (m *Manager) Lock(ctx context.Context, siteID string, jobID int64) (json.RawMessage, error) {
	return m.toggle(ctx, siteID, true)
}

// Unlock clears the attribute again.
func (m *Manager) Unlock(ctx context.Context, siteID string, jobID int64) (json.RawMessage, error) {
	return m.toggle(ctx, siteID, false)
}

func (m *Manager) toggle(ctx context.Context, siteID string, immutable bool) (json.RawMessage, error) {
	site, err := m.sites.GetSiteByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(site.Path) {
		return nil, ErrInvalidSitePath
	}

	server, err := m.servers.GetServerByID(ctx, site.ServerID)
	if err != nil {
		return nil, err
	}

	executor, err := m.newExecutor(*server)
	if err != nil {
		return nil, err
	}
	defer executor.Close()

	cmd := buildChattrCommand(site.Path, immutable)
	res, err := executor.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		// The flag stays untouched on failure; the caller sees why.
		return nil, fmt.Errorf("chattr run exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stdout))
	}

	folderStatus := m.folderStatus(ctx, executor, site.Path)

	if err := m.sites.SetImmutability(ctx, site.ID, immutable, folderStatus, time.Now()); err != nil {
		return nil, err
	}

	return json.Marshal(map[string]interface{}{
		"site_id":       site.ID,
		"immutable":     immutable,
		"folder_status": folderStatus,
	})
}

// Standard WordPress permission layout.
const (
	dirMode    = "755"
	fileMode   = "644"
	configMode = "600"
)

// FixPermissions restores the standard permission layout on the site tree:
// 755 directories, 644 files, 600 wp-config.php, plus optional ownership.
// A locked site is rejected before any command runs; chmod cannot change a
// file carrying the immutable attribute.
func (m *Manager) FixPermissions(ctx context.Context, params jobDomain.FixPermissionsParams, jobID int64) (json.RawMessage, error) {
	site, err := m.sites.GetSiteByID(ctx, params.SiteID)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(site.Path) {
		return nil, ErrInvalidSitePath
	}
	if site.IsImmutable {
		return nil, ErrSiteLocked
	}

	commands := buildPermissionCommands(site.Path, params)

	if params.DryRun {
		return json.Marshal(map[string]interface{}{
			"site_id":  site.ID,
			"dry_run":  true,
			"commands": commands,
		})
	}

	server, err := m.servers.GetServerByID(ctx, site.ServerID)
	if err != nil {
		return nil, err
	}

	executor, err := m.newExecutor(*server)
	if err != nil {
		return nil, err
	}
	defer executor.Close()

	for _, cmd := range commands {
		res, err := executor.Execute(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return nil, fmt.Errorf("permission run exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stdout))
		}
	}

	return json.Marshal(map[string]interface{}{
		"site_id":  site.ID,
		"dry_run":  false,
		"commands": commands,
	})
}

// buildPermissionCommands emits the chmod/chown sequence for one site root.
// wp-config.php is tightened only when present.
func buildPermissionCommands(root string, params jobDomain.FixPermissionsParams) []string {
	quoted := remote.ShellQuote(root)
	config := remote.ShellQuote(path.Join(root, "wp-config.php"))

	cmds := []string{
		fmt.Sprintf("find %s -type d -exec chmod %s {} +", quoted, dirMode),
		fmt.Sprintf("find %s -type f -exec chmod %s {} +", quoted, fileMode),
		fmt.Sprintf("[ ! -f %s ] || chmod %s %s", config, configMode, config),
	}

	if params.Owner != "" {
		spec := params.Owner
		if params.Group != "" {
			spec += ":" + params.Group
		}
		cmds = append(cmds, fmt.Sprintf("chown -R %s %s", remote.ShellQuote(spec), quoted))
	}
	return cmds
}

// buildChattrCommand produces the single find invocation that prunes every
// excluded subtree and applies the attribute to the remaining regular files.
func buildChattrCommand(root string, immutable bool) string {
	flag := "+i"
	if !immutable {
		flag = "-i"
	}

	prunes := make([]string, 0, len(excludedDirs))
	for _, dir := range excludedDirs {
		prunes = append(prunes, fmt.Sprintf("-path %s", remote.ShellQuote(path.Join(root, dir))))
	}

	return fmt.Sprintf(`find %s \( %s \) -prune -o -type f -exec chattr %s {} +`,
		remote.ShellQuote(root), strings.Join(prunes, " -o "), flag)
}

// folderStatus probes each well-known folder independently: a folder is
// immutable when any of its immediate files carries the i attribute. Probe
// errors degrade to false so one unreadable folder cannot fail the toggle.
func (m *Manager) folderStatus(ctx context.Context, executor remote.Executor, root string) map[string]bool {
	status := make(map[string]bool, len(probedFolders))
	for name, rel := range probedFolders {
		dir := root
		if rel != "" {
			dir = path.Join(root, rel)
		}

		immutable, err := probeFolder(ctx, executor, dir)
		if err != nil {
			log.Printf("Immutability: probe of %s failed: %v", dir, err)
			immutable = false
		}
		status[name] = immutable
	}
	return status
}

func probeFolder(ctx context.Context, executor remote.Executor, dir string) (bool, error) {
	res, err := executor.Execute(ctx, fmt.Sprintf("lsattr %s 2>/dev/null", remote.ShellQuote(dir)))
	if err != nil {
		return false, err
	}
	// Zero files, or a folder lsattr cannot read, reports as not immutable.
	if !res.Success {
		return false, nil
	}
	return parseLsattrOutput(res.Stdout), nil
}

// parseLsattrOutput reports whether any listed entry carries the immutable
// attribute. Lines look like "----i---------e------- /path/to/file".
func parseLsattrOutput(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.ContainsRune(fields[0], 'i') {
			return true
		}
	}
	return false
}
