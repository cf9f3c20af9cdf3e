package integrity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
	integrityPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/port"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/remote"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
)

// maxSweptPHPFiles bounds the malware sweep so a huge uploads mirror cannot
// stall the queue for hours.
const maxSweptPHPFiles = 1000

// headLines is how much of each PHP file the malware signatures see.
const headLines = 100

// Verifier executes one checksum verification run end to end. It reaches
// the target host through a remote.Executor and records everything through
// the repos.
type Verifier struct {
	repo        integrityPort.Repo
	sites       sitePort.Service
	servers     serverPort.Service
	jobs        jobPort.Service
	newExecutor remote.Factory
}

func NewVerifier(repo integrityPort.Repo, sites sitePort.Service, servers serverPort.Service, jobs jobPort.Service, newExecutor remote.Factory) *Verifier {
	return &Verifier{
		repo:        repo,
		sites:       sites,
		servers:     servers,
		jobs:        jobs,
		newExecutor: newExecutor,
	}
}

// ExecuteVerification runs the verification the given row describes and
// returns the result payload stored on the job. Any error marks the run
// failed with no partial counters persisted.
func (v *Verifier) ExecuteVerification(ctx context.Context, verificationID string, jobID int64) (json.RawMessage, error) {
	verification, err := v.repo.GetByID(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if verification == nil {
		return nil, ErrVerificationNotFound
	}

	site, err := v.sites.GetSiteByID(ctx, verification.SiteID)
	if err != nil {
		v.failRun(ctx, verificationID, err)
		return nil, err
	}

	server, err := v.servers.GetServerByID(ctx, site.ServerID)
	if err != nil {
		v.failRun(ctx, verificationID, err)
		return nil, err
	}

	if err := v.repo.MarkRunning(ctx, verificationID); err != nil {
		return nil, err
	}

	executor, err := v.newExecutor(*server)
	if err != nil {
		v.failRun(ctx, verificationID, err)
		return nil, err
	}
	defer executor.Close()

	run := &verificationRun{
		Verifier:     v,
		executor:     executor,
		verification: verification,
		site:         site,
		jobID:        jobID,
	}

	if err := run.execute(ctx); err != nil {
		v.failRun(ctx, verificationID, err)
		return nil, err
	}

	return json.Marshal(map[string]interface{}{
		"verification_id":    verification.ID,
		"type":               verification.Type,
		"total_files":        verification.TotalFiles,
		"verified_files":     verification.VerifiedFiles,
		"modified_files":     verification.ModifiedFiles,
		"missing_files":      verification.MissingFiles,
		"unauthorized_files": verification.UnauthorizedFiles,
	})
}

func (v *Verifier) failRun(ctx context.Context, verificationID string, cause error) {
	if err := v.repo.MarkFailed(ctx, verificationID, cause.Error()); err != nil {
		log.Printf("Verifier: could not mark verification %s failed: %v", verificationID, err)
	}
}

// verificationRun is the working state of one run.
type verificationRun struct {
	*Verifier
	executor     remote.Executor
	verification *domain.Verification
	site         *siteDomain.SiteDomain
	jobID        int64
}

func (r *verificationRun) execute(ctx context.Context) error {
	results := &domain.Results{}

	if err := r.corePass(ctx, results); err != nil {
		return err
	}

	scope := sweepScope(r.verification.Type, r.site.Path)
	results.SweepScope = strings.Join(scope, " ")

	if err := r.suspiciousSweep(ctx, scope); err != nil {
		return err
	}
	if err := r.malwareSweep(ctx, scope, results); err != nil {
		return err
	}

	r.verification.Results = results
	r.verification.UnauthorizedFiles = len(r.verification.Findings)
	return r.repo.Complete(ctx, *r.verification)
}

// corePass checks every catalog file: absent counts as missing, present
// files are baseline-compared.
func (r *verificationRun) corePass(ctx context.Context, results *domain.Results) error {
	r.verification.TotalFiles = len(coreFiles)

	for i, relPath := range coreFiles {
		fullPath := path.Join(r.site.Path, relPath)

		exists, err := r.executor.FileExists(ctx, fullPath)
		if err != nil {
			return fmt.Errorf("existence check for %s: %w", relPath, err)
		}
		if !exists {
			r.verification.MissingFiles++
			results.MissingPaths = append(results.MissingPaths, relPath)
			continue
		}

		r.verification.VerifiedFiles++

		modified, err := r.isFileModified(ctx, relPath, fullPath)
		if err != nil {
			// Unreadable file: log, skip, keep going.
			r.logLine(ctx, fmt.Sprintf("could not hash %s: %v", relPath, err))
			continue
		}
		if modified {
			r.verification.ModifiedFiles++
			results.ModifiedPaths = append(results.ModifiedPaths, relPath)
		}

		r.progress(ctx, i+1, len(coreFiles))
	}
	return nil
}

// isFileModified compares the file's current hash with the stored baseline.
// The first observation is trusted and stored as the original; this cannot
// detect a compromise that predates the first run, which is a documented
// limitation of the baseline model.
func (r *verificationRun) isFileModified(ctx context.Context, relPath, fullPath string) (bool, error) {
	current, err := r.hashFile(ctx, fullPath)
	if err != nil {
		return false, err
	}

	baseline, err := r.repo.GetBaseline(ctx, r.site.ID, relPath)
	if err != nil {
		return false, err
	}

	if baseline == nil {
		err := r.repo.SaveBaseline(ctx, domain.FileChecksum{
			SiteID:     r.site.ID,
			FilePath:   relPath,
			Checksum:   current,
			IsOriginal: true,
		})
		if err != nil {
			return false, err
		}
		return false, nil
	}

	return baseline.Checksum != current, nil
}

func (r *verificationRun) hashFile(ctx context.Context, fullPath string) (string, error) {
	res, err := r.executor.Execute(ctx, fmt.Sprintf("md5sum %s", remote.ShellQuote(fullPath)))
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("md5sum exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stdout))
	}

	fields := strings.Fields(res.Stdout)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty md5sum output for %s", fullPath)
	}
	return fields[0], nil
}

// suspiciousSweep finds files whose name alone marks them: each hit is a
// high-risk finding.
func (r *verificationRun) suspiciousSweep(ctx context.Context, scope []string) error {
	for _, ext := range suspiciousExtensions {
		cmd := fmt.Sprintf("find %s -type f -name %s 2>/dev/null",
			quoteAll(scope), remote.ShellQuote("*"+ext))
		res, err := r.executor.Execute(ctx, cmd)
		if err != nil {
			return err
		}

		for _, line := range splitLines(res.Stdout) {
			r.addFinding(domain.UnauthorizedFile{
				FilePath:  line,
				RiskLevel: domain.RiskHigh,
				Category:  domain.CategorySuspicious,
				Reason:    fmt.Sprintf("suspicious file extension %s", ext),
			})
		}
	}
	return nil
}

// malwareSweep reads the head of up to maxSweptPHPFiles PHP files in scope
// and tests every signature; any match is a critical finding naming all
// matched patterns.
func (r *verificationRun) malwareSweep(ctx context.Context, scope []string, results *domain.Results) error {
	cmd := fmt.Sprintf("find %s -type f -name '*.php' 2>/dev/null | head -n %d",
		quoteAll(scope), maxSweptPHPFiles)
	res, err := r.executor.Execute(ctx, cmd)
	if err != nil {
		return err
	}

	phpFiles := splitLines(res.Stdout)
	results.ScannedPHP = len(phpFiles)

	for i, file := range phpFiles {
		head, err := r.executor.Execute(ctx, fmt.Sprintf("head -n %d %s 2>/dev/null", headLines, remote.ShellQuote(file)))
		if err != nil {
			return err
		}
		if !head.Success {
			r.logLine(ctx, fmt.Sprintf("could not read %s, skipping", file))
			continue
		}

		if matched := MatchMalware(head.Stdout); len(matched) > 0 {
			r.addFinding(domain.UnauthorizedFile{
				FilePath:  file,
				RiskLevel: domain.RiskCritical,
				Category:  domain.CategoryMalware,
				Reason:    "malicious code pattern: " + strings.Join(matched, "; "),
			})
		}

		if (i+1)%100 == 0 {
			r.progress(ctx, i+1, len(phpFiles))
		}
	}
	return nil
}

func (r *verificationRun) addFinding(f domain.UnauthorizedFile) {
	f.VerificationID = r.verification.ID
	r.verification.Findings = append(r.verification.Findings, f)
}

func (r *verificationRun) progress(ctx context.Context, current, total int) {
	if err := r.jobs.UpdateProgress(ctx, r.jobID, current, total); err != nil {
		log.Printf("Verifier: progress update for job %d failed: %v", r.jobID, err)
	}
}

func (r *verificationRun) logLine(ctx context.Context, line string) {
	if err := r.jobs.AppendLog(ctx, r.jobID, line); err != nil {
		log.Printf("Verifier: log append for job %d failed: %v", r.jobID, err)
	}
}

// sweepScope maps the verification type to the directories the sweeps
// cover. Core runs sweep the two WordPress system trees; the scoped types
// cover their content subdirectory; full covers the whole site.
func sweepScope(vtype domain.VerificationType, root string) []string {
	switch vtype {
	case domain.VerificationTypeCore:
		return []string{path.Join(root, "wp-admin"), path.Join(root, "wp-includes")}
	case domain.VerificationTypePlugins:
		return []string{path.Join(root, "wp-content", "plugins")}
	case domain.VerificationTypeThemes:
		return []string{path.Join(root, "wp-content", "themes")}
	default:
		return []string{root}
	}
}

func quoteAll(paths []string) string {
	quoted := make([]string, 0, len(paths))
	for _, p := range paths {
		quoted = append(quoted, remote.ShellQuote(p))
	}
	return strings.Join(quoted, " ")
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
