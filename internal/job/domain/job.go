package domain

import (
	"encoding/json"
	"time"
)

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// The only legal paths are pending -> running -> completed|failed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusRunning
	case JobStatusRunning:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// IsTerminal reports whether the status can never change again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job modules and the actions each one accepts.
const (
	ModuleDiscovery    = "discovery"
	ModuleIntegrity    = "integrity"
	ModuleImmutability = "immutability"

	ActionScan     = "scan"
	ActionVerify   = "verify"
	ActionLock     = "lock"
	ActionUnlock   = "unlock"
	ActionFixPerms = "fix-permissions"
)

var validKinds = map[string]map[string]bool{
	ModuleDiscovery:    {ActionScan: true},
	ModuleIntegrity:    {ActionVerify: true},
	ModuleImmutability: {ActionLock: true, ActionUnlock: true, ActionFixPerms: true},
}

// ValidKind reports whether the module/action pair maps to a known engine.
func ValidKind(module, action string) bool {
	actions, ok := validKinds[module]
	return ok && actions[action]
}

// Job is one persisted unit of work. Created by the API or the scan
// scheduler; mutated only by the worker once claimed.
type Job struct {
	ID         int64           `json:"id"`
	ServerID   *int64          `json:"server_id,omitempty"`
	SiteID     *string         `json:"site_id,omitempty"`
	Module     string          `json:"module"`
	Action     string          `json:"action"`
	Params     json.RawMessage `json:"params,omitempty"`
	Status     JobStatus       `json:"status"`
	Progress   int             `json:"progress"`
	Total      int             `json:"total"`
	Log        string          `json:"log,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// JobFilters defines supported filters for querying jobs
type JobFilters struct {
	Status   string
	Module   string
	SiteID   string
	ServerID *int64
}

// SortOption defines sorting options for job queries
type SortOption struct {
	Field string
	Order string
}

// ScanParams is the payload of a discovery/scan job.
type ScanParams struct {
	ServerID int64 `json:"server_id"`
}

// VerifyParams is the payload of an integrity/verify job.
type VerifyParams struct {
	VerificationID string `json:"verification_id"`
}

// ImmutabilityParams is the payload of an immutability lock/unlock job.
type ImmutabilityParams struct {
	SiteID string `json:"site_id"`
}

// FixPermissionsParams is the payload of an immutability/fix-permissions
// job. Owner and Group are optional; empty means ownership stays as-is.
type FixPermissionsParams struct {
	SiteID string `json:"site_id"`
	DryRun bool   `json:"dry_run,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Group  string `json:"group,omitempty"`
}
