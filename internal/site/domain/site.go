package domain

import (
	"time"
)

// Folder keys reported by the immutability status probe.
const (
	FolderRoot       = "root"
	FolderLanguages  = "wp-content/languages"
	FolderUploads    = "wp-content/uploads"
	FolderW3TCConfig = "wp-content/w3tc-config"
)

// SiteDomain is one discovered WordPress installation. Sites are upserted
// by the discovery engine keyed on (server, path) and never auto-removed by
// a later scan.
type SiteDomain struct {
	ID                    string          `json:"id"`
	ServerID              int64           `json:"server_id"`
	Path                  string          `json:"path"`
	Domain                string          `json:"domain"`
	WPVersion             string          `json:"wp_version"`
	IsImmutable           bool            `json:"is_immutable"`
	ImmutabilityCheckedAt *time.Time      `json:"immutability_checked_at,omitempty"`
	FolderStatus          map[string]bool `json:"folder_status,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type SiteFilter struct {
	ServerID *int64
	Domain   string
}

type SortOption struct {
	Field string
	Order string
}
