package domain

import (
	"time"
)

type VerificationType string

const (
	VerificationTypeCore    VerificationType = "core"
	VerificationTypePlugins VerificationType = "plugins"
	VerificationTypeThemes  VerificationType = "themes"
	VerificationTypeFull    VerificationType = "full"
)

// ValidType reports whether t names a known verification scope.
func ValidType(t VerificationType) bool {
	switch t {
	case VerificationTypeCore, VerificationTypePlugins, VerificationTypeThemes, VerificationTypeFull:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationStatusPending   VerificationStatus = "pending"
	VerificationStatusRunning   VerificationStatus = "running"
	VerificationStatusCompleted VerificationStatus = "completed"
	VerificationStatusFailed    VerificationStatus = "failed"
)

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

type FindingCategory string

const (
	CategoryMalware    FindingCategory = "malware"
	CategorySuspicious FindingCategory = "suspicious"
)

// Verification is one integrity run for a site. At most one non-terminal
// run may exist per site at any time.
type Verification struct {
	ID                string             `json:"id"`
	SiteID            string             `json:"site_id"`
	Type              VerificationType   `json:"type"`
	Status            VerificationStatus `json:"status"`
	TotalFiles        int                `json:"total_files"`
	VerifiedFiles     int                `json:"verified_files"`
	ModifiedFiles     int                `json:"modified_files"`
	UnauthorizedFiles int                `json:"unauthorized_files"`
	MissingFiles      int                `json:"missing_files"`
	Results           *Results           `json:"results,omitempty"`
	Error             string             `json:"error,omitempty"`
	StartedAt         time.Time          `json:"started_at"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	Findings          []UnauthorizedFile `json:"findings,omitempty"`
}

// Results is the structured outcome persisted with a completed run.
type Results struct {
	ModifiedPaths []string `json:"modified_files,omitempty"`
	MissingPaths  []string `json:"missing_files,omitempty"`
	SweepScope    string   `json:"sweep_scope,omitempty"`
	ScannedPHP    int      `json:"scanned_php_files,omitempty"`
}

// UnauthorizedFile is one flagged path from a verification sweep.
type UnauthorizedFile struct {
	ID             int64           `json:"id"`
	VerificationID string          `json:"verification_id"`
	FilePath       string          `json:"file_path"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	Category       FindingCategory `json:"category"`
	Reason         string          `json:"reason"`
	DetectedAt     time.Time       `json:"detected_at"`
}

// FileChecksum is the stored baseline for one file of a site. The first
// observed hash is trusted and kept as the original; later runs compare
// against it and never replace it.
type FileChecksum struct {
	ID         int64
	SiteID     string
	FilePath   string
	Checksum   string
	IsOriginal bool
	CreatedAt  time.Time
}
