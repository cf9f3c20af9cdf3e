package types

import (
	"time"
)

// ChecksumVerification is one integrity run for a site. At most one row per
// site may be in a non-terminal status at a time.
type ChecksumVerification struct {
	ID                string     `gorm:"column:id;size:36;primaryKey"`
	SiteID            string     `gorm:"column:site_id;size:36;not null;index"`
	Type              string     `gorm:"column:type;type:enum('core','plugins','themes','full');not null;default:full"`
	Status            string     `gorm:"column:status;type:enum('pending','running','completed','failed');not null;default:pending"`
	TotalFiles        int        `gorm:"column:total_files;default:0"`
	VerifiedFiles     int        `gorm:"column:verified_files;default:0"`
	ModifiedFiles     int        `gorm:"column:modified_files;default:0"`
	UnauthorizedFiles int        `gorm:"column:unauthorized_files;default:0"`
	MissingFiles      int        `gorm:"column:missing_files;default:0"`
	Results           *string    `gorm:"column:results;type:json"`
	Error             *string    `gorm:"column:error;size:1000"`
	StartedAt         time.Time  `gorm:"column:started_at;type:datetime;default:CURRENT_TIMESTAMP"`
	CompletedAt       *time.Time `gorm:"column:completed_at;type:datetime"`

	Site              Site               `gorm:"foreignKey:SiteID"`
	UnauthorizedFinds []UnauthorizedFile `gorm:"foreignKey:VerificationID"`
}

func (ChecksumVerification) TableName() string {
	return "wordpress_checksum_verifications"
}

// UnauthorizedFile is one flagged path from a verification sweep.
type UnauthorizedFile struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	VerificationID string    `gorm:"column:verification_id;size:36;not null;index"`
	FilePath       string    `gorm:"column:file_path;size:1000;not null"`
	RiskLevel      string    `gorm:"column:risk_level;type:enum('critical','high','medium','low');not null"`
	Category       string    `gorm:"column:category;type:enum('malware','suspicious');not null"`
	Reason         string    `gorm:"column:reason;size:1000"`
	DetectedAt     time.Time `gorm:"column:detected_at;type:datetime;default:CURRENT_TIMESTAMP"`

	Verification ChecksumVerification `gorm:"foreignKey:VerificationID"`
}

func (UnauthorizedFile) TableName() string {
	return "wordpress_unauthorized_files"
}

// FileChecksum is the stored baseline hash for one file of a site. The first
// observed hash is kept as the original; later runs compare against it.
type FileChecksum struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SiteID     string    `gorm:"column:site_id;size:36;not null;uniqueIndex:idx_site_file"`
	FilePath   string    `gorm:"column:file_path;size:500;not null;uniqueIndex:idx_site_file"`
	Checksum   string    `gorm:"column:checksum;size:64;not null"`
	IsOriginal bool      `gorm:"column:is_original;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;type:datetime;default:CURRENT_TIMESTAMP"`
}

func (FileChecksum) TableName() string {
	return "wordpress_file_checksums"
}
