package types

import (
	"time"
)

// Site is one discovered WordPress installation, unique per (server, path).
type Site struct {
	ID                    string     `gorm:"column:id;size:36;primaryKey"`
	ServerID              int64      `gorm:"column:server_id;not null;uniqueIndex:idx_server_path"`
	Path                  string     `gorm:"column:path;size:500;not null;uniqueIndex:idx_server_path"`
	Domain                string     `gorm:"column:domain;size:255"`
	WPVersion             string     `gorm:"column:wp_version;size:50"`
	IsImmutable           bool       `gorm:"column:is_immutable;default:0"`
	ImmutabilityCheckedAt *time.Time `gorm:"column:immutability_checked_at;type:datetime"`
	FolderStatus          *string    `gorm:"column:folder_status;type:json"`
	CreatedAt             time.Time  `gorm:"column:created_at;type:datetime;default:CURRENT_TIMESTAMP"`
	UpdatedAt             *time.Time `gorm:"column:updated_at;type:datetime"`

	Server Server `gorm:"foreignKey:ServerID"`
}

func (Site) TableName() string {
	return "wordpress_sites"
}
