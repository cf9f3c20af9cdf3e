package types

import (
	"time"
)

// Server is a managed host that owns WordPress sites. Password and SSHKey
// hold AES-GCM envelopes, never plaintext.
type Server struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string     `gorm:"column:name;size:255;not null"`
	Host       string     `gorm:"column:host;size:255;not null"`
	Port       uint       `gorm:"column:port;default:22"`
	Username   string     `gorm:"column:username;size:100"`
	Password   *string    `gorm:"column:password;size:1000"`
	SSHKey     *string    `gorm:"column:ssh_key;type:text"`
	SSHKeyPath *string    `gorm:"column:ssh_key_path;size:500"`
	ScanPaths  *string    `gorm:"column:scan_paths;type:json"`
	Active     bool       `gorm:"column:active;default:1"`
	LastScanAt *time.Time `gorm:"column:last_scan_at;type:datetime"`
	CreatedAt  time.Time  `gorm:"column:created_at;type:datetime;default:CURRENT_TIMESTAMP"`
	UpdatedAt  *time.Time `gorm:"column:updated_at;type:datetime"`

	Sites []Site `gorm:"foreignKey:ServerID"`
}

func (Server) TableName() string {
	return "servers"
}
