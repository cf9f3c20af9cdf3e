package domain

import (
	"time"
)

// ServerDomain is a managed host. Credentials are plaintext here; the
// service layer encrypts before the row is stored and decrypts on read.
type ServerDomain struct {
	ID         int64
	Name       string
	Host       string
	Port       uint
	Username   string
	Password   string
	SSHKey     string
	SSHKeyPath string
	ScanPaths  []string
	Active     bool
	LastScanAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasCredentials reports whether any SSH auth material is configured.
func (s ServerDomain) HasCredentials() bool {
	return s.SSHKeyPath != "" || s.SSHKey != "" || s.Password != ""
}

type ServerFilter struct {
	Name   string `json:"name"`
	Host   string `json:"host"`
	Active *bool  `json:"active"`
}

type SortOption struct {
	Field string
	Order string
}

// UpdateRequest carries the mutable server fields; nil means keep current.
type UpdateRequest struct {
	ID         int64
	Name       *string
	Host       *string
	Port       *uint
	Username   *string
	Password   *string
	SSHKey     *string
	SSHKeyPath *string
	ScanPaths  []string
	Active     *bool
}
