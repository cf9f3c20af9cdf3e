package mapper

import (
	"encoding/json"
	"time"

	serverDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
)

// ServerDomain2Storage maps a domain server to its storage row. Credentials
// arrive already encrypted by the service layer.
func ServerDomain2Storage(d serverDomain.ServerDomain) (*types.Server, error) {
	var scanPaths *string
	if d.ScanPaths != nil {
		encoded, err := json.Marshal(d.ScanPaths)
		if err != nil {
			return nil, err
		}
		s := string(encoded)
		scanPaths = &s
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &types.Server{
		ID:         d.ID,
		Name:       d.Name,
		Host:       d.Host,
		Port:       d.Port,
		Username:   d.Username,
		Password:   strToPtr(d.Password),
		SSHKey:     strToPtr(d.SSHKey),
		SSHKeyPath: strToPtr(d.SSHKeyPath),
		ScanPaths:  scanPaths,
		Active:     d.Active,
		LastScanAt: d.LastScanAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// ServerStorage2Domain maps a storage row back to the domain server. A
// malformed scan_paths payload degrades to an empty list rather than
// failing the read.
func ServerStorage2Domain(s types.Server) *serverDomain.ServerDomain {
	var scanPaths []string
	if s.ScanPaths != nil && *s.ScanPaths != "" {
		_ = json.Unmarshal([]byte(*s.ScanPaths), &scanPaths)
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &serverDomain.ServerDomain{
		ID:         s.ID,
		Name:       s.Name,
		Host:       s.Host,
		Port:       s.Port,
		Username:   s.Username,
		Password:   ptrToStr(s.Password),
		SSHKey:     ptrToStr(s.SSHKey),
		SSHKeyPath: ptrToStr(s.SSHKeyPath),
		ScanPaths:  scanPaths,
		Active:     s.Active,
		LastScanAt: s.LastScanAt,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}
