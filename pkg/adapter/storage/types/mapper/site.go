package mapper

import (
	"encoding/json"
	"time"

	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
)

// SiteDomain2Storage maps a domain site to its storage row.
func SiteDomain2Storage(d siteDomain.SiteDomain) (*types.Site, error) {
	var folderStatus *string
	if d.FolderStatus != nil {
		encoded, err := json.Marshal(d.FolderStatus)
		if err != nil {
			return nil, err
		}
		s := string(encoded)
		folderStatus = &s
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &types.Site{
		ID:                    d.ID,
		ServerID:              d.ServerID,
		Path:                  d.Path,
		Domain:                d.Domain,
		WPVersion:             d.WPVersion,
		IsImmutable:           d.IsImmutable,
		ImmutabilityCheckedAt: d.ImmutabilityCheckedAt,
		FolderStatus:          folderStatus,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             updatedAt,
	}, nil
}

// SiteStorage2Domain maps a storage row back to the domain site. Malformed
// folder status degrades to nil.
func SiteStorage2Domain(s types.Site) *siteDomain.SiteDomain {
	var folderStatus map[string]bool
	if s.FolderStatus != nil && *s.FolderStatus != "" {
		_ = json.Unmarshal([]byte(*s.FolderStatus), &folderStatus)
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &siteDomain.SiteDomain{
		ID:                    s.ID,
		ServerID:              s.ServerID,
		Path:                  s.Path,
		Domain:                s.Domain,
		WPVersion:             s.WPVersion,
		IsImmutable:           s.IsImmutable,
		ImmutabilityCheckedAt: s.ImmutabilityCheckedAt,
		FolderStatus:          folderStatus,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             updatedAt,
	}
}
