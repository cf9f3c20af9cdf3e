package mapper

import (
	"encoding/json"

	integrityDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/domain"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
)

// VerificationDomain2Storage maps a domain verification to its storage row.
// Findings are stored separately by the repo.
func VerificationDomain2Storage(d integrityDomain.Verification) (*types.ChecksumVerification, error) {
	var results *string
	if d.Results != nil {
		encoded, err := json.Marshal(d.Results)
		if err != nil {
			return nil, err
		}
		s := string(encoded)
		results = &s
	}

	return &types.ChecksumVerification{
		ID:                d.ID,
		SiteID:            d.SiteID,
		Type:              string(d.Type),
		Status:            string(d.Status),
		TotalFiles:        d.TotalFiles,
		VerifiedFiles:     d.VerifiedFiles,
		ModifiedFiles:     d.ModifiedFiles,
		UnauthorizedFiles: d.UnauthorizedFiles,
		MissingFiles:      d.MissingFiles,
		Results:           results,
		Error:             strToPtr(d.Error),
		StartedAt:         d.StartedAt,
		CompletedAt:       d.CompletedAt,
	}, nil
}

// VerificationStorage2Domain maps a storage row back to the domain
// verification, including any preloaded findings. Malformed results degrade
// to nil.
func VerificationStorage2Domain(s types.ChecksumVerification) *integrityDomain.Verification {
	var results *integrityDomain.Results
	if s.Results != nil && *s.Results != "" {
		var parsed integrityDomain.Results
		if err := json.Unmarshal([]byte(*s.Results), &parsed); err == nil {
			results = &parsed
		}
	}

	findings := make([]integrityDomain.UnauthorizedFile, 0, len(s.UnauthorizedFinds))
	for _, f := range s.UnauthorizedFinds {
		findings = append(findings, *UnauthorizedFileStorage2Domain(f))
	}

	return &integrityDomain.Verification{
		ID:                s.ID,
		SiteID:            s.SiteID,
		Type:              integrityDomain.VerificationType(s.Type),
		Status:            integrityDomain.VerificationStatus(s.Status),
		TotalFiles:        s.TotalFiles,
		VerifiedFiles:     s.VerifiedFiles,
		ModifiedFiles:     s.ModifiedFiles,
		UnauthorizedFiles: s.UnauthorizedFiles,
		MissingFiles:      s.MissingFiles,
		Results:           results,
		Error:             ptrToStr(s.Error),
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
		Findings:          findings,
	}
}

func UnauthorizedFileDomain2Storage(d integrityDomain.UnauthorizedFile) *types.UnauthorizedFile {
	return &types.UnauthorizedFile{
		ID:             d.ID,
		VerificationID: d.VerificationID,
		FilePath:       d.FilePath,
		RiskLevel:      string(d.RiskLevel),
		Category:       string(d.Category),
		Reason:         d.Reason,
		DetectedAt:     d.DetectedAt,
	}
}

func UnauthorizedFileStorage2Domain(s types.UnauthorizedFile) *integrityDomain.UnauthorizedFile {
	return &integrityDomain.UnauthorizedFile{
		ID:             s.ID,
		VerificationID: s.VerificationID,
		FilePath:       s.FilePath,
		RiskLevel:      integrityDomain.RiskLevel(s.RiskLevel),
		Category:       integrityDomain.FindingCategory(s.Category),
		Reason:         s.Reason,
		DetectedAt:     s.DetectedAt,
	}
}

func ChecksumDomain2Storage(d integrityDomain.FileChecksum) *types.FileChecksum {
	return &types.FileChecksum{
		ID:         d.ID,
		SiteID:     d.SiteID,
		FilePath:   d.FilePath,
		Checksum:   d.Checksum,
		IsOriginal: d.IsOriginal,
		CreatedAt:  d.CreatedAt,
	}
}

func ChecksumStorage2Domain(s types.FileChecksum) *integrityDomain.FileChecksum {
	return &integrityDomain.FileChecksum{
		ID:         s.ID,
		SiteID:     s.SiteID,
		FilePath:   s.FilePath,
		Checksum:   s.Checksum,
		IsOriginal: s.IsOriginal,
		CreatedAt:  s.CreatedAt,
	}
}
