package mapper

import (
	"encoding/json"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage/types"
)

// JobDomain2Storage maps a domain job to its storage row.
func JobDomain2Storage(d jobDomain.Job) *types.Job {
	return &types.Job{
		ID:         d.ID,
		ServerID:   d.ServerID,
		SiteID:     d.SiteID,
		Module:     d.Module,
		Action:     d.Action,
		Params:     rawToStrPtr(d.Params),
		Status:     string(d.Status),
		Progress:   d.Progress,
		Total:      d.Total,
		Log:        strToPtr(d.Log),
		Result:     rawToStrPtr(d.Result),
		Error:      strToPtr(d.Error),
		CreatedAt:  d.CreatedAt,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
	}
}

// JobStorage2Domain maps a storage row back to the domain job.
func JobStorage2Domain(s types.Job) *jobDomain.Job {
	return &jobDomain.Job{
		ID:         s.ID,
		ServerID:   s.ServerID,
		SiteID:     s.SiteID,
		Module:     s.Module,
		Action:     s.Action,
		Params:     strPtrToRaw(s.Params),
		Status:     jobDomain.JobStatus(s.Status),
		Progress:   s.Progress,
		Total:      s.Total,
		Log:        ptrToStr(s.Log),
		Result:     strPtrToRaw(s.Result),
		Error:      ptrToStr(s.Error),
		CreatedAt:  s.CreatedAt,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

func rawToStrPtr(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func strPtrToRaw(s *string) json.RawMessage {
	if s == nil || *s == "" {
		return nil
	}
	return json.RawMessage(*s)
}

func strToPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrToStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
