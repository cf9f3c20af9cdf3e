package http

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	serverDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
	siteDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/domain"
)

type ServiceGetter[T any] func(context.Context) T

// SortField is one requested ordering, parsed from
// sort[<index>][field]/sort[<index>][order] query parameters.
type SortField struct {
	Field string
	Order string
}

// extractSorts parses the sort parameters; with none present the default is
// newest first.
func extractSorts(queries map[string]string) []SortField {
	var sorts []SortField
	hasSortParams := false

	for key, value := range queries {
		if !strings.HasPrefix(key, "sort[") || !strings.Contains(key, "][") {
			continue
		}

		hasSortParams = true

		indexEnd := strings.Index(key, "][")
		if indexEnd <= 5 {
			continue
		}

		indexStr := key[5:indexEnd]
		fieldType := key[indexEnd+2 : len(key)-1]

		index, err := strconv.Atoi(indexStr)
		if err != nil || index < 0 {
			continue
		}

		for len(sorts) <= index {
			sorts = append(sorts, SortField{Field: "created_at", Order: "desc"})
		}

		if fieldType == "field" {
			sorts[index].Field = value
		} else if fieldType == "order" && (value == "asc" || value == "desc") {
			sorts[index].Order = value
		}
	}

	if !hasSortParams {
		sorts = append(sorts, SortField{Field: "created_at", Order: "desc"})
	}
	return sorts
}

// extractJobFilters parses filter[...] query parameters for job listing.
func extractJobFilters(queries map[string]string) jobDomain.JobFilters {
	filter := jobDomain.JobFilters{}

	for key, value := range queries {
		name, ok := filterField(key)
		if !ok {
			continue
		}

		switch name {
		case "status":
			filter.Status = value
		case "module":
			filter.Module = value
		case "site_id":
			filter.SiteID = value
		case "server_id":
			if id, err := strconv.ParseInt(value, 10, 64); err == nil {
				filter.ServerID = &id
			}
		}
	}
	return filter
}

// extractServerFilters parses filter[...] query parameters for server
// listing.
func extractServerFilters(queries map[string]string) serverDomain.ServerFilter {
	filter := serverDomain.ServerFilter{}

	for key, value := range queries {
		name, ok := filterField(key)
		if !ok {
			continue
		}

		switch name {
		case "name":
			filter.Name = value
		case "host":
			filter.Host = value
		case "active":
			if active, err := strconv.ParseBool(value); err == nil {
				filter.Active = &active
			}
		}
	}
	return filter
}

// extractSiteFilters parses the site listing filters; server_id also comes
// in as a plain query parameter for convenience.
func extractSiteFilters(c *fiber.Ctx) siteDomain.SiteFilter {
	filter := siteDomain.SiteFilter{}

	if serverID := c.Query("server_id"); serverID != "" {
		if id, err := strconv.ParseInt(serverID, 10, 64); err == nil {
			filter.ServerID = &id
		}
	}

	for key, value := range c.Queries() {
		name, ok := filterField(key)
		if !ok {
			continue
		}

		switch name {
		case "server_id":
			if id, err := strconv.ParseInt(value, 10, 64); err == nil {
				filter.ServerID = &id
			}
		case "domain":
			filter.Domain = value
		}
	}
	return filter
}

func filterField(key string) (string, bool) {
	if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") || len(key) <= 8 {
		return "", false
	}
	return key[7 : len(key)-1], true
}

// pagination reads page/limit with the listing defaults.
func pagination(c *fiber.Ctx) (page, limit int) {
	limit = c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}
	page = c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	return page, limit
}

func jobSorts(fields []SortField) []jobDomain.SortOption {
	sorts := make([]jobDomain.SortOption, 0, len(fields))
	for _, f := range fields {
		sorts = append(sorts, jobDomain.SortOption{Field: f.Field, Order: f.Order})
	}
	return sorts
}

func serverSorts(fields []SortField) []serverDomain.SortOption {
	sorts := make([]serverDomain.SortOption, 0, len(fields))
	for _, f := range fields {
		sorts = append(sorts, serverDomain.SortOption{Field: f.Field, Order: f.Order})
	}
	return sorts
}
