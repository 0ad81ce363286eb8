package service

import (
	"strings"

	"github.com/mei-dev/tutor-center-api/internal/models"
)

// Cache keys for enriched course views. Every write that can change a course
// label or roster invalidates the whole namespace.
const (
	courseCachePattern   = "courses:*"
	courseCacheKeyPrefix = "courses:detail:"
)

func pageOf(filter models.ListFilter, total int) *models.Pagination {
	filter = filter.Normalize()
	return &models.Pagination{Skip: filter.Skip, Limit: filter.Limit, TotalCount: total}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
