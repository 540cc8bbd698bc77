package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/personal-website-api/internal/models"
)

// NormalizeListParams coerces raw listing input into a safe query. It never
// fails: every invalid value falls back to its default. Rules are applied in
// order: page floor, page size clamp, tag ids, sort field, sort direction,
// search term.
func NormalizeListParams(p models.ListBlogsParams) models.BlogQuery {
	q := models.BlogQuery{
		Page:     p.Page,
		PageSize: p.PageSize,
	}

	switch {
	case q.Page < 1:
		q.Page = 1
	case q.Page > models.MaxPage:
		q.Page = models.MaxPage
	}

	switch {
	case q.PageSize < 1:
		q.PageSize = 1
	case q.PageSize > models.MaxPageSize:
		q.PageSize = models.MaxPageSize
	}

	q.TagIDs = parseTagIDs(p.Tags)

	q.SortBy = models.SortField(p.SortBy)
	switch q.SortBy {
	case models.SortByPublicationDate, models.SortByTitle, models.SortByUpdateDate, models.SortByReadingTime:
	default:
		q.SortBy = models.SortByPublicationDate
	}

	q.SortDir = models.SortDirection(strings.ToLower(p.SortDir))
	if q.SortDir != models.SortAsc && q.SortDir != models.SortDesc {
		q.SortDir = models.SortDesc
	}

	// Postgres rejects invalid UTF-8 and NUL in text parameters
	term := strings.ToValidUTF8(p.SearchTerm, "")
	term = strings.ReplaceAll(term, "\x00", "")
	if term = strings.TrimSpace(term); utf8.RuneCountInString(term) >= models.MinSearchLength {
		q.SearchTerm = term
	}

	return q
}

// parseTagIDs splits a comma-separated id list. One unparseable id discards
// the whole filter.
func parseTagIDs(raw string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil
		}
		if s := id.String(); !seen[s] {
			seen[s] = true
			ids = append(ids, s)
		}
	}
	return ids
}

// TotalPages never reports zero pages, an empty result is page 1 of 1
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
