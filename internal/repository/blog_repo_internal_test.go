package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-website-api/internal/models"
)

func baseQuery() models.BlogQuery {
	return models.BlogQuery{
		Page:     1,
		PageSize: 10,
		SortBy:   models.SortByPublicationDate,
		SortDir:  models.SortDesc,
	}
}

func TestBuildListQuery_NoFilters(t *testing.T) {
	q := buildListQuery(baseQuery())

	assert.True(t, strings.HasPrefix(q.list, "SELECT b.id"), q.list)
	assert.NotContains(t, q.list, "DISTINCT")
	assert.NotContains(t, q.list, "blog_tags")
	assert.Contains(t, q.list, "WHERE b.status = $1")
	assert.Contains(t, q.list, "ORDER BY b.publication_date DESC LIMIT $2 OFFSET $3")
	assert.Equal(t, []interface{}{"published", 10, 0}, q.listArgs)

	assert.Equal(t, "SELECT COUNT(*) FROM blogs b WHERE b.status = $1", q.count)
	assert.Equal(t, []interface{}{"published"}, q.countArgs)
}

func TestBuildListQuery_TagFilterUsesDistinct(t *testing.T) {
	in := baseQuery()
	in.TagIDs = []string{
		"550e8400-e29b-41d4-a716-446655440000",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	}
	q := buildListQuery(in)

	assert.True(t, strings.HasPrefix(q.list, "SELECT DISTINCT b.id"), q.list)
	assert.Contains(t, q.list, "JOIN blog_tags bt ON bt.blog_id = b.id AND bt.tag_id = ANY($2::uuid[])")
	assert.Contains(t, q.list, "LIMIT $3 OFFSET $4")
	assert.Contains(t, q.count, "COUNT(DISTINCT b.id)")
	assert.Len(t, q.countArgs, 2)
	assert.Len(t, q.listArgs, 4)
}

func TestBuildListQuery_Search(t *testing.T) {
	in := baseQuery()
	in.SearchTerm = "go_lang 100%"
	q := buildListQuery(in)

	assert.Contains(t, q.list, "(b.title ILIKE $2 OR b.content ILIKE $2 OR b.excerpt ILIKE $2)")
	assert.Equal(t, `%go\_lang 100\%%`, q.countArgs[1])
	assert.Equal(t, "SELECT COUNT(*) FROM blogs b WHERE b.status = $1 AND (b.title ILIKE $2 OR b.content ILIKE $2 OR b.excerpt ILIKE $2)", q.count)
}

func TestBuildListQuery_TagsAndSearch(t *testing.T) {
	in := baseQuery()
	in.TagIDs = []string{"550e8400-e29b-41d4-a716-446655440000"}
	in.SearchTerm = "go"
	in.Page = 3
	in.PageSize = 20
	q := buildListQuery(in)

	assert.Contains(t, q.list, "ANY($2::uuid[])")
	assert.Contains(t, q.list, "ILIKE $3")
	assert.Contains(t, q.list, "LIMIT $4 OFFSET $5")
	require.Len(t, q.listArgs, 5)
	assert.Equal(t, 20, q.listArgs[3])
	assert.Equal(t, 40, q.listArgs[4])
	// count args must not see the pagination values
	assert.Len(t, q.countArgs, 3)
}

func TestBuildListQuery_SortMapping(t *testing.T) {
	tests := []struct {
		sortBy models.SortField
		dir    models.SortDirection
		want   string
	}{
		{models.SortByPublicationDate, models.SortDesc, "ORDER BY b.publication_date DESC"},
		{models.SortByTitle, models.SortAsc, "ORDER BY b.title ASC"},
		{models.SortByUpdateDate, models.SortDesc, "ORDER BY b.updated_at DESC"},
		{models.SortByReadingTime, models.SortAsc, "ORDER BY b.reading_time ASC"},
		{models.SortField("id; DROP TABLE blogs"), models.SortDirection("sideways"), "ORDER BY b.publication_date DESC"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sortBy), func(t *testing.T) {
			in := baseQuery()
			in.SortBy = tt.sortBy
			in.SortDir = tt.dir
			q := buildListQuery(in)
			assert.Contains(t, q.list, tt.want)
			assert.NotContains(t, q.list, "DROP")
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `plain`, escapeLike("plain"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}
