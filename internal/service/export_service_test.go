package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-website-api/internal/models"
)

func TestStreamBlogs_NDJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	_, err := src.svc.Seed.ImportBlogsNDJSON(ctx, openFixture(t, "blogs.ndjson"))
	require.NoError(t, err)

	var buf bytes.Buffer
	count, err := src.svc.Export.StreamBlogs(ctx, &buf, "ndjson", "")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 5, strings.Count(buf.String(), "\n"))

	dst := newFixture(t)
	report, err := dst.svc.Seed.ImportBlogsNDJSON(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, report.SuccessfulCount)
	assert.Empty(t, report.Errors)

	blog, err := dst.svc.Blog.GetBySlug(ctx, "getting-started-with-fastapi")
	require.NoError(t, err)
	require.NotNil(t, blog)
	assert.Len(t, blog.Tags, 3)
	require.Len(t, blog.Related, 1)
	assert.Equal(t, "previous", blog.Related[0].RelationshipType)
	assert.Len(t, dst.tags.Tags, 5)
}

func TestStreamBlogs_JSONWithStatusFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Seed.ImportBlogsNDJSON(ctx, openFixture(t, "blogs.ndjson"))
	require.NoError(t, err)

	var buf bytes.Buffer
	count, err := f.svc.Export.StreamBlogs(ctx, &buf, "json", models.BlogStatusDraft)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var records []models.BlogNDJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "notes-on-go-generics", records[0].Slug)
	assert.Empty(t, records[0].PublicationDate)
}

func TestStreamBlogs_EmptyJSONArray(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	count, err := f.svc.Export.StreamBlogs(context.Background(), &buf, "json", "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.JSONEq(t, `[]`, buf.String())
}

func TestStreamBlogs_UnsupportedFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Export.StreamBlogs(context.Background(), &bytes.Buffer{}, "xml", "")
	assert.Error(t, err)
}

func TestGetCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, testUserID, "admin@example.com", "password123", true)
	_, err := f.svc.Seed.ImportBlogsNDJSON(ctx, openFixture(t, "blogs.ndjson"))
	require.NoError(t, err)

	for resource, want := range map[string]int{"users": 1, "blogs": 5, "tags": 5} {
		got, err := f.svc.Export.GetCount(ctx, resource)
		require.NoError(t, err)
		assert.Equal(t, want, got, resource)
	}

	_, err = f.svc.Export.GetCount(ctx, "comments")
	assert.Error(t, err)
}
