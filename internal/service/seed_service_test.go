package service_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/service"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("../../testdata/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func errorLines(errs []models.ValidationError) map[int]bool {
	lines := make(map[int]bool)
	for _, e := range errs {
		lines[e.Line] = true
	}
	return lines
}

func TestImportUsersCSV(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.Seed.ImportUsersCSV(context.Background(), openFixture(t, "users.csv"))
	require.NoError(t, err)

	assert.Equal(t, 7, report.TotalRecords)
	assert.Equal(t, 3, report.SuccessfulCount)
	assert.Equal(t, 4, report.FailedCount)
	assert.Equal(t, map[int]bool{5: true, 6: true, 7: true, 8: true}, errorLines(report.Errors))

	// Batch size is 2 in tests
	assert.Equal(t, 2, f.users.BatchInsertCalls)

	admin := f.users.EmailToUser["admin@example.com"]
	require.NotNil(t, admin)
	assert.True(t, admin.IsActive)
	assert.NotEqual(t, "password123", admin.PasswordHash)
	assert.True(t, f.hasher.Verify("password123", admin.PasswordHash))

	retired := f.users.EmailToUser["retired@example.com"]
	require.NotNil(t, retired)
	assert.False(t, retired.IsActive)

	for _, e := range report.Errors {
		assert.NotEqual(t, "short", e.Value, "passwords must not be echoed in errors")
	}
}

func TestImportUsersCSV_ExistingEmailIsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, testUserID, "editor@example.com", "password123", true)

	report, err := f.svc.Seed.ImportUsersCSV(context.Background(), openFixture(t, "users.csv"))
	require.NoError(t, err)

	assert.Equal(t, 2, report.SuccessfulCount)
	assert.Equal(t, 5, report.FailedCount)
}

func TestImportUsersCSV_MissingColumn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Seed.ImportUsersCSV(context.Background(), strings.NewReader("email,is_active\na@example.com,true\n"))
	assert.Error(t, err)
}

func TestImportUsersCSV_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Seed.ImportUsersCSV(ctx, openFixture(t, "users.csv"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.users.BatchInsertCalls)
}

func TestImportBlogsNDJSON_Demo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.Seed.ImportBlogsNDJSON(ctx, openFixture(t, "blogs.ndjson"))
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalRecords)
	assert.Equal(t, 5, report.SuccessfulCount)
	assert.Equal(t, 0, report.FailedCount)
	assert.Empty(t, report.Errors)

	// Technology and Python are reused, not recreated
	assert.Len(t, f.tags.Tags, 5)
	assert.Equal(t, 5, f.tags.UpsertCalls)

	blog, err := f.svc.Blog.GetBySlug(ctx, "database-design-best-practices")
	require.NoError(t, err)
	require.NotNil(t, blog, "slug is derived from the title")

	blog, err = f.svc.Blog.GetBySlug(ctx, "getting-started-with-fastapi")
	require.NoError(t, err)
	require.NotNil(t, blog)
	assert.Len(t, blog.Tags, 3)
	require.Len(t, blog.Related, 1)
	assert.Equal(t, "my-first-blog-post", blog.Related[0].Slug)
	assert.Equal(t, "previous", blog.Related[0].RelationshipType)

	blog, err = f.svc.Blog.GetBySlug(ctx, "why-i-switched-to-python")
	require.NoError(t, err)
	require.Len(t, blog.Related, 1)
	assert.Equal(t, models.DefaultRelationshipType, blog.Related[0].RelationshipType)

	blog, err = f.svc.Blog.GetBySlug(ctx, "notes-on-go-generics")
	require.NoError(t, err)
	assert.Nil(t, blog, "drafts are not public")

	page, err := f.svc.Blog.ListPublished(ctx, models.ListBlogsParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
}

func TestImportBlogsNDJSON_Invalid(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.Seed.ImportBlogsNDJSON(context.Background(), openFixture(t, "blogs_invalid.ndjson"))
	require.NoError(t, err)

	assert.Equal(t, 10, report.TotalRecords)
	assert.Equal(t, 1, report.SuccessfulCount)
	assert.Equal(t, 9, report.FailedCount)

	var jsonErr *models.ValidationError
	for i := range report.Errors {
		if report.Errors[i].Field == "json" {
			jsonErr = &report.Errors[i]
		}
	}
	require.NotNil(t, jsonErr)
	assert.Equal(t, 9, jsonErr.Line)
	assert.False(t, errorLines(report.Errors)[1])
}

func TestImportBlogsNDJSON_PublishedWithoutDate(t *testing.T) {
	f := newFixture(t)
	input := `{"title":"No Date","content":"Body","status":"published"}` + "\n"

	report, err := f.svc.Seed.ImportBlogsNDJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, report.SuccessfulCount)

	blog, err := f.svc.Blog.GetBySlug(context.Background(), "no-date")
	require.NoError(t, err)
	require.NotNil(t, blog)
	assert.NotNil(t, blog.PublicationDate)
}

func TestImportBlogsNDJSON_UnknownRelatedSlug(t *testing.T) {
	f := newFixture(t)
	input := `{"title":"Lonely","content":"Body","status":"published","related":[{"slug":"missing-post"}]}` + "\n"

	report, err := f.svc.Seed.ImportBlogsNDJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessfulCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "related", report.Errors[0].Field)
	assert.Equal(t, "missing-post", report.Errors[0].Value)
}

func TestImportBlogsNDJSON_RelatedToExistingBlog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.blogs.Add(&models.Blog{ID: "b1", Title: "Older", Slug: "older", Status: models.BlogStatusPublished})

	input := `{"title":"Newer","content":"Body","status":"published","related":[{"slug":"older","relationship_type":"previous"}]}` + "\n"
	report, err := f.svc.Seed.ImportBlogsNDJSON(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, report.Errors)

	blog, err := f.svc.Blog.GetBySlug(ctx, "newer")
	require.NoError(t, err)
	require.Len(t, blog.Related, 1)
	assert.Equal(t, "older", blog.Related[0].Slug)
}

func TestCreateAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Seed.CreateAdmin(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := f.svc.Seed.CreateAdmin(ctx, "admin@example.com", "a-new-password")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, f.users.Users, 1)
	_, err = f.svc.Auth.PasswordLogin(ctx, "admin@example.com", "a-new-password")
	assert.NoError(t, err)

	_, err = f.svc.Seed.CreateAdmin(ctx, "not-an-email", "password123")
	assert.Error(t, err)

	_, err = f.svc.Seed.CreateAdmin(ctx, "other@example.com", "short")
	assert.Error(t, err)
}

func TestWriteErrorsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := service.WriteErrorsCSV(&buf, []models.ValidationError{
		{Line: 3, Field: "email", Message: "invalid email format", Value: "nope"},
		{Line: 4, Field: "password", Message: "password is required"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"line,field,message,value\n3,email,invalid email format,nope\n4,password,password is required,\n",
		buf.String())
}
