package repository_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-website-api/internal/database"
	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
)

// openTestDB connects to TEST_DATABASE_URL, migrates and empties the schema.
// Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *repository.Repositories {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.Wrap(sqlDB, zerolog.Nop())

	_, currentFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	migrations := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	require.NoError(t, db.RunMigrations(migrations))

	_, err = sqlDB.Exec(`TRUNCATE related_blogs, blog_tags, tags, blogs, users`)
	require.NoError(t, err)

	return repository.New(db)
}

type fixture struct {
	tagA, tagB, tagC models.Tag
	bothTagged       *models.Blog
}

func seedBlogs(t *testing.T, repos *repository.Repositories) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	for _, tag := range []*models.Tag{&f.tagA, &f.tagB, &f.tagC} {
		tag.ID = uuid.NewString()
	}
	f.tagA.Name, f.tagB.Name, f.tagC.Name = "Go", "Python", "Unused"
	for _, tag := range []*models.Tag{&f.tagA, &f.tagB, &f.tagC} {
		require.NoError(t, repos.Tag.UpsertByName(ctx, tag))
	}

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(slug, title, content string, status models.BlogStatus, offset int, tags ...models.Tag) *models.Blog {
		pub := day.AddDate(0, 0, offset)
		rt := offset
		return &models.Blog{
			ID: uuid.NewString(), Title: title, Slug: slug, Content: content,
			Status: status, PublicationDate: &pub, ReadingTime: &rt, Tags: tags,
		}
	}

	f.bothTagged = mk("both", "Go and Python", "polyglot", models.BlogStatusPublished, 3, f.tagA, f.tagB)
	blogs := []*models.Blog{
		mk("only-go", "Concurrency", "goroutines everywhere", models.BlogStatusPublished, 1, f.tagA),
		mk("only-python", "Typing", "mypy notes", models.BlogStatusPublished, 2, f.tagB),
		f.bothTagged,
		mk("untagged", "Misc", "100% literal", models.BlogStatusPublished, 4),
		mk("draft-go", "Draft Go", "goroutines draft", models.BlogStatusDraft, 5, f.tagA),
		mk("archived-go", "Archived Go", "goroutines archived", models.BlogStatusArchived, 6, f.tagA),
	}
	n, err := repos.Blog.BatchInsert(ctx, blogs)
	require.NoError(t, err)
	require.Equal(t, len(blogs), n)
	return f
}

func defaultQuery() models.BlogQuery {
	return models.BlogQuery{Page: 1, PageSize: 10, SortBy: models.SortByPublicationDate, SortDir: models.SortDesc}
}

func slugsOf(blogs []*models.Blog) []string {
	out := make([]string, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, b.Slug)
	}
	return out
}

func TestBlogRepo_ListPublishedOnly(t *testing.T) {
	repos := openTestDB(t)
	seedBlogs(t, repos)

	blogs, total, err := repos.Blog.ListPublished(context.Background(), defaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"untagged", "both", "only-python", "only-go"}, slugsOf(blogs))
}

func TestBlogRepo_TagUnionWithoutDuplicates(t *testing.T) {
	repos := openTestDB(t)
	f := seedBlogs(t, repos)

	q := defaultQuery()
	q.TagIDs = []string{f.tagA.ID, f.tagB.ID}
	blogs, total, err := repos.Blog.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.ElementsMatch(t, []string{"only-go", "only-python", "both"}, slugsOf(blogs))

	q.TagIDs = []string{f.tagC.ID}
	blogs, total, err = repos.Blog.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, blogs)
}

func TestBlogRepo_SearchIsCaseInsensitiveAndLiteral(t *testing.T) {
	repos := openTestDB(t)
	seedBlogs(t, repos)

	q := defaultQuery()
	q.SearchTerm = "GOROUTINES"
	blogs, total, err := repos.Blog.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"only-go"}, slugsOf(blogs))

	q.SearchTerm = "0%"
	blogs, _, err = repos.Blog.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"untagged"}, slugsOf(blogs))
}

func TestBlogRepo_PaginationAndSort(t *testing.T) {
	repos := openTestDB(t)
	seedBlogs(t, repos)

	q := defaultQuery()
	q.PageSize = 3
	q.Page = 2
	q.SortBy = models.SortByReadingTime
	q.SortDir = models.SortAsc
	blogs, total, err := repos.Blog.ListPublished(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"untagged"}, slugsOf(blogs))
}

func TestBlogRepo_TagsForBlogs(t *testing.T) {
	repos := openTestDB(t)
	f := seedBlogs(t, repos)

	tags, err := repos.Blog.TagsForBlogs(context.Background(), []string{f.bothTagged.ID})
	require.NoError(t, err)
	require.Len(t, tags[f.bothTagged.ID], 2)
	assert.Equal(t, "Go", tags[f.bothTagged.ID][0].Name)
	assert.Equal(t, "Python", tags[f.bothTagged.ID][1].Name)
}

func TestBlogRepo_GetPublishedBySlug(t *testing.T) {
	repos := openTestDB(t)
	seedBlogs(t, repos)
	ctx := context.Background()

	blog, err := repos.Blog.GetPublishedBySlug(ctx, "only-go")
	require.NoError(t, err)
	require.NotNil(t, blog)
	assert.Equal(t, "goroutines everywhere", blog.Content)

	blog, err = repos.Blog.GetPublishedBySlug(ctx, "draft-go")
	require.NoError(t, err)
	assert.Nil(t, blog)
}

func TestBlogRepo_RelatedRejectsSelf(t *testing.T) {
	repos := openTestDB(t)
	seedBlogs(t, repos)
	ctx := context.Background()

	ids, err := repos.Blog.GetIDsBySlugs(ctx, []string{"only-go", "both", "draft-go", "missing"})
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	assert.ErrorIs(t, repos.Blog.AddRelated(ctx, ids["only-go"], ids["only-go"], "related"), repository.ErrSelfRelation)
	require.NoError(t, repos.Blog.AddRelated(ctx, ids["only-go"], ids["both"], "series"))
	require.NoError(t, repos.Blog.AddRelated(ctx, ids["only-go"], ids["draft-go"], "related"))

	related, err := repos.Blog.RelatedPublished(ctx, ids["only-go"])
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "both", related[0].Slug)
	assert.Equal(t, "series", related[0].RelationshipType)
}

func TestUserRepo_LoginLifecycle(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	user := &models.User{
		ID: uuid.NewString(), Email: "admin@example.com", PasswordHash: "digest",
		IsActive: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repos.User.Upsert(ctx, user))

	stored, err := repos.User.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.LastLogin)

	// lookups are exact
	missing, err := repos.User.GetByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repos.User.UpdateLastLogin(ctx, stored.ID, at))

	stored, err = repos.User.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, at.Equal(*stored.LastLogin))
}
