package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/personal-website-api/internal/models"
)

func fieldsOf(errs []ValidationError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name       string
		user       *models.UserCSV
		wantFields []string
	}{
		{
			name: "valid user",
			user: &models.UserCSV{Email: "admin@example.com", Password: "password123", IsActive: "true"},
		},
		{
			name: "valid user with id and no active flag",
			user: &models.UserCSV{ID: "550e8400-e29b-41d4-a716-446655440000", Email: "a@b.io", Password: "password123"},
		},
		{
			name:       "invalid id",
			user:       &models.UserCSV{ID: "42", Email: "a@b.io", Password: "password123"},
			wantFields: []string{"id"},
		},
		{
			name:       "missing email",
			user:       &models.UserCSV{Password: "password123"},
			wantFields: []string{"email"},
		},
		{
			name:       "invalid email",
			user:       &models.UserCSV{Email: "not-an-email", Password: "password123"},
			wantFields: []string{"email"},
		},
		{
			name:       "missing password",
			user:       &models.UserCSV{Email: "a@b.io"},
			wantFields: []string{"password"},
		},
		{
			name:       "short password",
			user:       &models.UserCSV{Email: "a@b.io", Password: "short"},
			wantFields: []string{"password"},
		},
		{
			name:       "password longer than bcrypt accepts",
			user:       &models.UserCSV{Email: "a@b.io", Password: strings.Repeat("x", 73)},
			wantFields: []string{"password"},
		},
		{
			name:       "invalid active flag",
			user:       &models.UserCSV{Email: "a@b.io", Password: "password123", IsActive: "yes"},
			wantFields: []string{"is_active"},
		},
		{
			name:       "everything wrong",
			user:       &models.UserCSV{ID: "x", Email: "x", IsActive: "1"},
			wantFields: []string{"id", "email", "password", "is_active"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewValidator().ValidateUser(tt.user)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantFields, fieldsOf(errs))
		})
	}
}

func TestValidateUser_PasswordNeverEchoed(t *testing.T) {
	errs := NewValidator().ValidateUser(&models.UserCSV{Email: "a@b.io", Password: "short"})
	for _, e := range errs {
		assert.Nil(t, e.Value)
	}
}

func TestValidateUser_DuplicateEmail(t *testing.T) {
	v := NewValidator()
	v.AddUserEmail("admin@example.com")

	errs := v.ValidateUser(&models.UserCSV{Email: "admin@example.com", Password: "password123"})
	assert.Equal(t, []string{"email"}, fieldsOf(errs))
	assert.Equal(t, "duplicate email", errs[0].Message)

	// emails are case-sensitive as stored
	assert.Empty(t, v.ValidateUser(&models.UserCSV{Email: "Admin@example.com", Password: "password123"}))
}

func intp(i int) *int { return &i }

func TestValidateBlog(t *testing.T) {
	valid := func() *models.BlogNDJSON {
		return &models.BlogNDJSON{
			Title:           "Hello",
			Slug:            "hello",
			Content:         "Body",
			Status:          "published",
			PublicationDate: "2024-01-01T00:00:00Z",
			ReadingTime:     intp(3),
			Tags:            []models.TagNDJSON{{Name: "Go", ColorCode: "#00ADD8"}},
			Related:         []models.RelatedNDJSON{{Slug: "other", RelationshipType: "series"}},
		}
	}

	tests := []struct {
		name       string
		mutate     func(b *models.BlogNDJSON)
		wantFields []string
	}{
		{name: "valid blog", mutate: func(b *models.BlogNDJSON) {}},
		{name: "draft without date", mutate: func(b *models.BlogNDJSON) { b.Status = "draft"; b.PublicationDate = "" }},
		{name: "archived with date", mutate: func(b *models.BlogNDJSON) { b.Status = "archived" }},
		{name: "invalid id", mutate: func(b *models.BlogNDJSON) { b.ID = "nope" }, wantFields: []string{"id"}},
		{name: "missing title", mutate: func(b *models.BlogNDJSON) { b.Title = "  " }, wantFields: []string{"title"}},
		{name: "long title", mutate: func(b *models.BlogNDJSON) { b.Title = strings.Repeat("t", 256) }, wantFields: []string{"title"}},
		{name: "missing slug", mutate: func(b *models.BlogNDJSON) { b.Slug = "" }, wantFields: []string{"slug"}},
		{name: "bad slug", mutate: func(b *models.BlogNDJSON) { b.Slug = "Hello World" }, wantFields: []string{"slug"}},
		{name: "missing content", mutate: func(b *models.BlogNDJSON) { b.Content = "" }, wantFields: []string{"content"}},
		{name: "bad status", mutate: func(b *models.BlogNDJSON) { b.Status = "deleted" }, wantFields: []string{"status"}},
		{name: "draft with date", mutate: func(b *models.BlogNDJSON) { b.Status = "draft" }, wantFields: []string{"publication_date"}},
		{name: "implicit draft with date", mutate: func(b *models.BlogNDJSON) { b.Status = "" }, wantFields: []string{"publication_date"}},
		{name: "bad date", mutate: func(b *models.BlogNDJSON) { b.PublicationDate = "yesterday" }, wantFields: []string{"publication_date"}},
		{name: "negative reading time", mutate: func(b *models.BlogNDJSON) { b.ReadingTime = intp(-1) }, wantFields: []string{"reading_time"}},
		{name: "long seo description", mutate: func(b *models.BlogNDJSON) { b.SEODescription = strings.Repeat("s", 256) }, wantFields: []string{"seo_description"}},
		{name: "empty tag name", mutate: func(b *models.BlogNDJSON) { b.Tags[0].Name = " " }, wantFields: []string{"tags[0].name"}},
		{name: "bad tag color", mutate: func(b *models.BlogNDJSON) { b.Tags[0].ColorCode = "blue" }, wantFields: []string{"tags[0].color_code"}},
		{name: "self relation", mutate: func(b *models.BlogNDJSON) { b.Related[0].Slug = "hello" }, wantFields: []string{"related[0].slug"}},
		{name: "empty related slug", mutate: func(b *models.BlogNDJSON) { b.Related[0].Slug = "" }, wantFields: []string{"related[0].slug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blog := valid()
			tt.mutate(blog)
			errs := NewValidator().ValidateBlog(blog)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantFields, fieldsOf(errs))
		})
	}
}

func TestValidateBlog_DuplicateSlug(t *testing.T) {
	v := NewValidator()
	v.AddBlogSlug("hello")
	assert.True(t, v.KnownSlug("hello"))

	errs := v.ValidateBlog(&models.BlogNDJSON{Title: "Hello", Slug: "hello", Content: "Body"})
	assert.Equal(t, []string{"slug"}, fieldsOf(errs))
	assert.Equal(t, "duplicate slug", errs[0].Message)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My First Blog Post":            "my-first-blog-post",
		"  Why I Switched to Python!  ": "why-i-switched-to-python",
		"Café Crème Brûlée":             "cafe-creme-brulee",
		"Go & Rust -- a comparison":     "go-rust-a-comparison",
		"100% Test_Coverage":            "100-testcoverage",
		"!!!":                           "",
		"Tabs\tand\nnewlines":           "tabs-and-newlines",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got := Slugify(in)
			assert.Equal(t, want, got)
			if got != "" {
				assert.True(t, IsValidSlug(got))
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 100))
	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, IsValidSlug(got))
}
