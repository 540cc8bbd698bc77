package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/personal-website-api/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	MaxPasswordBytes = 72

	maxTitleLength   = 255
	maxSlugLength    = 255
	maxURLLength     = 255
	maxSEOLength     = 255
	maxTagNameLength = 50
	maxRelTypeLength = 50
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks seed records and tracks uniqueness across one import
type Validator struct {
	userEmailCache map[string]bool
	blogSlugCache  map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		userEmailCache: make(map[string]bool),
		blogSlugCache:  make(map[string]bool),
	}
}

// AddUserEmail adds an email to the uniqueness cache
func (v *Validator) AddUserEmail(email string) {
	v.userEmailCache[email] = true
}

// AddBlogSlug adds a slug to the uniqueness cache
func (v *Validator) AddBlogSlug(slug string) {
	v.blogSlugCache[slug] = true
}

// KnownSlug reports whether slug was already imported or stored
func (v *Validator) KnownSlug(slug string) bool {
	return v.blogSlugCache[slug]
}

// ValidateUser validates a user record
func (v *Validator) ValidateUser(user *models.UserCSV) []ValidationError {
	var errors []ValidationError

	if user.ID != "" && !isValidUUID(user.ID) {
		errors = append(errors, ValidationError{Field: "id", Message: "invalid UUID format", Value: user.ID})
	}

	// Emails are unique as stored, so the duplicate check is case-sensitive
	if user.Email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(user.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: user.Email})
	} else if v.userEmailCache[user.Email] {
		errors = append(errors, ValidationError{Field: "email", Message: "duplicate email", Value: user.Email})
	}

	// Never echo the password back in the error value
	switch {
	case user.Password == "":
		errors = append(errors, ValidationError{Field: "password", Message: "password is required"})
	case utf8.RuneCountInString(user.Password) < MinPasswordLength:
		errors = append(errors, ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)})
	case len(user.Password) > MaxPasswordBytes:
		errors = append(errors, ValidationError{Field: "password", Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes)})
	}

	if user.IsActive != "" && user.IsActive != "true" && user.IsActive != "false" {
		errors = append(errors, ValidationError{Field: "is_active", Message: "is_active must be 'true' or 'false'", Value: user.IsActive})
	}

	return errors
}

// ValidateBlog validates a blog record. The slug must already be filled
// in, either from the record or derived from the title.
func (v *Validator) ValidateBlog(blog *models.BlogNDJSON) []ValidationError {
	var errors []ValidationError

	if blog.ID != "" && !isValidUUID(blog.ID) {
		errors = append(errors, ValidationError{Field: "id", Message: "invalid UUID format", Value: blog.ID})
	}

	if strings.TrimSpace(blog.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(blog.Title) > maxTitleLength {
		errors = append(errors, ValidationError{Field: "title", Message: fmt.Sprintf("title exceeds %d characters", maxTitleLength)})
	}

	switch {
	case blog.Slug == "":
		errors = append(errors, ValidationError{Field: "slug", Message: "slug is required"})
	case len(blog.Slug) > maxSlugLength:
		errors = append(errors, ValidationError{Field: "slug", Message: fmt.Sprintf("slug exceeds %d characters", maxSlugLength), Value: blog.Slug})
	case !slugRegex.MatchString(blog.Slug):
		errors = append(errors, ValidationError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: blog.Slug})
	case v.blogSlugCache[blog.Slug]:
		errors = append(errors, ValidationError{Field: "slug", Message: "duplicate slug", Value: blog.Slug})
	}

	if strings.TrimSpace(blog.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	if blog.Status != "" && !models.ValidStatuses[models.BlogStatus(blog.Status)] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published, archived",
			Value:   blog.Status,
		})
	}

	if blog.PublicationDate != "" {
		if blog.Status == "" || blog.Status == string(models.BlogStatusDraft) {
			errors = append(errors, ValidationError{Field: "publication_date", Message: "draft blogs must not have publication_date"})
		}
		if _, err := time.Parse(time.RFC3339, blog.PublicationDate); err != nil {
			errors = append(errors, ValidationError{Field: "publication_date", Message: "invalid ISO 8601 date format", Value: blog.PublicationDate})
		}
	}

	if blog.ReadingTime != nil && *blog.ReadingTime < 0 {
		errors = append(errors, ValidationError{Field: "reading_time", Message: "reading_time must not be negative", Value: *blog.ReadingTime})
	}
	if len(blog.FeaturedImage) > maxURLLength {
		errors = append(errors, ValidationError{Field: "featured_image", Message: fmt.Sprintf("featured_image exceeds %d characters", maxURLLength)})
	}
	if utf8.RuneCountInString(blog.SEODescription) > maxSEOLength {
		errors = append(errors, ValidationError{Field: "seo_description", Message: fmt.Sprintf("seo_description exceeds %d characters", maxSEOLength)})
	}

	for i, tag := range blog.Tags {
		field := fmt.Sprintf("tags[%d]", i)
		name := strings.TrimSpace(tag.Name)
		if name == "" {
			errors = append(errors, ValidationError{Field: field + ".name", Message: "tag name is required"})
		} else if utf8.RuneCountInString(name) > maxTagNameLength {
			errors = append(errors, ValidationError{Field: field + ".name", Message: fmt.Sprintf("tag name exceeds %d characters", maxTagNameLength), Value: tag.Name})
		}
		if tag.ColorCode != "" && !colorRegex.MatchString(tag.ColorCode) {
			errors = append(errors, ValidationError{Field: field + ".color_code", Message: "color_code must look like #RRGGBB", Value: tag.ColorCode})
		}
	}

	for i, rel := range blog.Related {
		field := fmt.Sprintf("related[%d]", i)
		switch {
		case rel.Slug == "":
			errors = append(errors, ValidationError{Field: field + ".slug", Message: "related slug is required"})
		case rel.Slug == blog.Slug:
			errors = append(errors, ValidationError{Field: field + ".slug", Message: "a blog cannot be related to itself", Value: rel.Slug})
		}
		if len(rel.RelationshipType) > maxRelTypeLength {
			errors = append(errors, ValidationError{Field: field + ".relationship_type", Message: fmt.Sprintf("relationship_type exceeds %d characters", maxRelTypeLength)})
		}
	}

	return errors
}

// isValidUUID checks if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
