package repository

import (
	"context"
	"time"

	"github.com/personal-website-api/internal/database"
	"github.com/personal-website-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Upsert(ctx context.Context, user *models.User) error
	BatchInsert(ctx context.Context, users []*models.User) (int, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetAllEmails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	ListPublished(ctx context.Context, q models.BlogQuery) ([]*models.Blog, int, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error)
	TagsForBlogs(ctx context.Context, blogIDs []string) (map[string][]models.Tag, error)
	RelatedPublished(ctx context.Context, blogID string) ([]models.RelatedBlog, error)
	BatchInsert(ctx context.Context, blogs []*models.Blog) (int, error)
	AddRelated(ctx context.Context, sourceID, relatedID, relationshipType string) error
	GetIDsBySlugs(ctx context.Context, slugs []string) (map[string]string, error)
	GetAllSlugs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, status models.BlogStatus, callback func(*models.Blog) error) error
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	UpsertByName(ctx context.Context, tag *models.Tag) error
	List(ctx context.Context) ([]models.Tag, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User UserRepository
	Blog BlogRepository
	Tag  TagRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User: NewUserRepo(db),
		Blog: NewBlogRepo(db),
		Tag:  NewTagRepo(db),
	}
}
