package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
)

// blogService is the concrete implementation of BlogService
type blogService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newBlogService creates a new BlogService
func newBlogService(repos *repository.Repositories, log zerolog.Logger) *blogService {
	return &blogService{
		repos: repos,
		log:   log.With().Str("service", "blog").Logger(),
	}
}

// ListPublished normalizes the parameters, fetches one page and then
// batch-loads the tags of that page
func (s *blogService) ListPublished(ctx context.Context, params models.ListBlogsParams) (*models.BlogPage, error) {
	q := NormalizeListParams(params)

	blogs, total, err := s.repos.Blog.ListPublished(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list published blogs: %w", err)
	}

	if err := s.attachTags(ctx, blogs); err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("page", q.Page).
		Int("page_size", q.PageSize).
		Int("tag_filter", len(q.TagIDs)).
		Bool("search", q.SearchTerm != "").
		Int("total", total).
		Msg("Listed blogs")

	return &models.BlogPage{
		Items:      blogs,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: TotalPages(total, q.PageSize),
	}, nil
}

func (s *blogService) attachTags(ctx context.Context, blogs []*models.Blog) error {
	if len(blogs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(blogs))
	for _, b := range blogs {
		ids = append(ids, b.ID)
	}
	tags, err := s.repos.Blog.TagsForBlogs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load tags for blogs: %w", err)
	}
	for _, b := range blogs {
		b.Tags = tags[b.ID]
		if b.Tags == nil {
			b.Tags = []models.Tag{}
		}
	}
	return nil
}

// GetBySlug returns a published blog with tags and related blogs, or nil
func (s *blogService) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}

	blog, err := s.repos.Blog.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get blog by slug: %w", err)
	}
	if blog == nil {
		return nil, nil
	}

	if err := s.attachTags(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}

	related, err := s.repos.Blog.RelatedPublished(ctx, blog.ID)
	if err != nil {
		return nil, fmt.Errorf("load related blogs: %w", err)
	}
	blog.Related = related

	return blog, nil
}

// ListTags returns every tag
func (s *blogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repos.Tag.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
