package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamBlogs writes blogs in the import record shape so the output can be
// fed back to ImportBlogsNDJSON. An empty status exports every blog.
func (s *exportService) StreamBlogs(ctx context.Context, w io.Writer, format string, status models.BlogStatus) (int, error) {
	s.log.Info().Str("format", format).Str("status", string(status)).Msg("Starting blogs export")

	var (
		count int
		err   error
	)
	switch format {
	case "ndjson":
		count, err = s.streamBlogsNDJSON(ctx, w, status)
	case "json":
		count, err = s.streamBlogsJSON(ctx, w, status)
	default:
		return 0, fmt.Errorf("unsupported format: %s", format)
	}

	s.log.Info().Int("count", count).Msg("Blogs export completed")
	return count, err
}

// GetCount returns the number of stored records of a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "blogs":
		return s.repos.Blog.Count(ctx)
	case "tags":
		return s.repos.Tag.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

func (s *exportService) streamBlogsNDJSON(ctx context.Context, w io.Writer, status models.BlogStatus) (int, error) {
	bw := bufio.NewWriter(w)
	count := 0

	err := s.repos.Blog.StreamAll(ctx, status, func(blog *models.Blog) error {
		data, err := json.Marshal(convertBlogToNDJSON(blog))
		if err != nil {
			return err
		}
		bw.Write(data)
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 {
			return bw.Flush()
		}
		return nil
	})
	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}
	return count, err
}

func (s *exportService) streamBlogsJSON(ctx context.Context, w io.Writer, status models.BlogStatus) (int, error) {
	bw := bufio.NewWriter(w)
	count := 0

	bw.WriteString("[")
	first := true

	err := s.repos.Blog.StreamAll(ctx, status, func(blog *models.Blog) error {
		if !first {
			bw.WriteString(",")
		}
		first = false

		data, err := json.Marshal(convertBlogToNDJSON(blog))
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		count++
		return nil
	})

	bw.WriteString("]\n")
	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}
	return count, err
}

func convertBlogToNDJSON(blog *models.Blog) models.BlogNDJSON {
	rec := models.BlogNDJSON{
		ID:          blog.ID,
		Title:       blog.Title,
		Slug:        blog.Slug,
		Content:     blog.Content,
		Status:      string(blog.Status),
		ReadingTime: blog.ReadingTime,
	}
	if blog.Excerpt != nil {
		rec.Excerpt = *blog.Excerpt
	}
	if blog.PublicationDate != nil {
		rec.PublicationDate = blog.PublicationDate.UTC().Format(time.RFC3339)
	}
	if blog.FeaturedImage != nil {
		rec.FeaturedImage = *blog.FeaturedImage
	}
	if blog.SEODescription != nil {
		rec.SEODescription = *blog.SEODescription
	}
	for _, t := range blog.Tags {
		tag := models.TagNDJSON{Name: t.Name}
		if t.Description != nil {
			tag.Description = *t.Description
		}
		if t.ColorCode != nil {
			tag.ColorCode = *t.ColorCode
		}
		rec.Tags = append(rec.Tags, tag)
	}
	for _, r := range blog.Related {
		rec.Related = append(rec.Related, models.RelatedNDJSON{
			Slug:             r.Slug,
			RelationshipType: r.RelationshipType,
		})
	}
	return rec
}
