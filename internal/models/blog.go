package models

import (
	"time"
)

// BlogStatus is the publication state of a blog
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
	BlogStatusArchived  BlogStatus = "archived"
)

// ValidStatuses defines allowed blog statuses
var ValidStatuses = map[BlogStatus]bool{
	BlogStatusDraft:     true,
	BlogStatusPublished: true,
	BlogStatusArchived:  true,
}

// Blog represents a blog post
type Blog struct {
	ID              string        `json:"id" db:"id"`
	Title           string        `json:"title" db:"title"`
	Slug            string        `json:"slug" db:"slug"`
	Content         string        `json:"content" db:"content"`
	Excerpt         *string       `json:"excerpt,omitempty" db:"excerpt"`
	PublicationDate *time.Time    `json:"publication_date,omitempty" db:"publication_date"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
	Status          BlogStatus    `json:"status" db:"status"`
	FeaturedImage   *string       `json:"featured_image,omitempty" db:"featured_image"`
	SEODescription  *string       `json:"seo_description,omitempty" db:"seo_description"`
	ReadingTime     *int          `json:"reading_time,omitempty" db:"reading_time"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	Tags            []Tag         `json:"tags" db:"-"`
	Related         []RelatedBlog `json:"related,omitempty" db:"-"`
}

// RelatedBlog is a typed link from one blog to another
type RelatedBlog struct {
	BlogID           string `json:"id"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	RelationshipType string `json:"relationship_type"`
}

// BlogListItemDTO is one entry of the public listing
type BlogListItemDTO struct {
	UUID            string     `json:"uuid"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         *string    `json:"excerpt"`
	PublicationDate *time.Time `json:"publication_date"`
	ReadingTime     *int       `json:"reading_time"`
	Tags            []TagDTO   `json:"tags"`
}

// RelatedBlogDTO is a related link in the blog detail
type RelatedBlogDTO struct {
	UUID             string `json:"uuid"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	RelationshipType string `json:"relationship_type"`
}

// BlogDetailDTO is the public blog detail
type BlogDetailDTO struct {
	UUID            string           `json:"uuid"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Content         string           `json:"content"`
	Excerpt         *string          `json:"excerpt"`
	PublicationDate *time.Time       `json:"publication_date"`
	UpdatedDate     time.Time        `json:"updated_date"`
	FeaturedImage   *string          `json:"featured_image"`
	SEODescription  *string          `json:"seo_description"`
	ReadingTime     *int             `json:"reading_time"`
	Tags            []TagDTO         `json:"tags"`
	Related         []RelatedBlogDTO `json:"related"`
}

// ToListItem converts a blog for the public listing
func (b *Blog) ToListItem() BlogListItemDTO {
	return BlogListItemDTO{
		UUID:            b.ID,
		Title:           b.Title,
		Slug:            b.Slug,
		Excerpt:         b.Excerpt,
		PublicationDate: b.PublicationDate,
		ReadingTime:     b.ReadingTime,
		Tags:            tagDTOs(b.Tags),
	}
}

// ToDetail converts a blog for the detail endpoint
func (b *Blog) ToDetail() BlogDetailDTO {
	related := make([]RelatedBlogDTO, 0, len(b.Related))
	for _, r := range b.Related {
		related = append(related, RelatedBlogDTO{
			UUID:             r.BlogID,
			Title:            r.Title,
			Slug:             r.Slug,
			RelationshipType: r.RelationshipType,
		})
	}
	return BlogDetailDTO{
		UUID:            b.ID,
		Title:           b.Title,
		Slug:            b.Slug,
		Content:         b.Content,
		Excerpt:         b.Excerpt,
		PublicationDate: b.PublicationDate,
		UpdatedDate:     b.UpdatedAt,
		FeaturedImage:   b.FeaturedImage,
		SEODescription:  b.SEODescription,
		ReadingTime:     b.ReadingTime,
		Tags:            tagDTOs(b.Tags),
		Related:         related,
	}
}

func tagDTOs(tags []Tag) []TagDTO {
	out := make([]TagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.ToDTO())
	}
	return out
}

// RelatedNDJSON links an imported blog to another blog by slug
type RelatedNDJSON struct {
	Slug             string `json:"slug"`
	RelationshipType string `json:"relationship_type,omitempty"`
}

// BlogNDJSON represents a blog record from NDJSON import and export
type BlogNDJSON struct {
	ID              string          `json:"id,omitempty"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug,omitempty"`
	Content         string          `json:"content"`
	Excerpt         string          `json:"excerpt,omitempty"`
	Status          string          `json:"status,omitempty"`
	PublicationDate string          `json:"publication_date,omitempty"`
	ReadingTime     *int            `json:"reading_time,omitempty"`
	FeaturedImage   string          `json:"featured_image,omitempty"`
	SEODescription  string          `json:"seo_description,omitempty"`
	Tags            []TagNDJSON     `json:"tags,omitempty"`
	Related         []RelatedNDJSON `json:"related,omitempty"`
}

// DefaultRelationshipType is used when an import omits the label
const DefaultRelationshipType = "related"
