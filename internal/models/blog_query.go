package models

import "math"

// SortField is a public sort key accepted by the blog listing
type SortField string

const (
	SortByPublicationDate SortField = "publication_date"
	SortByTitle           SortField = "title"
	SortByUpdateDate      SortField = "update_date"
	SortByReadingTime     SortField = "reading_time"
)

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	MinSearchLength = 2
	// MaxPage keeps (page-1)*MaxPageSize inside an int32 OFFSET
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ListBlogsParams are the raw listing parameters as received from a client.
// Nothing here has been validated.
type ListBlogsParams struct {
	Page       int
	PageSize   int
	Tags       string // comma-separated tag ids
	SearchTerm string
	SortBy     string
	SortDir    string
}

// BlogQuery is a normalized listing request, safe to hand to storage
type BlogQuery struct {
	Page       int
	PageSize   int
	TagIDs     []string
	SearchTerm string
	SortBy     SortField
	SortDir    SortDirection
}

// Offset returns the number of rows to skip
func (q BlogQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// BlogPage is one page of the public listing
type BlogPage struct {
	Items      []*Blog
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// BlogPageDTO is the listing response body
type BlogPageDTO struct {
	Items      []BlogListItemDTO `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ToDTO converts a page for the API response
func (p *BlogPage) ToDTO() BlogPageDTO {
	items := make([]BlogListItemDTO, 0, len(p.Items))
	for _, b := range p.Items {
		items = append(items, b.ToListItem())
	}
	return BlogPageDTO{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
