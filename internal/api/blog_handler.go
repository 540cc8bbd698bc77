package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/service"
)

// BlogHandler handles the public blog endpoints
type BlogHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(services *service.Services, log zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		services: services,
		log:      log.With().Str("handler", "blog").Logger(),
	}
}

// List handles GET /api/blogs. Bad query values never fail the request;
// they fall back to defaults.
func (h *BlogHandler) List(c *gin.Context) {
	params := models.ListBlogsParams{
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", models.DefaultPageSize),
		Tags:       c.Query("tags"),
		SearchTerm: c.Query("search_term"),
		SortBy:     c.Query("sort_by"),
		SortDir:    c.Query("sort_dir"),
	}

	page, err := h.services.Blog.ListPublished(c.Request.Context(), params)
	if err != nil {
		respondInternal(c, h.log, err, "Failed to list blogs")
		return
	}

	c.JSON(http.StatusOK, page.ToDTO())
}

// Get handles GET /api/blogs/:slug
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.services.Blog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondInternal(c, h.log, err, "Failed to load blog")
		return
	}
	if blog == nil {
		respondError(c, http.StatusNotFound, msgBlogNotFound)
		return
	}

	c.JSON(http.StatusOK, blog.ToDetail())
}

// Tags handles GET /api/tags
func (h *BlogHandler) Tags(c *gin.Context) {
	tags, err := h.services.Blog.ListTags(c.Request.Context())
	if err != nil {
		respondInternal(c, h.log, err, "Failed to list tags")
		return
	}

	items := make([]models.TagDetailDTO, 0, len(tags))
	for _, t := range tags {
		items = append(items, t.ToDetailDTO())
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// queryInt reads an integer query parameter, falling back when it is
// absent or not a number
func queryInt(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
