package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/personal-website-api/internal/database"
	"github.com/personal-website-api/internal/models"
)

// ErrSelfRelation is returned when a blog would be related to itself
var ErrSelfRelation = errors.New("a blog cannot be related to itself")

// sortColumns maps public sort keys to SQL columns. Only values from this
// table ever reach ORDER BY.
var sortColumns = map[models.SortField]string{
	models.SortByPublicationDate: "b.publication_date",
	models.SortByTitle:           "b.title",
	models.SortByUpdateDate:      "b.updated_at",
	models.SortByReadingTime:     "b.reading_time",
}

var sortDirections = map[models.SortDirection]string{
	models.SortAsc:  "ASC",
	models.SortDesc: "DESC",
}

const blogListColumns = `b.id, b.title, b.slug, b.excerpt, b.publication_date, b.updated_at,
	b.status, b.featured_image, b.reading_time, b.created_at`

const blogDetailColumns = `b.id, b.title, b.slug, b.content, b.excerpt, b.publication_date,
	b.updated_at, b.status, b.featured_image, b.seo_description, b.reading_time, b.created_at`

// blogRepo is the concrete implementation of BlogRepository
type blogRepo struct {
	db *database.DB
}

// NewBlogRepo creates a new blog repository
func NewBlogRepo(db *database.DB) BlogRepository {
	return &blogRepo{db: db}
}

// listQuery holds the SQL for one page of the public listing
type listQuery struct {
	list      string
	listArgs  []interface{}
	count     string
	countArgs []interface{}
}

// buildListQuery turns a normalized query into SQL. The tag join can
// produce one row per matching tag, so DISTINCT and COUNT(DISTINCT) are
// used whenever it is present.
func buildListQuery(q models.BlogQuery) listQuery {
	args := []interface{}{string(models.BlogStatusPublished)}
	from := "FROM blogs b"
	where := []string{"b.status = $1"}

	joined := len(q.TagIDs) > 0
	if joined {
		args = append(args, pq.Array(q.TagIDs))
		from += fmt.Sprintf(" JOIN blog_tags bt ON bt.blog_id = b.id AND bt.tag_id = ANY($%d::uuid[])", len(args))
	}

	if q.SearchTerm != "" {
		args = append(args, "%"+escapeLike(q.SearchTerm)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(b.title ILIKE $%d OR b.content ILIKE $%d OR b.excerpt ILIKE $%d)", n, n, n))
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[models.SortByPublicationDate]
	}
	direction, ok := sortDirections[q.SortDir]
	if !ok {
		direction = sortDirections[models.SortDesc]
	}

	filter := from + " WHERE " + strings.Join(where, " AND ")

	selectKw, countExpr := "SELECT ", "COUNT(*)"
	if joined {
		selectKw, countExpr = "SELECT DISTINCT ", "COUNT(DISTINCT b.id)"
	}

	listArgs := make([]interface{}, len(args), len(args)+2)
	copy(listArgs, args)
	listArgs = append(listArgs, q.PageSize, q.Offset())

	return listQuery{
		list: fmt.Sprintf("%s%s %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
			selectKw, blogListColumns, filter, column, direction, len(args)+1, len(args)+2),
		listArgs:  listArgs,
		count:     "SELECT " + countExpr + " " + filter,
		countArgs: args,
	}
}

// escapeLike makes user input match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListPublished returns one page of published blogs and the total match count
func (r *blogRepo) ListPublished(ctx context.Context, q models.BlogQuery) ([]*models.Blog, int, error) {
	query := buildListQuery(q)

	var total int
	if err := r.db.QueryRowContext(ctx, query.count, query.countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}
	if total == 0 {
		return []*models.Blog{}, 0, nil
	}

	rows, err := r.db.QueryContext(ctx, query.list, query.listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := []*models.Blog{}
	for rows.Next() {
		blog, err := scanBlogSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlogSummary(row rowScanner) (*models.Blog, error) {
	var blog models.Blog
	var excerpt, image sql.NullString
	var published sql.NullTime
	var reading sql.NullInt64
	var status string
	err := row.Scan(
		&blog.ID, &blog.Title, &blog.Slug, &excerpt, &published, &blog.UpdatedAt,
		&status, &image, &reading, &blog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	blog.Status = models.BlogStatus(status)
	blog.Excerpt = stringPtr(excerpt)
	blog.FeaturedImage = stringPtr(image)
	blog.ReadingTime = intPtr(reading)
	if published.Valid {
		blog.PublicationDate = &published.Time
	}
	return &blog, nil
}

func scanBlogDetail(row rowScanner) (*models.Blog, error) {
	var blog models.Blog
	var excerpt, image, seo sql.NullString
	var published sql.NullTime
	var reading sql.NullInt64
	var status string
	err := row.Scan(
		&blog.ID, &blog.Title, &blog.Slug, &blog.Content, &excerpt, &published,
		&blog.UpdatedAt, &status, &image, &seo, &reading, &blog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	blog.Status = models.BlogStatus(status)
	blog.Excerpt = stringPtr(excerpt)
	blog.FeaturedImage = stringPtr(image)
	blog.SEODescription = stringPtr(seo)
	blog.ReadingTime = intPtr(reading)
	if published.Valid {
		blog.PublicationDate = &published.Time
	}
	return &blog, nil
}

// GetPublishedBySlug retrieves a published blog; drafts and archived blogs
// are reported as not found
func (r *blogRepo) GetPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	query := `SELECT ` + blogDetailColumns + ` FROM blogs b WHERE b.slug = $1 AND b.status = $2`
	blog, err := scanBlogDetail(r.db.QueryRowContext(ctx, query, slug, string(models.BlogStatusPublished)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blog, nil
}

// TagsForBlogs batch-loads the tags of a set of blogs in one query
func (r *blogRepo) TagsForBlogs(ctx context.Context, blogIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(blogIDs))
	if len(blogIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT bt.blog_id, t.id, t.name, t.description, t.color_code
		FROM blog_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.blog_id = ANY($1::uuid[])
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(blogIDs))
	if err != nil {
		return nil, fmt.Errorf("load blog tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var blogID string
		var tag models.Tag
		var description, color sql.NullString
		if err := rows.Scan(&blogID, &tag.ID, &tag.Name, &description, &color); err != nil {
			return nil, err
		}
		tag.Description = stringPtr(description)
		tag.ColorCode = stringPtr(color)
		result[blogID] = append(result[blogID], tag)
	}
	return result, rows.Err()
}

// RelatedPublished returns the published blogs linked from blogID
func (r *blogRepo) RelatedPublished(ctx context.Context, blogID string) ([]models.RelatedBlog, error) {
	query := `
		SELECT b.id, b.title, b.slug, rb.relationship_type
		FROM related_blogs rb
		JOIN blogs b ON b.id = rb.related_blog_id
		WHERE rb.source_blog_id = $1 AND b.status = $2
		ORDER BY b.publication_date DESC NULLS LAST
	`
	rows, err := r.db.QueryContext(ctx, query, blogID, string(models.BlogStatusPublished))
	if err != nil {
		return nil, fmt.Errorf("load related blogs: %w", err)
	}
	defer rows.Close()

	related := []models.RelatedBlog{}
	for rows.Next() {
		var rel models.RelatedBlog
		if err := rows.Scan(&rel.BlogID, &rel.Title, &rel.Slug, &rel.RelationshipType); err != nil {
			return nil, err
		}
		related = append(related, rel)
	}
	return related, rows.Err()
}

// BatchInsert inserts blogs and their tag associations using COPY. Tags
// must already carry their ids.
func (r *blogRepo) BatchInsert(ctx context.Context, blogs []*models.Blog) (int, error) {
	if len(blogs) == 0 {
		return 0, nil
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("blogs",
			"id", "title", "slug", "content", "excerpt", "publication_date", "updated_at",
			"status", "featured_image", "seo_description", "reading_time", "created_at",
		))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, blog := range blogs {
			if blog.CreatedAt.IsZero() {
				blog.CreatedAt = now
			}
			blog.UpdatedAt = now
			if _, err := stmt.ExecContext(ctx,
				blog.ID, blog.Title, blog.Slug, blog.Content, blog.Excerpt, blog.PublicationDate,
				blog.UpdatedAt, string(blog.Status), blog.FeaturedImage, blog.SEODescription,
				blog.ReadingTime, blog.CreatedAt,
			); err != nil {
				stmt.Close()
				return err
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return err
		}
		// Only one COPY may be open per connection
		if err := stmt.Close(); err != nil {
			return err
		}

		tagStmt, err := tx.PrepareContext(ctx, pq.CopyIn("blog_tags", "blog_id", "tag_id"))
		if err != nil {
			return err
		}
		defer tagStmt.Close()

		for _, blog := range blogs {
			for _, tag := range blog.Tags {
				if _, err := tagStmt.ExecContext(ctx, blog.ID, tag.ID); err != nil {
					return err
				}
			}
		}
		_, err = tagStmt.ExecContext(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(blogs), nil
}

// AddRelated links source to related with a relationship label; an
// existing link has its label replaced
func (r *blogRepo) AddRelated(ctx context.Context, sourceID, relatedID, relationshipType string) error {
	if sourceID == relatedID {
		return ErrSelfRelation
	}
	query := `
		INSERT INTO related_blogs (source_blog_id, related_blog_id, relationship_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_blog_id, related_blog_id) DO UPDATE SET
			relationship_type = EXCLUDED.relationship_type
	`
	_, err := r.db.ExecContext(ctx, query, sourceID, relatedID, relationshipType)
	return err
}

// GetIDsBySlugs resolves slugs to ids; unknown slugs are absent from the map
func (r *blogRepo) GetIDsBySlugs(ctx context.Context, slugs []string) (map[string]string, error) {
	ids := make(map[string]string, len(slugs))
	if len(slugs) == 0 {
		return ids, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT slug, id FROM blogs WHERE slug = ANY($1)`, pq.Array(slugs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var slug, id string
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, err
		}
		ids[slug] = id
	}
	return ids, rows.Err()
}

// GetAllSlugs retrieves every slug (for the import uniqueness cache)
func (r *blogRepo) GetAllSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT slug FROM blogs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// Count returns the total number of blogs in any status
func (r *blogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blogs").Scan(&count)
	return count, err
}

// StreamAll streams blogs with their tag names and related slugs for
// export. An empty status streams every blog.
func (r *blogRepo) StreamAll(ctx context.Context, status models.BlogStatus, callback func(*models.Blog) error) error {
	query := `
		SELECT ` + blogDetailColumns + `,
			ARRAY(SELECT t.name FROM blog_tags bt JOIN tags t ON t.id = bt.tag_id
				WHERE bt.blog_id = b.id ORDER BY t.name),
			ARRAY(SELECT rel.slug FROM related_blogs rb JOIN blogs rel ON rel.id = rb.related_blog_id
				WHERE rb.source_blog_id = b.id ORDER BY rel.slug),
			ARRAY(SELECT rb.relationship_type FROM related_blogs rb JOIN blogs rel ON rel.id = rb.related_blog_id
				WHERE rb.source_blog_id = b.id ORDER BY rel.slug)
		FROM blogs b
		WHERE ($1::text = '' OR b.status = $1::text)
		ORDER BY b.created_at, b.slug
	`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var blog models.Blog
		var excerpt, image, seo sql.NullString
		var published sql.NullTime
		var reading sql.NullInt64
		var st string
		var tagNames, relatedSlugs, relatedTypes []string
		err := rows.Scan(
			&blog.ID, &blog.Title, &blog.Slug, &blog.Content, &excerpt, &published,
			&blog.UpdatedAt, &st, &image, &seo, &reading, &blog.CreatedAt,
			pq.Array(&tagNames), pq.Array(&relatedSlugs), pq.Array(&relatedTypes),
		)
		if err != nil {
			return err
		}
		blog.Status = models.BlogStatus(st)
		blog.Excerpt = stringPtr(excerpt)
		blog.FeaturedImage = stringPtr(image)
		blog.SEODescription = stringPtr(seo)
		blog.ReadingTime = intPtr(reading)
		if published.Valid {
			blog.PublicationDate = &published.Time
		}
		for _, name := range tagNames {
			blog.Tags = append(blog.Tags, models.Tag{Name: name})
		}
		for i, slug := range relatedSlugs {
			rel := models.RelatedBlog{Slug: slug, RelationshipType: models.DefaultRelationshipType}
			if i < len(relatedTypes) {
				rel.RelationshipType = relatedTypes[i]
			}
			blog.Related = append(blog.Related, rel)
		}

		if err := callback(&blog); err != nil {
			return err
		}
	}

	return rows.Err()
}
