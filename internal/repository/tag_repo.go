package repository

import (
	"context"
	"database/sql"

	"github.com/personal-website-api/internal/database"
	"github.com/personal-website-api/internal/models"
)

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db *database.DB
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db}
}

// UpsertByName creates the tag or fills in missing description/color of an
// existing one. tag.ID is set to the stored id.
func (r *tagRepo) UpsertByName(ctx context.Context, tag *models.Tag) error {
	query := `
		INSERT INTO tags (id, name, description, color_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			description = COALESCE(tags.description, EXCLUDED.description),
			color_code = COALESCE(tags.color_code, EXCLUDED.color_code)
		RETURNING id, description, color_code
	`
	var description, color sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		tag.ID, tag.Name, nullString(tag.Description), nullString(tag.ColorCode),
	).Scan(&tag.ID, &description, &color)
	if err != nil {
		return err
	}
	tag.Description = stringPtr(description)
	tag.ColorCode = stringPtr(color)
	return nil
}

// List returns all tags ordered by name
func (r *tagRepo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, color_code FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		var description, color sql.NullString
		if err := rows.Scan(&tag.ID, &tag.Name, &description, &color); err != nil {
			return nil, err
		}
		tag.Description = stringPtr(description)
		tag.ColorCode = stringPtr(color)
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Count returns the total number of tags
func (r *tagRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&count)
	return count, err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
