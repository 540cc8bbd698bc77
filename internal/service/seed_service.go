package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
	"github.com/personal-website-api/internal/validation"
)

// maxReportedErrors caps the errors kept in a report so a file that is
// wrong on every line cannot exhaust memory
const maxReportedErrors = 1000

// seedService is the concrete implementation of SeedService
type seedService struct {
	repos     *repository.Repositories
	passwords PasswordVerifier
	cfg       *config.Config
	now       func() time.Time
	log       zerolog.Logger
}

// newSeedService creates a new SeedService
func newSeedService(repos *repository.Repositories, passwords PasswordVerifier, cfg *config.Config, log zerolog.Logger) *seedService {
	return &seedService{
		repos:     repos,
		passwords: passwords,
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("service", "seed").Logger(),
	}
}

// CreateAdmin creates the admin user or resets its password and reactivates it
func (s *seedService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	validator := validation.NewValidator()
	if errs := validator.ValidateUser(&models.UserCSV{Email: email, Password: password}); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return nil, fmt.Errorf("invalid admin user: %s", strings.Join(msgs, "; "))
	}

	digest, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: digest,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repos.User.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("save admin user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Admin user saved")
	return user, nil
}

// ImportUsersCSV imports users from CSV with an email,password[,is_active][,id]
// header. Passwords are hashed before storage.
func (s *seedService) ImportUsersCSV(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	report := &models.ImportReport{Resource: "users", StartedAt: s.now()}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	headerMap := make(map[string]int)
	for i, h := range header {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"email", "password"} {
		if _, ok := headerMap[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing the %q column", required)
		}
	}

	validator := validation.NewValidator()
	existing, err := s.repos.User.GetAllEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing emails: %w", err)
	}
	for _, email := range existing {
		validator.AddUserEmail(email)
	}

	batchSize := s.cfg.Import.BatchSize
	var batch []*models.User
	lineNum := 1 // header

	flush := func() {
		if len(batch) == 0 {
			return
		}
		inserted, err := s.repos.User.BatchInsert(ctx, batch)
		if err != nil {
			s.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch insert failed")
			report.FailedCount += len(batch)
			addReportError(report, models.ValidationError{Line: lineNum, Field: "batch", Message: "batch insert failed"})
		} else {
			report.SuccessfulCount += inserted
		}
		report.ProcessedCount += len(batch)
		batch = batch[:0]
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			report.TotalRecords++
			report.ProcessedCount++
			report.FailedCount++
			addReportError(report, models.ValidationError{Line: lineNum, Field: "csv", Message: err.Error()})
			continue
		}
		report.TotalRecords++

		// Respect context cancellation for long-running imports
		if err := ctx.Err(); err != nil {
			s.finish(report)
			return report, err
		}

		userCSV := &models.UserCSV{
			ID:       getField(record, headerMap, "id"),
			Email:    getField(record, headerMap, "email"),
			Password: getField(record, headerMap, "password"),
			IsActive: strings.ToLower(getField(record, headerMap, "is_active")),
		}

		if errs := validator.ValidateUser(userCSV); len(errs) > 0 {
			report.FailedCount++
			report.ProcessedCount++
			addValidationErrors(report, lineNum, errs)
			continue
		}

		digest, err := s.passwords.Hash(userCSV.Password)
		if err != nil {
			report.FailedCount++
			report.ProcessedCount++
			addReportError(report, models.ValidationError{Line: lineNum, Field: "password", Message: "could not hash password"})
			continue
		}

		batch = append(batch, convertCSVToUser(userCSV, digest, s.now().UTC()))
		validator.AddUserEmail(userCSV.Email)

		if len(batch) >= batchSize {
			flush()
		}
	}
	flush()

	s.finish(report)
	return report, nil
}

// pendingRelation is a related link that can only be resolved once every
// blog of the file has been inserted
type pendingRelation struct {
	line             int
	sourceSlug       string
	targetSlug       string
	relationshipType string
}

// ImportBlogsNDJSON imports blogs, one JSON object per line. Missing slugs
// are derived from titles, tags are created by name on first use and
// related links are attached after all blogs are stored.
func (s *seedService) ImportBlogsNDJSON(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	report := &models.ImportReport{Resource: "blogs", StartedAt: s.now()}

	scanner := bufio.NewScanner(r)
	// Blog bodies can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	validator := validation.NewValidator()
	slugs, err := s.repos.Blog.GetAllSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing slugs: %w", err)
	}
	for _, slug := range slugs {
		validator.AddBlogSlug(slug)
	}

	tagCache := make(map[string]models.Tag)
	batchSize := s.cfg.Import.BatchSize
	var batch []*models.Blog
	var relations []pendingRelation
	stored := make(map[string]bool)
	lineNum := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		inserted, err := s.repos.Blog.BatchInsert(ctx, batch)
		if err != nil {
			s.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch insert failed")
			report.FailedCount += len(batch)
			addReportError(report, models.ValidationError{Line: lineNum, Field: "batch", Message: "batch insert failed"})
		} else {
			report.SuccessfulCount += inserted
			for _, b := range batch {
				stored[b.Slug] = true
			}
		}
		report.ProcessedCount += len(batch)
		batch = batch[:0]
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		report.TotalRecords++

		if err := ctx.Err(); err != nil {
			s.finish(report)
			return report, err
		}

		var record models.BlogNDJSON
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			report.FailedCount++
			report.ProcessedCount++
			addReportError(report, models.ValidationError{Line: lineNum, Field: "json", Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}

		record.Title = strings.TrimSpace(record.Title)
		record.Status = strings.ToLower(strings.TrimSpace(record.Status))
		if record.Slug == "" {
			record.Slug = validation.Slugify(record.Title)
		}

		if errs := validator.ValidateBlog(&record); len(errs) > 0 {
			report.FailedCount++
			report.ProcessedCount++
			addValidationErrors(report, lineNum, errs)
			continue
		}

		tags, err := s.resolveTags(ctx, tagCache, record.Tags)
		if err != nil {
			s.log.Error().Err(err).Int("line", lineNum).Msg("Failed to resolve tags")
			report.FailedCount++
			report.ProcessedCount++
			addReportError(report, models.ValidationError{Line: lineNum, Field: "tags", Message: "could not save tags"})
			continue
		}

		blog := convertNDJSONToBlog(&record, tags, s.now().UTC())
		batch = append(batch, blog)
		validator.AddBlogSlug(blog.Slug)

		for _, rel := range record.Related {
			relType := strings.TrimSpace(rel.RelationshipType)
			if relType == "" {
				relType = models.DefaultRelationshipType
			}
			relations = append(relations, pendingRelation{
				line:             lineNum,
				sourceSlug:       blog.Slug,
				targetSlug:       rel.Slug,
				relationshipType: relType,
			})
		}

		if len(batch) >= batchSize {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read NDJSON: %w", err)
	}
	flush()

	if err := s.attachRelations(ctx, report, relations, stored); err != nil {
		return report, err
	}

	s.finish(report)
	return report, nil
}

// resolveTags upserts each distinct tag name once per import
func (s *seedService) resolveTags(ctx context.Context, cache map[string]models.Tag, refs []models.TagNDJSON) ([]models.Tag, error) {
	var tags []models.Tag
	seen := make(map[string]bool)
	for _, ref := range refs {
		name := strings.TrimSpace(ref.Name)
		if seen[name] {
			continue
		}
		seen[name] = true

		if tag, ok := cache[name]; ok {
			tags = append(tags, tag)
			continue
		}

		tag := models.Tag{
			ID:          uuid.New().String(),
			Name:        name,
			Description: optionalString(ref.Description),
			ColorCode:   optionalString(ref.ColorCode),
		}
		if err := s.repos.Tag.UpsertByName(ctx, &tag); err != nil {
			return nil, err
		}
		cache[name] = tag
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *seedService) attachRelations(ctx context.Context, report *models.ImportReport, relations []pendingRelation, stored map[string]bool) error {
	if len(relations) == 0 {
		return nil
	}

	slugSet := make(map[string]bool)
	for _, rel := range relations {
		slugSet[rel.sourceSlug] = true
		slugSet[rel.targetSlug] = true
	}
	slugs := make([]string, 0, len(slugSet))
	for slug := range slugSet {
		slugs = append(slugs, slug)
	}

	ids, err := s.repos.Blog.GetIDsBySlugs(ctx, slugs)
	if err != nil {
		return fmt.Errorf("resolve related slugs: %w", err)
	}

	for _, rel := range relations {
		if !stored[rel.sourceSlug] {
			continue
		}
		targetID, ok := ids[rel.targetSlug]
		if !ok {
			addReportError(report, models.ValidationError{
				Line: rel.line, Field: "related", Message: "related blog does not exist", Value: rel.targetSlug,
			})
			continue
		}
		err := s.repos.Blog.AddRelated(ctx, ids[rel.sourceSlug], targetID, rel.relationshipType)
		if errors.Is(err, repository.ErrSelfRelation) {
			addReportError(report, models.ValidationError{
				Line: rel.line, Field: "related", Message: "a blog cannot be related to itself", Value: rel.targetSlug,
			})
			continue
		}
		if err != nil {
			s.log.Error().Err(err).Str("slug", rel.sourceSlug).Msg("Failed to link related blog")
			addReportError(report, models.ValidationError{
				Line: rel.line, Field: "related", Message: "could not link related blog", Value: rel.targetSlug,
			})
		}
	}
	return nil
}

func (s *seedService) finish(report *models.ImportReport) {
	report.Finish(s.now())

	var errorRate float64
	if report.TotalRecords > 0 {
		errorRate = float64(report.FailedCount) / float64(report.TotalRecords) * 100
	}
	s.log.Info().
		Str("resource", report.Resource).
		Int("total", report.TotalRecords).
		Int("successful", report.SuccessfulCount).
		Int("failed", report.FailedCount).
		Float64("error_rate_pct", errorRate).
		Int64("duration_ms", report.DurationMs).
		Float64("rows_per_sec", report.RowsPerSec).
		Msg("Import completed")
}

// Helper functions

func addReportError(report *models.ImportReport, e models.ValidationError) {
	if len(report.Errors) >= maxReportedErrors {
		report.ErrorsDropped++
		return
	}
	report.Errors = append(report.Errors, e)
}

func addValidationErrors(report *models.ImportReport, line int, errs []validation.ValidationError) {
	for _, e := range errs {
		addReportError(report, models.ValidationError{
			Line:    line,
			Field:   e.Field,
			Message: e.Message,
			Value:   e.Value,
		})
	}
}

func getField(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func convertCSVToUser(rec *models.UserCSV, digest string, now time.Time) *models.User {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	return &models.User{
		ID:           id,
		Email:        rec.Email,
		PasswordHash: digest,
		IsActive:     rec.IsActive != "false",
		CreatedAt:    now,
	}
}

func convertNDJSONToBlog(ndjson *models.BlogNDJSON, tags []models.Tag, now time.Time) *models.Blog {
	id := ndjson.ID
	if id == "" {
		id = uuid.New().String()
	}
	blog := &models.Blog{
		ID:             id,
		Title:          ndjson.Title,
		Slug:           ndjson.Slug,
		Content:        ndjson.Content,
		Excerpt:        optionalString(ndjson.Excerpt),
		Status:         models.BlogStatus(ndjson.Status),
		FeaturedImage:  optionalString(ndjson.FeaturedImage),
		SEODescription: optionalString(ndjson.SEODescription),
		ReadingTime:    ndjson.ReadingTime,
		CreatedAt:      now,
		Tags:           tags,
	}
	if blog.Status == "" {
		blog.Status = models.BlogStatusDraft
	}
	if ndjson.PublicationDate != "" {
		t, _ := time.Parse(time.RFC3339, ndjson.PublicationDate)
		t = t.UTC()
		blog.PublicationDate = &t
	} else if blog.Status == models.BlogStatusPublished {
		blog.PublicationDate = &now
	}
	return blog
}

// WriteErrorsCSV writes import errors as line,field,message,value rows
func WriteErrorsCSV(w io.Writer, errs []models.ValidationError) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"line", "field", "message", "value"}); err != nil {
		return err
	}
	for _, e := range errs {
		value := ""
		if e.Value != nil {
			value = fmt.Sprint(e.Value)
		}
		if err := writer.Write([]string{strconv.Itoa(e.Line), e.Field, e.Message, value}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
