package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository = (*MockUserRepository)(nil)
	_ repository.BlogRepository = (*MockBlogRepository)(nil)
	_ repository.TagRepository  = (*MockTagRepository)(nil)
)

// NewRepositories bundles fresh in-memory repositories
func NewRepositories() (*repository.Repositories, *MockUserRepository, *MockBlogRepository, *MockTagRepository) {
	users := NewMockUserRepository()
	blogs := NewMockBlogRepository()
	tags := NewMockTagRepository()
	return &repository.Repositories{User: users, Blog: blogs, Tag: tags}, users, blogs, tags
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users               map[string]*models.User
	EmailToUser         map[string]*models.User
	InsertError         error
	InsertedCount       int
	GetByEmailError     error
	UpdateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
	BatchInsertFunc     func(ctx context.Context, users []*models.User) (int, error)
	BatchInsertCalls    int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[string]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Users[user.ID] = user
	m.EmailToUser[user.Email] = user
	return nil
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if existing, ok := m.EmailToUser[user.Email]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	}
	return m.Create(ctx, user)
}

func (m *MockUserRepository) BatchInsert(ctx context.Context, users []*models.User) (int, error) {
	m.BatchInsertCalls++
	if m.BatchInsertFunc != nil {
		return m.BatchInsertFunc(ctx, users)
	}
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, u := range users {
		m.Users[u.ID] = u
		m.EmailToUser[u.Email] = u
	}
	m.InsertedCount += len(users)
	return len(users), nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}
	return m.EmailToUser[email], nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	if u, ok := m.Users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, exists := m.EmailToUser[email]
	return exists, nil
}

func (m *MockUserRepository) GetAllEmails(ctx context.Context) ([]string, error) {
	emails := make([]string, 0, len(m.EmailToUser))
	for email := range m.EmailToUser {
		emails = append(emails, email)
	}
	return emails, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.Users), nil
}

type relation struct {
	targetID         string
	relationshipType string
}

// MockBlogRepository is an in-memory BlogRepository. ListPublished applies
// the same filtering, ordering and paging rules as the SQL implementation.
type MockBlogRepository struct {
	Blogs            map[string]*models.Blog
	Relations        map[string][]relation
	Order            []string
	ListFunc         func(ctx context.Context, q models.BlogQuery) ([]*models.Blog, int, error)
	LastQuery        models.BlogQuery
	ListCalls        int
	TagsCalls        int
	InsertError      error
	BatchInsertCalls int
}

func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{
		Blogs:     make(map[string]*models.Blog),
		Relations: make(map[string][]relation),
	}
}

// Add stores a blog as-is, tags included
func (m *MockBlogRepository) Add(blogs ...*models.Blog) {
	for _, b := range blogs {
		if _, ok := m.Blogs[b.ID]; !ok {
			m.Order = append(m.Order, b.ID)
		}
		m.Blogs[b.ID] = b
	}
}

func (m *MockBlogRepository) ListPublished(ctx context.Context, q models.BlogQuery) ([]*models.Blog, int, error) {
	m.ListCalls++
	m.LastQuery = q
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}

	wanted := make(map[string]bool, len(q.TagIDs))
	for _, id := range q.TagIDs {
		wanted[id] = true
	}
	term := strings.ToLower(q.SearchTerm)

	var matches []*models.Blog
	for _, id := range m.Order {
		b := m.Blogs[id]
		if b.Status != models.BlogStatusPublished {
			continue
		}
		if len(wanted) > 0 && !hasAnyTag(b, wanted) {
			continue
		}
		if term != "" && !matchesSearch(b, term) {
			continue
		}
		matches = append(matches, summary(b))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		less := lessBy(matches[i], matches[j], q.SortBy)
		if q.SortDir == models.SortAsc {
			return less
		}
		return lessBy(matches[j], matches[i], q.SortBy)
	})

	total := len(matches)
	start := q.Offset()
	if start >= total {
		return []*models.Blog{}, total, nil
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return matches[start:end], total, nil
}

func hasAnyTag(b *models.Blog, wanted map[string]bool) bool {
	for _, t := range b.Tags {
		if wanted[t.ID] {
			return true
		}
	}
	return false
}

func matchesSearch(b *models.Blog, term string) bool {
	if strings.Contains(strings.ToLower(b.Title), term) || strings.Contains(strings.ToLower(b.Content), term) {
		return true
	}
	return b.Excerpt != nil && strings.Contains(strings.ToLower(*b.Excerpt), term)
}

func lessBy(a, b *models.Blog, field models.SortField) bool {
	switch field {
	case models.SortByTitle:
		return a.Title < b.Title
	case models.SortByUpdateDate:
		return a.UpdatedAt.Before(b.UpdatedAt)
	case models.SortByReadingTime:
		return intValue(a.ReadingTime) < intValue(b.ReadingTime)
	default:
		return timeValue(a.PublicationDate).Before(timeValue(b.PublicationDate))
	}
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func timeValue(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}

// summary copies a blog without tags, the way the list query returns it
func summary(b *models.Blog) *models.Blog {
	c := *b
	c.Tags = nil
	c.Related = nil
	return &c
}

func (m *MockBlogRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	for _, b := range m.Blogs {
		if b.Slug == slug && b.Status == models.BlogStatusPublished {
			return summary(b), nil
		}
	}
	return nil, nil
}

func (m *MockBlogRepository) TagsForBlogs(ctx context.Context, blogIDs []string) (map[string][]models.Tag, error) {
	m.TagsCalls++
	out := make(map[string][]models.Tag, len(blogIDs))
	for _, id := range blogIDs {
		if b, ok := m.Blogs[id]; ok && len(b.Tags) > 0 {
			out[id] = append([]models.Tag(nil), b.Tags...)
		}
	}
	return out, nil
}

func (m *MockBlogRepository) RelatedPublished(ctx context.Context, blogID string) ([]models.RelatedBlog, error) {
	related := []models.RelatedBlog{}
	for _, rel := range m.Relations[blogID] {
		target, ok := m.Blogs[rel.targetID]
		if !ok || target.Status != models.BlogStatusPublished {
			continue
		}
		related = append(related, models.RelatedBlog{
			BlogID:           target.ID,
			Title:            target.Title,
			Slug:             target.Slug,
			RelationshipType: rel.relationshipType,
		})
	}
	return related, nil
}

func (m *MockBlogRepository) BatchInsert(ctx context.Context, blogs []*models.Blog) (int, error) {
	m.BatchInsertCalls++
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	m.Add(blogs...)
	return len(blogs), nil
}

func (m *MockBlogRepository) AddRelated(ctx context.Context, sourceID, relatedID, relationshipType string) error {
	if sourceID == relatedID {
		return repository.ErrSelfRelation
	}
	for _, rel := range m.Relations[sourceID] {
		if rel.targetID == relatedID {
			return nil
		}
	}
	m.Relations[sourceID] = append(m.Relations[sourceID], relation{targetID: relatedID, relationshipType: relationshipType})
	return nil
}

func (m *MockBlogRepository) GetIDsBySlugs(ctx context.Context, slugs []string) (map[string]string, error) {
	wanted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		wanted[s] = true
	}
	ids := make(map[string]string)
	for _, b := range m.Blogs {
		if wanted[b.Slug] {
			ids[b.Slug] = b.ID
		}
	}
	return ids, nil
}

func (m *MockBlogRepository) GetAllSlugs(ctx context.Context) ([]string, error) {
	slugs := make([]string, 0, len(m.Blogs))
	for _, id := range m.Order {
		slugs = append(slugs, m.Blogs[id].Slug)
	}
	return slugs, nil
}

func (m *MockBlogRepository) Count(ctx context.Context) (int, error) {
	return len(m.Blogs), nil
}

func (m *MockBlogRepository) StreamAll(ctx context.Context, status models.BlogStatus, callback func(*models.Blog) error) error {
	for _, id := range m.Order {
		b := m.Blogs[id]
		if status != "" && b.Status != status {
			continue
		}
		c := *b
		c.Related = nil
		for _, rel := range m.Relations[id] {
			if target, ok := m.Blogs[rel.targetID]; ok {
				c.Related = append(c.Related, models.RelatedBlog{
					BlogID:           target.ID,
					Title:            target.Title,
					Slug:             target.Slug,
					RelationshipType: rel.relationshipType,
				})
			}
		}
		if err := callback(&c); err != nil {
			return err
		}
	}
	return nil
}

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct {
	Tags        map[string]*models.Tag
	UpsertCalls int
	UpsertError error
}

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{Tags: make(map[string]*models.Tag)}
}

func (m *MockTagRepository) UpsertByName(ctx context.Context, tag *models.Tag) error {
	m.UpsertCalls++
	if m.UpsertError != nil {
		return m.UpsertError
	}
	if existing, ok := m.Tags[tag.Name]; ok {
		tag.ID = existing.ID
		if tag.Description == nil {
			tag.Description = existing.Description
		}
		if tag.ColorCode == nil {
			tag.ColorCode = existing.ColorCode
		}
	}
	stored := *tag
	m.Tags[tag.Name] = &stored
	return nil
}

func (m *MockTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *MockTagRepository) Count(ctx context.Context) (int, error) {
	return len(m.Tags), nil
}
