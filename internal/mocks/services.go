package mocks

import (
	"context"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/service"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	AuthenticateFunc  func(ctx context.Context, email, password string) (*models.User, error)
	LoginFunc         func(ctx context.Context, userID string) (*models.TokenPair, error)
	PasswordLoginFunc func(ctx context.Context, email, password string) (*models.TokenPair, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	CurrentUserFunc   func(ctx context.Context, accessToken string) (*models.User, error)
	LoginCalls        int
	RefreshCalls      int
}

// Verify interface compliance
var _ service.AuthService = (*MockAuthService)(nil)

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuthService) Login(ctx context.Context, userID string) (*models.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, userID)
	}
	return testPair(), nil
}

func (m *MockAuthService) PasswordLogin(ctx context.Context, email, password string) (*models.TokenPair, error) {
	m.LoginCalls++
	if m.PasswordLoginFunc != nil {
		return m.PasswordLoginFunc(ctx, email, password)
	}
	return nil, service.ErrInvalidCredentials
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	m.RefreshCalls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, service.ErrInvalidToken
}

func (m *MockAuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, accessToken)
	}
	return nil, service.ErrInvalidToken
}

func testPair() *models.TokenPair {
	return &models.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "bearer",
		ExpiresIn:    3600,
	}
}

// MockBlogService is a mock implementation of BlogService
type MockBlogService struct {
	ListPublishedFunc func(ctx context.Context, params models.ListBlogsParams) (*models.BlogPage, error)
	GetBySlugFunc     func(ctx context.Context, slug string) (*models.Blog, error)
	ListTagsFunc      func(ctx context.Context) ([]models.Tag, error)
	LastParams        models.ListBlogsParams
}

// Verify interface compliance
var _ service.BlogService = (*MockBlogService)(nil)

func NewMockBlogService() *MockBlogService {
	return &MockBlogService{}
}

func (m *MockBlogService) ListPublished(ctx context.Context, params models.ListBlogsParams) (*models.BlogPage, error) {
	m.LastParams = params
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, params)
	}
	q := service.NormalizeListParams(params)
	return &models.BlogPage{
		Items:      []*models.Blog{},
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: 1,
	}, nil
}

func (m *MockBlogService) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *MockBlogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if m.ListTagsFunc != nil {
		return m.ListTagsFunc(ctx)
	}
	return []models.Tag{}, nil
}
