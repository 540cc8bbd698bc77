package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
)

// AuthService defines the interface for login and session tokens
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, userID string) (*models.TokenPair, error)
	PasswordLogin(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

// BlogService defines the interface for the public blog queries
type BlogService interface {
	ListPublished(ctx context.Context, params models.ListBlogsParams) (*models.BlogPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// SeedService defines the interface for loading users and content
type SeedService interface {
	CreateAdmin(ctx context.Context, email, password string) (*models.User, error)
	ImportUsersCSV(ctx context.Context, r io.Reader) (*models.ImportReport, error)
	ImportBlogsNDJSON(ctx context.Context, r io.Reader) (*models.ImportReport, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamBlogs(ctx context.Context, w io.Writer, format string, status models.BlogStatus) (int, error)
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Auth   AuthService
	Blog   BlogService
	Seed   SeedService
	Export ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, tokens TokenIssuer, passwords PasswordVerifier, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Auth:   newAuthService(repos.User, tokens, passwords, cfg, log),
		Blog:   newBlogService(repos, log),
		Seed:   newSeedService(repos, passwords, cfg, log),
		Export: newExportService(repos, log),
	}
}
