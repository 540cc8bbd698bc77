package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/personal-website-api/internal/auth"
	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/mocks"
	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
	"github.com/personal-website-api/internal/service"
)

type fixture struct {
	svc    *service.Services
	repos  *repository.Repositories
	users  *mocks.MockUserRepository
	blogs  *mocks.MockBlogRepository
	tags   *mocks.MockTagRepository
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			SecretKey:  "test-secret-key",
			Algorithm:  "HS256",
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 14 * 24 * time.Hour,
			ExpiresIn:  time.Hour,
			BcryptCost: 4,
		},
		Import: config.ImportConfig{BatchSize: 2},
	}
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	cfg := testConfig()

	repos, users, blogs, tags := mocks.NewRepositories()
	tokens, err := auth.NewTokenService(cfg.Auth)
	require.NoError(t, err)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	return &fixture{
		svc:    service.NewServices(repos, tokens, hasher, cfg, zerolog.Nop()),
		repos:  repos,
		users:  users,
		blogs:  blogs,
		tags:   tags,
		tokens: tokens,
		hasher: hasher,
	}
}

func (f *fixture) addUser(t *testing.T, id, email, password string, active bool) *models.User {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	user := &models.User{ID: id, Email: email, PasswordHash: digest, IsActive: active, CreatedAt: time.Now()}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func ptr[T any](v T) *T {
	return &v
}
