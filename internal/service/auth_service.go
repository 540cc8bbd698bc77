package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/auth"
	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/repository"
)

// ErrInvalidCredentials is returned by PasswordLogin for an unknown email,
// a wrong password or an inactive account alike
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for any unusable token
var ErrInvalidToken = auth.ErrInvalidToken

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(subject string, typ models.TokenType, ttl time.Duration) (string, error)
	DecodeAs(token string, typ models.TokenType) (*auth.Claims, error)
}

// PasswordVerifier checks passwords against stored digests
type PasswordVerifier interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
	VerifyDummy(plain string)
}

// authService is the concrete implementation of AuthService
type authService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	passwords PasswordVerifier
	expiresIn time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// newAuthService creates a new AuthService
func newAuthService(users repository.UserRepository, tokens TokenIssuer, passwords PasswordVerifier, cfg *config.Config, log zerolog.Logger) *authService {
	return &authService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		expiresIn: cfg.Auth.ExpiresIn,
		now:       time.Now,
		log:       log.With().Str("service", "auth").Logger(),
	}
}

// Authenticate returns the user for a valid email/password pair, or nil.
// The three failure causes are indistinguishable to the caller.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		s.passwords.VerifyDummy(password)
		return nil, nil
	}
	if !s.passwords.Verify(password, user.PasswordHash) {
		return nil, nil
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// Login records the login time and issues an access and refresh token pair
func (s *authService) Login(ctx context.Context, userID string) (*models.TokenPair, error) {
	if err := s.users.UpdateLastLogin(ctx, userID, s.now().UTC()); err != nil {
		// last_login is informational; the login itself still succeeds
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update last login")
	}

	pair, err := s.issuePair(userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Msg("User logged in")
	return pair, nil
}

// PasswordLogin is Authenticate followed by Login
func (s *authService) PasswordLogin(ctx context.Context, email, password string) (*models.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return s.Login(ctx, user.ID)
}

// Refresh exchanges a refresh token for a new pair. Access tokens are
// rejected.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.tokens.DecodeAs(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.issuePair(claims.Subject)
}

// CurrentUser resolves the active user behind an access token
func (s *authService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.DecodeAs(accessToken, models.TokenTypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *authService) issuePair(subject string) (*models.TokenPair, error) {
	access, err := s.tokens.Issue(subject, models.TokenTypeAccess, 0)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(subject, models.TokenTypeRefresh, 0)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.expiresIn / time.Second),
	}, nil
}
