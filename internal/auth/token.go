// Package auth issues and verifies session tokens and password digests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/models"
)

// ErrInvalidToken is returned for malformed, tampered, expired or
// wrong-typed tokens. Callers must not distinguish between these causes
// in responses.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by access and refresh tokens
type Claims struct {
	Type models.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens with a symmetric key
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customizes a TokenService
type Option func(*TokenService)

// WithClock replaces time.Now, mainly for expiry tests
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService builds a token service from the auth configuration
func NewTokenService(cfg config.AuthConfig, opts ...Option) (*TokenService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("token secret is empty")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", cfg.Algorithm)
	}

	s := &TokenService{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL returns the configured lifetime for a token type
func (s *TokenService) DefaultTTL(typ models.TokenType) time.Duration {
	if typ == models.TokenTypeRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

// Issue signs a new token for subject. A non-positive ttl selects the
// default lifetime of the token type.
func (s *TokenService) Issue(subject string, typ models.TokenType, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	if typ != models.TokenTypeAccess && typ != models.TokenTypeRefresh {
		return "", fmt.Errorf("unknown token type %q", typ)
	}
	if ttl <= 0 {
		ttl = s.DefaultTTL(typ)
	}

	issuedAt := s.now().UTC()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Decode verifies the signature, algorithm and expiry of a token
func (s *TokenService) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeAs is Decode plus a check of the type discriminator
func (s *TokenService) DecodeAs(token string, typ models.TokenType) (*Claims, error) {
	claims, err := s.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, typ, claims.Type)
	}
	return claims, nil
}
