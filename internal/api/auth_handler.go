package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/service"
)

// loginForm follows the OAuth2 password flow field names
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// AuthHandler handles the admin auth endpoints
type AuthHandler struct {
	services *service.Services
	metrics  *metrics
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, m *metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		metrics:  m,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	pair, err := h.services.Auth.PasswordLogin(c.Request.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.metrics.logins.WithLabelValues("failure").Inc()
		h.log.Info().Str("client_ip", c.ClientIP()).Msg("Login rejected")
		respondUnauthorized(c, msgBadCredentials)
		return
	case err != nil:
		h.metrics.logins.WithLabelValues("error").Inc()
		respondInternal(c, h.log, err, "Login failed")
		return
	}

	h.metrics.logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, pair)
}

// Refresh handles POST /api/admin/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "refresh_token is required")
		return
	}

	pair, err := h.services.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		respondUnauthorized(c, msgBadRefreshToken)
		return
	case err != nil:
		respondInternal(c, h.log, err, "Token refresh failed")
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Me handles GET /api/admin/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		respondUnauthorized(c, msgNotAuthenticated)
		return
	}

	user, err := h.services.Auth.CurrentUser(c.Request.Context(), token)
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		respondUnauthorized(c, msgInvalidCredentials)
		return
	case err != nil:
		respondInternal(c, h.log, err, "Failed to load current user")
		return
	}

	c.JSON(http.StatusOK, user.ToDTO())
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
