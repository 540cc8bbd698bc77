package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgInternal           = "Internal server error"
	msgBadCredentials     = "Incorrect email or password"
	msgBadRefreshToken    = "Invalid refresh token"
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Could not validate credentials"
	msgBlogNotFound       = "Blog not found"
)

// errorResponse is the body of every error answer
type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// respondUnauthorized adds the bearer challenge required on 401 answers
func respondUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	respondError(c, http.StatusUnauthorized, msg)
}

// respondInternal logs the cause and answers with a fixed message. Error
// details never reach the client.
func respondInternal(c *gin.Context, log zerolog.Logger, err error, msg string) {
	log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg(msg)
	respondError(c, http.StatusInternalServerError, msgInternal)
}
