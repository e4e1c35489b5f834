package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "streamgate/internal/errors"
)

// resolveBody is the JSON request body accepted by POST /tv and /video
type resolveBody struct {
	URL      string            `json:"url" binding:"required"`
	Headers  map[string]string `json:"headers"`
	UseProxy bool              `json:"useProxy"`
}

// proxyFlag reads the useProxy query flag; both true and 1 count
func proxyFlag(c *gin.Context) bool {
	v := strings.ToLower(c.Query("useProxy"))
	return v == "1" || v == "true"
}

// resolveRedirect handles GET/HEAD on a resolver endpoint: resolve the
// upstream URL and redirect the player at the result.
func (s *Server) resolveRedirect(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("u")
		if rawURL == "" {
			respondError(c, apperrors.ValidationError("missing u parameter"))
			return
		}

		result, err := s.resolver.Resolve(c.Request.Context(), rawURL, kind, nil, proxyFlag(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Redirect(http.StatusFound, result.ResolvedURL)
	}
}

// resolveJSON handles POST on a resolver endpoint, returning the full
// resolution record instead of redirecting.
func (s *Server) resolveJSON(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body resolveBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, apperrors.ValidationError("invalid request body"))
			return
		}

		result, err := s.resolver.Resolve(c.Request.Context(), body.URL, kind, body.Headers, body.UseProxy)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// resolveDebug resolves without redirecting so the outcome can be inspected
func (s *Server) resolveDebug(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("u")
		if rawURL == "" {
			respondError(c, apperrors.ValidationError("missing u parameter"))
			return
		}

		result, err := s.resolver.Resolve(c.Request.Context(), rawURL, kind, nil, proxyFlag(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
