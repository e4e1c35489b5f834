package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"streamgate/internal/convert"
	apperrors "streamgate/internal/errors"
)

// respondError maps an application error onto an HTTP error payload
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	message := err.Error()
	code := apperrors.GetErrorCode(err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

// requestBase reconstructs the externally visible base URL of a request
func requestBase(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// streamBase is the base URL synthesized stream links point at. A
// configured stream_resolver_url wins over the request host so links stay
// reachable when the gateway sits behind NAT.
func (s *Server) streamBase(c *gin.Context) string {
	if configured := s.store.Settings().StreamResolverURL; configured != "" {
		return strings.TrimRight(convert.EnsureHTTP(configured), "/")
	}
	return requestBase(c)
}
