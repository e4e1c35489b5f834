package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streamgate/internal/catalog"
	"streamgate/internal/models"
	"streamgate/internal/xtream"
)

// credentials reads the Xtream username/password from query or form
func credentials(c *gin.Context) (string, string) {
	username := c.Query("username")
	password := c.Query("password")
	if username == "" {
		username = c.PostForm("username")
	}
	if password == "" {
		password = c.PostForm("password")
	}
	return username, password
}

// authenticate resolves the account for a request, writing the Xtream-style
// auth failure payload when credentials do not match.
func (s *Server) authenticate(c *gin.Context) (*models.XtreamAccount, bool) {
	username, password := credentials(c)
	account, err := s.xtream.Authenticate(c.Param("id"), username, password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"user_info": gin.H{"auth": 0},
		})
		return nil, false
	}
	return account, true
}

// playerAPI serves the player_api.php action dispatch
func (s *Server) playerAPI(c *gin.Context) {
	account, ok := s.authenticate(c)
	if !ok {
		return
	}

	req := xtream.ActionRequest{
		Action:   c.Query("action"),
		VodID:    c.Query("vod_id"),
		SeriesID: c.Query("series_id"),
	}
	if req.Action == "" {
		req.Action = c.PostForm("action")
	}

	payload, err := s.xtream.HandleAction(s.streamBase(c), account, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// getPHP serves the unified account catalog as an M3U download
func (s *Server) getPHP(c *gin.Context) {
	account, ok := s.authenticate(c)
	if !ok {
		return
	}

	text := s.xtream.RenderGetPHP(s.streamBase(c), account)
	c.Header("Content-Disposition", `attachment; filename="playlist.m3u"`)
	c.Data(http.StatusOK, catalog.M3UContentType, []byte(text))
}
