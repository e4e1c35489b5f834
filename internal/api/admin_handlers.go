package api

import (
	"fmt"
	"hash/crc32"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"streamgate/internal/catalog"
	"streamgate/internal/convert"
	apperrors "streamgate/internal/errors"
	"streamgate/internal/models"
)

// newPlaylistID returns a short random id for a playlist record
func newPlaylistID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

// newAccountID derives an account id from the name and creation time
func newAccountID(name string) string {
	seed := name + strconv.FormatInt(time.Now().UnixNano(), 10)
	return fmt.Sprintf("xt_%08x", crc32.ChecksumIEEE([]byte(seed)))
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Settings())
}

func (s *Server) putSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, apperrors.ValidationError("invalid settings body"))
		return
	}
	if err := s.store.SaveSettings(settings); err != nil {
		respondError(c, err)
		return
	}
	s.xtream.InvalidateAll()
	c.JSON(http.StatusOK, s.store.Settings())
}

func (s *Server) listPlaylists(c *gin.Context) {
	items := s.store.Playlists()
	if items == nil {
		items = []models.Playlist{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createPlaylist(c *gin.Context) {
	var pl models.Playlist
	if err := c.ShouldBindJSON(&pl); err != nil {
		respondError(c, apperrors.ValidationError("invalid playlist body"))
		return
	}
	if strings.TrimSpace(pl.URL) == "" {
		respondError(c, apperrors.ValidationError("playlist url is required"))
		return
	}
	if pl.ID == "" {
		pl.ID = newPlaylistID()
	}
	if pl.Mode != models.ModeTV {
		pl.Mode = models.ModeVideo
	}
	if pl.EveryHours < 1 {
		pl.EveryHours = 12
	}

	items := append(s.store.Playlists(), pl)
	if err := s.store.SavePlaylists(items); err != nil {
		respondError(c, err)
		return
	}

	// Fetch and convert right away so the list is usable without waiting
	// for the background cycle.
	if err := s.refresher.RefreshPlaylist(c.Request.Context(), pl); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"playlist_id": pl.ID,
		}).Warn("initial playlist fetch failed")
	}

	c.JSON(http.StatusCreated, s.store.FindPlaylist(pl.ID))
}

func (s *Server) updatePlaylist(c *gin.Context) {
	id := c.Param("id")
	existing := s.store.FindPlaylist(id)
	if existing == nil {
		respondError(c, apperrors.NotFoundError("playlist", id))
		return
	}

	var pl models.Playlist
	if err := c.ShouldBindJSON(&pl); err != nil {
		respondError(c, apperrors.ValidationError("invalid playlist body"))
		return
	}
	pl.ID = id
	if pl.Mode != models.ModeTV {
		pl.Mode = models.ModeVideo
	}
	if pl.EveryHours < 1 {
		pl.EveryHours = 12
	}

	items := s.store.Playlists()
	for i := range items {
		if items[i].ID == id {
			items[i] = pl
			break
		}
	}
	if err := s.store.SavePlaylists(items); err != nil {
		respondError(c, err)
		return
	}
	s.xtream.InvalidatePlaylist(id)
	c.JSON(http.StatusOK, pl)
}

func (s *Server) deletePlaylist(c *gin.Context) {
	id := c.Param("id")
	items := s.store.Playlists()
	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		respondError(c, apperrors.NotFoundError("playlist", id))
		return
	}

	if err := s.store.SavePlaylists(kept); err != nil {
		respondError(c, err)
		return
	}
	s.store.RemovePlaylistFile(id)
	s.xtream.InvalidatePlaylist(id)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) refreshPlaylist(c *gin.Context) {
	id := c.Param("id")
	pl := s.store.FindPlaylist(id)
	if pl == nil {
		respondError(c, apperrors.NotFoundError("playlist", id))
		return
	}

	if err := s.refresher.RefreshPlaylist(c.Request.Context(), *pl); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.FindPlaylist(id))
}

func (s *Server) listAccounts(c *gin.Context) {
	items := s.store.Accounts()
	if items == nil {
		items = []models.XtreamAccount{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createAccount(c *gin.Context) {
	var account models.XtreamAccount
	if err := c.ShouldBindJSON(&account); err != nil {
		respondError(c, apperrors.ValidationError("invalid account body"))
		return
	}
	if strings.TrimSpace(account.Username) == "" || strings.TrimSpace(account.Password) == "" {
		respondError(c, apperrors.ValidationError("username and password are required"))
		return
	}
	if account.ID == "" {
		account.ID = newAccountID(account.Name)
	}

	if err := s.store.SaveAccounts([]models.XtreamAccount{account}); err != nil {
		respondError(c, err)
		return
	}
	s.xtream.InvalidateAll()
	c.JSON(http.StatusCreated, account)
}

func (s *Server) updateAccount(c *gin.Context) {
	id := c.Param("id")
	if s.store.FindAccount(id) == nil {
		respondError(c, apperrors.NotFoundError("account", id))
		return
	}

	var account models.XtreamAccount
	if err := c.ShouldBindJSON(&account); err != nil {
		respondError(c, apperrors.ValidationError("invalid account body"))
		return
	}
	account.ID = id

	if err := s.store.SaveAccounts([]models.XtreamAccount{account}); err != nil {
		respondError(c, err)
		return
	}
	s.xtream.InvalidateAll()
	c.JSON(http.StatusOK, account)
}

func (s *Server) deleteAccount(c *gin.Context) {
	id := c.Param("id")
	items := s.store.Accounts()
	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		respondError(c, apperrors.NotFoundError("account", id))
		return
	}

	if err := s.store.ReplaceAccounts(kept); err != nil {
		respondError(c, err)
		return
	}
	s.xtream.InvalidateAll()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// convertBody is the ad hoc conversion request accepted by /admin/convert
type convertBody struct {
	Text        string              `json:"text" binding:"required"`
	Mode        models.PlaylistMode `json:"mode"`
	ResolverURL string              `json:"resolver_url"`
}

func (s *Server) convertText(c *gin.Context) {
	var body convertBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperrors.ValidationError("invalid convert body"))
		return
	}
	if body.Mode != models.ModeTV {
		body.Mode = models.ModeVideo
	}

	resolverBase := body.ResolverURL
	if resolverBase == "" {
		resolverBase = s.store.Settings().StreamResolverURL
	}
	c.JSON(http.StatusOK, gin.H{
		"text": convert.PlaylistText(body.Text, body.Mode, resolverBase),
	})
}

// downloadList serves a stored converted playlist file
func (s *Server) downloadList(c *gin.Context) {
	file := c.Param("file")
	id := strings.TrimSuffix(file, ".m3u")
	if id == "" || id == file {
		respondError(c, apperrors.ValidationError("expected a .m3u file name"))
		return
	}

	text := s.store.ReadPlaylistText(id)
	if text == "" {
		respondError(c, apperrors.NotFoundError("playlist", id))
		return
	}
	c.Data(http.StatusOK, catalog.M3UContentType, []byte(text))
}
