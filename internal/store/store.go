package store

import (
	"os"
	"path/filepath"
	"strings"

	"streamgate/internal/convert"
	"streamgate/internal/logger"
	"streamgate/internal/models"
)

const (
	settingsFile    = "settings.json"
	playlistsFile   = "playlists.json"
	accountsFile    = "xtreams.json"
	categoryIDsFile = "category_ids.json"
	playlistsSubdir = "playlists"
)

// Store persists the gateway's configuration as flat JSON documents under
// one config directory. Every document is loaded wholesale and rewritten
// wholesale; there is no partial update on disk.
type Store struct {
	configDir string
	logger    *logger.Logger
}

// New creates a store rooted at configDir and ensures the playlist
// directory exists.
func New(configDir string) (*Store, error) {
	s := &Store{
		configDir: configDir,
		logger:    logger.StoreLogger(),
	}
	if err := os.MkdirAll(s.playlistsDir(), 0o755); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) playlistsDir() string {
	return filepath.Join(s.configDir, playlistsSubdir)
}

// PlaylistPath returns the path of a converted playlist file
func (s *Store) PlaylistPath(id string) string {
	return filepath.Join(s.playlistsDir(), id+".m3u")
}

// Settings loads settings.json merged over defaults
func (s *Store) Settings() models.Settings {
	var settings models.Settings
	if _, err := readJSONFile(filepath.Join(s.configDir, settingsFile), &settings); err != nil {
		s.logger.Error("failed to load settings", err)
	}
	return settings
}

// SaveSettings overwrites settings.json with trimmed values. A bare
// host:port resolver base is normalized to an http URL before it lands
// on disk.
func (s *Store) SaveSettings(settings models.Settings) error {
	settings.MediaflowURL = strings.TrimSpace(settings.MediaflowURL)
	settings.APIPassword = strings.TrimSpace(settings.APIPassword)
	settings.StreamResolverURL = convert.EnsureHTTP(settings.StreamResolverURL)
	return writeJSONFile(filepath.Join(s.configDir, settingsFile), settings)
}

// Playlists loads the playlist index
func (s *Store) Playlists() []models.Playlist {
	var items []models.Playlist
	if _, err := readJSONFile(filepath.Join(s.configDir, playlistsFile), &items); err != nil {
		s.logger.Error("failed to load playlist index", err)
	}
	return items
}

// SavePlaylists overwrites the playlist index
func (s *Store) SavePlaylists(items []models.Playlist) error {
	return writeJSONFile(filepath.Join(s.configDir, playlistsFile), items)
}

// FindPlaylist returns the playlist with the given id, or nil
func (s *Store) FindPlaylist(id string) *models.Playlist {
	for _, item := range s.Playlists() {
		if item.ID == id {
			found := item
			return &found
		}
	}
	return nil
}

// ReadPlaylistText returns the converted playlist file contents; a missing
// file yields an empty string.
func (s *Store) ReadPlaylistText(id string) string {
	data, err := os.ReadFile(s.PlaylistPath(id))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithFields(map[string]interface{}{
				"playlist_id": id,
			}).Error("failed to read playlist file", err)
		}
		return ""
	}
	return string(data)
}

// WritePlaylistText overwrites the converted playlist file
func (s *Store) WritePlaylistText(id, text string) error {
	if err := os.MkdirAll(s.playlistsDir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.PlaylistPath(id), []byte(text), 0o644)
}

// RemovePlaylistFile deletes the converted playlist file; missing files
// are ignored.
func (s *Store) RemovePlaylistFile(id string) {
	if err := os.Remove(s.PlaylistPath(id)); err != nil && !os.IsNotExist(err) {
		s.logger.WithFields(map[string]interface{}{
			"playlist_id": id,
		}).Error("failed to remove playlist file", err)
	}
}

// Accounts loads the Xtream account list
func (s *Store) Accounts() []models.XtreamAccount {
	var items []models.XtreamAccount
	if _, err := readJSONFile(filepath.Join(s.configDir, accountsFile), &items); err != nil {
		s.logger.Error("failed to load xtream accounts", err)
	}
	return items
}

// SaveAccounts persists accounts merging with the stored ones by id, so a
// caller holding a partial list cannot drop accounts it never loaded.
func (s *Store) SaveAccounts(items []models.XtreamAccount) error {
	existing := s.Accounts()
	index := make(map[string]int, len(existing))
	for i, item := range existing {
		index[item.ID] = i
	}

	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if i, ok := index[item.ID]; ok {
			existing[i] = item
		} else {
			index[item.ID] = len(existing)
			existing = append(existing, item)
		}
	}
	return writeJSONFile(filepath.Join(s.configDir, accountsFile), existing)
}

// ReplaceAccounts overwrites the stored account list verbatim (deletes
// included).
func (s *Store) ReplaceAccounts(items []models.XtreamAccount) error {
	if items == nil {
		items = []models.XtreamAccount{}
	}
	return writeJSONFile(filepath.Join(s.configDir, accountsFile), items)
}

// FindAccount returns the account with the given id, or nil
func (s *Store) FindAccount(id string) *models.XtreamAccount {
	for _, item := range s.Accounts() {
		if item.ID == id {
			found := item
			return &found
		}
	}
	return nil
}

// CategoryIDs loads the persisted category name to id map
func (s *Store) CategoryIDs() (map[string]string, error) {
	ids := make(map[string]string)
	if _, err := readJSONFile(filepath.Join(s.configDir, categoryIDsFile), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveCategoryIDs overwrites the whole category id map
func (s *Store) SaveCategoryIDs(ids map[string]string) error {
	return writeJSONFile(filepath.Join(s.configDir, categoryIDsFile), ids)
}
