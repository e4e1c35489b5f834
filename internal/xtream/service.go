package xtream

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"streamgate/internal/catalog"
	apperrors "streamgate/internal/errors"
	"streamgate/internal/logger"
	"streamgate/internal/metrics"
	"streamgate/internal/models"
	"streamgate/internal/parser"
	"streamgate/internal/store"
)

// The player_api action vocabulary. Names are part of the wire protocol
// and case-sensitive.
const (
	ActionGetLiveCategories   = "get_live_categories"
	ActionGetLiveStreams      = "get_live_streams"
	ActionGetVODCategories    = "get_vod_categories"
	ActionGetVODStreams       = "get_vod_streams"
	ActionGetVODInfo          = "get_vod_info"
	ActionGetSeriesCategories = "get_series_categories"
	ActionGetSeries           = "get_series"
	ActionGetSeriesInfo       = "get_series_info"
)

// cacheableActions are the list-shaped projections worth caching; the
// parameterised info lookups share the parsed-playlist cache instead.
var cacheableActions = map[string]bool{
	ActionGetLiveCategories:   true,
	ActionGetLiveStreams:      true,
	ActionGetVODCategories:    true,
	ActionGetVODStreams:       true,
	ActionGetSeriesCategories: true,
	ActionGetSeries:           true,
}

// ActionRequest carries the player_api request parameters
type ActionRequest struct {
	Action   string
	VodID    string
	SeriesID string
}

// Service is the Xtream API façade: it assembles entry pools from the
// account's playlist selections and projects them through the catalog
// builders. Every projection is read-only; no action mutates state.
type Service struct {
	store     *store.Store
	builder   *catalog.Builder
	pool      *ants.Pool
	parsed    *xsync.MapOf[string, []models.PlaylistEntry]
	responses *otter.Cache[string, []byte]
	logger    *logger.Logger
}

// NewService creates the façade service. ttl and maxEntries bound the
// player_api response cache; workerPool parallelizes playlist reads.
func NewService(st *store.Store, builder *catalog.Builder, workerPool *ants.Pool, ttl time.Duration, maxEntries int) *Service {
	responses := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      maxEntries,
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](ttl),
	})

	return &Service{
		store:     st,
		builder:   builder,
		pool:      workerPool,
		parsed:    xsync.NewMapOf[string, []models.PlaylistEntry](),
		responses: responses,
		logger:    logger.AppLogger(),
	}
}

// Authenticate matches trimmed credentials against the account with the
// given id. A mismatch is surfaced distinctly from not-found.
func (s *Service) Authenticate(accountID, username, password string) (*models.XtreamAccount, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, apperrors.UnauthorizedError("missing credentials")
	}

	for _, account := range s.store.Accounts() {
		if account.ID == accountID && account.Username == username && account.Password == password {
			found := account
			return &found, nil
		}
	}
	return nil, apperrors.UnauthorizedError("invalid credentials")
}

// InvalidatePlaylist drops the parsed entries for one playlist and every
// cached response built from them.
func (s *Service) InvalidatePlaylist(id string) {
	s.parsed.Delete(id)
	s.responses.InvalidateAll()
}

// InvalidateAll drops every cached parse and response
func (s *Service) InvalidateAll() {
	s.parsed.Clear()
	s.responses.InvalidateAll()
}

// entriesFor reads and parses the playlists in selection order. Parses are
// cached per playlist id and performed on the worker pool on miss.
func (s *Service) entriesFor(ids []string) []models.PlaylistEntry {
	results := make([][]models.PlaylistEntry, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		if cached, ok := s.parsed.Load(id); ok {
			results[i] = cached
			continue
		}

		wg.Add(1)
		i, id := i, id
		parse := func() {
			defer wg.Done()
			text := s.store.ReadPlaylistText(id)
			entries := parser.New().Parse(text)
			s.parsed.Store(id, entries)
			results[i] = entries
			s.logger.WithFields(map[string]interface{}{
				"playlist_id": id,
				"entries":     len(entries),
			}).Debug("playlist parsed")
		}
		if err := s.pool.Submit(parse); err != nil {
			parse()
		}
	}
	wg.Wait()

	var out []models.PlaylistEntry
	for _, entries := range results {
		out = append(out, entries...)
	}
	return out
}

// pools assembles the three entry pools for an account. Mixed lists feed
// both the movie and the series pool.
func (s *Service) pools(account *models.XtreamAccount) (live, movie, series []models.PlaylistEntry) {
	live = s.entriesFor(account.LiveListIDs)
	movie = s.entriesFor(account.MoviePoolIDs())
	series = s.entriesFor(account.SeriesPoolIDs())
	return live, movie, series
}

// HandleAction dispatches a player_api request. An empty action yields the
// account/server handshake record; an unrecognized one is a client error.
func (s *Service) HandleAction(base string, account *models.XtreamAccount, req ActionRequest) (interface{}, error) {
	if req.Action == "" {
		return s.handshake(base, account), nil
	}

	if cacheableActions[req.Action] {
		key := account.ID + "|" + req.Action + "|" + base
		if data, ok := s.responses.GetIfPresent(key); ok {
			metrics.PlayerAPICache.WithLabelValues("hit").Inc()
			return json.RawMessage(data), nil
		}
		metrics.PlayerAPICache.WithLabelValues("miss").Inc()

		payload, err := s.buildAction(base, account, req)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode response")
		}
		s.responses.Set(key, data)
		return json.RawMessage(data), nil
	}

	return s.buildAction(base, account, req)
}

// buildAction routes an action to the matching builder projection
func (s *Service) buildAction(base string, account *models.XtreamAccount, req ActionRequest) (interface{}, error) {
	switch req.Action {
	case ActionGetLiveCategories:
		metrics.CatalogBuilds.WithLabelValues("live").Inc()
		_, catMap := s.builder.BuildLiveStreams(base, s.entriesFor(account.LiveListIDs))
		return categoriesList(catMap), nil

	case ActionGetLiveStreams:
		metrics.CatalogBuilds.WithLabelValues("live").Inc()
		streams, _ := s.builder.BuildLiveStreams(base, s.entriesFor(account.LiveListIDs))
		return streams, nil

	case ActionGetVODCategories:
		metrics.CatalogBuilds.WithLabelValues("vod").Inc()
		_, catMap := s.builder.BuildVODStreams(base, s.entriesFor(account.MoviePoolIDs()))
		return categoriesList(catMap), nil

	case ActionGetVODStreams:
		metrics.CatalogBuilds.WithLabelValues("vod").Inc()
		streams, _ := s.builder.BuildVODStreams(base, s.entriesFor(account.MoviePoolIDs()))
		return streams, nil

	case ActionGetVODInfo:
		if req.VodID == "" {
			return nil, apperrors.ValidationError("vod_id is required")
		}
		return s.builder.BuildVODInfo(req.VodID, s.entriesFor(account.MoviePoolIDs()))

	case ActionGetSeriesCategories:
		metrics.CatalogBuilds.WithLabelValues("series").Inc()
		_, catMap := s.builder.BuildSeriesCollections(base, s.entriesFor(account.SeriesPoolIDs()))
		return categoriesList(catMap), nil

	case ActionGetSeries:
		metrics.CatalogBuilds.WithLabelValues("series").Inc()
		set, _ := s.builder.BuildSeriesCollections(base, s.entriesFor(account.SeriesPoolIDs()))
		return set.List(), nil

	case ActionGetSeriesInfo:
		if req.SeriesID == "" {
			return nil, apperrors.ValidationError("series_id is required")
		}
		metrics.CatalogBuilds.WithLabelValues("series").Inc()
		set, _ := s.builder.BuildSeriesCollections(base, s.entriesFor(account.SeriesPoolIDs()))
		sm := set.Get(req.SeriesID)
		if sm == nil {
			return nil, apperrors.NotFoundError("series", req.SeriesID)
		}
		return map[string]interface{}{
			"info": map[string]interface{}{
				"name":        sm.Name,
				"cover":       sm.Cover,
				"plot":        sm.Plot,
				"rating":      sm.Rating,
				"releaseDate": "",
				"stream_type": "series",
				"series_id":   sm.SeriesID,
			},
			"episodes": sm.EpisodesBySeason,
			"seasons":  []interface{}{},
		}, nil

	default:
		return nil, apperrors.ValidationError("unsupported action: " + req.Action)
	}
}

// handshake is the account/server info record returned without an action
func (s *Service) handshake(base string, account *models.XtreamAccount) interface{} {
	return map[string]interface{}{
		"user_info": map[string]interface{}{
			"auth":        1,
			"status":      "Active",
			"username":    account.Username,
			"password":    account.Password,
			"active_cons": "1",
		},
		"server_info": map[string]interface{}{
			"url":             base,
			"port":            "",
			"https_port":      "",
			"server_protocol": "http",
			"timezone":        "UTC",
		},
	}
}

// RenderGetPHP renders the unified pool as M3U text for get.php
func (s *Service) RenderGetPHP(base string, account *models.XtreamAccount) string {
	live, movie, series := s.pools(account)

	metrics.CatalogBuilds.WithLabelValues("live").Inc()
	liveStreams, _ := s.builder.BuildLiveStreams(base, live)
	metrics.CatalogBuilds.WithLabelValues("vod").Inc()
	vodStreams, _ := s.builder.BuildVODStreams(base, movie)
	metrics.CatalogBuilds.WithLabelValues("series").Inc()
	seriesSet, _ := s.builder.BuildSeriesCollections(base, series)

	return catalog.RenderM3U(liveStreams, vodStreams, seriesSet)
}

// categoriesList renders a category map sorted ascending by id
func categoriesList(catMap map[string]string) []models.Category {
	out := make([]models.Category, 0, len(catMap))
	for name, id := range catMap {
		out = append(out, models.Category{CategoryID: id, CategoryName: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}
