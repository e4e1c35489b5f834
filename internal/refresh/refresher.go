package refresh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/ratelimit"

	"streamgate/internal/convert"
	apperrors "streamgate/internal/errors"
	"streamgate/internal/logger"
	"streamgate/internal/metrics"
	"streamgate/internal/models"
	"streamgate/internal/store"
)

// Invalidator is notified after a playlist file changes on disk
type Invalidator interface {
	InvalidatePlaylist(id string)
}

// Options tunes the refresh loop
type Options struct {
	CheckEvery       time.Duration
	FetchTimeout     time.Duration
	FetchesPerSecond int
}

// Refresher periodically re-fetches playlists whose refresh interval has
// elapsed, converts them and rewrites the stored copy. Fetches run on the
// shared worker pool behind a global rate limit.
type Refresher struct {
	store       *store.Store
	pool        *ants.Pool
	client      *http.Client
	limiter     ratelimit.Limiter
	invalidator Invalidator
	checkEvery  time.Duration
	logger      *logger.Logger

	indexMu  sync.Mutex
	inflight *xsync.MapOf[string, bool]
}

// New creates a refresher sharing the given worker pool
func New(st *store.Store, pool *ants.Pool, invalidator Invalidator, opts Options) *Refresher {
	perSecond := opts.FetchesPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Refresher{
		store:       st,
		pool:        pool,
		client:      &http.Client{Timeout: opts.FetchTimeout},
		limiter:     ratelimit.New(perSecond),
		invalidator: invalidator,
		checkEvery:  opts.CheckEvery,
		logger:      logger.AppLogger(),
		inflight:    xsync.NewMapOf[string, bool](),
	}
}

// Run blocks until ctx is done, scanning for due playlists on every tick.
// The first scan happens immediately.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.checkEvery)
	defer ticker.Stop()

	r.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scan(ctx)
		}
	}
}

// scan submits a refresh for every due playlist not already in flight
func (r *Refresher) scan(ctx context.Context) {
	now := time.Now().Unix()
	for _, item := range r.store.Playlists() {
		if !due(item, now) {
			continue
		}
		if _, loaded := r.inflight.LoadOrStore(item.ID, true); loaded {
			continue
		}

		pl := item
		job := func() {
			defer r.inflight.Delete(pl.ID)
			if err := r.RefreshPlaylist(ctx, pl); err != nil {
				r.logger.WithFields(map[string]interface{}{
					"playlist_id": pl.ID,
					"name":        pl.Name,
				}).Error("playlist refresh failed", err)
			}
		}
		if err := r.pool.Submit(job); err != nil {
			job()
		}
	}
}

// due reports whether a playlist's refresh interval has elapsed. An
// interval of zero disables automatic refresh.
func due(pl models.Playlist, now int64) bool {
	if pl.EveryHours <= 0 {
		return false
	}
	return now-pl.LastRefresh >= int64(pl.EveryHours)*3600
}

// RefreshPlaylist fetches, converts and stores one playlist, then stamps
// its last refresh time and invalidates derived caches.
func (r *Refresher) RefreshPlaylist(ctx context.Context, pl models.Playlist) error {
	r.limiter.Take()

	text, err := r.fetch(ctx, pl.URL)
	if err != nil {
		metrics.PlaylistRefreshes.WithLabelValues("error").Inc()
		return err
	}

	resolverBase := pl.ResolverURL
	if resolverBase == "" {
		resolverBase = r.store.Settings().StreamResolverURL
	}
	converted := convert.PlaylistText(text, pl.Mode, resolverBase)

	if err := r.store.WritePlaylistText(pl.ID, converted); err != nil {
		metrics.PlaylistRefreshes.WithLabelValues("error").Inc()
		return err
	}
	if err := r.stampRefreshed(pl.ID); err != nil {
		metrics.PlaylistRefreshes.WithLabelValues("error").Inc()
		return err
	}

	if r.invalidator != nil {
		r.invalidator.InvalidatePlaylist(pl.ID)
	}
	metrics.PlaylistRefreshes.WithLabelValues("ok").Inc()
	r.logger.WithFields(map[string]interface{}{
		"playlist_id": pl.ID,
		"name":        pl.Name,
	}).Info("playlist refreshed")
	return nil
}

// fetch downloads the upstream playlist body
func (r *Refresher) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, convert.EnsureHTTP(rawURL), nil)
	if err != nil {
		return "", apperrors.ValidationError("invalid playlist url: " + rawURL)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternalService, "playlist fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.CodeExternalService,
			fmt.Sprintf("playlist fetch returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternalService, "playlist body read failed")
	}
	return string(body), nil
}

// stampRefreshed rewrites the playlist index with an updated timestamp
func (r *Refresher) stampRefreshed(id string) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	items := r.store.Playlists()
	for i := range items {
		if items[i].ID == id {
			items[i].LastRefresh = time.Now().Unix()
			break
		}
	}
	return r.store.SavePlaylists(items)
}
