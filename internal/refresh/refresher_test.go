package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"

	"streamgate/internal/models"
	"streamgate/internal/store"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingInvalidator) InvalidatePlaylist(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func newTestRefresher(t *testing.T) (*Refresher, *store.Store, *recordingInvalidator) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	pool, err := ants.NewPool(2)
	if err != nil {
		t.Fatalf("ants.NewPool failed: %v", err)
	}
	t.Cleanup(pool.Release)

	inv := &recordingInvalidator{}
	r := New(st, pool, inv, Options{
		CheckEvery:       time.Hour,
		FetchTimeout:     5 * time.Second,
		FetchesPerSecond: 10,
	})
	return r, st, inv
}

func TestDue(t *testing.T) {
	now := time.Now().Unix()
	tests := []struct {
		name string
		pl   models.Playlist
		want bool
	}{
		{"disabled", models.Playlist{EveryHours: 0, LastRefresh: 0}, false},
		{"never refreshed", models.Playlist{EveryHours: 12, LastRefresh: 0}, true},
		{"recent", models.Playlist{EveryHours: 12, LastRefresh: now - 3600}, false},
		{"elapsed", models.Playlist{EveryHours: 1, LastRefresh: now - 7200}, true},
		{"exactly at boundary", models.Playlist{EveryHours: 1, LastRefresh: now - 3600}, true},
	}

	for _, tt := range tests {
		if got := due(tt.pl, now); got != tt.want {
			t.Errorf("%s: due = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRefreshPlaylist(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXTINF:-1,Entry\nhttp://up/movie/1\n"))
	}))
	defer upstream.Close()

	r, st, inv := newTestRefresher(t)

	pl := models.Playlist{
		ID:          "p1",
		Name:        "Test",
		URL:         upstream.URL,
		Mode:        models.ModeVideo,
		ResolverURL: "http://gw",
		EveryHours:  12,
	}
	if err := st.SavePlaylists([]models.Playlist{pl}); err != nil {
		t.Fatalf("SavePlaylists failed: %v", err)
	}

	if err := r.RefreshPlaylist(context.Background(), pl); err != nil {
		t.Fatalf("RefreshPlaylist failed: %v", err)
	}

	text := st.ReadPlaylistText("p1")
	if !strings.Contains(text, "http://gw/video?u=http%3A%2F%2Fup%2Fmovie%2F1") {
		t.Errorf("expected converted playlist on disk, got %q", text)
	}

	stamped := st.FindPlaylist("p1")
	if stamped == nil || stamped.LastRefresh == 0 {
		t.Errorf("expected last_refresh stamped, got %+v", stamped)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(inv.ids) != 1 || inv.ids[0] != "p1" {
		t.Errorf("expected invalidation for p1, got %v", inv.ids)
	}
}

func TestRefreshPlaylistFallsBackToSettingsResolver(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXTINF:-1,Entry\nhttp://up/stream\n"))
	}))
	defer upstream.Close()

	r, st, _ := newTestRefresher(t)
	if err := st.SaveSettings(models.Settings{StreamResolverURL: "http://fallback"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	pl := models.Playlist{ID: "p2", URL: upstream.URL, Mode: models.ModeTV}
	if err := st.SavePlaylists([]models.Playlist{pl}); err != nil {
		t.Fatalf("SavePlaylists failed: %v", err)
	}

	if err := r.RefreshPlaylist(context.Background(), pl); err != nil {
		t.Fatalf("RefreshPlaylist failed: %v", err)
	}
	if !strings.Contains(st.ReadPlaylistText("p2"), "http://fallback/tv?u=") {
		t.Errorf("expected fallback resolver base, got %q", st.ReadPlaylistText("p2"))
	}
}

func TestRefreshPlaylistUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	r, st, inv := newTestRefresher(t)
	pl := models.Playlist{ID: "p3", URL: upstream.URL, Mode: models.ModeVideo}

	if err := r.RefreshPlaylist(context.Background(), pl); err == nil {
		t.Fatal("expected an error")
	}
	if st.ReadPlaylistText("p3") != "" {
		t.Error("failed refresh must not write a playlist file")
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(inv.ids) != 0 {
		t.Errorf("failed refresh must not invalidate, got %v", inv.ids)
	}
}
