package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamgate/internal/catalog"
	"streamgate/internal/category"
	"streamgate/internal/classifier"
	"streamgate/internal/models"
	"streamgate/internal/refresh"
	"streamgate/internal/resolver"
	"streamgate/internal/store"
	"streamgate/internal/xtream"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	return newTestServerProxy(t, "")
}

func newTestServerProxy(t *testing.T, proxyURL string) (*Server, *store.Store) {
	t.Helper()

	dir := t.TempDir()
	st, err := store.New(dir)
	require.NoError(t, err)

	allocator, err := category.NewAllocator(st)
	require.NoError(t, err)
	builder := catalog.NewBuilder(classifier.New(), allocator)

	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	xtreamSvc := xtream.NewService(st, builder, pool, time.Minute, 64)

	adapter := resolver.NewAdapter("/bin/sh", 5*time.Second)
	registry := resolver.LoadRegistry(t.TempDir(), "/nonexistent/domains.json")
	resolverSvc := resolver.NewService(adapter, registry, st, proxyURL)

	refresher := refresh.New(st, pool, xtreamSvc, refresh.Options{
		CheckEvery:       time.Hour,
		FetchTimeout:     5 * time.Second,
		FetchesPerSecond: 10,
	})

	server := NewServer(Dependencies{
		Store:        st,
		Xtream:       xtreamSvc,
		Resolver:     resolverSvc,
		Refresher:    refresher,
		ConfigDir:    dir,
		ResolversDir: dir,
		Version:      "test",
	})
	return server, st
}

func seedAccount(t *testing.T, st *store.Store) {
	t.Helper()
	require.NoError(t, st.WritePlaylistText("live1", `#EXTM3U
#EXTINF:-1 group-title="Live - Sport",Channel One
http://up/live/channel-one
`))
	require.NoError(t, st.SaveAccounts([]models.XtreamAccount{{
		ID:          "acc1",
		Username:    "user",
		Password:    "pass",
		LiveListIDs: []string{"live1"},
	}}))
}

func doRequest(server *Server, method, path string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	w := doRequest(server, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "test", payload["version"])
	assert.Equal(t, false, payload["proxy_configured"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestPlayerAPIAuthFailure(t *testing.T) {
	server, st := newTestServer(t)
	seedAccount(t, st)

	w := doRequest(server, http.MethodGet, "/xtream/acc1/player_api.php?username=user&password=wrong", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var payload map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, float64(0), payload["user_info"]["auth"])
}

func TestPlayerAPILiveStreams(t *testing.T) {
	server, st := newTestServer(t)
	seedAccount(t, st)

	w := doRequest(server, http.MethodGet,
		"/xtream/acc1/player_api.php?username=user&password=pass&action=get_live_streams", "")
	require.Equal(t, http.StatusOK, w.Code)

	var streams []models.LiveStream
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &streams))
	require.Len(t, streams, 1)
	assert.Equal(t, "lv_channel-one", streams[0].StreamID)
	assert.Contains(t, streams[0].DirectSource, "/tv?u=")
}

func TestPlayerAPIUnknownAction(t *testing.T) {
	server, st := newTestServer(t)
	seedAccount(t, st)

	w := doRequest(server, http.MethodGet,
		"/xtream/acc1/player_api.php?username=user&password=pass&action=get_epg", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPHP(t *testing.T) {
	server, st := newTestServer(t)
	seedAccount(t, st)

	w := doRequest(server, http.MethodGet, "/xtream/acc1/get.php?username=user&password=pass", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, catalog.M3UContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "#EXTM3U\n"))
	assert.Contains(t, w.Body.String(), "Channel One")
}

func TestStreamPathsDisabled(t *testing.T) {
	server, st := newTestServer(t)
	seedAccount(t, st)

	for _, path := range []string{
		"/xtream/acc1/live/user/pass/1.m3u8",
		"/xtream/acc1/movie/user/pass/2.mp4",
		"/xtream/acc1/series/user/pass/3.mkv",
	} {
		w := doRequest(server, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestResolveRedirectPassthrough(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/video?u=http%3A%2F%2Funknown.host%2Fstream", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://unknown.host/stream", w.Header().Get("Location"))
}

func TestResolveRedirectUseProxy(t *testing.T) {
	server, _ := newTestServerProxy(t, "http://mflow:8888")
	wrapped := "http://mflow:8888/fetch?target=http%3A%2F%2Funknown.host%2Fstream"

	w := doRequest(server, http.MethodGet, "/video?u=http%3A%2F%2Funknown.host%2Fstream&useProxy=true", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, wrapped, w.Header().Get("Location"))

	// The numeric form counts too
	w = doRequest(server, http.MethodGet, "/video?u=http%3A%2F%2Funknown.host%2Fstream&useProxy=1", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, wrapped, w.Header().Get("Location"))

	w = doRequest(server, http.MethodPost, "/video",
		`{"url": "http://unknown.host/stream", "useProxy": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result resolver.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, wrapped, result.ResolvedURL)

	// Absent flag leaves the URL untouched
	w = doRequest(server, http.MethodGet, "/video?u=http%3A%2F%2Funknown.host%2Fstream", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://unknown.host/stream", w.Header().Get("Location"))
}

func TestPlayAliasesTV(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/play?u=http%3A%2F%2Funknown.host%2Fstream", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://unknown.host/stream", w.Header().Get("Location"))
}

func TestResolveMissingParam(t *testing.T) {
	server, _ := newTestServer(t)
	w := doRequest(server, http.MethodGet, "/video", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveDebug(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/debug/tv?u=http%3A%2F%2Funknown.host%2Fstream", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result resolver.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, "http://unknown.host/stream", result.ResolvedURL)
}

func TestStreamLinksUseConfiguredResolverBase(t *testing.T) {
	server, st := newTestServer(t)
	seedAccount(t, st)
	require.NoError(t, st.SaveSettings(models.Settings{StreamResolverURL: "public.gw:9000"}))

	w := doRequest(server, http.MethodGet,
		"/xtream/acc1/player_api.php?username=user&password=pass&action=get_live_streams", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"direct_source":"http://public.gw:9000/tv?u=`)

	w = doRequest(server, http.MethodGet, "/xtream/acc1/get.php?username=user&password=pass", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http://public.gw:9000/tv?u=")
}

func TestSettingsRoundtrip(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, http.MethodPut, "/admin/settings",
		`{"mediaflow_url": "http://mflow:8888", "api_password": "secret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(server, http.MethodGet, "/admin/settings", "")
	require.Equal(t, http.StatusOK, w.Code)

	var settings models.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, "http://mflow:8888", settings.MediaflowURL)
	assert.Equal(t, "secret", settings.APIPassword)
}

func TestConvertEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"text": "#EXTM3U\n#EXTINF:-1,Entry\nhttp://up/movie/1\n", "mode": "video", "resolver_url": "http://gw"}`
	w := doRequest(server, http.MethodPost, "/admin/convert", body)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload["text"], "http://gw/video?u=http%3A%2F%2Fup%2Fmovie%2F1")
}

func TestDownloadList(t *testing.T) {
	server, st := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/lists/p1.m3u", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, st.WritePlaylistText("p1", "#EXTM3U\n"))
	w = doRequest(server, http.MethodGet, "/lists/p1.m3u", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#EXTM3U\n", w.Body.String())

	w = doRequest(server, http.MethodGet, "/lists/p1.txt", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaylistCRUD(t *testing.T) {
	server, st := newTestServer(t)

	// Creation triggers an immediate fetch which fails against a dead
	// upstream; the playlist record must exist regardless.
	w := doRequest(server, http.MethodPost, "/admin/playlists",
		`{"name": "My List", "url": "http://127.0.0.1:1/list.m3u", "mode": "tv"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Playlist
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Len(t, created.ID, 10)
	assert.Equal(t, models.ModeTV, created.Mode)
	assert.Equal(t, 12, created.EveryHours)

	w = doRequest(server, http.MethodGet, "/admin/playlists", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.Playlist
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)

	w = doRequest(server, http.MethodPut, "/admin/playlists/"+created.ID,
		`{"name": "Renamed", "url": "http://127.0.0.1:1/list.m3u"}`)
	require.Equal(t, http.StatusOK, w.Code)
	found := st.FindPlaylist(created.ID)
	require.NotNil(t, found)
	assert.Equal(t, "Renamed", found.Name)

	w = doRequest(server, http.MethodDelete, "/admin/playlists/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, st.FindPlaylist(created.ID))

	w = doRequest(server, http.MethodDelete, "/admin/playlists/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountCRUD(t *testing.T) {
	server, st := newTestServer(t)

	w := doRequest(server, http.MethodPost, "/admin/xtreams",
		`{"username": "user", "password": "pass", "live_list_ids": ["live1"]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.XtreamAccount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.True(t, strings.HasPrefix(created.ID, "xt_"))

	w = doRequest(server, http.MethodPost, "/admin/xtreams", `{"username": "", "password": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(server, http.MethodPut, "/admin/xtreams/"+created.ID,
		`{"username": "user2", "password": "pass2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	found := st.FindAccount(created.ID)
	require.NotNil(t, found)
	assert.Equal(t, "user2", found.Username)

	w = doRequest(server, http.MethodDelete, "/admin/xtreams/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, st.FindAccount(created.ID))
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	// Hit another route first so the request counter has a sample
	doRequest(server, http.MethodGet, "/health", "")

	w := doRequest(server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "streamgate_http_requests_total")
}
