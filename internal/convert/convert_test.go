package convert

import (
	"strings"
	"testing"

	"streamgate/internal/models"
)

func TestEnsureHTTP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com:8080", "http://example.com:8080"},
		{"http://example.com", "http://example.com"},
		{"https://example.com", "https://example.com"},
		{"  example.com  ", "http://example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EnsureHTTP(tt.in); got != tt.want {
			t.Errorf("EnsureHTTP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolverLink(t *testing.T) {
	got := ResolverLink("http://gw:8000/", models.ModeVideo, "http://up/movie/1")
	if got != "http://gw:8000/video?u=http%3A%2F%2Fup%2Fmovie%2F1" {
		t.Errorf("unexpected video link: %s", got)
	}

	got = ResolverLink("gw:8000", models.ModeTV, "http://up/stream")
	if got != "http://gw:8000/tv?u=http%3A%2F%2Fup%2Fstream" {
		t.Errorf("unexpected tv link: %s", got)
	}

	// Empty base leaves the URL untouched
	if got := ResolverLink("", models.ModeVideo, "http://up/x"); got != "http://up/x" {
		t.Errorf("expected passthrough, got %s", got)
	}
}

func TestPlaylistTextVideoMode(t *testing.T) {
	src := `#EXTM3U
# a stray comment
#EXTINF:-1 tvg-id="m1" group-title="Film - Azione",Movie One
http://up/movie/1
#EXTINF:-1,Movie One Again
http://up/movie/1
#EXTINF:-1,Movie Two
http://up/movie/2
`

	out := PlaylistText(src, models.ModeVideo, "http://gw")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if lines[0] != "#EXTM3U" {
		t.Errorf("expected header first, got %q", lines[0])
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			t.Errorf("non-EXT comment survived video mode: %q", line)
		}
		if strings.Contains(line, "group-title") {
			t.Errorf("group-title survived video mode: %q", line)
		}
	}

	// The duplicate URL is dropped together with nothing else
	count := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "http://gw/video?u=") {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 rewritten URLs, got %d", count)
	}

	if !strings.Contains(out, "http://gw/video?u=http%3A%2F%2Fup%2Fmovie%2F1") {
		t.Errorf("expected rewritten movie URL in output: %s", out)
	}
}

func TestPlaylistTextTVModeKeepsComments(t *testing.T) {
	src := `#EXTM3U
# kept comment
#EXTINF:-1 group-title="Live - Sport",Channel
http://up/stream/1
`

	out := PlaylistText(src, models.ModeTV, "http://gw")

	if !strings.Contains(out, "# kept comment") {
		t.Error("tv mode must keep non-EXT comments")
	}
	if !strings.Contains(out, `group-title="Live - Sport"`) {
		t.Error("tv mode must keep group-title")
	}
	if !strings.Contains(out, "http://gw/tv?u=http%3A%2F%2Fup%2Fstream%2F1") {
		t.Errorf("expected rewritten tv URL, got %s", out)
	}
}

func TestPlaylistTextAddsHeader(t *testing.T) {
	src := `#EXTINF:-1,Entry
http://up/x
`
	out := PlaylistText(src, models.ModeTV, "")
	if !strings.HasPrefix(out, "#EXTM3U\n") {
		t.Errorf("expected header prepended, got %q", out)
	}
}

func TestPlaylistTextEmptyResolverPassthrough(t *testing.T) {
	src := "#EXTM3U\n#EXTINF:-1,Entry\nhttp://up/x\n"
	out := PlaylistText(src, models.ModeTV, "")
	if !strings.Contains(out, "\nhttp://up/x\n") {
		t.Errorf("expected untouched URL, got %q", out)
	}
}

func TestPlaylistTextNonURLLinesKept(t *testing.T) {
	src := "#EXTM3U\n#EXTINF:-1,Entry\nrtsp://up/x\n"
	out := PlaylistText(src, models.ModeVideo, "http://gw")
	if !strings.Contains(out, "rtsp://up/x") {
		t.Errorf("expected non-http line kept verbatim, got %q", out)
	}
}
