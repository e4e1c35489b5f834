package convert

import (
	"net/url"
	"strings"

	regexp "github.com/grafana/regexp"

	"streamgate/internal/models"
)

var (
	m3uHeaderRe = regexp.MustCompile(`(?i)^#EXTM3U`)
	groupAttrRe = regexp.MustCompile(`\s*group-title="[^"]*"`)
)

// EnsureHTTP normalizes a bare host:port into an http URL; already-schemed
// values pass through untouched.
func EnsureHTTP(urlOrHost string) string {
	u := strings.TrimSpace(urlOrHost)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "http://" + u
}

// ResolverLink rewrites a stream URL into a gateway resolver link. An
// empty base leaves the URL untouched.
func ResolverLink(base string, mode models.PlaylistMode, rawURL string) string {
	base = strings.TrimRight(EnsureHTTP(base), "/")
	if base == "" {
		return rawURL
	}
	endpoint := "video"
	if mode == models.ModeTV {
		endpoint = "tv"
	}
	return base + "/" + endpoint + "?u=" + url.QueryEscape(rawURL)
}

// PlaylistText converts a source M3U so every stream URL points at the
// gateway resolver. In video mode non-EXT comments are dropped and
// group-title attributes are stripped from EXTINF lines. Repeated URLs are
// deduplicated and a leading #EXTM3U header is guaranteed.
func PlaylistText(src string, mode models.PlaylistMode, resolverBase string) string {
	var out []string
	seen := make(map[string]bool)

	lines := strings.Split(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "#") {
			if mode == models.ModeVideo && !strings.HasPrefix(stripped, "#EXT") {
				continue
			}
			if mode == models.ModeVideo && strings.HasPrefix(stripped, "#EXTINF") {
				line = groupAttrRe.ReplaceAllString(line, "")
			}
			out = append(out, line)
			continue
		}

		lower := strings.ToLower(stripped)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			if seen[stripped] {
				continue
			}
			seen[stripped] = true
			out = append(out, ResolverLink(resolverBase, mode, stripped))
		} else if stripped == "" {
			out = append(out, "")
		} else {
			out = append(out, line)
		}
	}

	if len(out) == 0 || !m3uHeaderRe.MatchString(strings.TrimSpace(out[0])) {
		out = append([]string{"#EXTM3U"}, out...)
	}
	return strings.Join(out, "\n") + "\n"
}
