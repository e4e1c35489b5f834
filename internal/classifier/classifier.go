package classifier

import (
	"strconv"
	"strings"

	regexp "github.com/grafana/regexp"

	"streamgate/internal/models"
)

// Kind represents the catalog kind derived for an entry. It is recomputed
// from entry content on every classification, never stored.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindLive    Kind = "live"
	KindUnknown Kind = "unknown"
)

// TVTriplet is the provider series id plus season and episode numbers
// extracted from a series URL.
type TVTriplet struct {
	SeriesID string
	Season   int
	Episode  int
}

// Classifier derives catalog kinds and provider identifiers from entry
// URLs and group/title heuristics. Patterns per kind are tried in order;
// the first match wins.
type Classifier struct {
	moviePatterns   []*regexp.Regexp
	tvPatterns      []*regexp.Regexp
	seasonEpisodeRe *regexp.Regexp
}

// New creates a new Classifier with precompiled patterns
func New() *Classifier {
	return &Classifier{
		moviePatterns:   compileMoviePatterns(),
		tvPatterns:      compileTVPatterns(),
		seasonEpisodeRe: regexp.MustCompile(`(?i)\bs\d{1,2}e\d{1,2}\b`),
	}
}

// ExtractMovieID returns the provider movie id embedded in the URL path.
// Returns false when no pattern matches; callers fall back to a checksum
// of the URL in that case.
func (c *Classifier) ExtractMovieID(url string) (string, bool) {
	for _, pattern := range c.moviePatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractTVTriplet returns the provider series id, season and episode
// embedded in the URL path. Returns false when no pattern matches; an
// episode cannot be placed without its triplet.
func (c *Classifier) ExtractTVTriplet(url string) (TVTriplet, bool) {
	for _, pattern := range c.tvPatterns {
		m := pattern.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		season, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		episode, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		return TVTriplet{SeriesID: m[1], Season: season, Episode: episode}, true
	}
	return TVTriplet{}, false
}

// IsMovie reports whether the entry looks like a movie: a provider id in
// the URL, or film/movie tokens in the group or title.
func (c *Classifier) IsMovie(entry models.PlaylistEntry) bool {
	if _, ok := c.ExtractMovieID(entry.URL); ok {
		return true
	}
	group := strings.ToLower(entry.Group)
	title := strings.ToLower(entry.Title)
	return strings.Contains(group, "film") || strings.Contains(group, "movie") ||
		strings.Contains(title, "film") || strings.Contains(title, "movie")
}

// IsSeries reports whether the entry looks like a series episode: a
// triplet in the URL, serie tokens in the group, or stagione/SxxEyy tokens
// in the title.
func (c *Classifier) IsSeries(entry models.PlaylistEntry) bool {
	if _, ok := c.ExtractTVTriplet(entry.URL); ok {
		return true
	}
	group := strings.ToLower(entry.Group)
	title := strings.ToLower(entry.Title)
	if strings.Contains(group, "serie") || strings.Contains(group, "series") {
		return true
	}
	if strings.Contains(title, "stagione") {
		return true
	}
	return c.seasonEpisodeRe.MatchString(entry.Title)
}

// Classify derives the entry's kind. Movie and series probes run in that
// order; classification is not mutually exclusive by construction, so
// callers building disjoint pools decide precedence by which builder they
// invoke.
func (c *Classifier) Classify(entry models.PlaylistEntry) Kind {
	if c.IsMovie(entry) {
		return KindMovie
	}
	if c.IsSeries(entry) {
		return KindSeries
	}
	return KindUnknown
}

// compileMoviePatterns returns the movie id extractors in precedence order:
// digits directly after /movie/, then a trailing digits segment after
// unrelated path segments (embedded credentials).
func compileMoviePatterns() []*regexp.Regexp {
	patterns := []string{
		`(?i)/movie/(\d+)`,
		`(?i)/movie/(?:[^/]+/)+(\d+)(?:\.[a-z0-9]+)?$`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}

// compileTVPatterns returns the series triplet extractors in precedence
// order: id directly after /tv/ or /series/ with an optional season/
// segment, then the credential-prefixed form.
func compileTVPatterns() []*regexp.Regexp {
	patterns := []string{
		`(?i)/(?:tv|series)/(\d+)/(?:season/)?(\d+)/(\d+)`,
		`(?i)/(?:tv|series)/(?:[^/]+/)+?(\d+)/(\d+)/(\d+)(?:\.[a-z0-9]+)?$`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}
