package category

import (
	"strings"

	regexp "github.com/grafana/regexp"

	"streamgate/internal/classifier"
)

// fallbackName is used when a group is empty after prefix stripping
const fallbackName = "Generale"

// Provider prefixes stripped from raw group names per catalog kind
var (
	vodPrefixRe    = regexp.MustCompile(`(?i)^(film|movies?)\s*-\s*`)
	seriesPrefixRe = regexp.MustCompile(`(?i)^(serietv|serie)\s*-\s*`)
	livePrefixRe   = regexp.MustCompile(`(?i)^(live|tv)\s*-\s*`)
)

// NormalizeGroup strips the well-known provider prefix for the target
// catalog kind from a raw group name and falls back to a generic
// placeholder when nothing remains.
func NormalizeGroup(group string, kind classifier.Kind) string {
	g := strings.TrimSpace(group)
	switch kind {
	case classifier.KindMovie:
		g = vodPrefixRe.ReplaceAllString(g, "")
	case classifier.KindSeries:
		g = seriesPrefixRe.ReplaceAllString(g, "")
	case classifier.KindLive:
		g = livePrefixRe.ReplaceAllString(g, "")
	}
	if g == "" {
		return fallbackName
	}
	return g
}
