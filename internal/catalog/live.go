package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"streamgate/internal/category"
	"streamgate/internal/classifier"
	"streamgate/internal/models"
)

// BuildLiveStreams builds the live catalog from the entry pool. No entry
// is filtered out: callers feed disjoint pools, so everything handed here
// is treated as a live channel.
func (b *Builder) BuildLiveStreams(base string, entries []models.PlaylistEntry) ([]models.LiveStream, map[string]string) {
	out := make([]models.LiveStream, 0, len(entries))
	catMap := make(map[string]string)
	num := 1

	for _, entry := range entries {
		group := entry.Group
		if group == "" {
			group = "Live"
		}
		catName := category.NormalizeGroup(group, classifier.KindLive)
		catID := b.categories.GetOrCreate(catName, category.BaseLive)
		catMap[catName] = catID

		out = append(out, models.LiveStream{
			Num:                num,
			Name:               strings.TrimSpace(entry.Title),
			StreamType:         "live",
			StreamID:           liveStreamID(entry.URL),
			StreamIcon:         entry.Logo,
			EPGChannelID:       entry.ChannelID,
			CategoryID:         catID,
			CategoryName:       catName,
			Added:              "",
			CustomSID:          "",
			ContainerExtension: "m3u8",
			DirectSource:       DirectLiveURL(base, entry.URL),
		})
		num++
	}
	return out, catMap
}

// liveStreamID derives a stable id from the URL: the last non-empty path
// segment when it is long enough to be distinctive, else the hex checksum
// of the whole URL. Either way truncated and prefixed.
func liveStreamID(rawURL string) string {
	token := ""
	if u, err := url.Parse(rawURL); err == nil {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		token = segments[len(segments)-1]
	}
	if len(token) < 6 {
		token = strconv.FormatUint(uint64(checksum(rawURL)), 16)
	}
	if len(token) > 16 {
		token = token[:16]
	}
	return "lv_" + token
}
