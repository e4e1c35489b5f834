package catalog

import (
	"fmt"
	"strings"

	"streamgate/internal/models"
)

// M3UContentType is the media type of rendered playlists
const M3UContentType = "audio/mpegurl"

// RenderM3U renders the unified catalog as M3U text: live, then VOD, then
// series by season by episode, preserving pool iteration order. EXTINF
// metadata is drawn from the built catalog records and every URL is the
// record's direct source.
func RenderM3U(live []models.LiveStream, vod []models.VODStream, series *SeriesSet) string {
	var sb strings.Builder
	sb.WriteString("#EXTM3U\n")

	for _, s := range live {
		group := s.CategoryName
		if group == "" {
			group = s.CategoryID
		}
		fmt.Fprintf(&sb, "#EXTINF:-1 tvg-id=%q tvg-logo=%q group-title=%q,%s\n%s\n",
			s.EPGChannelID, s.StreamIcon, group, s.Name, s.DirectSource)
	}

	for _, s := range vod {
		group := s.CategoryName
		if group == "" {
			group = s.CategoryID
		}
		fmt.Fprintf(&sb, "#EXTINF:%s tvg-logo=%q group-title=%q,%s\n%s\n",
			s.Duration, s.StreamIcon, group, s.Name, s.DirectSource)
	}

	if series != nil {
		for _, id := range series.Order {
			sm := series.ByID[id]
			group := sm.CategoryName
			if group == "" {
				group = sm.CategoryID
			}
			for _, season := range sm.Seasons {
				for _, ep := range sm.EpisodesBySeason[season] {
					fmt.Fprintf(&sb, "#EXTINF:%s tvg-logo=%q group-title=%q,%s %s\n%s\n",
						ep.Info.Duration, sm.Cover, group, sm.Name, ep.Title, ep.DirectSource)
				}
			}
		}
	}

	return sb.String()
}
