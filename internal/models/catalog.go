package models

// VODStream is one movie record in the Xtream catalog. DirectSource always
// points at the gateway's own /video endpoint, never the upstream URL.
type VODStream struct {
	Num                int    `json:"num"`
	Name               string `json:"name"`
	StreamID           string `json:"stream_id"`
	StreamType         string `json:"stream_type"`
	StreamIcon         string `json:"stream_icon"`
	Rating             string `json:"rating"`
	Added              string `json:"added"`
	Duration           string `json:"duration"`
	CategoryID         string `json:"category_id"`
	CategoryName       string `json:"category_name"`
	ContainerExtension string `json:"container_extension"`
	DirectSource       string `json:"direct_source"`
}

// LiveStream is one live channel record in the Xtream catalog
type LiveStream struct {
	Num                int    `json:"num"`
	Name               string `json:"name"`
	StreamType         string `json:"stream_type"`
	StreamID           string `json:"stream_id"`
	StreamIcon         string `json:"stream_icon"`
	EPGChannelID       string `json:"epg_channel_id"`
	CategoryID         string `json:"category_id"`
	CategoryName       string `json:"category_name"`
	Added              string `json:"added"`
	CustomSID          string `json:"custom_sid"`
	ContainerExtension string `json:"container_extension"`
	DirectSource       string `json:"direct_source"`
}

// EpisodeInfo carries per-episode metadata
type EpisodeInfo struct {
	MovieImage string `json:"movie_image"`
	Plot       string `json:"plot"`
	Duration   string `json:"duration"`
}

// Episode is one series episode record
type Episode struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	ContainerExtension string      `json:"container_extension"`
	Info               EpisodeInfo `json:"info"`
	DirectSource       string      `json:"direct_source"`
}

// SeriesCollection aggregates every episode sharing a provider series id.
// Seasons keeps the numeric season order; EpisodesBySeason is keyed by the
// decimal season number.
type SeriesCollection struct {
	SeriesID         string               `json:"series_id"`
	Name             string               `json:"name"`
	Cover            string               `json:"cover"`
	Plot             string               `json:"plot"`
	Rating           string               `json:"rating"`
	CategoryID       string               `json:"category_id"`
	CategoryName     string               `json:"-"`
	Seasons          []string             `json:"-"`
	EpisodesBySeason map[string][]Episode `json:"episodes_by_season"`
}

// SeriesListEntry is the compact series record returned by get_series
type SeriesListEntry struct {
	SeriesID   string `json:"series_id"`
	Name       string `json:"name"`
	Cover      string `json:"cover"`
	Plot       string `json:"plot"`
	Rating     string `json:"rating"`
	CategoryID string `json:"category_id"`
}

// Category is one catalog category with its stable id
type Category struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// VODInfo is the metadata payload returned by get_vod_info
type VODInfo struct {
	Info VODInfoDetails `json:"info"`
}

// VODInfoDetails carries the movie display metadata
type VODInfoDetails struct {
	Name         string `json:"name"`
	MovieImage   string `json:"movie_image"`
	Plot         string `json:"plot"`
	ReleaseDate  string `json:"releasedate"`
	Rating       string `json:"rating"`
	DurationSecs string `json:"duration_secs"`
}
