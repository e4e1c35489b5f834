package models

// PlaylistEntry represents a single parsed M3U entry (one EXTINF + URL pair).
// Entries are immutable once created; a refresh re-parses the whole playlist.
type PlaylistEntry struct {
	Title      string
	URL        string
	Attributes map[string]string
	Group      string
	ChannelID  string
	Logo       string
}

// PlaylistMode selects which gateway endpoint converted playlist links point at
type PlaylistMode string

const (
	ModeVideo PlaylistMode = "video"
	ModeTV    PlaylistMode = "tv"
)

// Playlist represents one configured playlist source
type Playlist struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	URL         string       `json:"url"`
	Mode        PlaylistMode `json:"mode"`
	EveryHours  int          `json:"every_hours"`
	ResolverURL string       `json:"resolver_url"`
	LastRefresh int64        `json:"last_refresh"`
}

// Settings holds the runtime-editable gateway settings
type Settings struct {
	MediaflowURL      string `json:"mediaflow_url"`
	APIPassword       string `json:"api_password"`
	StreamResolverURL string `json:"stream_resolver_url"`
}
