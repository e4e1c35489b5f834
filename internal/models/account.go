package models

// XtreamAccount represents one Xtream-compatible API account and the
// playlist pools assigned to it. Mixed lists contribute to both the movie
// and the series pools.
type XtreamAccount struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Username      string   `json:"username"`
	Password      string   `json:"password"`
	LiveListIDs   []string `json:"live_list_ids"`
	MovieListIDs  []string `json:"movie_list_ids"`
	SeriesListIDs []string `json:"series_list_ids"`
	MixedListIDs  []string `json:"mixed_list_ids"`
	EveryHours    int      `json:"every_hours"`
	LastRefresh   int64    `json:"last_refresh"`
}

// MoviePoolIDs returns the playlist ids feeding the VOD pool
func (a *XtreamAccount) MoviePoolIDs() []string {
	return append(append([]string{}, a.MovieListIDs...), a.MixedListIDs...)
}

// SeriesPoolIDs returns the playlist ids feeding the series pool
func (a *XtreamAccount) SeriesPoolIDs() []string {
	return append(append([]string{}, a.SeriesListIDs...), a.MixedListIDs...)
}
