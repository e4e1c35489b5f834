package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	regexp "github.com/grafana/regexp"

	"streamgate/internal/category"
	"streamgate/internal/classifier"
	"streamgate/internal/models"
)

var (
	seTokenRe  = regexp.MustCompile(`(?i)\bS(\d{1,2})E(\d{1,2})\b`)
	epSuffixRe = regexp.MustCompile(`(?i)E(\d+)$`)
)

// SeriesSet is the series catalog keyed by provider series id, preserving
// the order in which series first appeared in the pool.
type SeriesSet struct {
	Order []string
	ByID  map[string]*models.SeriesCollection
}

// Get returns the collection for a series id, or nil
func (s *SeriesSet) Get(id string) *models.SeriesCollection {
	return s.ByID[id]
}

// List returns the compact get_series records in first-appearance order
func (s *SeriesSet) List() []models.SeriesListEntry {
	out := make([]models.SeriesListEntry, 0, len(s.Order))
	for _, id := range s.Order {
		sm := s.ByID[id]
		out = append(out, models.SeriesListEntry{
			SeriesID:   sm.SeriesID,
			Name:       sm.Name,
			Cover:      sm.Cover,
			Plot:       sm.Plot,
			Rating:     sm.Rating,
			CategoryID: sm.CategoryID,
		})
	}
	return out
}

// BuildSeriesCollections builds the series catalog from the entry pool.
// Only entries yielding a triplet are placeable; heuristic-only matches
// are dropped. Episodes within each season end up sorted ascending by
// episode number.
func (b *Builder) BuildSeriesCollections(base string, entries []models.PlaylistEntry) (*SeriesSet, map[string]string) {
	set := &SeriesSet{ByID: make(map[string]*models.SeriesCollection)}
	catMap := make(map[string]string)

	for _, entry := range entries {
		triplet, ok := b.classifier.ExtractTVTriplet(entry.URL)
		if !ok {
			continue
		}

		name := strings.TrimSpace(seTokenRe.ReplaceAllString(entry.Title, ""))
		if name == "" {
			name = "Serie " + triplet.SeriesID
		}

		group := entry.Group
		if group == "" {
			group = "Serie"
		}
		catName := category.NormalizeGroup(group, classifier.KindSeries)
		catID := b.categories.GetOrCreate(catName, category.BaseSeries)
		catMap[catName] = catID

		sm := set.ByID[triplet.SeriesID]
		if sm == nil {
			// The first contributing entry names the collection
			sm = &models.SeriesCollection{
				SeriesID:         triplet.SeriesID,
				Name:             name,
				Cover:            entry.Logo,
				Plot:             "",
				Rating:           "",
				CategoryID:       catID,
				CategoryName:     catName,
				EpisodesBySeason: make(map[string][]models.Episode),
			}
			set.ByID[triplet.SeriesID] = sm
			set.Order = append(set.Order, triplet.SeriesID)
		}

		seasonKey := strconv.Itoa(triplet.Season)
		if _, ok := sm.EpisodesBySeason[seasonKey]; !ok {
			sm.Seasons = append(sm.Seasons, seasonKey)
		}

		epCode := fmt.Sprintf("S%02dE%02d", triplet.Season, triplet.Episode)
		sm.EpisodesBySeason[seasonKey] = append(sm.EpisodesBySeason[seasonKey], models.Episode{
			ID:                 triplet.SeriesID + "-" + epCode,
			Title:              epCode,
			ContainerExtension: "m3u8",
			Info: models.EpisodeInfo{
				MovieImage: entry.Logo,
				Plot:       "",
				Duration:   strconv.Itoa(extractDuration(entry.Attributes)),
			},
			DirectSource: DirectVideoURL(base, entry.URL),
		})
	}

	for _, sm := range set.ByID {
		sortSeasons(sm.Seasons)
		for _, season := range sm.Seasons {
			sortEpisodes(sm.EpisodesBySeason[season])
		}
	}

	return set, catMap
}

// sortSeasons orders decimal season keys numerically
func sortSeasons(seasons []string) {
	sort.Slice(seasons, func(i, j int) bool {
		a, _ := strconv.Atoi(seasons[i])
		b, _ := strconv.Atoi(seasons[j])
		return a < b
	})
}

// sortEpisodes orders episodes ascending by the numeric suffix of their
// synthesized label; labels that fail to parse sort after the numeric
// ones, by label text.
func sortEpisodes(episodes []models.Episode) {
	episodeNum := func(title string) (int, bool) {
		m := epSuffixRe.FindStringSubmatch(title)
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		ni, oki := episodeNum(episodes[i].Title)
		nj, okj := episodeNum(episodes[j].Title)
		switch {
		case oki && okj:
			return ni < nj
		case oki:
			return true
		case okj:
			return false
		default:
			return episodes[i].Title < episodes[j].Title
		}
	})
}
