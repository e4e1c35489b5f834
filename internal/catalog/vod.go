package catalog

import (
	"strconv"
	"strings"

	regexp "github.com/grafana/regexp"

	"streamgate/internal/category"
	"streamgate/internal/classifier"
	apperrors "streamgate/internal/errors"
	"streamgate/internal/models"
)

var (
	yearRe        = regexp.MustCompile(`(19|20)\d{2}`)
	parenSuffixRe = regexp.MustCompile(`\s*\([^()]*\)\s*`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
)

// yearAttrKeys are scanned for a release year when the title has none
var yearAttrKeys = []string{"tvg-year", "tvg_year", "year", "releasedate", "release-date"}

// BuildVODStreams builds the movie catalog from the entry pool. Entries
// not classified as movies are skipped. The returned category map holds
// every category name sighted with its stable id.
func (b *Builder) BuildVODStreams(base string, entries []models.PlaylistEntry) ([]models.VODStream, map[string]string) {
	out := make([]models.VODStream, 0, len(entries))
	catMap := make(map[string]string)
	num := 1

	for _, entry := range entries {
		if !b.classifier.IsMovie(entry) {
			continue
		}

		streamID, ok := b.classifier.ExtractMovieID(entry.URL)
		if !ok {
			streamID = strconv.FormatUint(uint64(checksum(entry.URL)), 10)
		}

		group := entry.Group
		if group == "" {
			group = "Film"
		}
		catName := category.NormalizeGroup(group, classifier.KindMovie)
		catID := b.categories.GetOrCreate(catName, category.BaseVOD)
		catMap[catName] = catID

		out = append(out, models.VODStream{
			Num:                num,
			Name:               strings.TrimSpace(entry.Title),
			StreamID:           streamID,
			StreamType:         "movie",
			StreamIcon:         entry.Logo,
			Rating:             "",
			Added:              "",
			Duration:           strconv.Itoa(extractDuration(entry.Attributes)),
			CategoryID:         catID,
			CategoryName:       catName,
			ContainerExtension: "m3u8",
			DirectSource:       DirectVideoURL(base, entry.URL),
		})
		num++
	}
	return out, catMap
}

// BuildVODInfo resolves a requested VOD id against the entry pool:
// provider ids first, checksum-derived fallback ids second. The display
// name is the title with its parenthesized suffix stripped, re-annotated
// with the release year when one can be found.
func (b *Builder) BuildVODInfo(vodID string, entries []models.PlaylistEntry) (*models.VODInfo, error) {
	var chosen *models.PlaylistEntry
	for i := range entries {
		if id, ok := b.classifier.ExtractMovieID(entries[i].URL); ok && id == vodID {
			chosen = &entries[i]
			break
		}
	}
	if chosen == nil {
		for i := range entries {
			if strconv.FormatUint(uint64(checksum(entries[i].URL)), 10) == vodID {
				chosen = &entries[i]
				break
			}
		}
	}
	if chosen == nil {
		return nil, apperrors.NotFoundError("vod", vodID)
	}

	title := strings.TrimSpace(chosen.Title)

	// The year is scanned on the original title; attribute aliases are the
	// fallback when the title carries none.
	year := yearRe.FindString(title)
	if year == "" {
		for _, key := range yearAttrKeys {
			if m := yearRe.FindString(strings.TrimSpace(chosen.Attributes[key])); m != "" {
				year = m
				break
			}
		}
	}

	titleClean := strings.TrimSpace(parenSuffixRe.ReplaceAllString(title, " "))
	titleClean = multiSpaceRe.ReplaceAllString(titleClean, " ")

	finalName := titleClean
	if year != "" {
		finalName = titleClean + " (" + year + ")"
	}

	return &models.VODInfo{
		Info: models.VODInfoDetails{
			Name:         finalName,
			MovieImage:   chosen.Logo,
			Plot:         "",
			ReleaseDate:  year,
			Rating:       "",
			DurationSecs: strconv.Itoa(extractDuration(chosen.Attributes)),
		},
	}, nil
}
