package repository

import (
	"cmp"
	"slices"
	"strings"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// Sort orders accepted by MovieFilter.
const (
	SortRating      = "rating"
	SortReleaseDate = "release-date"
	SortTitle       = "title"
)

// MovieFilter defines search, facet filters and ordering for catalog
// listings.  Empty fields (or "all") disable the corresponding filter.
type MovieFilter struct {
	Query    string
	Genre    string
	Language string
	Status   string
	Sort     string
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "all")
}

// Match reports whether m passes every filter.  Query matches title or
// genre and Genre matches any part of the genre list, both
// case-insensitively.
func (f MovieFilter) Match(m model.Movie) bool {
	genres := strings.ToLower(strings.Join(m.Genres, ", "))
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(m.Title), q) && !strings.Contains(genres, q) {
			return false
		}
	}
	if active(f.Genre) && !strings.Contains(genres, strings.ToLower(strings.TrimSpace(f.Genre))) {
		return false
	}
	if active(f.Language) && !strings.EqualFold(m.Language, f.Language) {
		return false
	}
	if active(f.Status) && string(m.Status) != strings.ToLower(f.Status) {
		return false
	}
	return true
}

// Apply filters and sorts movies.  Unknown sort orders fall back to
// rating, highest first.
func (f MovieFilter) Apply(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	switch f.Sort {
	case SortReleaseDate:
		slices.SortStableFunc(out, func(a, b model.Movie) int { return b.ReleaseDate.Compare(a.ReleaseDate) })
	case SortTitle:
		slices.SortStableFunc(out, func(a, b model.Movie) int { return strings.Compare(a.Title, b.Title) })
	default:
		slices.SortStableFunc(out, func(a, b model.Movie) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return out
}
