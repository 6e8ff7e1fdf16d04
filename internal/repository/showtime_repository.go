package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// ScheduleDays is how many days of screenings are published.
const ScheduleDays = 7

// ShowtimeRepo serves the screening schedule of the active movies: every
// slot on each of the next ScheduleDays days after today.  The window
// rolls with Now, so the schedule never runs out while the process stays
// up.
//
// IDs are computed, not stored: day d (counted from the day after base),
// movie m and slot s give ID d*len(movies)*len(slots) + m*len(slots) + s + 1.
// A screening therefore keeps its ID for good and the first movie's first
// screening is showtime "1".  Past screenings still resolve so drafts and
// bookings can render them.
type ShowtimeRepo struct {
	// Now is the schedule clock, time.Now unless replaced in tests.
	Now func() time.Time

	movies  []model.Movie
	index   map[uint64]int
	start   time.Time
	loc     *time.Location
	mu      sync.RWMutex
	removed map[uint64]bool
}

// NewShowtimeRepo builds the schedule for the active movies.  Day 0 is the
// day after base.
func NewShowtimeRepo(movies []model.Movie, base time.Time) *ShowtimeRepo {
	r := &ShowtimeRepo{
		Now:     time.Now,
		index:   map[uint64]int{},
		loc:     base.Location(),
		start:   civilDay(base).AddDate(0, 0, 1),
		removed: map[uint64]bool{},
	}
	for _, m := range movies {
		if m.Status != model.MovieActive {
			continue
		}
		r.index[m.ID] = len(r.movies)
		r.movies = append(r.movies, m)
	}
	return r
}

// civilDay is midnight UTC of t's calendar date, so day arithmetic is
// immune to DST shifts in t's location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayIndex numbers t's calendar day relative to the first scheduled day.
func (r *ShowtimeRepo) dayIndex(t time.Time) int {
	return int(civilDay(t.In(r.loc)).Sub(r.start).Hours() / 24)
}

// window returns the first and last day index currently published.
func (r *ShowtimeRepo) window() (first, last int) {
	today := r.dayIndex(r.Now())
	return today + 1, today + ScheduleDays
}

func (r *ShowtimeRepo) perDay() int { return len(r.movies) * len(showSlots) }

func (r *ShowtimeRepo) build(day, movie, slot int) model.Showtime {
	m := r.movies[movie]
	sl := showSlots[slot]
	date := r.start.AddDate(0, 0, day)
	return model.Showtime{
		ID:             strconv.Itoa(day*r.perDay() + movie*len(showSlots) + slot + 1),
		MovieID:        m.ID,
		MovieTitle:     m.Title,
		Venue:          sl.venue,
		Location:       sl.location,
		StartsAt:       time.Date(date.Year(), date.Month(), date.Day(), sl.hour, sl.minute, 0, 0, r.loc),
		Screen:         fmt.Sprintf("Screen %d", slot+1),
		Price:          sl.price,
		AvailableSeats: sl.available,
	}
}

func (r *ShowtimeRepo) isRemoved(movieID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.removed[movieID]
}

// GetByID returns a showtime.  Screenings beyond the published window and
// those of removed movies are not found.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id string) (model.Showtime, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || r.perDay() == 0 || strconv.Itoa(n) != id {
		return model.Showtime{}, ErrNotFound
	}
	n--
	day, rest := n/r.perDay(), n%r.perDay()
	if _, last := r.window(); day > last {
		return model.Showtime{}, ErrNotFound
	}
	st := r.build(day, rest/len(showSlots), rest%len(showSlots))
	if r.isRemoved(st.MovieID) {
		return model.Showtime{}, ErrNotFound
	}
	return st, nil
}

// ListByMovie returns a movie's published showtimes ordered by start.
// When date is non-zero only screenings on that calendar day are returned.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID uint64, date time.Time) []model.Showtime {
	movie, ok := r.index[movieID]
	if !ok || r.isRemoved(movieID) {
		return []model.Showtime{}
	}
	first, last := r.window()
	if !date.IsZero() {
		d := int(civilDay(date).Sub(r.start).Hours() / 24)
		if d < first || d > last {
			return []model.Showtime{}
		}
		first, last = d, d
	}
	out := make([]model.Showtime, 0, (last-first+1)*len(showSlots))
	for day := max(first, 0); day <= last; day++ {
		for slot := range showSlots {
			out = append(out, r.build(day, movie, slot))
		}
	}
	return out
}

// RemoveMovie withdraws every screening of a movie.
func (r *ShowtimeRepo) RemoveMovie(ctx context.Context, movieID uint64) {
	r.mu.Lock()
	r.removed[movieID] = true
	r.mu.Unlock()
}
