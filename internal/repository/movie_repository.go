package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// MovieRepo holds the catalog in memory.  The storefront has no catalog
// database; admins add entries at runtime and they live until restart.
type MovieRepo struct {
	mu     sync.RWMutex
	movies []model.Movie
	nextID uint64
}

// NewMovieRepo returns a repository seeded with the launch catalog.
func NewMovieRepo() *MovieRepo {
	movies := seedMovies()
	var maxID uint64
	for _, m := range movies {
		maxID = max(maxID, m.ID)
	}
	return &MovieRepo{movies: movies, nextID: maxID + 1}
}

func cloneMovie(m model.Movie) model.Movie {
	m.Genres = slices.Clone(m.Genres)
	m.Cast = slices.Clone(m.Cast)
	return m
}

// All returns a copy of every movie in insertion order.
func (r *MovieRepo) All(ctx context.Context) []model.Movie {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, cloneMovie(m))
	}
	return out
}

// List applies f to the catalog.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) []model.Movie {
	return f.Apply(r.All(ctx))
}

// GetByID returns the movie with the given ID.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.movies {
		if m.ID == id {
			return cloneMovie(m), nil
		}
	}
	return model.Movie{}, ErrNotFound
}

// NewMovie holds the admin form for adding a catalog entry.
type NewMovie struct {
	Title       string
	Genres      []string
	Duration    string
	Language    string
	ReleaseDate time.Time
	Description string
}

// Create adds a movie.  New entries start inactive with no rating until
// an admin publishes them.
func (r *MovieRepo) Create(ctx context.Context, in NewMovie) (model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	title := strings.TrimSpace(in.Title)
	for _, m := range r.movies {
		if strings.EqualFold(m.Title, title) {
			return model.Movie{}, ErrConflict
		}
	}
	m := model.Movie{
		ID:          r.nextID,
		Title:       title,
		Genres:      slices.Clone(in.Genres),
		Duration:    strings.TrimSpace(in.Duration),
		Language:    strings.TrimSpace(in.Language),
		ReleaseDate: in.ReleaseDate,
		Description: strings.TrimSpace(in.Description),
		Poster:      "/placeholder.svg?height=150&width=100&text=New+Movie",
		Status:      model.MovieInactive,
	}
	r.nextID++
	r.movies = append(r.movies, m)
	return cloneMovie(m), nil
}

// RecordBooking adds one confirmed booking worth amount to a movie's
// admin counters.
func (r *MovieRepo) RecordBooking(ctx context.Context, movieID uint64, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.movies {
		if r.movies[i].ID == movieID {
			r.movies[i].TotalBookings++
			r.movies[i].Revenue += amount
			return nil
		}
	}
	return ErrNotFound
}

// RecordCancellation takes a cancelled booking worth amount back out of a
// movie's admin counters.  Counters never drop below zero.
func (r *MovieRepo) RecordCancellation(ctx context.Context, movieID uint64, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.movies {
		if r.movies[i].ID == movieID {
			r.movies[i].TotalBookings = max(r.movies[i].TotalBookings-1, 0)
			r.movies[i].Revenue = max(r.movies[i].Revenue-amount, 0)
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes a movie from the catalog.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.movies, func(m model.Movie) bool { return m.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.movies = slices.Delete(r.movies, i, i+1)
	return nil
}

// Popular returns the n movies with the most bookings.
func (r *MovieRepo) Popular(ctx context.Context, n int) []model.Movie {
	all := r.All(ctx)
	slices.SortStableFunc(all, func(a, b model.Movie) int { return b.TotalBookings - a.TotalBookings })
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Count returns the catalog size.
func (r *MovieRepo) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

// Genres lists every distinct genre in first-seen order.
func (r *MovieRepo) Genres(ctx context.Context) []string {
	var out []string
	for _, m := range r.All(ctx) {
		for _, g := range m.Genres {
			if !slices.Contains(out, g) {
				out = append(out, g)
			}
		}
	}
	return out
}

// Languages lists every distinct language in first-seen order.
func (r *MovieRepo) Languages(ctx context.Context) []string {
	var out []string
	for _, m := range r.All(ctx) {
		if m.Language != "" && !slices.Contains(out, m.Language) {
			out = append(out, m.Language)
		}
	}
	return out
}
