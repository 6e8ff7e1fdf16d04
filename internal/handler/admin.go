package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-storefront/internal/middleware"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/repository"
)

// AdminHandler serves the dashboard.  Catalog writes purge the response
// cache under CachePrefix when Redis is configured.
type AdminHandler struct {
	Movies      *repository.MovieRepo
	Showtimes   *repository.ShowtimeRepo
	Users       *repository.UserRepo
	Bookings    repository.BookingRepo
	Redis       *redis.Client
	CachePrefix string
}

type adminMovie struct {
	model.Movie
	TotalBookings int `json:"total_bookings"`
	Revenue       int `json:"revenue"`
}

func toAdminMovies(ms []model.Movie) []adminMovie {
	out := make([]adminMovie, 0, len(ms))
	for _, m := range ms {
		out = append(out, adminMovie{Movie: m, TotalBookings: m.TotalBookings, Revenue: m.Revenue})
	}
	return out
}

// Stats summarises catalog, users and sales.  Booking totals are net of
// cancellations and combine the seeded per-movie counters with bookings
// taken by this instance.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	st, err := h.Bookings.Stats(ctx)
	if err != nil {
		return repoError(c, err, "stats unavailable")
	}
	recent, err := h.Bookings.Recent(ctx, 5)
	if err != nil {
		return repoError(c, err, "stats unavailable")
	}
	var bookings, revenue, active int
	for _, m := range h.Movies.All(ctx) {
		bookings += m.TotalBookings
		revenue += m.Revenue
		if m.Status == model.MovieActive {
			active++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_movies":    h.Movies.Count(ctx),
		"active_movies":   active,
		"total_users":     h.Users.Count(ctx),
		"total_bookings":  bookings,
		"total_revenue":   revenue,
		"session":         st,
		"recent_bookings": recent,
		"popular_movies":  toAdminMovies(h.Movies.Popular(ctx, 5)),
	})
}

// ListMovies returns every movie including inactive ones, with sales.
func (h *AdminHandler) ListMovies(c echo.Context) error {
	f := repository.MovieFilter{Query: c.QueryParam("q"), Status: c.QueryParam("status"), Sort: repository.SortTitle}
	return c.JSON(http.StatusOK, echo.Map{"items": toAdminMovies(h.Movies.List(c.Request().Context(), f))})
}

type createMovieReq struct {
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Duration    string   `json:"duration"`
	Language    string   `json:"language"`
	ReleaseDate string   `json:"release_date"`
	Description string   `json:"description"`
}

// CreateMovie adds an inactive catalog entry.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || len(req.Genres) == 0 || strings.TrimSpace(req.Language) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, genres and language required"})
	}
	var release time.Time
	if req.ReleaseDate != "" {
		d, err := time.Parse("2006-01-02", req.ReleaseDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "release_date must be YYYY-MM-DD"})
		}
		release = d
	}
	genres := make([]string, 0, len(req.Genres))
	for _, g := range req.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	ctx := c.Request().Context()
	m, err := h.Movies.Create(ctx, repository.NewMovie{
		Title:       req.Title,
		Genres:      genres,
		Duration:    req.Duration,
		Language:    req.Language,
		ReleaseDate: release,
		Description: req.Description,
	})
	if err != nil {
		return repoError(c, err, "movie not found")
	}
	if err := middleware.PurgeCache(ctx, h.Redis, h.CachePrefix); err != nil {
		c.Logger().Warnf("admin: purge cache: %v", err)
	}
	return c.JSON(http.StatusCreated, toAdminMovies([]model.Movie{m})[0])
}

// DeleteMovie removes a movie and withdraws its screenings.  Existing
// bookings keep their copied movie details.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	if err := h.Movies.Delete(ctx, id); err != nil {
		return repoError(c, err, "movie not found")
	}
	if h.Showtimes != nil {
		h.Showtimes.RemoveMovie(ctx, id)
	}
	if err := middleware.PurgeCache(ctx, h.Redis, h.CachePrefix); err != nil {
		c.Logger().Warnf("admin: purge cache: %v", err)
	}
	return c.NoContent(http.StatusNoContent)
}
