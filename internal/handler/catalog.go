// Package handler exposes the storefront's HTTP handlers: public catalog
// browsing and quotes, authentication, the booking draft flow, booking
// history and the admin dashboard.
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/pricing"
	"github.com/iliyamo/cinema-storefront/internal/repository"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

// CatalogHandler serves unauthenticated browsing: movies, showtimes and
// stateless price quotes.
type CatalogHandler struct {
	Movies    *repository.MovieRepo
	Showtimes *repository.ShowtimeRepo
	Pricing   *pricing.Calculator
}

// publicStatuses are the movie states guests may see.
var publicStatuses = map[model.MovieStatus]bool{model.MovieActive: true, model.MovieComingSoon: true}

// ListMovies supports ?q=, ?genre=, ?language=, ?status= and
// ?sort=rating|release-date|title.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	f := repository.MovieFilter{
		Query:    c.QueryParam("q"),
		Genre:    c.QueryParam("genre"),
		Language: c.QueryParam("language"),
		Status:   c.QueryParam("status"),
		Sort:     c.QueryParam("sort"),
	}
	switch f.Sort {
	case "", repository.SortRating, repository.SortReleaseDate, repository.SortTitle:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sort must be rating, release-date or title"})
	}
	items := []model.Movie{}
	for _, m := range h.Movies.List(c.Request().Context(), f) {
		if publicStatuses[m.Status] {
			items = append(items, m)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

// Facets lists the values offered by the genre and language filters.
func (h *CatalogHandler) Facets(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, echo.Map{
		"genres":    h.Movies.Genres(ctx),
		"languages": h.Movies.Languages(ctx),
		"sorts":     []string{repository.SortRating, repository.SortReleaseDate, repository.SortTitle},
	})
}

// GetMovie returns a movie with its showtimes, optionally limited to
// ?date=YYYY-MM-DD.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil || !publicStatuses[m.Status] {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	var day time.Time
	if raw := c.QueryParam("date"); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
	}
	shows := h.Showtimes.ListByMovie(ctx, m.ID, day)
	out := make([]showtimeResp, 0, len(shows))
	for _, st := range shows {
		out = append(out, toShowtimeResp(st))
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": m, "showtimes": out})
}

type showtimeResp struct {
	model.Showtime
	Date string `json:"date"`
	Time string `json:"time"`
}

func toShowtimeResp(st model.Showtime) showtimeResp {
	return showtimeResp{Showtime: st, Date: st.Date(), Time: st.Time()}
}

// GetShowtime returns one screening with its price tiers.
func (h *CatalogHandler) GetShowtime(c echo.Context) error {
	st, err := h.Showtimes.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(c, err, "showtime not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime": toShowtimeResp(st),
		"prices": echo.Map{
			string(model.CategoryVIP):     model.CategoryVIP.BasePrice(),
			string(model.CategoryPremium): model.CategoryPremium.BasePrice(),
			string(model.CategoryRegular): model.CategoryRegular.BasePrice(),
		},
		"fee_rule": h.Pricing.Rule.Name(),
	})
}

// Quote prices ?seats=F5,F6 for a showtime without opening a draft.  An
// absent or empty list is a zero quote; a malformed one sends the client
// back to seat selection.
func (h *CatalogHandler) Quote(c echo.Context) error {
	st, err := h.Showtimes.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repoError(c, err, "showtime not found")
	}
	ids, err := booking.ParseSeatList(c.QueryParam("seats"))
	if err != nil {
		if errors.Is(err, booking.ErrInvalidSeatList) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":    err.Error(),
				"redirect": "/v1/showtimes/" + st.ID + "/drafts",
			})
		}
		return err
	}
	q, err := h.Pricing.QuoteIDs(ids, seatmap.Describe)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": st.ID,
		"seats":       strings.Join(ids, ","),
		"quote":       q,
	})
}
