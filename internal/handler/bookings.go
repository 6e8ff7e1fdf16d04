package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/repository"
)

// SalesLedger keeps per-movie sales counters in step with cancellations.
type SalesLedger interface {
	RecordCancellation(ctx context.Context, movieID uint64, amount int) error
}

// BookingHandler serves the customer's booking history.
type BookingHandler struct {
	Bookings repository.BookingRepo
	Sales    SalesLedger
	Now      clock
}

// present replaces the stored status with the one valid at now.
func present(b model.Booking, status model.BookingStatus) model.Booking {
	b.Status = status
	return b
}

// List returns the caller's bookings.  ?status=upcoming|completed|cancelled
// selects one tab; "all" or nothing returns every booking.  Counts per tab
// are always included.
func (h *BookingHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var status model.BookingStatus
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); raw != "" && raw != "all" {
		status, err = model.ParseBookingStatus(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be all, upcoming, completed or cancelled"})
		}
	}
	all, err := h.Bookings.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return repoError(c, err, "bookings not found")
	}
	now := h.Now.now()
	counts := map[string]int{"all": len(all)}
	for _, st := range []model.BookingStatus{model.BookingUpcoming, model.BookingCompleted, model.BookingCancelled} {
		counts[string(st)] = len(repository.FilterByStatus(all, st, now))
	}
	items := []model.Booking{}
	for _, b := range repository.FilterByStatus(all, status, now) {
		items = append(items, present(b, b.EffectiveStatus(now)))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "counts": counts})
}

func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	b, err := h.Bookings.GetForUser(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return repoError(c, err, "booking not found")
	}
	return c.JSON(http.StatusOK, present(b, b.EffectiveStatus(h.Now.now())))
}

// Cancel cancels an upcoming booking.  Past and already cancelled bookings
// answer 409.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.Cancel(ctx, c.Param("id"), uid, h.Now.now())
	if err != nil {
		return repoError(c, err, "booking not found")
	}
	if h.Sales != nil {
		if err := h.Sales.RecordCancellation(ctx, b.MovieID, b.Total); err != nil {
			c.Logger().Warnf("bookings: sales counters for %s: %v", b.ID, err)
		}
	}
	return c.JSON(http.StatusOK, b)
}
