package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/repository"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

// DraftHandler exposes the checkout flow.  Every response carries the full
// draft view so clients never recompute totals themselves.
type DraftHandler struct {
	Svc *booking.Service
}

type methodReq struct {
	Method string `json:"method"`
}

// draftError maps booking and repository errors onto HTTP statuses.
func draftError(c echo.Context, err error) error {
	var fe booking.FieldErrors
	switch {
	case errors.As(err, &fe):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fe})
	case errors.Is(err, booking.ErrDraftNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	case errors.Is(err, seatmap.ErrUnknownSeat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNoSeats):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrSelectionLocked),
		errors.Is(err, booking.ErrPaymentInProgress),
		errors.Is(err, booking.ErrShowtimeStarted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("drafts: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func (h *DraftHandler) reply(c echo.Context, status int, v booking.View, err error) error {
	if err != nil {
		return draftError(c, err)
	}
	return c.JSON(status, v)
}

// Start opens a draft for the showtime in the path.
func (h *DraftHandler) Start(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	v, err := h.Svc.Start(c.Request().Context(), uid, c.Param("id"))
	return h.reply(c, http.StatusCreated, v, err)
}

func (h *DraftHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	v, err := h.Svc.Get(c.Request().Context(), uid, c.Param("id"))
	return h.reply(c, http.StatusOK, v, err)
}

func (h *DraftHandler) Toggle(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	v, err := h.Svc.Toggle(c.Request().Context(), uid, c.Param("id"), c.Param("seat"))
	return h.reply(c, http.StatusOK, v, err)
}

func bindMethod(c echo.Context) (model.PaymentMethod, error) {
	var req methodReq
	if err := c.Bind(&req); err != nil {
		return "", booking.FieldErrors{"method": "invalid body"}
	}
	m, err := model.ParsePaymentMethod(req.Method)
	if err != nil {
		return "", booking.FieldErrors{"method": "must be card, upi or wallet"}
	}
	return m, nil
}

// Checkout moves the selection to the payment step.
func (h *DraftHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	m, err := bindMethod(c)
	if err != nil {
		return draftError(c, err)
	}
	v, err := h.Svc.Checkout(c.Request().Context(), uid, c.Param("id"), m)
	return h.reply(c, http.StatusOK, v, err)
}

func (h *DraftHandler) ChangeMethod(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	m, err := bindMethod(c)
	if err != nil {
		return draftError(c, err)
	}
	v, err := h.Svc.ChangeMethod(c.Request().Context(), uid, c.Param("id"), m)
	return h.reply(c, http.StatusOK, v, err)
}

func (h *DraftHandler) Back(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	v, err := h.Svc.Back(c.Request().Context(), uid, c.Param("id"))
	return h.reply(c, http.StatusOK, v, err)
}

// Pay submits the payment form.  A failed charge answers 402 with the
// failed draft so the client can offer a retry.
func (h *DraftHandler) Pay(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var details booking.PaymentDetails
	if err := c.Bind(&details); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if details.Method != "" {
		m, err := model.ParsePaymentMethod(string(details.Method))
		if err != nil {
			return draftError(c, booking.FieldErrors{"method": "must be card, upi or wallet"})
		}
		details.Method = m
	}
	v, err := h.Svc.Pay(c.Request().Context(), uid, c.Param("id"), details)
	if err != nil && v.State == booking.StateFailed {
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": err.Error(), "draft": v})
	}
	return h.reply(c, http.StatusOK, v, err)
}

func (h *DraftHandler) Retry(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	v, err := h.Svc.Retry(c.Request().Context(), uid, c.Param("id"))
	return h.reply(c, http.StatusOK, v, err)
}

func (h *DraftHandler) Discard(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.Svc.Discard(c.Request().Context(), uid, c.Param("id")); err != nil {
		return draftError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
