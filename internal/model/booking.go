package model

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state shown in a user's booking history.
type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "upcoming"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingUpcoming, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// ParseBookingStatus converts a raw string into a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown booking status %q", s)
	}
	return st, nil
}

// Booking is the record produced by a confirmed payment.  The stored
// Status is either upcoming or cancelled; completed is derived when the
// screening has already started (see EffectiveStatus).
type Booking struct {
	ID         string        `json:"id"`
	UserID     uint64        `json:"user_id"`
	ShowtimeID string        `json:"showtime_id"`
	MovieID    uint64        `json:"movie_id"`
	MovieTitle string        `json:"movie"`
	Venue      string        `json:"cinema"`
	Location   string        `json:"location"`
	Screen     string        `json:"screen"`
	StartsAt   time.Time     `json:"starts_at"`
	Seats      []string      `json:"seats"`
	Subtotal   int           `json:"subtotal"`
	Fee        int           `json:"convenience_fee"`
	Total      int           `json:"total"`
	Method     PaymentMethod `json:"payment_method"`
	PaymentRef string        `json:"payment_ref"`
	Status     BookingStatus `json:"status"`
	BookedAt   time.Time     `json:"booked_at"`
}

// EffectiveStatus resolves the status shown to users at instant now.
func (b Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == BookingCancelled {
		return BookingCancelled
	}
	if !b.StartsAt.After(now) {
		return BookingCompleted
	}
	return BookingUpcoming
}

// NewBookingID returns the timestamp-derived identifier used on tickets,
// e.g. "BK1704067200000".
func NewBookingID(at time.Time) string {
	return fmt.Sprintf("BK%d", at.UnixMilli())
}
