// Package queue carries booking events over RabbitMQ: the publisher used
// after a successful payment and the consumer that records them in the
// booking log.
package queue

import (
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// BookingQueue is the durable queue confirmed bookings are published to.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a payment succeeds and a booking
// is created.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the booking store.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      uint64   `json:"user_id"`
	ShowtimeID  string   `json:"showtime_id"`
	MovieID     uint64   `json:"movie_id"`
	MovieTitle  string   `json:"movie_title"`
	Venue       string   `json:"venue"`
	Location    string   `json:"location"`
	Screen      string   `json:"screen"`
	StartsAt    string   `json:"starts_at"`
	SeatLabels  []string `json:"seats"`
	Subtotal    int      `json:"subtotal"`
	Fee         int      `json:"convenience_fee"`
	Total       int      `json:"total"`
	Method      string   `json:"payment_method"`
	PaymentRef  string   `json:"payment_ref"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// EventFromBooking builds the event for a freshly confirmed booking.
func EventFromBooking(b model.Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		ShowtimeID:  b.ShowtimeID,
		MovieID:     b.MovieID,
		MovieTitle:  b.MovieTitle,
		Venue:       b.Venue,
		Location:    b.Location,
		Screen:      b.Screen,
		StartsAt:    b.StartsAt.UTC().Format(time.RFC3339),
		SeatLabels:  append([]string(nil), b.Seats...),
		Subtotal:    b.Subtotal,
		Fee:         b.Fee,
		Total:       b.Total,
		Method:      string(b.Method),
		PaymentRef:  b.PaymentRef,
		ConfirmedAt: b.BookedAt.UTC().Format(time.RFC3339),
	}
}
