package model

import "time"

// Showtime represents a scheduled screening of a movie at a venue.  It is
// immutable once loaded from the catalog.
//
// Fields:
//
//	ID             – identifier used in booking URLs.
//	MovieID        – movie being screened.
//	MovieTitle     – denormalised title for display.
//	Venue          – cinema name (e.g. "PVR Cinemas").
//	Location       – mall or neighbourhood of the venue.
//	StartsAt       – start instant; Date and Time are derived from it.
//	Screen         – screen label inside the venue.
//	Price          – advertised starting price on listing pages.
//	AvailableSeats – advertised availability on listing pages.
type Showtime struct {
	ID             string    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	Venue          string    `json:"venue"`
	Location       string    `json:"location"`
	StartsAt       time.Time `json:"starts_at"`
	Screen         string    `json:"screen"`
	Price          int       `json:"price"`
	AvailableSeats int       `json:"available_seats"`
}

// Date returns the calendar date of the screening as YYYY-MM-DD.
func (s Showtime) Date() string { return s.StartsAt.Format("2006-01-02") }

// Time returns the start time in the storefront's 12-hour format.
func (s Showtime) Time() string { return s.StartsAt.Format("3:04 PM") }
