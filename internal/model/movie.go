package model

import (
	"fmt"
	"time"
)

// MovieStatus controls whether a movie is bookable in the storefront.
type MovieStatus string

const (
	MovieActive     MovieStatus = "active"
	MovieInactive   MovieStatus = "inactive"
	MovieComingSoon MovieStatus = "coming-soon"
)

// Valid reports whether s is one of the known statuses.
func (s MovieStatus) Valid() bool {
	switch s {
	case MovieActive, MovieInactive, MovieComingSoon:
		return true
	}
	return false
}

// ParseMovieStatus converts a raw string into a MovieStatus.
func ParseMovieStatus(s string) (MovieStatus, error) {
	st := MovieStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown movie status %q", s)
	}
	return st, nil
}

// Movie is a catalog entry.  TotalBookings and Revenue are only exposed
// on admin endpoints.
type Movie struct {
	ID            uint64      `json:"id"`
	Title         string      `json:"title"`
	Genres        []string    `json:"genres"`
	Rating        float64     `json:"rating"`
	Duration      string      `json:"duration"`
	Language      string      `json:"language"`
	ReleaseDate   time.Time   `json:"release_date"`
	Description   string      `json:"description"`
	Director      string      `json:"director,omitempty"`
	Cast          []string    `json:"cast,omitempty"`
	Poster        string      `json:"poster"`
	Status        MovieStatus `json:"status"`
	TotalBookings int         `json:"-"`
	Revenue       int         `json:"-"`
}
