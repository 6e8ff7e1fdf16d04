package model

import "fmt"

// SeatCategory is the pricing tier of a seat.  The tier is fixed by the
// seat's row when a seat map is generated and never changes afterwards.
type SeatCategory string

const (
	CategoryRegular SeatCategory = "regular"
	CategoryPremium SeatCategory = "premium"
	CategoryVIP     SeatCategory = "vip"
)

// BasePrice returns the unit price of a seat in this category in whole
// currency units.  Unknown categories are priced at zero.
func (c SeatCategory) BasePrice() int {
	switch c {
	case CategoryVIP:
		return 500
	case CategoryPremium:
		return 300
	case CategoryRegular:
		return 200
	}
	return 0
}

// Valid reports whether c is one of the known categories.
func (c SeatCategory) Valid() bool {
	switch c {
	case CategoryRegular, CategoryPremium, CategoryVIP:
		return true
	}
	return false
}

// ParseSeatCategory converts a raw string into a SeatCategory.
func ParseSeatCategory(s string) (SeatCategory, error) {
	c := SeatCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown seat category %q", s)
	}
	return c, nil
}

// SeatStatus is the availability of a seat inside one seat map.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatOccupied  SeatStatus = "occupied"
	SeatSelected  SeatStatus = "selected"
)

// Valid reports whether s is one of the known statuses.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatOccupied, SeatSelected:
		return true
	}
	return false
}

// ParseSeatStatus converts a raw string into a SeatStatus.
func ParseSeatStatus(s string) (SeatStatus, error) {
	st := SeatStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown seat status %q", s)
	}
	return st, nil
}

// Seat describes one seat of a generated seat map.
//
// Fields:
//
//	ID       – row letter followed by seat number, e.g. "F5".
//	Row      – row letter (A–J).
//	Number   – 1-based seat number inside the row.
//	Category – pricing tier derived from the row.
//	Status   – available, occupied or selected.
//	Price    – unit price in whole currency units.
type Seat struct {
	ID       string       `json:"id"`
	Row      string       `json:"row"`
	Number   int          `json:"number"`
	Category SeatCategory `json:"category"`
	Status   SeatStatus   `json:"status"`
	Price    int          `json:"price"`
}
