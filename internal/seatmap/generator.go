// Package seatmap builds the seat grid of a showtime and tracks which
// seats a customer has picked.  Every booking draft owns its own map;
// there is no seat locking shared between drafts.
package seatmap

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// Layout constants of the screening hall.
const (
	RowCount      = 10
	SeatsPerRow   = 12
	OccupancyRate = 0.3
)

// TotalSeats is the number of seats produced by Generate.
const TotalSeats = RowCount * SeatsPerRow

// Generate returns the 120-seat grid for a showtime.  Categories follow
// the row (A–C vip, D–F premium, G–J regular); occupancy is random with
// probability OccupancyRate per seat.  The result is not idempotent:
// calling it twice yields different occupancy unless rng is seeded
// identically.  A nil rng uses the global source.
//
// The layout is the same for every showtime; showtimeID only names the
// map being produced.
func Generate(showtimeID string, rng *rand.Rand) []model.Seat {
	chance := rand.Float64
	if rng != nil {
		chance = rng.Float64
	}
	seats := make([]model.Seat, 0, TotalSeats)
	for r := 0; r < RowCount; r++ {
		row := RowLabel(r)
		cat := categoryForIndex(r)
		for n := 1; n <= SeatsPerRow; n++ {
			status := model.SeatAvailable
			if chance() < OccupancyRate {
				status = model.SeatOccupied
			}
			seats = append(seats, model.Seat{
				ID:       SeatID(row, n),
				Row:      row,
				Number:   n,
				Category: cat,
				Status:   status,
				Price:    cat.BasePrice(),
			})
		}
	}
	return seats
}

// RowLabel converts a zero-based row index into its letter (0 → "A").
// Indices outside the hall return "".
func RowLabel(i int) string {
	if i < 0 || i >= RowCount {
		return ""
	}
	return string(rune('A' + i))
}

// RowIndex converts a row letter back into its zero-based index.
func RowIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if len(s) != 1 {
		return -1, false
	}
	i := int(s[0] - 'A')
	if i < 0 || i >= RowCount {
		return -1, false
	}
	return i, true
}

// SeatID joins a row letter and a seat number, e.g. ("F", 5) → "F5".
func SeatID(row string, number int) string {
	return row + strconv.Itoa(number)
}

// ParseSeatID splits an identifier such as "f5" into ("F", 5).  It
// rejects rows outside A–J and numbers outside 1–12.
func ParseSeatID(id string) (row string, number int, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(id))
	if len(s) < 2 {
		return "", 0, false
	}
	if _, ok := RowIndex(s[:1]); !ok {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 || n > SeatsPerRow || strconv.Itoa(n) != s[1:] {
		return "", 0, false
	}
	return s[:1], n, true
}

// CategoryForRow returns the deterministic category of a row letter.
func CategoryForRow(row string) (model.SeatCategory, bool) {
	i, ok := RowIndex(row)
	if !ok {
		return "", false
	}
	return categoryForIndex(i), true
}

func categoryForIndex(i int) model.SeatCategory {
	switch {
	case i < 3:
		return model.CategoryVIP
	case i < 6:
		return model.CategoryPremium
	default:
		return model.CategoryRegular
	}
}

// Describe builds the seat record for an identifier without a seat map,
// marking it available.  It is used to price seat lists that arrive
// detached from a draft.
func Describe(id string) (model.Seat, bool) {
	row, n, ok := ParseSeatID(id)
	if !ok {
		return model.Seat{}, false
	}
	cat, _ := CategoryForRow(row)
	return model.Seat{
		ID:       SeatID(row, n),
		Row:      row,
		Number:   n,
		Category: cat,
		Status:   model.SeatAvailable,
		Price:    cat.BasePrice(),
	}, true
}
