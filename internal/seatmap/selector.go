package seatmap

import (
	"errors"
	"slices"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// ErrUnknownSeat is returned when a toggle names a seat that is not part
// of the map.
var ErrUnknownSeat = errors.New("unknown seat")

// Selector owns the status of every seat in one map and the ordered list
// of selected seat IDs.  It is not safe for concurrent use; the booking
// service serialises access per draft.
type Selector struct {
	order    []string
	seats    map[string]*model.Seat
	selected []string
}

// NewSelector wraps a generated grid.  Seats arriving with status
// selected are recorded in grid order.
func NewSelector(seats []model.Seat) *Selector {
	s := &Selector{
		order: make([]string, 0, len(seats)),
		seats: make(map[string]*model.Seat, len(seats)),
	}
	for i := range seats {
		seat := seats[i]
		s.order = append(s.order, seat.ID)
		s.seats[seat.ID] = &seat
		if seat.Status == model.SeatSelected {
			s.selected = append(s.selected, seat.ID)
		}
	}
	return s
}

// Restore rebuilds a selector from a stored grid and selection order.
// Selected IDs that are missing from the grid or not marked selected are
// dropped.
func Restore(seats []model.Seat, selected []string) *Selector {
	s := NewSelector(seats)
	s.selected = s.selected[:0]
	for _, id := range selected {
		if seat, ok := s.seats[id]; ok && seat.Status == model.SeatSelected && !slices.Contains(s.selected, id) {
			s.selected = append(s.selected, id)
		}
	}
	// grid entries marked selected but absent from the stored order go last
	for _, id := range s.order {
		if s.seats[id].Status == model.SeatSelected && !slices.Contains(s.selected, id) {
			s.selected = append(s.selected, id)
		}
	}
	return s
}

// Toggle flips a seat between available and selected.  Occupied seats
// are left untouched and report changed=false with a nil error.
func (s *Selector) Toggle(seatID string) (changed bool, err error) {
	seat, ok := s.seats[seatID]
	if !ok {
		return false, ErrUnknownSeat
	}
	switch seat.Status {
	case model.SeatOccupied:
		return false, nil
	case model.SeatSelected:
		seat.Status = model.SeatAvailable
		if i := slices.Index(s.selected, seatID); i >= 0 {
			s.selected = slices.Delete(s.selected, i, i+1)
		}
	default:
		seat.Status = model.SeatSelected
		s.selected = append(s.selected, seatID)
	}
	return true, nil
}

// Selected returns a copy of the selected seat IDs in selection order.
func (s *Selector) Selected() []string {
	return slices.Clone(s.selected)
}

// SelectedSeats returns the selected seat records in selection order.
func (s *Selector) SelectedSeats() []model.Seat {
	out := make([]model.Seat, 0, len(s.selected))
	for _, id := range s.selected {
		out = append(out, *s.seats[id])
	}
	return out
}

// Seat looks up a single seat.
func (s *Selector) Seat(id string) (model.Seat, bool) {
	seat, ok := s.seats[id]
	if !ok {
		return model.Seat{}, false
	}
	return *seat, true
}

// Seats returns a copy of the grid in generation order.
func (s *Selector) Seats() []model.Seat {
	out := make([]model.Seat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.seats[id])
	}
	return out
}

// Row is one line of the rendered grid.
type Row struct {
	Label string       `json:"row"`
	Seats []model.Seat `json:"seats"`
}

// Rows groups the grid by row letter for rendering, keeping seat order.
func (s *Selector) Rows() []Row {
	var rows []Row
	for _, seat := range s.Seats() {
		if len(rows) == 0 || rows[len(rows)-1].Label != seat.Row {
			rows = append(rows, Row{Label: seat.Row})
		}
		last := &rows[len(rows)-1]
		last.Seats = append(last.Seats, seat)
	}
	return rows
}

// Counts reports how many seats are in each status.
func (s *Selector) Counts() map[model.SeatStatus]int {
	out := map[model.SeatStatus]int{
		model.SeatAvailable: 0,
		model.SeatOccupied:  0,
		model.SeatSelected:  0,
	}
	for _, seat := range s.seats {
		out[seat.Status]++
	}
	return out
}
