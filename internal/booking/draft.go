// Package booking implements the booking draft: the in-progress selection
// of seats and payment details for one showtime, and the state machine
// that moves it from seat selection through payment to confirmation.
package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

// State is a step of the checkout flow.
type State string

const (
	StateSeatSelection       State = "seat_selection"
	StatePaymentMethodChosen State = "payment_method_chosen"
	StateProcessing          State = "processing"
	StateConfirmed           State = "confirmed"
	StateFailed              State = "failed"
)

// transitions lists the allowed edges of the flow.  Confirmed is terminal
// and only reachable from Processing; Failed loops back to
// PaymentMethodChosen for a retry.
var transitions = map[State][]State{
	StateSeatSelection:       {StatePaymentMethodChosen},
	StatePaymentMethodChosen: {StateSeatSelection, StateProcessing},
	StateProcessing:          {StateConfirmed, StateFailed},
	StateFailed:              {StatePaymentMethodChosen},
	StateConfirmed:           nil,
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool { return len(transitions[s]) == 0 }

// CanTransition reports whether the flow allows from → to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var (
	// ErrInvalidTransition is returned when an action is not allowed in
	// the draft's current state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrNoSeats is returned when checkout is attempted with an empty
	// selection.
	ErrNoSeats = errors.New("no seats selected")
	// ErrDraftNotFound is returned when a draft does not exist, has
	// expired, or belongs to another user.
	ErrDraftNotFound = errors.New("draft not found")
)

// Draft is the single owned object threaded through seat selection,
// payment and confirmation.  It is stored whole after every mutation.
type Draft struct {
	ID         string              `json:"id"`
	UserID     uint64              `json:"user_id"`
	ShowtimeID string              `json:"showtime_id"`
	State      State               `json:"state"`
	Seats      []model.Seat        `json:"seats"`
	Selected   []string            `json:"selected"`
	Method     model.PaymentMethod `json:"payment_method,omitempty"`
	Attempts   int                 `json:"attempts"`
	LastError  string              `json:"last_error,omitempty"`
	BookingID  string              `json:"booking_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// NewDraft starts a draft in SeatSelection over a freshly generated grid.
func NewDraft(id string, userID uint64, showtimeID string, seats []model.Seat, now time.Time) *Draft {
	return &Draft{
		ID:         id,
		UserID:     userID,
		ShowtimeID: showtimeID,
		State:      StateSeatSelection,
		Seats:      seats,
		Selected:   []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Transition moves the draft to state to, or returns ErrInvalidTransition.
func (d *Draft) Transition(to State, now time.Time) error {
	if !CanTransition(d.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.State, to)
	}
	d.State = to
	d.UpdatedAt = now
	return nil
}

// Selector rebuilds the seat selector from the stored grid.
func (d *Draft) Selector() *seatmap.Selector {
	return seatmap.Restore(d.Seats, d.Selected)
}

// Apply stores the selector's grid and selection back on the draft.
func (d *Draft) Apply(sel *seatmap.Selector, now time.Time) {
	d.Seats = sel.Seats()
	d.Selected = sel.Selected()
	d.UpdatedAt = now
}
