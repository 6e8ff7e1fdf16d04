package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/pricing"
	"github.com/iliyamo/cinema-storefront/internal/repository"
	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

var (
	// ErrShowtimeStarted is returned when a draft is opened for a
	// screening that has already begun.
	ErrShowtimeStarted = errors.New("showtime already started")
	// ErrSelectionLocked is returned when seats are toggled outside seat
	// selection.
	ErrSelectionLocked = errors.New("seats can only change during seat selection")
	// ErrPaymentInProgress is returned when a draft is discarded while its
	// payment runs.
	ErrPaymentInProgress = errors.New("payment in progress")
	// ErrPaymentInterrupted is recorded on a draft whose payment never
	// reported back, e.g. because the process stopped mid-charge.
	ErrPaymentInterrupted = errors.New("payment interrupted")
)

// Showtimes resolves the screening a draft is opened for.
type Showtimes interface {
	GetByID(ctx context.Context, id string) (model.Showtime, error)
}

// Sales receives per-movie booking totals for the admin dashboard.
type Sales interface {
	RecordBooking(ctx context.Context, movieID uint64, amount int) error
}

// Events is notified once per confirmed booking.
type Events interface {
	BookingConfirmed(ctx context.Context, b model.Booking) error
}

// Service runs the checkout flow.  Every mutation loads the draft, applies
// one step under a per-draft lock and saves it back.
type Service struct {
	Drafts    DraftStore
	Showtimes Showtimes
	Bookings  repository.BookingRepo
	Sales     Sales
	Pricing   *pricing.Calculator
	Payments  *Processor
	Events    Events

	// Now and Rand are replaced in tests.  A nil Rand uses the global
	// source for seat maps.
	Now  func() time.Time
	Rand func() *rand.Rand

	locks keyedMutex
}

// View is the client-facing rendering of a draft: the seat grid, the
// selection and its price under the shared calculator.
type View struct {
	ID        string                   `json:"id"`
	State     State                    `json:"state"`
	Showtime  model.Showtime           `json:"showtime"`
	Rows      []seatmap.Row            `json:"rows"`
	Selected  []string                 `json:"selected"`
	Counts    map[model.SeatStatus]int `json:"counts"`
	Quote     pricing.Quote            `json:"quote"`
	Method    model.PaymentMethod      `json:"payment_method,omitempty"`
	Attempts  int                      `json:"attempts"`
	LastError string                   `json:"last_error,omitempty"`
	CanRetry  bool                     `json:"can_retry"`
	Booking   *model.Booking           `json:"booking,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) rng() *rand.Rand {
	if s.Rand == nil {
		return nil
	}
	return s.Rand()
}

// Start opens a draft for userID over a freshly generated seat map.
func (s *Service) Start(ctx context.Context, userID uint64, showtimeID string) (View, error) {
	st, err := s.Showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		return View{}, err
	}
	now := s.now()
	if !st.StartsAt.After(now) {
		return View{}, ErrShowtimeStarted
	}
	d := NewDraft(uuid.NewString(), userID, st.ID, seatmap.Generate(st.ID, s.rng()), now)
	if err := s.Drafts.Save(ctx, d); err != nil {
		return View{}, err
	}
	return s.view(ctx, d, st)
}

// Get returns a draft owned by userID.  It waits for a payment running on
// the same draft to finish.
func (s *Service) Get(ctx context.Context, userID uint64, draftID string) (View, error) {
	unlock := s.locks.Lock(draftID)
	defer unlock()
	d, err := s.load(ctx, userID, draftID)
	if err != nil {
		return View{}, err
	}
	return s.render(ctx, d)
}

// Toggle flips one seat.  Occupied seats are a silent no-op.
func (s *Service) Toggle(ctx context.Context, userID uint64, draftID, seatID string) (View, error) {
	return s.mutate(ctx, userID, draftID, func(d *Draft, now time.Time) error {
		if d.State != StateSeatSelection {
			return ErrSelectionLocked
		}
		row, n, ok := seatmap.ParseSeatID(seatID)
		if !ok {
			return fmt.Errorf("%w: %q", seatmap.ErrUnknownSeat, seatID)
		}
		sel := d.Selector()
		changed, err := sel.Toggle(seatmap.SeatID(row, n))
		if err != nil {
			return err
		}
		if changed {
			d.Apply(sel, now)
		}
		return nil
	})
}

// Checkout moves a non-empty selection to payment with method chosen.
func (s *Service) Checkout(ctx context.Context, userID uint64, draftID string, method model.PaymentMethod) (View, error) {
	return s.mutate(ctx, userID, draftID, func(d *Draft, now time.Time) error {
		if err := checkMethod(method); err != nil {
			return err
		}
		if len(d.Selected) == 0 {
			return ErrNoSeats
		}
		if err := d.Transition(StatePaymentMethodChosen, now); err != nil {
			return err
		}
		d.Method = method
		return nil
	})
}

// ChangeMethod switches the payment method while on the payment step.
func (s *Service) ChangeMethod(ctx context.Context, userID uint64, draftID string, method model.PaymentMethod) (View, error) {
	return s.mutate(ctx, userID, draftID, func(d *Draft, now time.Time) error {
		if d.State != StatePaymentMethodChosen {
			return fmt.Errorf("%w: cannot change method in %s", ErrInvalidTransition, d.State)
		}
		if err := checkMethod(method); err != nil {
			return err
		}
		d.Method = method
		d.UpdatedAt = now
		return nil
	})
}

func checkMethod(m model.PaymentMethod) error {
	if !m.Valid() {
		return FieldErrors{"method": "must be card, upi or wallet"}
	}
	return nil
}

// Back returns from payment to seat selection, keeping the selection.
func (s *Service) Back(ctx context.Context, userID uint64, draftID string) (View, error) {
	return s.mutate(ctx, userID, draftID, func(d *Draft, now time.Time) error {
		return d.Transition(StateSeatSelection, now)
	})
}

// Retry re-opens the payment step after a failed attempt.
func (s *Service) Retry(ctx context.Context, userID uint64, draftID string) (View, error) {
	return s.mutate(ctx, userID, draftID, func(d *Draft, now time.Time) error {
		if err := d.Transition(StatePaymentMethodChosen, now); err != nil {
			return err
		}
		d.LastError = ""
		return nil
	})
}

// Discard deletes a draft that is not mid-payment.
func (s *Service) Discard(ctx context.Context, userID uint64, draftID string) error {
	unlock := s.locks.Lock(draftID)
	defer unlock()
	d, err := s.load(ctx, userID, draftID)
	if err != nil {
		return err
	}
	if d.State == StateProcessing {
		return ErrPaymentInProgress
	}
	return s.Drafts.Delete(ctx, draftID)
}

// Pay validates details, charges the quoted total and records the booking.
// Invalid details leave the draft on the payment step and return
// FieldErrors.  A declined, timed-out or cancelled charge moves it to
// Failed and returns the payment error together with the failed view.
func (s *Service) Pay(ctx context.Context, userID uint64, draftID string, details PaymentDetails) (View, error) {
	unlock := s.locks.Lock(draftID)
	defer unlock()

	d, err := s.load(ctx, userID, draftID)
	if err != nil {
		return View{}, err
	}
	if d.State != StatePaymentMethodChosen {
		return View{}, fmt.Errorf("%w: cannot pay in %s", ErrInvalidTransition, d.State)
	}
	if details.Method == "" {
		details.Method = d.Method
	}
	now := s.now()
	if err := details.Validate(now); err != nil {
		return View{}, err
	}
	st, err := s.Showtimes.GetByID(ctx, d.ShowtimeID)
	if err != nil {
		return View{}, err
	}

	d.Method = details.Method
	d.Attempts++
	if err := d.Transition(StateProcessing, now); err != nil {
		return View{}, err
	}
	if err := s.Drafts.Save(ctx, d); err != nil {
		return View{}, err
	}

	sel := d.Selector()
	quote := s.Pricing.Quote(sel.SelectedSeats())
	res := s.Payments.Process(ctx, Charge{DraftID: d.ID, Amount: quote.Total, Method: d.Method})

	// the outcome is recorded even when the client went away mid-charge
	pctx := context.WithoutCancel(ctx)
	if !res.OK() {
		log.Printf("payment: draft %s attempt %d failed: %v", d.ID, d.Attempts, res.Err)
		return s.fail(pctx, d, st, res.Err)
	}

	b, err := s.record(pctx, d, st, quote, res.Receipt)
	if err != nil {
		log.Printf("payment: draft %s charged (%s) but booking not stored: %v", d.ID, res.Receipt.Ref, err)
		return s.fail(pctx, d, st, fmt.Errorf("record booking: %w", err))
	}
	d.BookingID = b.ID
	if err := d.Transition(StateConfirmed, s.now()); err != nil {
		return View{}, err
	}
	// the charge and the booking stand; load settles the stored draft later
	if err := s.Drafts.Save(pctx, d); err != nil {
		log.Printf("payment: draft %s confirmed as %s but not saved: %v", d.ID, b.ID, err)
	}
	if s.Sales != nil {
		if err := s.Sales.RecordBooking(pctx, b.MovieID, b.Total); err != nil {
			log.Printf("payment: sales counter for movie %d: %v", b.MovieID, err)
		}
	}
	if s.Events != nil {
		if err := s.Events.BookingConfirmed(pctx, b); err != nil {
			log.Printf("payment: publish %s: %v", b.ID, err)
		}
	}
	v, err := s.view(pctx, d, st)
	if err != nil {
		return View{}, err
	}
	v.Booking = &b
	return v, nil
}

func (s *Service) fail(ctx context.Context, d *Draft, st model.Showtime, cause error) (View, error) {
	if err := d.Transition(StateFailed, s.now()); err != nil {
		return View{}, err
	}
	d.LastError = cause.Error()
	if err := s.Drafts.Save(ctx, d); err != nil {
		return View{}, err
	}
	v, err := s.view(ctx, d, st)
	if err != nil {
		return View{}, err
	}
	return v, cause
}

// record stores the booking.  IDs are millisecond timestamps, so a clash
// with a concurrent confirmation is retried with the next millisecond.
func (s *Service) record(ctx context.Context, d *Draft, st model.Showtime, q pricing.Quote, rc Receipt) (model.Booking, error) {
	at := s.now()
	b := model.Booking{
		UserID:     d.UserID,
		ShowtimeID: st.ID,
		MovieID:    st.MovieID,
		MovieTitle: st.MovieTitle,
		Venue:      st.Venue,
		Location:   st.Location,
		Screen:     st.Screen,
		StartsAt:   st.StartsAt,
		Seats:      q.SeatIDs(),
		Subtotal:   q.Subtotal,
		Fee:        q.Fee,
		Total:      q.Total,
		Method:     d.Method,
		PaymentRef: rc.Ref,
		Status:     model.BookingUpcoming,
		BookedAt:   at,
	}
	var err error
	for i := 0; i < 5; i++ {
		b.ID = model.NewBookingID(at.Add(time.Duration(i) * time.Millisecond))
		if err = s.Bookings.Create(ctx, b); !errors.Is(err, repository.ErrConflict) {
			break
		}
	}
	return b, err
}

func (s *Service) load(ctx context.Context, userID uint64, draftID string) (*Draft, error) {
	d, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrDraftNotFound
	}
	s.settle(ctx, d)
	return d, nil
}

// defaultStuckAfter bounds a Processing draft when no payment timeout is
// configured.
const defaultStuckAfter = 30 * time.Second

// settle resolves a draft left in Processing by a payment whose outcome
// was never saved.  It becomes Confirmed when its booking exists and
// Failed once the payment timeout has passed without one.  Callers hold
// the draft lock, so no payment of this process is running on d.
func (s *Service) settle(ctx context.Context, d *Draft) {
	if d.State != StateProcessing {
		return
	}
	now := s.now()
	stuckAfter := defaultStuckAfter
	if s.Payments != nil && s.Payments.Timeout > 0 {
		stuckAfter = s.Payments.Timeout
	}
	to := StateFailed
	if b, ok := s.findBooking(ctx, d); ok {
		d.BookingID = b.ID
		to = StateConfirmed
	} else if now.Sub(d.UpdatedAt) > stuckAfter {
		d.LastError = ErrPaymentInterrupted.Error()
	} else {
		return
	}
	if err := d.Transition(to, now); err != nil {
		return
	}
	if err := s.Drafts.Save(ctx, d); err != nil {
		log.Printf("payment: settle draft %s as %s: %v", d.ID, d.State, err)
	}
}

// findBooking looks up the booking a Processing draft produced: the
// user's booking for the same showtime and seats made after the draft
// entered Processing.
func (s *Service) findBooking(ctx context.Context, d *Draft) (model.Booking, bool) {
	if d.BookingID != "" {
		b, err := s.Bookings.GetForUser(ctx, d.BookingID, d.UserID)
		return b, err == nil
	}
	list, err := s.Bookings.ListByUser(ctx, d.UserID)
	if err != nil {
		log.Printf("payment: settle draft %s: %v", d.ID, err)
		return model.Booking{}, false
	}
	// stores may keep whole seconds only
	since := d.UpdatedAt.Truncate(time.Second)
	for _, b := range list {
		if b.ShowtimeID == d.ShowtimeID && !b.BookedAt.Before(since) && slices.Equal(b.Seats, d.Selected) {
			return b, true
		}
	}
	return model.Booking{}, false
}

func (s *Service) mutate(ctx context.Context, userID uint64, draftID string, step func(*Draft, time.Time) error) (View, error) {
	unlock := s.locks.Lock(draftID)
	defer unlock()
	d, err := s.load(ctx, userID, draftID)
	if err != nil {
		return View{}, err
	}
	if err := step(d, s.now()); err != nil {
		return View{}, err
	}
	if err := s.Drafts.Save(ctx, d); err != nil {
		return View{}, err
	}
	return s.render(ctx, d)
}

func (s *Service) render(ctx context.Context, d *Draft) (View, error) {
	st, err := s.Showtimes.GetByID(ctx, d.ShowtimeID)
	if err != nil {
		return View{}, err
	}
	v, err := s.view(ctx, d, st)
	if err != nil {
		return View{}, err
	}
	if d.BookingID != "" {
		if b, err := s.Bookings.GetForUser(ctx, d.BookingID, d.UserID); err == nil {
			v.Booking = &b
		}
	}
	return v, nil
}

func (s *Service) view(_ context.Context, d *Draft, st model.Showtime) (View, error) {
	sel := d.Selector()
	return View{
		ID:        d.ID,
		State:     d.State,
		Showtime:  st,
		Rows:      sel.Rows(),
		Selected:  sel.Selected(),
		Counts:    sel.Counts(),
		Quote:     s.Pricing.Quote(sel.SelectedSeats()),
		Method:    d.Method,
		Attempts:  d.Attempts,
		LastError: d.LastError,
		CanRetry:  d.State == StateFailed,
	}, nil
}
