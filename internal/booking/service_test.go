package booking

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/pricing"
	"github.com/iliyamo/cinema-storefront/internal/repository"
)

type recordedEvents struct {
	mu  sync.Mutex
	got []model.Booking
}

func (r *recordedEvents) BookingConfirmed(_ context.Context, b model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, b)
	return nil
}

type fixture struct {
	svc       *Service
	movies    *repository.MovieRepo
	showtimes *repository.ShowtimeRepo
	bookings  *repository.MemoryBookingRepo
	events    *recordedEvents
	gateway   *MockGateway
}

var serviceNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	movies := repository.NewMovieRepo()
	showtimes := repository.NewShowtimeRepo(movies.All(context.Background()), serviceNow)
	showtimes.Now = func() time.Time { return serviceNow }
	f := &fixture{
		movies:    movies,
		showtimes: showtimes,
		bookings:  repository.NewMemoryBookingRepo(),
		events:    &recordedEvents{},
		gateway:   &MockGateway{},
	}
	f.svc = &Service{
		Drafts:    NewMemoryDraftStore(time.Hour),
		Showtimes: showtimes,
		Bookings:  f.bookings,
		Sales:     movies,
		Pricing:   pricing.NewCalculator(pricing.PercentFee{Percent: 10}),
		Payments:  &Processor{Gateway: f.gateway, Timeout: time.Second},
		Events:    f.events,
		Now:       func() time.Time { return serviceNow },
		Rand:      func() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) },
	}
	return f
}

func seatsWith(v View, status model.SeatStatus, n int) []model.Seat {
	var out []model.Seat
	for _, row := range v.Rows {
		for _, s := range row.Seats {
			if s.Status == status && len(out) < n {
				out = append(out, s)
			}
		}
	}
	return out
}

// startWithSeats opens a draft on showtime "1" and selects n available seats.
func (f *fixture) startWithSeats(t *testing.T, user uint64, n int) View {
	t.Helper()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, user, "1")
	require.NoError(t, err)
	for _, s := range seatsWith(v, model.SeatAvailable, n) {
		v, err = f.svc.Toggle(ctx, user, v.ID, s.ID)
		require.NoError(t, err)
	}
	require.Len(t, v.Selected, n)
	return v
}

func TestStartBuildsFullMap(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.Start(context.Background(), 1, "1")
	require.NoError(t, err)
	assert.Equal(t, StateSeatSelection, v.State)
	assert.Len(t, v.Rows, 10)
	assert.Equal(t, 120, v.Counts[model.SeatAvailable]+v.Counts[model.SeatOccupied])
	assert.Empty(t, v.Selected)
	assert.Equal(t, 0, v.Quote.Total)

	_, err = f.svc.Start(context.Background(), 1, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStartRejectsPastShowtime(t *testing.T) {
	f := newFixture(t)
	f.svc.Now = func() time.Time { return serviceNow.Add(30 * 24 * time.Hour) }
	_, err := f.svc.Start(context.Background(), 1, "1")
	assert.ErrorIs(t, err, ErrShowtimeStarted)
}

func TestHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.startWithSeats(t, 1, 2)
	quoted := v.Quote

	v, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentMethodChosen, v.State)
	assert.Equal(t, quoted, v.Quote)

	v, err = f.svc.Pay(ctx, 1, v.ID, validCard())
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, v.State)
	require.NotNil(t, v.Booking)
	assert.Equal(t, quoted.Total, v.Booking.Total)
	assert.Equal(t, quoted.SeatIDs(), v.Booking.Seats)
	assert.Equal(t, "BK1705309200000", v.Booking.ID)
	assert.Equal(t, model.BookingUpcoming, v.Booking.Status)

	stored, err := f.bookings.GetForUser(ctx, v.Booking.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, *v.Booking, stored)
	assert.Len(t, f.events.got, 1)

	m, err := f.movies.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1235, m.TotalBookings)
	assert.Equal(t, 456789+quoted.Total, m.Revenue)

	// confirmed is terminal
	_, err = f.svc.Retry(ctx, 1, v.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Pay(ctx, 1, v.ID, validCard())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Booking)
	assert.Equal(t, v.Booking.ID, got.Booking.ID)
}

func TestCheckoutNeedsSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Start(ctx, 1, "1")
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, 1, v.ID, model.PaymentCard)
	assert.ErrorIs(t, err, ErrNoSeats)
	v, err = f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSeatSelection, v.State)

	v = f.startWithSeats(t, 1, 1)
	_, err = f.svc.Checkout(ctx, 1, v.ID, "cash")
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
}

func TestPayNeedsPaymentStep(t *testing.T) {
	f := newFixture(t)
	v := f.startWithSeats(t, 1, 1)
	_, err := f.svc.Pay(context.Background(), 1, v.ID, validCard())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestInvalidDetailsStayOnPaymentStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.startWithSeats(t, 1, 2)
	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentUPI)
	require.NoError(t, err)

	_, err = f.svc.Pay(ctx, 1, v.ID, PaymentDetails{UPIID: "not-an-id"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "upi_id")

	v, err = f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentMethodChosen, v.State)
	assert.Equal(t, 0, v.Attempts)
	assert.Empty(t, f.events.got)
}

func TestTimeoutFailsThenRetrySucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.Delay = time.Second
	f.svc.Payments.Timeout = 10 * time.Millisecond

	v := f.startWithSeats(t, 1, 2)
	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentWallet)
	require.NoError(t, err)

	wallet := PaymentDetails{Method: model.PaymentWallet, Wallet: "mobikwik"}
	v, err = f.svc.Pay(ctx, 1, v.ID, wallet)
	assert.ErrorIs(t, err, ErrPaymentTimeout)
	assert.Equal(t, StateFailed, v.State)
	assert.True(t, v.CanRetry)
	assert.NotEmpty(t, v.LastError)
	assert.Equal(t, 1, v.Attempts)

	_, err = f.svc.Pay(ctx, 1, v.ID, wallet)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	v, err = f.svc.Retry(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentMethodChosen, v.State)
	assert.Empty(t, v.LastError)

	f.gateway.Delay = 0
	v, err = f.svc.Pay(ctx, 1, v.ID, wallet)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, v.State)
	assert.Equal(t, 2, v.Attempts)
	assert.Equal(t, model.PaymentWallet, v.Booking.Method)
}

func TestDeclinedPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.Decline = func(Charge) bool { return true }
	v := f.startWithSeats(t, 1, 1)
	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentCard)
	require.NoError(t, err)

	v, err = f.svc.Pay(ctx, 1, v.ID, validCard())
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, StateFailed, v.State)
	list, err := f.bookings.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBackKeepsSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.startWithSeats(t, 1, 3)
	selected := v.Selected

	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentCard)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, 1, v.ID, selected[0])
	assert.ErrorIs(t, err, ErrSelectionLocked)

	v, err = f.svc.ChangeMethod(ctx, 1, v.ID, model.PaymentUPI)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentUPI, v.Method)

	v, err = f.svc.Back(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSeatSelection, v.State)
	assert.Equal(t, selected, v.Selected)

	_, err = f.svc.ChangeMethod(ctx, 1, v.ID, model.PaymentCard)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestToggleRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Start(ctx, 1, "1")
	require.NoError(t, err)

	occupied := seatsWith(v, model.SeatOccupied, 1)
	require.NotEmpty(t, occupied)
	after, err := f.svc.Toggle(ctx, 1, v.ID, occupied[0].ID)
	require.NoError(t, err)
	assert.Empty(t, after.Selected)
	assert.Equal(t, v.Counts, after.Counts)

	free := seatsWith(v, model.SeatAvailable, 1)[0]
	after, err = f.svc.Toggle(ctx, 1, v.ID, free.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{free.ID}, after.Selected)
	after, err = f.svc.Toggle(ctx, 1, v.ID, free.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Selected)
	assert.Equal(t, v.Counts, after.Counts)

	_, err = f.svc.Toggle(ctx, 1, v.ID, "Z9")
	assert.Error(t, err)
}

func TestDraftsArePrivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.startWithSeats(t, 1, 1)

	_, err := f.svc.Get(ctx, 2, v.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = f.svc.Toggle(ctx, 2, v.ID, v.Selected[0])
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, f.svc.Discard(ctx, 2, v.ID), ErrDraftNotFound)

	require.NoError(t, f.svc.Discard(ctx, 1, v.ID))
	_, err = f.svc.Get(ctx, 1, v.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestConcurrentTogglesAreSerialised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.Start(ctx, 1, "1")
	require.NoError(t, err)
	free := seatsWith(v, model.SeatAvailable, 20)

	var wg sync.WaitGroup
	for _, s := range free {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.Toggle(ctx, 1, v.ID, id)
			assert.NoError(t, err)
		}(s.ID)
	}
	wg.Wait()

	v, err = f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Len(t, v.Selected, len(free))
}

var errStoreDown = errors.New("store down")

// flakyStore fails every save of a draft in state failOn.
type flakyStore struct {
	DraftStore
	failOn State
}

func (s *flakyStore) Save(ctx context.Context, d *Draft) error {
	if d.State == s.failOn {
		return errStoreDown
	}
	return s.DraftStore.Save(ctx, d)
}

func TestConfirmedSurvivesFailedSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Drafts = &flakyStore{DraftStore: f.svc.Drafts, failOn: StateConfirmed}

	v := f.startWithSeats(t, 1, 2)
	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentCard)
	require.NoError(t, err)

	v, err = f.svc.Pay(ctx, 1, v.ID, validCard())
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, v.State)
	require.NotNil(t, v.Booking)

	// the stored draft is still Processing; reading it settles it
	got, err := f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, got.State)
	require.NotNil(t, got.Booking)
	assert.Equal(t, v.Booking.ID, got.Booking.ID)

	_, err = f.svc.Retry(ctx, 1, v.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	list, err := f.bookings.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, f.svc.Discard(ctx, 1, v.ID))
}

// processing stores v's draft as if a payment started at startedAt and
// never reported back.
func (f *fixture) processing(t *testing.T, id string, startedAt time.Time) {
	t.Helper()
	ctx := context.Background()
	d, err := f.svc.Drafts.Get(ctx, id)
	require.NoError(t, err)
	d.State = StateProcessing
	d.Attempts++
	d.UpdatedAt = startedAt
	require.NoError(t, f.svc.Drafts.Save(ctx, d))
}

func TestInterruptedPaymentBecomesRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.startWithSeats(t, 1, 1)
	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentCard)
	require.NoError(t, err)

	f.processing(t, v.ID, serviceNow)
	assert.ErrorIs(t, f.svc.Discard(ctx, 1, v.ID), ErrPaymentInProgress)
	got, err := f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, got.State)

	f.processing(t, v.ID, serviceNow.Add(-time.Minute))
	got, err = f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, got.State)
	assert.True(t, got.CanRetry)
	assert.Equal(t, ErrPaymentInterrupted.Error(), got.LastError)

	got, err = f.svc.Retry(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentMethodChosen, got.State)
	got, err = f.svc.Pay(ctx, 1, v.ID, validCard())
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, got.State)
}

func TestInterruptedPaymentWithBookingConfirms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.startWithSeats(t, 1, 2)
	_, err := f.svc.Checkout(ctx, 1, v.ID, model.PaymentUPI)
	require.NoError(t, err)
	f.processing(t, v.ID, serviceNow.Add(-time.Minute))

	// the booking was written before the process stopped
	st, err := f.svc.Showtimes.GetByID(ctx, "1")
	require.NoError(t, err)
	b := model.Booking{
		ID: "BK1", UserID: 1, ShowtimeID: st.ID, MovieID: st.MovieID, StartsAt: st.StartsAt,
		Seats: v.Selected, Total: v.Quote.Total, Status: model.BookingUpcoming, BookedAt: serviceNow,
	}
	require.NoError(t, f.bookings.Create(ctx, b))

	got, err := f.svc.Get(ctx, 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, got.State)
	require.NotNil(t, got.Booking)
	assert.Equal(t, "BK1", got.Booking.ID)
}

func TestScheduleStaysBookableAfterAWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	later := serviceNow.AddDate(0, 0, repository.ScheduleDays+2)
	f.svc.Now = func() time.Time { return later }
	f.showtimes.Now = f.svc.Now

	_, err := f.svc.Start(ctx, 1, "1")
	assert.ErrorIs(t, err, ErrShowtimeStarted)

	shows := f.showtimes.ListByMovie(ctx, 1, time.Time{})
	require.Len(t, shows, repository.ScheduleDays*5)
	for _, st := range shows {
		v, err := f.svc.Start(ctx, 1, st.ID)
		require.NoError(t, err, st.ID)
		assert.Equal(t, st.ID, v.Showtime.ID)
	}
}
