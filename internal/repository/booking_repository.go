package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// BookingRepo stores confirmed bookings.  Two implementations exist: an
// in-memory one used by default and a MySQL one selected with
// BOOKING_STORE=mysql.
type BookingRepo interface {
	Create(ctx context.Context, b model.Booking) error
	// ListByUser returns a user's bookings, newest first.
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	// GetForUser returns ErrNotFound for unknown IDs and ErrForbidden when
	// the booking belongs to someone else.
	GetForUser(ctx context.Context, id string, userID uint64) (model.Booking, error)
	// Cancel marks an upcoming booking cancelled.  Bookings whose
	// screening has started, or that are already cancelled, give
	// ErrConflict.
	Cancel(ctx context.Context, id string, userID uint64, now time.Time) (model.Booking, error)
	// Recent returns the n most recently booked entries across all users.
	Recent(ctx context.Context, n int) ([]model.Booking, error)
	Stats(ctx context.Context) (BookingStats, error)
}

// BookingStats aggregates non-cancelled bookings for the admin dashboard.
type BookingStats struct {
	Bookings int `json:"total_bookings"`
	Revenue  int `json:"total_revenue"`
	Tickets  int `json:"total_tickets"`
}

// FilterByStatus keeps bookings whose effective status at now equals
// status.  An empty status keeps everything.
func FilterByStatus(in []model.Booking, status model.BookingStatus, now time.Time) []model.Booking {
	if status == "" {
		return in
	}
	out := make([]model.Booking, 0, len(in))
	for _, b := range in {
		if b.EffectiveStatus(now) == status {
			out = append(out, b)
		}
	}
	return out
}

func newestFirst(a, b model.Booking) int { return b.BookedAt.Compare(a.BookedAt) }

// MemoryBookingRepo keeps bookings in process memory.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: map[string]model.Booking{}}
}

func (r *MemoryBookingRepo) Create(ctx context.Context, b model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; ok {
		return ErrConflict
	}
	b.Seats = slices.Clone(b.Seats)
	r.bookings[b.ID] = b
	return nil
}

func (r *MemoryBookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range r.bookings {
		if b.UserID == userID {
			b.Seats = slices.Clone(b.Seats)
			out = append(out, b)
		}
	}
	slices.SortFunc(out, newestFirst)
	return out, nil
}

func (r *MemoryBookingRepo) GetForUser(ctx context.Context, id string, userID uint64) (model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	b.Seats = slices.Clone(b.Seats)
	return b, nil
}

func (r *MemoryBookingRepo) Cancel(ctx context.Context, id string, userID uint64, now time.Time) (model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	if b.EffectiveStatus(now) != model.BookingUpcoming {
		return model.Booking{}, ErrConflict
	}
	b.Status = model.BookingCancelled
	r.bookings[id] = b
	b.Seats = slices.Clone(b.Seats)
	return b, nil
}

func (r *MemoryBookingRepo) Recent(ctx context.Context, n int) ([]model.Booking, error) {
	r.mu.RLock()
	out := make([]model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		b.Seats = slices.Clone(b.Seats)
		out = append(out, b)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, newestFirst)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *MemoryBookingRepo) Stats(ctx context.Context) (BookingStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var st BookingStats
	for _, b := range r.bookings {
		if b.Status == model.BookingCancelled {
			continue
		}
		st.Bookings++
		st.Revenue += b.Total
		st.Tickets += len(b.Seats)
	}
	return st, nil
}
