package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// erDupEntry is the MySQL server error for a duplicate key.
const erDupEntry = 1062

// isDuplicate reports whether err is a duplicate-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}

// MySQLBookingRepo persists bookings in the bookings table.  Seat labels
// are stored as a JSON array; all timestamps are UTC.
type MySQLBookingRepo struct {
	db *sql.DB
}

// NewMySQLBookingRepo returns a repository bound to db.
func NewMySQLBookingRepo(db *sql.DB) *MySQLBookingRepo { return &MySQLBookingRepo{db: db} }

const bookingSchema = `CREATE TABLE IF NOT EXISTS bookings (
  id               VARCHAR(32)  NOT NULL PRIMARY KEY,
  user_id          BIGINT UNSIGNED NOT NULL,
  showtime_id      VARCHAR(32)  NOT NULL,
  movie_id         BIGINT UNSIGNED NOT NULL,
  movie_title      VARCHAR(255) NOT NULL,
  venue            VARCHAR(255) NOT NULL,
  location         VARCHAR(255) NOT NULL,
  screen           VARCHAR(64)  NOT NULL,
  starts_at        DATETIME     NOT NULL,
  seats            JSON         NOT NULL,
  subtotal         INT          NOT NULL,
  convenience_fee  INT          NOT NULL,
  total            INT          NOT NULL,
  payment_method   VARCHAR(16)  NOT NULL,
  payment_ref      VARCHAR(64)  NOT NULL,
  status           ENUM('upcoming','cancelled') NOT NULL DEFAULT 'upcoming',
  booked_at        DATETIME     NOT NULL,
  KEY idx_bookings_user (user_id, booked_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the bookings table when it is missing.
func (r *MySQLBookingRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, bookingSchema)
	return err
}

const bookingColumns = `id, user_id, showtime_id, movie_id, movie_title, venue, location, screen,
  starts_at, seats, subtotal, convenience_fee, total, payment_method, payment_ref, status, booked_at`

// Create inserts b.  A booking ID that already exists gives ErrConflict.
func (r *MySQLBookingRepo) Create(ctx context.Context, b model.Booking) error {
	seats, err := json.Marshal(b.Seats)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		b.ID, b.UserID, b.ShowtimeID, b.MovieID, b.MovieTitle, b.Venue, b.Location, b.Screen,
		b.StartsAt.UTC(), seats, b.Subtotal, b.Fee, b.Total, string(b.Method), b.PaymentRef,
		string(b.Status), b.BookedAt.UTC(),
	)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		seats  []byte
		method string
		status string
	)
	err := s.Scan(
		&b.ID, &b.UserID, &b.ShowtimeID, &b.MovieID, &b.MovieTitle, &b.Venue, &b.Location, &b.Screen,
		&b.StartsAt, &seats, &b.Subtotal, &b.Fee, &b.Total, &method, &b.PaymentRef, &status, &b.BookedAt,
	)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(seats, &b.Seats); err != nil {
		return b, err
	}
	b.Method = model.PaymentMethod(method)
	b.Status = model.BookingStatus(status)
	return b, nil
}

func (r *MySQLBookingRepo) query(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *MySQLBookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY booked_at DESC`, userID)
}

func (r *MySQLBookingRepo) get(ctx context.Context, q sqlQueryer, id string, lock bool) (model.Booking, error) {
	stmt := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if lock {
		stmt += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

type sqlQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *MySQLBookingRepo) GetForUser(ctx context.Context, id string, userID uint64) (model.Booking, error) {
	b, err := r.get(ctx, r.db, id, false)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

// Cancel locks the row so a concurrent cancel sees the updated status.
func (r *MySQLBookingRepo) Cancel(ctx context.Context, id string, userID uint64, now time.Time) (model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	defer tx.Rollback()

	b, err := r.get(ctx, tx, id, true)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	if b.EffectiveStatus(now) != model.BookingUpcoming {
		return model.Booking{}, ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = 'cancelled' WHERE id = ?`, id); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingCancelled
	return b, nil
}

func (r *MySQLBookingRepo) Recent(ctx context.Context, n int) ([]model.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booked_at DESC LIMIT ?`, n)
}

func (r *MySQLBookingRepo) Stats(ctx context.Context) (BookingStats, error) {
	var st BookingStats
	var tickets sql.NullInt64
	const q = `SELECT COUNT(*), COALESCE(SUM(total), 0), SUM(JSON_LENGTH(seats))
FROM bookings WHERE status <> 'cancelled'`
	if err := r.db.QueryRowContext(ctx, q).Scan(&st.Bookings, &st.Revenue, &tickets); err != nil {
		return st, err
	}
	st.Tickets = int(tickets.Int64)
	return st, nil
}
