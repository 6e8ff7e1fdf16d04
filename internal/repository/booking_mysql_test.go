package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicate(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicate(sql.ErrConnDone))
	assert.False(t, isDuplicate(nil))
}

// TestMySQLBookingRepo runs against a real server when MYSQL_TEST_DSN is set.
func TestMySQLBookingRepo(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	r := NewMySQLBookingRepo(db)
	require.NoError(t, r.EnsureSchema(ctx))
	require.NoError(t, r.EnsureSchema(ctx), "schema creation is idempotent")

	// DATETIME keeps whole seconds; unique IDs keep reruns independent.
	now := time.Now().UTC().Truncate(time.Second)
	user := uint64(now.UnixNano())
	id := fmt.Sprintf("BK%d", now.UnixNano())
	t.Cleanup(func() { db.Exec(`DELETE FROM bookings WHERE user_id = ?`, user) })

	b := booking(id, user, now.Add(24*time.Hour), now)
	require.NoError(t, r.Create(ctx, b))
	assert.ErrorIs(t, r.Create(ctx, b), ErrConflict)

	got, err := r.GetForUser(ctx, id, user)
	require.NoError(t, err)
	assert.Equal(t, b.Seats, got.Seats)
	assert.Equal(t, b.Total, got.Total)
	assert.True(t, b.BookedAt.Equal(got.BookedAt))
	_, err = r.GetForUser(ctx, id, user+1)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = r.GetForUser(ctx, id+"x", user)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := r.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)

	c, err := r.Cancel(ctx, id, user, now)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, c.Status)
	_, err = r.Cancel(ctx, id, user, now)
	assert.ErrorIs(t, err, ErrConflict)
}
