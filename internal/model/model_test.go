package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatCategoryBasePrice(t *testing.T) {
	assert.Equal(t, 200, CategoryRegular.BasePrice())
	assert.Equal(t, 300, CategoryPremium.BasePrice())
	assert.Equal(t, 500, CategoryVIP.BasePrice())
	assert.Equal(t, 0, SeatCategory("balcony").BasePrice())
}

func TestParsersRejectUnknownValues(t *testing.T) {
	_, err := ParseSeatCategory("balcony")
	assert.Error(t, err)
	_, err = ParseSeatStatus("held")
	assert.Error(t, err)
	_, err = ParseBookingStatus("pending")
	assert.Error(t, err)
	_, err = ParseMovieStatus("archived")
	assert.Error(t, err)
	_, err = ParseTheme("sepia")
	assert.Error(t, err)

	m, err := ParsePaymentMethod(" UPI ")
	require.NoError(t, err)
	assert.Equal(t, PaymentUPI, m)
}

func TestBookingEffectiveStatus(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	b := Booking{Status: BookingUpcoming, StartsAt: now.Add(time.Hour)}
	assert.Equal(t, BookingUpcoming, b.EffectiveStatus(now))

	b.StartsAt = now.Add(-time.Hour)
	assert.Equal(t, BookingCompleted, b.EffectiveStatus(now))

	b.Status = BookingCancelled
	assert.Equal(t, BookingCancelled, b.EffectiveStatus(now))
}

func TestNewBookingID(t *testing.T) {
	at := time.UnixMilli(1704067200000)
	assert.Equal(t, "BK1704067200000", NewBookingID(at))
}
