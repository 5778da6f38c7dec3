package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayNormalizesAcrossZones(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 08:00 in Tokyo and 23:00 UTC the same day are the same cell.
	a := Day(time.Date(2026, 5, 1, 8, 0, 0, 0, tokyo))
	b := Day(time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, a, b)
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), a)
}

func TestNights(t *testing.T) {
	checkin := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, Nights(checkin, checkin.AddDate(0, 0, 1)))
	assert.Equal(t, 3, Nights(checkin, checkin.AddDate(0, 0, 3)))
	assert.Equal(t, 0, Nights(checkin, checkin))
	assert.Equal(t, -2, Nights(checkin, checkin.AddDate(0, 0, -2)))
}

func TestReservationLastNight(t *testing.T) {
	r := Reservation{
		CheckinDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckoutDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC), r.LastNight())
	assert.Equal(t, 3, r.Nights())
}
