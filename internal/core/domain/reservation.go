package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation locks the nights [CheckinDate, CheckoutDate) of one stay for
// one guest. Records are immutable once committed; changing dates means
// cancelling and booking again.
type Reservation struct {
	ID           uuid.UUID
	StayID       uuid.UUID
	GuestID      uuid.UUID
	CheckinDate  time.Time
	CheckoutDate time.Time
	CreatedAt    time.Time
}

// LastNight is the final day the reservation occupies, checkout being
// exclusive.
func (r *Reservation) LastNight() time.Time {
	return Day(r.CheckoutDate).AddDate(0, 0, -1)
}

func (r *Reservation) Nights() int {
	return Nights(r.CheckinDate, r.CheckoutDate)
}
