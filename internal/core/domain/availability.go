package domain

import (
	"time"

	"github.com/google/uuid"
)

type DayState string

const (
	DayAvailable DayState = "AVAILABLE"
	DayReserved  DayState = "RESERVED"
)

// AvailabilityCell is one bookable night of one stay. Cells are created in
// bulk when a stay is published and only ever flip between the two states.
type AvailabilityCell struct {
	StayID uuid.UUID
	Date   time.Time
	State  DayState
}

func (c *AvailabilityCell) IsAvailable() bool {
	return c.State == DayAvailable
}

// Day truncates t to midnight UTC. Every date entering the ledger goes
// through this, so a night is never split across time zones.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights counts the days in [checkin, checkout). The checkout day itself is
// not occupied.
func Nights(checkin, checkout time.Time) int {
	return int(Day(checkout).Sub(Day(checkin)) / (24 * time.Hour))
}
