package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
)

// AvailabilityLedger keeps cells in process memory. Mutating calls are
// expected to run inside the stay's atomic unit; the RWMutex only protects
// the maps themselves.
type AvailabilityLedger struct {
	mu    sync.RWMutex
	cells map[uuid.UUID]map[time.Time]domain.DayState
}

func NewAvailabilityLedger() *AvailabilityLedger {
	return &AvailabilityLedger{
		cells: make(map[uuid.UUID]map[time.Time]domain.DayState),
	}
}

func (l *AvailabilityLedger) Initialize(_ context.Context, stayID uuid.UUID, start time.Time, days int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.cells[stayID]
	if window == nil {
		window = make(map[time.Time]domain.DayState, days)
		l.cells[stayID] = window
	}

	day := domain.Day(start)
	for i := 0; i < days; i++ {
		if _, exists := window[day]; exists {
			return domain.ErrWindowExists
		}
		day = day.AddDate(0, 0, 1)
	}

	day = domain.Day(start)
	for i := 0; i < days; i++ {
		window[day] = domain.DayAvailable
		day = day.AddDate(0, 0, 1)
	}
	return nil
}

func (l *AvailabilityLedger) AvailableDates(_ context.Context, stayID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	window := l.cells[stayID]
	var dates []time.Time
	for day := domain.Day(from); !day.After(domain.Day(to)); day = day.AddDate(0, 0, 1) {
		if window[day] == domain.DayAvailable {
			dates = append(dates, day)
		}
	}
	return dates, nil
}

func (l *AvailabilityLedger) AllAvailableDates(_ context.Context, stayID uuid.UUID) ([]time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var dates []time.Time
	for day, state := range l.cells[stayID] {
		if state == domain.DayAvailable {
			dates = append(dates, day)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (l *AvailabilityLedger) ReserveRange(_ context.Context, stayID uuid.UUID, from, to time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.cells[stayID]
	from, to = domain.Day(from), domain.Day(to)

	// Verify the whole range before flipping anything.
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if window[day] != domain.DayAvailable {
			return domain.ErrCollision
		}
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		window[day] = domain.DayReserved
	}
	return nil
}

func (l *AvailabilityLedger) ReleaseRange(_ context.Context, stayID uuid.UUID, from, to time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.cells[stayID]
	from, to = domain.Day(from), domain.Day(to)

	// A day that is not RESERVED here means an earlier transaction was
	// applied partially or twice. Fail loudly.
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if window[day] != domain.DayReserved {
			return domain.ErrLedgerCorrupt
		}
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		window[day] = domain.DayAvailable
	}
	return nil
}

// StateOf exposes a single cell's state for tests and diagnostics.
func (l *AvailabilityLedger) StateOf(stayID uuid.UUID, day time.Time) (domain.DayState, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state, ok := l.cells[stayID][domain.Day(day)]
	return state, ok
}
