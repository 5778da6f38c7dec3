package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
)

// AvailabilityLedger owns one cell per (stay, day). All date arguments are
// closed ranges of UTC midnights; normalizing them is the caller's job.
type AvailabilityLedger interface {
	// Initialize bulk-creates AVAILABLE cells for days consecutive days
	// starting at start. Fails with domain.ErrWindowExists if any of those
	// days already has a cell.
	Initialize(ctx context.Context, stayID uuid.UUID, start time.Time, days int) error

	// AvailableDates returns the currently AVAILABLE days in [from, to],
	// ascending. Read-only.
	AvailableDates(ctx context.Context, stayID uuid.UUID, from, to time.Time) ([]time.Time, error)

	// AllAvailableDates returns every AVAILABLE day of the stay, ascending.
	AllAvailableDates(ctx context.Context, stayID uuid.UUID) ([]time.Time, error)

	// ReserveRange flips every day in [from, to] AVAILABLE -> RESERVED.
	// All-or-nothing: domain.ErrCollision if any day is not AVAILABLE.
	// Must only be called inside the stay's atomic unit.
	ReserveRange(ctx context.Context, stayID uuid.UUID, from, to time.Time) error

	// ReleaseRange flips every day in [from, to] RESERVED -> AVAILABLE.
	// A day that is already AVAILABLE is domain.ErrLedgerCorrupt.
	ReleaseRange(ctx context.Context, stayID uuid.UUID, from, to time.Time) error
}

type ReservationStore interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Reservation, error)
	ListByStay(ctx context.Context, stayID uuid.UUID) ([]domain.Reservation, error)
	// ListByStayCheckoutAfter returns reservations on the stay whose
	// checkout is strictly after date. Feeds the deletion guard.
	ListByStayCheckoutAfter(ctx context.Context, stayID uuid.UUID, date time.Time) ([]domain.Reservation, error)
}

// AtomicUnit serializes ledger and store mutations per stay. Everything fn
// does is committed or rolled back as one unit; concurrent units on the same
// stay never interleave. Acquisition is bounded and surfaces
// domain.ErrTransactionTimeout on starvation.
type AtomicUnit interface {
	WithinStay(ctx context.Context, stayID uuid.UUID, fn func(ctx context.Context) error) error
}

// ImageStore is the external collaborator that persists stay images during
// publication. The core never looks inside the stored data.
type ImageStore interface {
	Save(ctx context.Context, name string, data io.Reader) (string, error)
}
