package domain

import "errors"

var (
	// ErrInvalidInput rejects malformed identifiers or dates before any
	// state is touched.
	ErrInvalidInput = errors.New("invalid request")

	// ErrInvalidDates rejects a range with checkout on or before checkin.
	ErrInvalidDates = errors.New("checkout date must be after checkin date")

	// ErrCollision means at least one requested night is not AVAILABLE.
	// The caller may re-query availability and try different dates.
	ErrCollision = errors.New("requested dates are not available")

	// ErrTransactionTimeout means the per-stay atomic unit could not be
	// acquired or committed within its bound. Transient; the identical
	// request may be retried.
	ErrTransactionTimeout = errors.New("reservation transaction timed out under contention")

	ErrReservationNotFound = errors.New("reservation not found")

	// ErrActiveReservation blocks stay deletion while a reservation with a
	// future checkout exists.
	ErrActiveReservation = errors.New("stay has active reservations")

	// ErrWindowExists rejects initializing availability over days that
	// already have cells.
	ErrWindowExists = errors.New("availability window already initialized")

	// ErrLedgerCorrupt is raised when a release touches a day that is not
	// RESERVED. That can only follow a prior bug and is never ignored.
	ErrLedgerCorrupt = errors.New("availability ledger is inconsistent")
)
