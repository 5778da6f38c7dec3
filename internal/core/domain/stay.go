package domain

import "github.com/google/uuid"

// Stay is owned by the stay-management workflow; the core only reads its id
// to scope ledger and reservation queries.
type Stay struct {
	ID     uuid.UUID
	HostID uuid.UUID
}
