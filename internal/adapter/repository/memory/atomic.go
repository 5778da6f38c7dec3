package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
)

// StayLocks serializes transactions per stay with one lightweight lock per
// stayID. Operations on different stays never contend. Acquisition is
// bounded by lockTimeout so a starved caller gets an error instead of
// hanging.
type StayLocks struct {
	mu          sync.Mutex
	locks       map[uuid.UUID]chan struct{}
	lockTimeout time.Duration
}

func NewStayLocks(lockTimeout time.Duration) *StayLocks {
	return &StayLocks{
		locks:       make(map[uuid.UUID]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func (l *StayLocks) WithinStay(ctx context.Context, stayID uuid.UUID, fn func(ctx context.Context) error) error {
	lock := l.lockFor(stayID)

	timer := time.NewTimer(l.lockTimeout)
	defer timer.Stop()

	select {
	case lock <- struct{}{}:
	case <-timer.C:
		return domain.ErrTransactionTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock }()

	return fn(ctx)
}

func (l *StayLocks) lockFor(stayID uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[stayID]
	if !ok {
		lock = make(chan struct{}, 1)
		l.locks[stayID] = lock
	}
	return lock
}
