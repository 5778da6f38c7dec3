package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorschach/staybooking/internal/adapter/repository/memory"
	"github.com/rorschach/staybooking/internal/core/domain"
	"github.com/rorschach/staybooking/internal/core/services"
	"github.com/rorschach/staybooking/internal/pkg/clock"
)

type fakeImageStore struct {
	mu    sync.Mutex
	saved []string
	fail  bool
}

func (f *fakeImageStore) Save(_ context.Context, name string, _ io.Reader) (string, error) {
	if f.fail {
		return "", errors.New("media backend unreachable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, name)
	return fmt.Sprintf("https://media.test/%s", name), nil
}

func TestPublish_OpensWindowStartingTomorrow(t *testing.T) {
	ledger := memory.NewAvailabilityLedger()
	store := memory.NewReservationStore()
	images := &fakeImageStore{}
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))

	svc := services.NewStayService(ledger, store, images, clk, nil, 30)

	stay := domain.Stay{ID: uuid.New(), HostID: uuid.New()}
	resp, err := svc.Publish(context.Background(), stay, []services.StayImage{
		{Name: "front.jpg", Data: []byte("jpg")},
		{Name: "kitchen.jpg", Data: []byte("jpg")},
	})

	require.NoError(t, err)
	assert.Equal(t, 30, resp.Days)
	assert.Len(t, resp.ImageURLs, 2)
	assert.Equal(t, "https://media.test/front.jpg", resp.ImageURLs[0])

	tomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	state, ok := ledger.StateOf(stay.ID, tomorrow)
	require.True(t, ok)
	assert.Equal(t, domain.DayAvailable, state)

	state, ok = ledger.StateOf(stay.ID, tomorrow.AddDate(0, 0, 29))
	require.True(t, ok)
	assert.Equal(t, domain.DayAvailable, state)

	_, ok = ledger.StateOf(stay.ID, today)
	assert.False(t, ok, "window must start tomorrow, not today")
	_, ok = ledger.StateOf(stay.ID, tomorrow.AddDate(0, 0, 30))
	assert.False(t, ok, "window must close after 30 days")
}

func TestPublish_ImageFailureAbortsBeforeLedger(t *testing.T) {
	ledger := memory.NewAvailabilityLedger()
	svc := services.NewStayService(ledger, memory.NewReservationStore(), &fakeImageStore{fail: true},
		clock.NewMockClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)), nil, 30)

	stay := domain.Stay{ID: uuid.New(), HostID: uuid.New()}
	_, err := svc.Publish(context.Background(), stay, []services.StayImage{{Name: "front.jpg"}})

	require.Error(t, err)
	dates, lerr := ledger.AllAvailableDates(context.Background(), stay.ID)
	require.NoError(t, lerr)
	assert.Empty(t, dates, "no availability may exist for a failed publication")
}

func TestPublish_TwiceConflicts(t *testing.T) {
	ledger := memory.NewAvailabilityLedger()
	svc := services.NewStayService(ledger, memory.NewReservationStore(), &fakeImageStore{},
		clock.NewMockClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)), nil, 30)

	stay := domain.Stay{ID: uuid.New(), HostID: uuid.New()}
	_, err := svc.Publish(context.Background(), stay, nil)
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), stay, nil)
	assert.ErrorIs(t, err, domain.ErrWindowExists)
}

func TestCanDelete_FutureCheckoutBlocks(t *testing.T) {
	store := memory.NewReservationStore()
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := services.NewStayService(memory.NewAvailabilityLedger(), store, &fakeImageStore{}, clk, nil, 30)

	ctx := context.Background()
	stayID := uuid.New()
	today := domain.Day(clk.Now())

	require.NoError(t, store.Create(ctx, &domain.Reservation{
		ID:           uuid.New(),
		StayID:       stayID,
		GuestID:      uuid.New(),
		CheckinDate:  today.AddDate(0, 0, -2),
		CheckoutDate: today.AddDate(0, 0, 1), // checks out tomorrow
		CreatedAt:    clk.Now(),
	}))

	ok, err := svc.CanDelete(ctx, stayID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(ctx, stayID), domain.ErrActiveReservation)
}

func TestCanDelete_PastCheckoutAllows(t *testing.T) {
	store := memory.NewReservationStore()
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := services.NewStayService(memory.NewAvailabilityLedger(), store, &fakeImageStore{}, clk, nil, 30)

	ctx := context.Background()
	stayID := uuid.New()
	today := domain.Day(clk.Now())

	require.NoError(t, store.Create(ctx, &domain.Reservation{
		ID:           uuid.New(),
		StayID:       stayID,
		GuestID:      uuid.New(),
		CheckinDate:  today.AddDate(0, 0, -3),
		CheckoutDate: today.AddDate(0, 0, -1), // checked out yesterday
		CreatedAt:    clk.Now(),
	}))

	ok, err := svc.CanDelete(ctx, stayID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, svc.Delete(ctx, stayID))
}

func TestCanDelete_CheckoutTodayAllows(t *testing.T) {
	store := memory.NewReservationStore()
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := services.NewStayService(memory.NewAvailabilityLedger(), store, &fakeImageStore{}, clk, nil, 30)

	ctx := context.Background()
	stayID := uuid.New()
	today := domain.Day(clk.Now())

	// Checkout is exclusive, so a guest leaving today holds no future night.
	require.NoError(t, store.Create(ctx, &domain.Reservation{
		ID:           uuid.New(),
		StayID:       stayID,
		GuestID:      uuid.New(),
		CheckinDate:  today.AddDate(0, 0, -1),
		CheckoutDate: today,
		CreatedAt:    clk.Now(),
	}))

	ok, err := svc.CanDelete(ctx, stayID)
	require.NoError(t, err)
	assert.True(t, ok)
}
