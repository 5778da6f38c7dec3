package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
)

type ReservationStore struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]domain.Reservation
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		reservations: make(map[uuid.UUID]domain.Reservation),
	}
}

func (s *ReservationStore) Create(_ context.Context, r *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = *r
	return nil
}

func (s *ReservationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &r, nil
}

func (s *ReservationStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return domain.ErrReservationNotFound
	}
	delete(s.reservations, id)
	return nil
}

func (s *ReservationStore) ListByGuest(_ context.Context, guestID uuid.UUID) ([]domain.Reservation, error) {
	return s.list(func(r domain.Reservation) bool { return r.GuestID == guestID }), nil
}

func (s *ReservationStore) ListByStay(_ context.Context, stayID uuid.UUID) ([]domain.Reservation, error) {
	return s.list(func(r domain.Reservation) bool { return r.StayID == stayID }), nil
}

func (s *ReservationStore) ListByStayCheckoutAfter(_ context.Context, stayID uuid.UUID, date time.Time) ([]domain.Reservation, error) {
	day := domain.Day(date)
	return s.list(func(r domain.Reservation) bool {
		return r.StayID == stayID && domain.Day(r.CheckoutDate).After(day)
	}), nil
}

func (s *ReservationStore) list(match func(domain.Reservation) bool) []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Reservation
	for _, r := range s.reservations {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckinDate.Equal(out[j].CheckinDate) {
			return out[i].CheckinDate.Before(out[j].CheckinDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
