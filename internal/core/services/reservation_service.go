package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rorschach/staybooking/internal/core/domain"
	"github.com/rorschach/staybooking/internal/core/ports"
)

const dateLayout = "2006-01-02"

type AddReservationRequest struct {
	StayID   string `json:"stay_id"`
	GuestID  string `json:"guest_id"`
	Checkin  string `json:"checkin_date"`
	Checkout string `json:"checkout_date"`
}

type ReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	StayID        string `json:"stay_id"`
	GuestID       string `json:"guest_id"`
	Checkin       string `json:"checkin_date"`
	Checkout      string `json:"checkout_date"`
	Nights        int    `json:"nights"`
}

// ReservationService is the transaction manager over the availability ledger
// and the reservation store. Every Add and Remove runs inside the stay's
// atomic unit, so overlapping operations on one stay serialize while
// different stays proceed in parallel.
type ReservationService struct {
	ledger   ports.AvailabilityLedger
	store    ports.ReservationStore
	atomic   ports.AtomicUnit
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewReservationService(ledger ports.AvailabilityLedger, store ports.ReservationStore, atomic ports.AtomicUnit, cache *redis.Client, cacheTTL time.Duration) *ReservationService {
	return &ReservationService{
		ledger:   ledger,
		store:    store,
		atomic:   atomic,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *ReservationService) Add(ctx context.Context, req AddReservationRequest) (*ReservationResponse, error) {
	stayID, err := uuid.Parse(req.StayID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid stay id", domain.ErrInvalidInput)
	}

	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid guest id", domain.ErrInvalidInput)
	}

	checkin, checkout, err := parseRange(req.Checkin, req.Checkout)
	if err != nil {
		return nil, err
	}

	nights := domain.Nights(checkin, checkout)
	if nights <= 0 {
		return nil, domain.ErrInvalidDates
	}

	reservation := &domain.Reservation{
		ID:           uuid.New(),
		StayID:       stayID,
		GuestID:      guestID,
		CheckinDate:  checkin,
		CheckoutDate: checkout,
		CreatedAt:    time.Now(),
	}
	lastNight := reservation.LastNight()

	err = s.atomic.WithinStay(ctx, stayID, func(ctx context.Context) error {
		dates, err := s.ledger.AvailableDates(ctx, stayID, checkin, lastNight)
		if err != nil {
			return err
		}

		// Count mismatch means some night is RESERVED or outside the
		// published window. Nothing has been written yet.
		if len(dates) != nights {
			return domain.ErrCollision
		}

		if err := s.ledger.ReserveRange(ctx, stayID, checkin, lastNight); err != nil {
			return err
		}

		if err := s.store.Create(ctx, reservation); err != nil {
			// Transactional adapters roll the flip back with the unit;
			// for plain adapters we undo it here.
			if rbErr := s.ledger.ReleaseRange(ctx, stayID, checkin, lastNight); rbErr != nil {
				log.Printf("failed to release %s..%s on stay %s after aborted add: %v",
					req.Checkin, req.Checkout, stayID, rbErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, stayID)

	return toResponse(reservation), nil
}

func (s *ReservationService) Remove(ctx context.Context, reservationID uuid.UUID) error {
	// First lookup only resolves the stay so the atomic unit can be scoped.
	reservation, err := s.store.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	stayID := reservation.StayID

	err = s.atomic.WithinStay(ctx, stayID, func(ctx context.Context) error {
		// Re-read inside the unit: a concurrent Remove may have won.
		reservation, err := s.store.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}

		if err := s.ledger.ReleaseRange(ctx, stayID, domain.Day(reservation.CheckinDate), reservation.LastNight()); err != nil {
			return err
		}

		return s.store.Delete(ctx, reservationID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, stayID)

	return nil
}

func (s *ReservationService) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.Reservation, error) {
	return s.store.ListByGuest(ctx, guestID)
}

func (s *ReservationService) ListByStay(ctx context.Context, stayID uuid.UUID) ([]domain.Reservation, error) {
	return s.store.ListByStay(ctx, stayID)
}

// AvailableDates is the read path for the booking workflow. The full set of
// AVAILABLE days per stay is cached; every committed Add/Remove drops the
// key, so a hit is never staler than the cache TTL.
func (s *ReservationService) AvailableDates(ctx context.Context, stayID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	from, to = domain.Day(from), domain.Day(to)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, availabilityKey(stayID)).Bytes()
		if err == nil {
			var cached []string
			if err := json.Unmarshal(raw, &cached); err == nil {
				return filterRange(cached, from, to)
			}
		} else if err != redis.Nil {
			log.Printf("availability cache read failed for stay %s: %v", stayID, err)
		}
	}

	all, err := s.ledger.AllAvailableDates(ctx, stayID)
	if err != nil {
		return nil, err
	}

	encoded := make([]string, len(all))
	for i, d := range all {
		encoded[i] = d.Format(dateLayout)
	}

	if s.cache != nil {
		raw, _ := json.Marshal(encoded)
		if err := s.cache.Set(ctx, availabilityKey(stayID), raw, s.cacheTTL).Err(); err != nil {
			log.Printf("availability cache write failed for stay %s: %v", stayID, err)
		}
	}

	return filterRange(encoded, from, to)
}

// invalidate is best effort: a failed Del only means readers fall back to
// the ledger until the TTL expires.
func (s *ReservationService) invalidate(ctx context.Context, stayID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, availabilityKey(stayID)).Err(); err != nil {
		log.Printf("availability cache invalidation failed for stay %s: %v", stayID, err)
	}
}

func availabilityKey(stayID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", stayID)
}

func parseRange(checkin, checkout string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, checkin)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid checkin date", domain.ErrInvalidInput)
	}
	out, err := time.Parse(dateLayout, checkout)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid checkout date", domain.ErrInvalidInput)
	}
	return domain.Day(in), domain.Day(out), nil
}

func filterRange(encoded []string, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	for _, s := range encoded {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("malformed cached date %q: %w", s, err)
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func toResponse(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ReservationID: r.ID.String(),
		StayID:        r.StayID.String(),
		GuestID:       r.GuestID.String(),
		Checkin:       r.CheckinDate.Format(dateLayout),
		Checkout:      r.CheckoutDate.Format(dateLayout),
		Nights:        r.Nights(),
	}
}
