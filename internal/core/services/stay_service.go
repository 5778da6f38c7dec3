package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rorschach/staybooking/internal/core/domain"
	"github.com/rorschach/staybooking/internal/core/ports"
	"github.com/rorschach/staybooking/internal/pkg/clock"
)

type StayImage struct {
	Name string
	Data []byte
}

type PublishStayResponse struct {
	StayID    string   `json:"stay_id"`
	ImageURLs []string `json:"image_urls"`
	Days      int      `json:"available_days"`
}

// StayService covers the stay-publication workflow and the lifecycle guard.
// It never touches availability cells directly; the ledger owns those.
type StayService struct {
	ledger     ports.AvailabilityLedger
	store      ports.ReservationStore
	images     ports.ImageStore
	clock      clock.Clock
	cache      *redis.Client
	windowDays int
}

func NewStayService(ledger ports.AvailabilityLedger, store ports.ReservationStore, images ports.ImageStore, clk clock.Clock, cache *redis.Client, windowDays int) *StayService {
	return &StayService{
		ledger:     ledger,
		store:      store,
		images:     images,
		clock:      clk,
		cache:      cache,
		windowDays: windowDays,
	}
}

// InitializeAvailability opens the bookable window for a stay: days cells
// starting at start, all AVAILABLE. Re-initializing over existing days
// fails rather than silently re-opening booked nights.
func (s *StayService) InitializeAvailability(ctx context.Context, stayID uuid.UUID, start time.Time, days int) error {
	if err := s.ledger.Initialize(ctx, stayID, domain.Day(start), days); err != nil {
		return err
	}

	if s.cache != nil {
		// A reader may have cached an empty window before publication.
		if err := s.cache.Del(ctx, availabilityKey(stayID)).Err(); err != nil {
			log.Printf("availability cache invalidation failed for stay %s: %v", stayID, err)
		}
	}
	return nil
}

// Publish uploads the stay's images and opens its availability window,
// windowDays cells starting tomorrow, all AVAILABLE. Uploads run
// concurrently; any failure aborts publication before the ledger is touched.
func (s *StayService) Publish(ctx context.Context, stay domain.Stay, images []StayImage) (*PublishStayResponse, error) {
	urls := make([]string, len(images))
	errs := make([]error, len(images))

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func(i int, img StayImage) {
			defer wg.Done()
			url, err := s.images.Save(ctx, img.Name, bytes.NewReader(img.Data))
			if err != nil {
				errs[i] = fmt.Errorf("failed to store image %s: %w", img.Name, err)
				return
			}
			urls[i] = url
		}(i, img)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	start := domain.Day(s.clock.Now()).AddDate(0, 0, 1)
	if err := s.InitializeAvailability(ctx, stay.ID, start, s.windowDays); err != nil {
		return nil, err
	}

	log.Printf("stay %s published with %d available days from %s", stay.ID, s.windowDays, start.Format(dateLayout))

	return &PublishStayResponse{
		StayID:    stay.ID.String(),
		ImageURLs: urls,
		Days:      s.windowDays,
	}, nil
}

// CanDelete reports whether the stay has no reservation checking out after
// today. The check and any subsequent deletion are deliberately not atomic:
// a reservation committed in between is an accepted race, owned by the
// stay-management workflow.
func (s *StayService) CanDelete(ctx context.Context, stayID uuid.UUID) (bool, error) {
	active, err := s.store.ListByStayCheckoutAfter(ctx, stayID, domain.Day(s.clock.Now()))
	if err != nil {
		return false, err
	}
	return len(active) == 0, nil
}

// Delete enforces the guard. Removing the stay record itself belongs to the
// stay-management workflow, outside this core.
func (s *StayService) Delete(ctx context.Context, stayID uuid.UUID) error {
	ok, err := s.CanDelete(ctx, stayID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrActiveReservation
	}
	return nil
}
