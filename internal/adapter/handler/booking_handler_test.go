package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorschach/staybooking/internal/adapter/handler"
	"github.com/rorschach/staybooking/internal/adapter/repository/memory"
	"github.com/rorschach/staybooking/internal/core/domain"
	"github.com/rorschach/staybooking/internal/core/services"
)

func newHandler(t *testing.T) (*handler.BookingHandler, uuid.UUID, time.Time) {
	t.Helper()

	ledger := memory.NewAvailabilityLedger()
	store := memory.NewReservationStore()
	locks := memory.NewStayLocks(time.Second)

	stayID := uuid.New()
	start := domain.Day(time.Now()).AddDate(0, 0, 1)
	require.NoError(t, ledger.Initialize(context.Background(), stayID, start, 30))

	svc := services.NewReservationService(ledger, store, locks, nil, 0)
	return handler.NewBookingHandler(svc), stayID, start
}

func postReservation(h *handler.BookingHandler, stayID uuid.UUID, checkin, checkout time.Time) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"stay_id":%q,"guest_id":%q,"checkin_date":%q,"checkout_date":%q}`,
		stayID, uuid.New(), checkin.Format("2006-01-02"), checkout.Format("2006-01-02"))
	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Reservations(rec, req)
	return rec
}

func TestReservations_StatusMapping(t *testing.T) {
	h, stayID, start := newHandler(t)

	rec := postReservation(h, stayID, start, start.AddDate(0, 0, 2))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Same range again collides.
	rec = postReservation(h, stayID, start, start.AddDate(0, 0, 2))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// checkin == checkout is a validation failure.
	rec = postReservation(h, stayID, start, start)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown reservation id on cancel.
	req := httptest.NewRequest(http.MethodDelete, "/reservations?id="+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	h.Reservations(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailability_ReturnsRemainingDates(t *testing.T) {
	h, stayID, start := newHandler(t)

	rec := postReservation(h, stayID, start, start.AddDate(0, 0, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	url := fmt.Sprintf("/availability?stay_id=%s&from=%s&to=%s",
		stayID, start.Format("2006-01-02"), start.AddDate(0, 0, 2).Format("2006-01-02"))
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec = httptest.NewRecorder()
	h.Availability(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"`+start.Format("2006-01-02")+`"`)
	assert.Contains(t, rec.Body.String(), `"`+start.AddDate(0, 0, 1).Format("2006-01-02")+`"`)
}
