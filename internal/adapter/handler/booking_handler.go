package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
	"github.com/rorschach/staybooking/internal/core/services"
)

type BookingHandler struct {
	svc *services.ReservationService
}

func NewBookingHandler(svc *services.ReservationService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Reservations serves POST (book), DELETE (cancel, ?id=) and GET
// (?guest_id= or ?stay_id=) on /reservations.
func (h *BookingHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.cancel(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stayID, err := uuid.Parse(r.URL.Query().Get("stay_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stay_id"})
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from date"})
		return
	}

	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to date"})
		return
	}

	dates, err := h.svc.AvailableDates(r.Context(), stayID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	encoded := make([]string, len(dates))
	for i, d := range dates {
		encoded[i] = d.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, map[string]any{"stay_id": stayID.String(), "available_dates": encoded})
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req services.AddReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	resp, err := h.svc.Add(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reservation id"})
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	var out []domain.Reservation

	switch q := r.URL.Query(); {
	case q.Get("guest_id") != "":
		guestID, err := uuid.Parse(q.Get("guest_id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid guest_id"})
			return
		}
		if out, err = h.svc.ListByGuest(r.Context(), guestID); err != nil {
			writeError(w, err)
			return
		}
	case q.Get("stay_id") != "":
		stayID, err := uuid.Parse(q.Get("stay_id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stay_id"})
			return
		}
		if out, err = h.svc.ListByStay(r.Context(), stayID); err != nil {
			writeError(w, err)
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "guest_id or stay_id is required"})
		return
	}

	resp := make([]map[string]string, len(out))
	for i, res := range out {
		resp[i] = map[string]string{
			"reservation_id": res.ID.String(),
			"stay_id":        res.StayID.String(),
			"guest_id":       res.GuestID.String(),
			"checkin_date":   res.CheckinDate.Format("2006-01-02"),
			"checkout_date":  res.CheckoutDate.Format("2006-01-02"),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidDates):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCollision),
		errors.Is(err, domain.ErrWindowExists),
		errors.Is(err, domain.ErrActiveReservation):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrReservationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTransactionTimeout):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
