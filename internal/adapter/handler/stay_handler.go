package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rorschach/staybooking/internal/core/domain"
	"github.com/rorschach/staybooking/internal/core/services"
)

type publishStayRequest struct {
	StayID string `json:"stay_id"`
	HostID string `json:"host_id"`
	Images []struct {
		Name string `json:"name"`
		Data []byte `json:"data"`
	} `json:"images"`
}

type StayHandler struct {
	svc *services.StayService
}

func NewStayHandler(svc *services.StayService) *StayHandler {
	return &StayHandler{svc: svc}
}

// Stays serves POST (publish) and DELETE (?id=) on /stays.
func (h *StayHandler) Stays(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		h.publish(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (h *StayHandler) publish(w http.ResponseWriter, r *http.Request) {
	var req publishStayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	stayID, err := uuid.Parse(req.StayID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stay_id"})
		return
	}
	hostID, err := uuid.Parse(req.HostID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid host_id"})
		return
	}

	images := make([]services.StayImage, len(req.Images))
	for i, img := range req.Images {
		images[i] = services.StayImage{Name: img.Name, Data: img.Data}
	}

	resp, err := h.svc.Publish(r.Context(), domain.Stay{ID: stayID, HostID: hostID}, images)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *StayHandler) delete(w http.ResponseWriter, r *http.Request) {
	stayID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stay id"})
		return
	}

	if err := h.svc.Delete(r.Context(), stayID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
