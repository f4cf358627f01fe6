// Package handlers provides HTTP handlers for the coalition search.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/coalitions"
)

// Handler handles coalition HTTP requests
type Handler struct {
	service *coalitions.Service
	log     zerolog.Logger
}

// NewHandler creates a new coalition handler
func NewHandler(service *coalitions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "coalitions").Logger(),
	}
}

// RegisterRoutes mounts all coalition routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/coalitions", func(r chi.Router) {
		r.Get("/{periodID}", h.HandleFindCoalitions)
		r.Post("/{periodID}/government", h.HandleSetGovernment)
	})
}

// HandleFindCoalitions returns every minimal winning coalition of a
// period, smallest and most cohesive first
func (h *Handler) HandleFindCoalitions(w http.ResponseWriter, r *http.Request) {
	periodID, ok := h.periodID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Find(periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, found)
}

type governmentRequest struct {
	PartyIDs []int64 `json:"party_ids"`
}

// HandleSetGovernment stores the chosen coalition as the government of a
// period
func (h *Handler) HandleSetGovernment(w http.ResponseWriter, r *http.Request) {
	periodID, ok := h.periodID(w, r)
	if !ok {
		return
	}

	var req governmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SetGovernment(periodID, req.PartyIDs); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"period_id": periodID,
		"party_ids": req.PartyIDs,
	})
}

func (h *Handler) periodID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "periodID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid period id")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPreconditionFailed):
		h.writeError(w, http.StatusPreconditionFailed, err.Error())
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
