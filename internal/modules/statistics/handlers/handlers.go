// Package handlers provides HTTP handlers for simulation statistics.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/statistics"
)

// Handler handles statistics HTTP requests
type Handler struct {
	service *statistics.Service
	log     zerolog.Logger
}

// NewHandler creates a new statistics handler
func NewHandler(service *statistics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "statistics").Logger(),
	}
}

// RegisterRoutes mounts all statistics routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/statistics", func(r chi.Router) {
		r.Get("/population/{periodID}", h.HandlePopulation)
		r.Get("/turnout/{periodID}", h.HandleTurnout)
	})
}

// HandlePopulation returns population aggregates of one period
func (h *Handler) HandlePopulation(w http.ResponseWriter, r *http.Request) {
	periodID, ok := h.periodID(w, r)
	if !ok {
		return
	}

	total, err := h.service.PopulationTotal(periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	eligible, err := h.service.EligibleTotal(periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"period_id":        periodID,
		"population_total": total,
		"eligible_total":   eligible,
	})
}

// HandleTurnout returns the turnout percentage of one period
func (h *Handler) HandleTurnout(w http.ResponseWriter, r *http.Request) {
	periodID, ok := h.periodID(w, r)
	if !ok {
		return
	}

	turnout, err := h.service.TurnoutPercentage(periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"period_id":       periodID,
		"turnout_percent": turnout,
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
