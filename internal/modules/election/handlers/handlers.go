// Package handlers provides HTTP handlers for the simulation engine:
// running elections, inspecting voting behavior and managing results.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/election"
)

// Handler handles simulation HTTP requests
type Handler struct {
	service          *election.Service
	defaultSeats     int
	defaultThreshold float64
	log              zerolog.Logger
}

// NewHandler creates a new election handler. defaultSeats and
// defaultThreshold fill in when a run request omits them.
func NewHandler(service *election.Service, defaultSeats int, defaultThreshold float64, log zerolog.Logger) *Handler {
	return &Handler{
		service:          service,
		defaultSeats:     defaultSeats,
		defaultThreshold: defaultThreshold,
		log:              log.With().Str("handler", "election").Logger(),
	}
}

// RegisterRoutes mounts all election routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/simulation", func(r chi.Router) {
		r.Post("/run", h.HandleRunSimulation)
		r.Get("/behavior", h.HandleVotingBehavior)
		r.Get("/scoring-curve", h.HandleScoringCurve)
	})
	r.Get("/votes", h.HandleListVotes)
	r.Route("/election-results", func(r chi.Router) {
		r.Get("/", h.HandleListResults)
		r.Put("/{id}", h.HandleUpdateResult)
	})
}

type runRequest struct {
	PeriodID     int64    `json:"period_id"`
	Seats        *int     `json:"seats,omitempty"`
	ThresholdPct *float64 `json:"threshold_pct,omitempty"`
}

// HandleRunSimulation recomputes votes, results and seats for one period
func (h *Handler) HandleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PeriodID == 0 {
		h.writeError(w, http.StatusBadRequest, "period_id is required")
		return
	}

	seats := h.defaultSeats
	if req.Seats != nil {
		seats = *req.Seats
	}
	threshold := h.defaultThreshold
	if req.ThresholdPct != nil {
		threshold = *req.ThresholdPct
	}
	if seats <= 0 {
		h.writeError(w, http.StatusBadRequest, "seats must be positive")
		return
	}
	if threshold < 0 || threshold > 100 {
		h.writeError(w, http.StatusBadRequest, "threshold_pct must be between 0 and 100")
		return
	}

	summary, err := h.service.RunSimulation(req.PeriodID, seats, threshold)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleVotingBehavior returns the ranked voting behavior of one
// population group in one period
func (h *Handler) HandleVotingBehavior(w http.ResponseWriter, r *http.Request) {
	popID := queryID(r, "pop_id")
	periodID := queryID(r, "period_id")
	if popID == 0 || periodID == 0 {
		h.writeError(w, http.StatusBadRequest, "pop_id and period_id are required")
		return
	}

	behavior, err := h.service.BehaviorForPop(popID, periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, behavior)
}

// HandleScoringCurve returns the sampled distance-to-score curve of one
// population group in one period
func (h *Handler) HandleScoringCurve(w http.ResponseWriter, r *http.Request) {
	popID := queryID(r, "pop_id")
	periodID := queryID(r, "period_id")
	if popID == 0 || periodID == 0 {
		h.writeError(w, http.StatusBadRequest, "pop_id and period_id are required")
		return
	}

	curve, err := h.service.CurveForPop(popID, periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, curve)
}

// HandleListVotes returns stored vote records, optionally filtered by
// period_id, pop_id and candidate_id query parameters
func (h *Handler) HandleListVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.service.Votes(election.VoteFilter{
		PeriodID:    queryID(r, "period_id"),
		PopID:       queryID(r, "pop_id"),
		CandidateID: queryID(r, "candidate_id"),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, votes)
}

// HandleListResults returns the election results of one period
func (h *Handler) HandleListResults(w http.ResponseWriter, r *http.Request) {
	periodID := queryID(r, "period_id")
	if periodID == 0 {
		h.writeError(w, http.StatusBadRequest, "period_id is required")
		return
	}

	results, err := h.service.Results(periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

// HandleUpdateResult modifies the government flags of one result row
func (h *Handler) HandleUpdateResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var result domain.ElectionResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	result.ID = id

	if err := h.service.UpdateResult(result); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func queryID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
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
