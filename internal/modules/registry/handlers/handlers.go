// Package handlers provides HTTP handlers for the registry entities:
// periods, population groups, parties and their per-period snapshots.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/registry"
)

// Handler handles registry HTTP requests
type Handler struct {
	periods    *registry.PeriodRepository
	pops       *registry.PopRepository
	parties    *registry.PartyRepository
	popSnaps   *registry.PopSnapshotRepository
	partySnaps *registry.PartySnapshotRepository
	log        zerolog.Logger
}

// NewHandler creates a new registry handler
func NewHandler(
	periods *registry.PeriodRepository,
	pops *registry.PopRepository,
	parties *registry.PartyRepository,
	popSnaps *registry.PopSnapshotRepository,
	partySnaps *registry.PartySnapshotRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		periods:    periods,
		pops:       pops,
		parties:    parties,
		popSnaps:   popSnaps,
		partySnaps: partySnaps,
		log:        log.With().Str("handler", "registry").Logger(),
	}
}

// RegisterRoutes mounts all registry routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.Get("/", h.HandleListPeriods)
		r.Post("/", h.HandleCreatePeriod)
		r.Get("/{id}", h.HandleGetPeriod)
		r.Put("/{id}", h.HandleUpdatePeriod)
		r.Delete("/{id}", h.HandleDeletePeriod)
	})
	r.Route("/pops", func(r chi.Router) {
		r.Get("/", h.HandleListPops)
		r.Post("/", h.HandleCreatePop)
		r.Get("/{id}", h.HandleGetPop)
		r.Put("/{id}", h.HandleUpdatePop)
		r.Delete("/{id}", h.HandleDeletePop)
	})
	r.Route("/parties", func(r chi.Router) {
		r.Get("/", h.HandleListParties)
		r.Post("/", h.HandleCreateParty)
		r.Get("/{id}", h.HandleGetParty)
		r.Put("/{id}", h.HandleUpdateParty)
		r.Delete("/{id}", h.HandleDeleteParty)
	})
	r.Route("/pop-snapshots", func(r chi.Router) {
		r.Get("/", h.HandleListPopSnapshots)
		r.Post("/", h.HandleUpsertPopSnapshot)
		r.Get("/{id}", h.HandleGetPopSnapshot)
		r.Delete("/{id}", h.HandleDeletePopSnapshot)
	})
	r.Route("/party-snapshots", func(r chi.Router) {
		r.Get("/", h.HandleListPartySnapshots)
		r.Post("/", h.HandleUpsertPartySnapshot)
		r.Get("/{id}", h.HandleGetPartySnapshot)
		r.Delete("/{id}", h.HandleDeletePartySnapshot)
	})
}

// HandleListPeriods returns all periods ordered by year
func (h *Handler) HandleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.periods.List()
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, periods)
}

// HandleGetPeriod returns one period
func (h *Handler) HandleGetPeriod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	period, err := h.periods.GetByID(id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, period)
}

// HandleCreatePeriod creates a new period
func (h *Handler) HandleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var period domain.Period
	if err := json.NewDecoder(r.Body).Decode(&period); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.periods.Create(period)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdatePeriod updates an existing period
func (h *Handler) HandleUpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var period domain.Period
	if err := json.NewDecoder(r.Body).Decode(&period); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	period.ID = id
	if err := h.periods.Update(period); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, period)
}

// HandleDeletePeriod removes a period
func (h *Handler) HandleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.periods.Delete(id); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleListPops returns all population groups
func (h *Handler) HandleListPops(w http.ResponseWriter, r *http.Request) {
	pops, err := h.pops.List()
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pops)
}

// HandleGetPop returns one population group
func (h *Handler) HandleGetPop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	pop, err := h.pops.GetByID(id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pop)
}

// HandleCreatePop creates a new population group
func (h *Handler) HandleCreatePop(w http.ResponseWriter, r *http.Request) {
	var pop domain.Pop
	if err := json.NewDecoder(r.Body).Decode(&pop); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.pops.Create(pop)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdatePop updates an existing population group
func (h *Handler) HandleUpdatePop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var pop domain.Pop
	if err := json.NewDecoder(r.Body).Decode(&pop); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	pop.ID = id
	if err := h.pops.Update(pop); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pop)
}

// HandleDeletePop removes a population group
func (h *Handler) HandleDeletePop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.pops.Delete(id); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleListParties returns all parties
func (h *Handler) HandleListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.parties.List()
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, parties)
}

// HandleGetParty returns one party
func (h *Handler) HandleGetParty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	party, err := h.parties.GetByID(id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, party)
}

// HandleCreateParty creates a new party
func (h *Handler) HandleCreateParty(w http.ResponseWriter, r *http.Request) {
	var party domain.Party
	if err := json.NewDecoder(r.Body).Decode(&party); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.parties.Create(party)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateParty updates an existing party
func (h *Handler) HandleUpdateParty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var party domain.Party
	if err := json.NewDecoder(r.Body).Decode(&party); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	party.ID = id
	if err := h.parties.Update(party); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, party)
}

// HandleDeleteParty removes a party
func (h *Handler) HandleDeleteParty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.parties.Delete(id); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleListPopSnapshots returns pop snapshots, optionally filtered by
// period_id and pop_id query parameters
func (h *Handler) HandleListPopSnapshots(w http.ResponseWriter, r *http.Request) {
	filter := registry.SnapshotFilter{
		PeriodID: queryID(r, "period_id"),
		OwnerID:  queryID(r, "pop_id"),
	}
	snapshots, err := h.popSnaps.List(filter)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshots)
}

// HandleGetPopSnapshot returns one pop snapshot
func (h *Handler) HandleGetPopSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	snapshot, err := h.popSnaps.GetByID(id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleUpsertPopSnapshot creates or replaces the snapshot of a pop in a
// period
func (h *Handler) HandleUpsertPopSnapshot(w http.ResponseWriter, r *http.Request) {
	var snapshot domain.PopSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if snapshot.PopID == 0 || snapshot.PeriodID == 0 {
		h.writeError(w, http.StatusBadRequest, "pop_id and period_id are required")
		return
	}
	if err := h.popSnaps.Upsert(snapshot); err != nil {
		h.handleError(w, err)
		return
	}
	stored, err := h.popSnaps.GetByPopAndPeriod(snapshot.PopID, snapshot.PeriodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, stored)
}

// HandleDeletePopSnapshot removes a pop snapshot
func (h *Handler) HandleDeletePopSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.popSnaps.Delete(id); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleListPartySnapshots returns party snapshots, optionally filtered
// by period_id and party_id query parameters
func (h *Handler) HandleListPartySnapshots(w http.ResponseWriter, r *http.Request) {
	filter := registry.SnapshotFilter{
		PeriodID: queryID(r, "period_id"),
		OwnerID:  queryID(r, "party_id"),
	}
	snapshots, err := h.partySnaps.List(filter)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshots)
}

// HandleGetPartySnapshot returns one party snapshot
func (h *Handler) HandleGetPartySnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	snapshot, err := h.partySnaps.GetByID(id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

// HandleUpsertPartySnapshot creates or replaces the snapshot of a party
// in a period
func (h *Handler) HandleUpsertPartySnapshot(w http.ResponseWriter, r *http.Request) {
	var snapshot domain.PartySnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if snapshot.PartyID == 0 || snapshot.PeriodID == 0 {
		h.writeError(w, http.StatusBadRequest, "party_id and period_id are required")
		return
	}
	if err := h.partySnaps.Upsert(snapshot); err != nil {
		h.handleError(w, err)
		return
	}
	stored, err := h.partySnaps.GetByPartyAndPeriod(snapshot.PartyID, snapshot.PeriodID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, stored)
}

// HandleDeletePartySnapshot removes a party snapshot
func (h *Handler) HandleDeletePartySnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.partySnaps.Delete(id); err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// pathID parses the {id} URL parameter; on failure it writes a 400 and
// returns false
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// queryID parses an optional int64 query parameter; absent or malformed
// values read as zero, which list filters ignore
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
