// Package handlers provides HTTP handlers for period export and import.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/transfer"
)

// maxImportSize caps import request bodies at 32 MiB.
const maxImportSize = 32 << 20

// Handler handles transfer HTTP requests
type Handler struct {
	service *transfer.Service
	log     zerolog.Logger
}

// NewHandler creates a new transfer handler
func NewHandler(service *transfer.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "transfer").Logger(),
	}
}

// RegisterRoutes mounts all transfer routes on the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/export/{periodID}", h.HandleExport)
	r.Post("/import", h.HandleImport)
}

// HandleExport streams the msgpack dataset of one period as a download
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(chi.URLParam(r, "periodID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid period id")
		return
	}

	blob, err := h.service.ExportPeriod(periodID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/msgpack")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="period-%d.msgpack"`, periodID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		h.log.Error().Err(err).Msg("Failed to write export response")
	}
}

// HandleImport restores a period dataset from a msgpack request body
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(blob) == 0 {
		h.writeError(w, http.StatusBadRequest, "Empty request body")
		return
	}
	if len(blob) > maxImportSize {
		h.writeError(w, http.StatusRequestEntityTooLarge, "Import exceeds size limit")
		return
	}

	period, err := h.service.ImportPeriod(blob)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, period)
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
