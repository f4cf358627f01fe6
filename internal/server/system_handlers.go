package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log            zerolog.Logger
	startupTime    time.Time
	db             *database.DB
	scheduler      *scheduler.Scheduler
	maintenanceJob scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, db *database.DB, sched *scheduler.Scheduler, maintenanceJob scheduler.Job) *SystemHandlers {
	return &SystemHandlers{
		log:            log.With().Str("handler", "system").Logger(),
		startupTime:    time.Now(),
		db:             db,
		scheduler:      sched,
		maintenanceJob: maintenanceJob,
	}
}

// HandleHealth is the liveness probe
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSystemHealth reports process and database health: uptime, CPU,
// memory, database size and integrity
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		response["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		response["memory_percent"] = memStat.UsedPercent
		response["memory_used_mb"] = memStat.Used / 1024 / 1024
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database health check failed")
		response["status"] = "degraded"
		response["database_error"] = err.Error()
	}

	if stats, err := h.db.GetStats(); err == nil {
		response["database"] = map[string]int64{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
		}
	}

	status := http.StatusOK
	if response["status"] != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, response)
}

// HandleTriggerMaintenance runs the database maintenance job immediately
func (h *SystemHandlers) HandleTriggerMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.RunNow(h.maintenanceJob); err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
