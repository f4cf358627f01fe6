package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
)

// MaintenanceJob keeps the database healthy over long uptimes: it
// truncates the WAL file and verifies integrity.
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	start := time.Now()

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := j.db.HealthCheck(ctx); err != nil {
		return err
	}

	if stats, err := j.db.GetStats(); err == nil {
		j.log.Info().
			Int64("db_bytes", stats.SizeBytes).
			Int64("wal_bytes", stats.WALSizeBytes).
			Dur("elapsed", time.Since(start)).
			Msg("Database maintenance completed")
	}

	return nil
}
