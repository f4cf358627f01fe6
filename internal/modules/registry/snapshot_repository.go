package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// SnapshotFilter narrows snapshot list queries. Zero fields are ignored;
// set fields combine as conjunctive equality predicates.
type SnapshotFilter struct {
	PeriodID int64
	OwnerID  int64 // pop id or party id, depending on the repository
}

// PopSnapshotRepository handles pop snapshot database operations
type PopSnapshotRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewPopSnapshotRepository creates a new pop snapshot repository
func NewPopSnapshotRepository(db database.Querier, log zerolog.Logger) *PopSnapshotRepository {
	return &PopSnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "pop_snapshot").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PopSnapshotRepository) WithTx(tx *sql.Tx) *PopSnapshotRepository {
	return &PopSnapshotRepository{db: tx, log: r.log}
}

const popSnapshotColumns = `id, pop_id, period_id, pop_size, social_orientation,
	economic_orientation, max_political_distance, variety_tolerance,
	non_voters_distance, small_party_distance, ratio_eligible`

func scanPopSnapshot(rows interface{ Scan(...interface{}) error }) (domain.PopSnapshot, error) {
	var s domain.PopSnapshot
	err := rows.Scan(
		&s.ID, &s.PopID, &s.PeriodID, &s.PopSize, &s.Social, &s.Economic,
		&s.MaxPoliticalDistance, &s.VarietyTolerance, &s.NonVotersDistance,
		&s.SmallPartyDistance, &s.RatioEligible,
	)
	return s, err
}

// List returns pop snapshots matching the filter
func (r *PopSnapshotRepository) List(filter SnapshotFilter) ([]domain.PopSnapshot, error) {
	query := "SELECT " + popSnapshotColumns + " FROM pop_snapshots"
	where, args := buildFilter("pop_id", filter)
	query += where + " ORDER BY pop_id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pop snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.PopSnapshot
	for rows.Next() {
		s, err := scanPopSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pop snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pop snapshots: %w", err)
	}

	return snapshots, nil
}

// ListByPeriod returns all pop snapshots of one period
func (r *PopSnapshotRepository) ListByPeriod(periodID int64) ([]domain.PopSnapshot, error) {
	return r.List(SnapshotFilter{PeriodID: periodID})
}

// GetByPopAndPeriod returns the snapshot of one population group in one period
func (r *PopSnapshotRepository) GetByPopAndPeriod(popID, periodID int64) (*domain.PopSnapshot, error) {
	row := r.db.QueryRow(
		"SELECT "+popSnapshotColumns+" FROM pop_snapshots WHERE pop_id = ? AND period_id = ?",
		popID, periodID,
	)
	s, err := scanPopSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pop snapshot for pop %d in period %d: %w", popID, periodID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pop snapshot: %w", err)
	}
	return &s, nil
}

// GetByID returns one pop snapshot
func (r *PopSnapshotRepository) GetByID(id int64) (*domain.PopSnapshot, error) {
	row := r.db.QueryRow("SELECT "+popSnapshotColumns+" FROM pop_snapshots WHERE id = ?", id)
	s, err := scanPopSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pop snapshot %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pop snapshot: %w", err)
	}
	return &s, nil
}

// Upsert creates or replaces the snapshot keyed by (pop_id, period_id).
// One snapshot per pop and period is a data model invariant.
func (r *PopSnapshotRepository) Upsert(s domain.PopSnapshot) error {
	_, err := r.db.Exec(`INSERT INTO pop_snapshots
		(pop_id, period_id, pop_size, social_orientation, economic_orientation,
		 max_political_distance, variety_tolerance, non_voters_distance,
		 small_party_distance, ratio_eligible)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pop_id, period_id) DO UPDATE SET
			pop_size = excluded.pop_size,
			social_orientation = excluded.social_orientation,
			economic_orientation = excluded.economic_orientation,
			max_political_distance = excluded.max_political_distance,
			variety_tolerance = excluded.variety_tolerance,
			non_voters_distance = excluded.non_voters_distance,
			small_party_distance = excluded.small_party_distance,
			ratio_eligible = excluded.ratio_eligible`,
		s.PopID, s.PeriodID, s.PopSize, s.Social, s.Economic,
		s.MaxPoliticalDistance, s.VarietyTolerance, s.NonVotersDistance,
		s.SmallPartyDistance, s.RatioEligible,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pop snapshot: %w", err)
	}
	return nil
}

// Delete removes a pop snapshot
func (r *PopSnapshotRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM pop_snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pop snapshot: %w", err)
	}
	return checkAffected(result, id)
}

// PartySnapshotRepository handles party snapshot database operations
type PartySnapshotRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewPartySnapshotRepository creates a new party snapshot repository
func NewPartySnapshotRepository(db database.Querier, log zerolog.Logger) *PartySnapshotRepository {
	return &PartySnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "party_snapshot").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PartySnapshotRepository) WithTx(tx *sql.Tx) *PartySnapshotRepository {
	return &PartySnapshotRepository{db: tx, log: r.log}
}

const partySnapshotColumns = `id, party_id, period_id, social_orientation,
	economic_orientation, political_strength`

func scanPartySnapshot(rows interface{ Scan(...interface{}) error }) (domain.PartySnapshot, error) {
	var s domain.PartySnapshot
	err := rows.Scan(&s.ID, &s.PartyID, &s.PeriodID, &s.Social, &s.Economic, &s.PoliticalStrength)
	return s, err
}

// List returns party snapshots matching the filter
func (r *PartySnapshotRepository) List(filter SnapshotFilter) ([]domain.PartySnapshot, error) {
	query := "SELECT " + partySnapshotColumns + " FROM party_snapshots"
	where, args := buildFilter("party_id", filter)
	query += where + " ORDER BY party_id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query party snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.PartySnapshot
	for rows.Next() {
		s, err := scanPartySnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating party snapshots: %w", err)
	}

	return snapshots, nil
}

// ListByPeriod returns all party snapshots of one period
func (r *PartySnapshotRepository) ListByPeriod(periodID int64) ([]domain.PartySnapshot, error) {
	return r.List(SnapshotFilter{PeriodID: periodID})
}

// GetByPartyAndPeriod returns the snapshot of one party in one period
func (r *PartySnapshotRepository) GetByPartyAndPeriod(partyID, periodID int64) (*domain.PartySnapshot, error) {
	row := r.db.QueryRow(
		"SELECT "+partySnapshotColumns+" FROM party_snapshots WHERE party_id = ? AND period_id = ?",
		partyID, periodID,
	)
	s, err := scanPartySnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party snapshot for party %d in period %d: %w", partyID, periodID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query party snapshot: %w", err)
	}
	return &s, nil
}

// GetByID returns one party snapshot
func (r *PartySnapshotRepository) GetByID(id int64) (*domain.PartySnapshot, error) {
	row := r.db.QueryRow("SELECT "+partySnapshotColumns+" FROM party_snapshots WHERE id = ?", id)
	s, err := scanPartySnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party snapshot %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query party snapshot: %w", err)
	}
	return &s, nil
}

// Upsert creates or replaces the snapshot keyed by (party_id, period_id)
func (r *PartySnapshotRepository) Upsert(s domain.PartySnapshot) error {
	_, err := r.db.Exec(`INSERT INTO party_snapshots
		(party_id, period_id, social_orientation, economic_orientation, political_strength)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(party_id, period_id) DO UPDATE SET
			social_orientation = excluded.social_orientation,
			economic_orientation = excluded.economic_orientation,
			political_strength = excluded.political_strength`,
		s.PartyID, s.PeriodID, s.Social, s.Economic, s.PoliticalStrength,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert party snapshot: %w", err)
	}
	return nil
}

// Delete removes a party snapshot
func (r *PartySnapshotRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM party_snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete party snapshot: %w", err)
	}
	return checkAffected(result, id)
}

// buildFilter assembles the WHERE clause for snapshot list queries
func buildFilter(ownerColumn string, filter SnapshotFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.PeriodID != 0 {
		clauses = append(clauses, "period_id = ?")
		args = append(args, filter.PeriodID)
	}
	if filter.OwnerID != 0 {
		clauses = append(clauses, ownerColumn+" = ?")
		args = append(args, filter.OwnerID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
