package election

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// ResultRepository handles election result database operations
type ResultRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewResultRepository creates a new result repository
func NewResultRepository(db database.Querier, log zerolog.Logger) *ResultRepository {
	return &ResultRepository{
		db:  db,
		log: log.With().Str("repo", "result").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ResultRepository) WithTx(tx *sql.Tx) *ResultRepository {
	return &ResultRepository{db: tx, log: r.log}
}

const resultColumns = `id, period_id, candidate_id, votes, percentage, seats,
	in_parliament, in_government, head_of_government`

func scanResult(rows interface{ Scan(...interface{}) error }) (domain.ElectionResult, error) {
	var res domain.ElectionResult
	err := rows.Scan(
		&res.ID, &res.PeriodID, &res.CandidateID, &res.Votes, &res.Percentage,
		&res.Seats, &res.InParliament, &res.InGovernment, &res.HeadOfGovernment,
	)
	return res, err
}

func (r *ResultRepository) queryResults(query string, args ...interface{}) ([]domain.ElectionResult, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query election results: %w", err)
	}
	defer rows.Close()

	var results []domain.ElectionResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election result: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating election results: %w", err)
	}

	return results, nil
}

// ListByPeriod returns all results of one period ordered by votes descending
func (r *ResultRepository) ListByPeriod(periodID int64) ([]domain.ElectionResult, error) {
	return r.queryResults(
		"SELECT "+resultColumns+" FROM election_results WHERE period_id = ? ORDER BY votes DESC, candidate_id",
		periodID,
	)
}

// ParliamentByPeriod returns the results of parties that crossed the
// threshold, ordered by votes descending
func (r *ResultRepository) ParliamentByPeriod(periodID int64) ([]domain.ElectionResult, error) {
	return r.queryResults(
		"SELECT "+resultColumns+` FROM election_results
		WHERE period_id = ? AND in_parliament = 1 ORDER BY votes DESC, candidate_id`,
		periodID,
	)
}

// SeatedByPeriod returns the results of real parties holding at least one
// seat, ordered by seats descending. This is the coalition search input.
func (r *ResultRepository) SeatedByPeriod(periodID int64) ([]domain.ElectionResult, error) {
	return r.queryResults(
		"SELECT "+resultColumns+` FROM election_results
		WHERE period_id = ? AND seats > 0 AND candidate_id > 0 ORDER BY seats DESC, candidate_id`,
		periodID,
	)
}

// UpsertOutcome creates or updates the vote outcome of one candidate,
// keyed by (period_id, candidate_id). On update the government flags are
// left untouched so that a recompute never wipes an externally set
// government; on creation they default to false.
func (r *ResultRepository) UpsertOutcome(res domain.ElectionResult) error {
	_, err := r.db.Exec(`INSERT INTO election_results
		(period_id, candidate_id, votes, percentage, in_parliament)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(period_id, candidate_id) DO UPDATE SET
			votes = excluded.votes,
			percentage = excluded.percentage,
			in_parliament = excluded.in_parliament`,
		res.PeriodID, res.CandidateID, res.Votes, res.Percentage, res.InParliament,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert election result: %w", err)
	}
	return nil
}

// Restore creates or overwrites one result row with every stored column,
// government flags included. Used by period import, where the blob is the
// source of truth.
func (r *ResultRepository) Restore(res domain.ElectionResult) error {
	_, err := r.db.Exec(`INSERT INTO election_results
		(period_id, candidate_id, votes, percentage, seats,
		 in_parliament, in_government, head_of_government)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(period_id, candidate_id) DO UPDATE SET
			votes = excluded.votes,
			percentage = excluded.percentage,
			seats = excluded.seats,
			in_parliament = excluded.in_parliament,
			in_government = excluded.in_government,
			head_of_government = excluded.head_of_government`,
		res.PeriodID, res.CandidateID, res.Votes, res.Percentage, res.Seats,
		res.InParliament, res.InGovernment, res.HeadOfGovernment,
	)
	if err != nil {
		return fmt.Errorf("failed to restore election result: %w", err)
	}
	return nil
}

// SetSeats stores the apportioned seat count of one party
func (r *ResultRepository) SetSeats(periodID, candidateID int64, seats int) error {
	_, err := r.db.Exec(
		"UPDATE election_results SET seats = ? WHERE period_id = ? AND candidate_id = ?",
		seats, periodID, candidateID,
	)
	if err != nil {
		return fmt.Errorf("failed to set seats: %w", err)
	}
	return nil
}

// ZeroSeatsOutsideParliament clears seat counts of every result that did
// not cross the threshold, so stale seats from a previous looser
// threshold never survive a rerun.
func (r *ResultRepository) ZeroSeatsOutsideParliament(periodID int64) error {
	_, err := r.db.Exec(
		"UPDATE election_results SET seats = 0 WHERE period_id = ? AND in_parliament = 0",
		periodID,
	)
	if err != nil {
		return fmt.Errorf("failed to zero non-parliament seats: %w", err)
	}
	return nil
}

// SetGovernment marks the given parties as the governing coalition of the
// period and clears the flag on everyone else.
func (r *ResultRepository) SetGovernment(periodID int64, partyIDs []int64) error {
	members := make(map[int64]bool, len(partyIDs))
	for _, id := range partyIDs {
		members[id] = true
	}

	results, err := r.ListByPeriod(periodID)
	if err != nil {
		return err
	}

	for _, res := range results {
		inGovernment := members[res.CandidateID]
		if _, err := r.db.Exec(
			"UPDATE election_results SET in_government = ? WHERE id = ?",
			inGovernment, res.ID,
		); err != nil {
			return fmt.Errorf("failed to set government flag: %w", err)
		}
	}

	return nil
}

// Update modifies the editable flags of one result row
func (r *ResultRepository) Update(res domain.ElectionResult) error {
	result, err := r.db.Exec(
		"UPDATE election_results SET in_government = ?, head_of_government = ? WHERE id = ?",
		res.InGovernment, res.HeadOfGovernment, res.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update election result: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("election result %d: %w", res.ID, domain.ErrNotFound)
	}
	return nil
}
