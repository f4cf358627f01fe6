package election

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// VoteRepository handles vote record database operations
type VoteRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db database.Querier, log zerolog.Logger) *VoteRepository {
	return &VoteRepository{
		db:  db,
		log: log.With().Str("repo", "vote").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *VoteRepository) WithTx(tx *sql.Tx) *VoteRepository {
	return &VoteRepository{db: tx, log: r.log}
}

// VoteFilter narrows vote list queries; zero fields are ignored.
type VoteFilter struct {
	PeriodID    int64
	PopID       int64
	CandidateID int64
}

// List returns vote records matching the filter
func (r *VoteRepository) List(filter VoteFilter) ([]domain.VoteRecord, error) {
	query := "SELECT id, period_id, pop_id, candidate_id, votes FROM votes"

	var clauses []string
	var args []interface{}
	if filter.PeriodID != 0 {
		clauses = append(clauses, "period_id = ?")
		args = append(args, filter.PeriodID)
	}
	if filter.PopID != 0 {
		clauses = append(clauses, "pop_id = ?")
		args = append(args, filter.PopID)
	}
	if filter.CandidateID != 0 {
		clauses = append(clauses, "candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY pop_id, candidate_id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.VoteRecord
	for rows.Next() {
		var v domain.VoteRecord
		if err := rows.Scan(&v.ID, &v.PeriodID, &v.PopID, &v.CandidateID, &v.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}

	return votes, nil
}

// Upsert creates or replaces the vote record keyed by
// (period_id, pop_id, candidate_id). Recomputation is idempotent: the
// stored count is fully overwritten, never accumulated.
func (r *VoteRepository) Upsert(v domain.VoteRecord) error {
	_, err := r.db.Exec(`INSERT INTO votes (period_id, pop_id, candidate_id, votes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(period_id, pop_id, candidate_id) DO UPDATE SET
			votes = excluded.votes`,
		v.PeriodID, v.PopID, v.CandidateID, v.Votes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

// TotalsByPeriod sums votes across all population groups, grouped by
// candidate. This is the national aggregate that feeds apportionment.
func (r *VoteRepository) TotalsByPeriod(periodID int64) ([]domain.CandidateTotal, error) {
	rows, err := r.db.Query(`SELECT candidate_id, SUM(votes) FROM votes
		WHERE period_id = ? GROUP BY candidate_id ORDER BY candidate_id`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote totals: %w", err)
	}
	defer rows.Close()

	var totals []domain.CandidateTotal
	for rows.Next() {
		var t domain.CandidateTotal
		if err := rows.Scan(&t.CandidateID, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan vote total: %w", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote totals: %w", err)
	}

	return totals, nil
}
