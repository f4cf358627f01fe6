// Package statistics aggregates stored simulation data for reporting.
package statistics

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// Service computes read-only aggregates over the simulation tables.
type Service struct {
	db  database.Querier
	log zerolog.Logger
}

// NewService creates a new statistics service
func NewService(db database.Querier, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("component", "statistics").Logger(),
	}
}

// PopulationTotal returns the summed size of all population groups in a
// period. Periods without snapshots report zero.
func (s *Service) PopulationTotal(periodID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(pop_size), 0) FROM pop_snapshots WHERE period_id = ?",
		periodID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum population: %w", err)
	}
	return total, nil
}

// EligibleTotal returns the summed number of eligible voters in a period.
func (s *Service) EligibleTotal(periodID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(pop_size * ratio_eligible / 100), 0) FROM pop_snapshots WHERE period_id = ?",
		periodID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum eligible voters: %w", err)
	}
	return total, nil
}

// TurnoutPercentage returns the share of eligible voters that voted for a
// real party or a pseudo-party other than non-voters, rounded to two
// decimals. Periods without votes report zero.
func (s *Service) TurnoutPercentage(periodID int64) (float64, error) {
	var cast, nonVoters int
	err := s.db.QueryRow(`SELECT
			COALESCE(SUM(votes), 0),
			COALESCE(SUM(CASE WHEN candidate_id = ? THEN votes ELSE 0 END), 0)
		FROM votes WHERE period_id = ?`,
		domain.CandidateNonVoters, periodID,
	).Scan(&cast, &nonVoters)
	if err != nil {
		return 0, fmt.Errorf("failed to compute turnout: %w", err)
	}
	if cast == 0 {
		return 0, nil
	}

	turnout := float64(cast-nonVoters) / float64(cast) * 100
	return math.Round(turnout*100) / 100, nil
}
