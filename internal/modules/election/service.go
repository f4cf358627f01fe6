package election

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// PeriodSource provides period lookups.
// Defined here so the engine depends on a narrow consumer-side contract
// instead of the registry package.
type PeriodSource interface {
	GetByID(id int64) (*domain.Period, error)
}

// PopSource provides population group lookups.
type PopSource interface {
	GetByID(id int64) (*domain.Pop, error)
}

// PartySource provides party lookups.
type PartySource interface {
	GetByID(id int64) (*domain.Party, error)
}

// PopSnapshotSource provides per-period population snapshots.
type PopSnapshotSource interface {
	ListByPeriod(periodID int64) ([]domain.PopSnapshot, error)
	GetByPopAndPeriod(popID, periodID int64) (*domain.PopSnapshot, error)
}

// PartySnapshotSource provides per-period party snapshots.
type PartySnapshotSource interface {
	ListByPeriod(periodID int64) ([]domain.PartySnapshot, error)
}

// Service orchestrates the simulation pipeline: voting behavior per
// population group, vote aggregation, election results and seat
// apportionment.
type Service struct {
	db         *database.DB
	votes      *VoteRepository
	results    *ResultRepository
	periods    PeriodSource
	pops       PopSource
	parties    PartySource
	popSnaps   PopSnapshotSource
	partySnaps PartySnapshotSource
	log        zerolog.Logger

	// Per-period mutexes: concurrent reruns of the same period would
	// interleave vote and seat writes inconsistently.
	locks sync.Map
}

// NewService creates a new election service
func NewService(
	db *database.DB,
	votes *VoteRepository,
	results *ResultRepository,
	periods PeriodSource,
	pops PopSource,
	parties PartySource,
	popSnaps PopSnapshotSource,
	partySnaps PartySnapshotSource,
	log zerolog.Logger,
) *Service {
	return &Service{
		db:         db,
		votes:      votes,
		results:    results,
		periods:    periods,
		pops:       pops,
		parties:    parties,
		popSnaps:   popSnaps,
		partySnaps: partySnaps,
		log:        log.With().Str("component", "election").Logger(),
	}
}

func (s *Service) periodLock(periodID int64) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(periodID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// partyCandidates loads the party snapshots of a period together with
// their parties. Snapshots whose party no longer exists are skipped.
func (s *Service) partyCandidates(periodID int64) ([]PartyCandidate, error) {
	snapshots, err := s.partySnaps.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}

	candidates := make([]PartyCandidate, 0, len(snapshots))
	for _, snap := range snapshots {
		party, err := s.parties.GetByID(snap.PartyID)
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Int64("party_id", snap.PartyID).Msg("Party snapshot without party, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, PartyCandidate{Party: *party, Snapshot: snap})
	}

	return candidates, nil
}

// BehaviorForPop computes the ranked voting behavior of one population
// group in one period.
func (s *Service) BehaviorForPop(popID, periodID int64) ([]domain.CandidateScore, error) {
	snap, err := s.popSnaps.GetByPopAndPeriod(popID, periodID)
	if err != nil {
		return nil, err
	}
	return s.BehaviorForSnapshot(*snap)
}

// BehaviorForSnapshot computes the ranked voting behavior for a given
// population snapshot.
func (s *Service) BehaviorForSnapshot(snap domain.PopSnapshot) ([]domain.CandidateScore, error) {
	pop, err := s.pops.GetByID(snap.PopID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.partyCandidates(snap.PeriodID)
	if err != nil {
		return nil, err
	}

	return VotingBehavior(*pop, snap, candidates), nil
}

// CurveForPop samples the scoring curve of one population group in one
// period for visualization.
func (s *Service) CurveForPop(popID, periodID int64) ([]domain.CurvePoint, error) {
	snap, err := s.popSnaps.GetByPopAndPeriod(popID, periodID)
	if err != nil {
		return nil, err
	}
	return ScoringCurve(*snap), nil
}

// RunSimulation executes the full pipeline for one period: recompute all
// vote records, aggregate national results against the threshold, and
// apportion seats. The three steps run inside a single transaction so a
// failure partway through leaves no inconsistent period state, and a
// per-period mutex serializes concurrent reruns.
func (s *Service) RunSimulation(periodID int64, totalSeats int, thresholdPct float64) (*domain.SimulationSummary, error) {
	if _, err := s.periods.GetByID(periodID); err != nil {
		return nil, err
	}

	popSnapshots, err := s.popSnaps.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}
	if len(popSnapshots) == 0 {
		return nil, fmt.Errorf("no population snapshots for period %d: %w", periodID, domain.ErrPreconditionFailed)
	}

	candidates, err := s.partyCandidates(periodID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no party snapshots for period %d: %w", periodID, domain.ErrPreconditionFailed)
	}

	// Voting behavior is a pure function of the snapshots; compute all
	// records before opening the write transaction.
	var records []domain.VoteRecord
	for _, snap := range popSnapshots {
		pop, err := s.pops.GetByID(snap.PopID)
		if err != nil {
			return nil, err
		}
		for _, entry := range VotingBehavior(*pop, snap, candidates) {
			records = append(records, domain.VoteRecord{
				PeriodID:    periodID,
				PopID:       snap.PopID,
				CandidateID: entry.CandidateID,
				Votes:       entry.Votes,
			})
		}
	}

	lock := s.periodLock(periodID)
	lock.Lock()
	defer lock.Unlock()

	var summary *domain.SimulationSummary
	err = database.WithTransaction(s.db.Conn(), func(tx *sql.Tx) error {
		votesTx := s.votes.WithTx(tx)
		resultsTx := s.results.WithTx(tx)

		for _, record := range records {
			if err := votesTx.Upsert(record); err != nil {
				return err
			}
		}

		totals, err := votesTx.TotalsByPeriod(periodID)
		if err != nil {
			return err
		}

		if err := computeResults(resultsTx, periodID, totals, thresholdPct); err != nil {
			return err
		}

		if err := apportion(resultsTx, periodID, totalSeats); err != nil {
			return err
		}

		summary = summarize(periodID, totals)
		parliament, err := resultsTx.ParliamentByPeriod(periodID)
		if err != nil {
			return err
		}
		summary.PartiesInParliament = len(parliament)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("period_id", periodID).
		Int("total_votes", summary.TotalVotes).
		Int("parties_in_parliament", summary.PartiesInParliament).
		Msg("Simulation completed")

	return summary, nil
}

// computeResults upserts one election result per candidate with positive
// aggregate votes. The threshold decides parliament membership; pseudo-
// candidates can never enter regardless of share.
func computeResults(results *ResultRepository, periodID int64, totals []domain.CandidateTotal, thresholdPct float64) error {
	if len(totals) == 0 {
		return fmt.Errorf("no vote records for period %d: %w", periodID, domain.ErrPreconditionFailed)
	}

	sumVotes := 0
	for _, total := range totals {
		sumVotes += total.Votes
	}

	for _, total := range totals {
		if total.Votes <= 0 {
			continue
		}

		percentage := 0.0
		if sumVotes > 0 {
			percentage = float64(total.Votes) / float64(sumVotes) * 100
		}
		percentage = round2(percentage)

		inParliament := percentage >= thresholdPct && total.CandidateID > 0

		if err := results.UpsertOutcome(domain.ElectionResult{
			PeriodID:     periodID,
			CandidateID:  total.CandidateID,
			Votes:        total.Votes,
			Percentage:   percentage,
			InParliament: inParliament,
		}); err != nil {
			return err
		}
	}

	return nil
}

// apportion runs largest-remainder seat allocation over the parties in
// parliament and persists the outcome. Non-parliament results are forced
// to zero seats.
func apportion(results *ResultRepository, periodID int64, totalSeats int) error {
	parliament, err := results.ParliamentByPeriod(periodID)
	if err != nil {
		return err
	}
	if len(parliament) == 0 {
		return fmt.Errorf("no parties in parliament for period %d: %w", periodID, domain.ErrPreconditionFailed)
	}

	shares := make([]SeatShare, 0, len(parliament))
	for _, res := range parliament {
		shares = append(shares, SeatShare{PartyID: res.CandidateID, Votes: res.Votes})
	}

	for partyID, seats := range ApportionSeats(shares, totalSeats) {
		if err := results.SetSeats(periodID, partyID, seats); err != nil {
			return err
		}
	}

	return results.ZeroSeatsOutsideParliament(periodID)
}

func summarize(periodID int64, totals []domain.CandidateTotal) *domain.SimulationSummary {
	summary := &domain.SimulationSummary{
		Success:  true,
		PeriodID: periodID,
	}
	for _, total := range totals {
		summary.TotalVotes += total.Votes
		if total.CandidateID > 0 && total.Votes > 0 {
			summary.TotalParties++
		}
	}
	return summary
}

// Votes lists stored vote records.
func (s *Service) Votes(filter VoteFilter) ([]domain.VoteRecord, error) {
	return s.votes.List(filter)
}

// Results lists the election results of one period.
func (s *Service) Results(periodID int64) ([]domain.ElectionResult, error) {
	return s.results.ListByPeriod(periodID)
}

// UpdateResult modifies the editable flags of one result row.
func (s *Service) UpdateResult(res domain.ElectionResult) error {
	return s.results.Update(res)
}
