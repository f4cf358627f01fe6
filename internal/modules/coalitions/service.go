package coalitions

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// ResultSource provides the election results the coalition search works
// on and persists the chosen government.
type ResultSource interface {
	SeatedByPeriod(periodID int64) ([]domain.ElectionResult, error)
	SetGovernment(periodID int64, partyIDs []int64) error
}

// PartySource provides party lookups.
type PartySource interface {
	GetByID(id int64) (*domain.Party, error)
}

// PartySnapshotSource provides per-period party positions.
type PartySnapshotSource interface {
	ListByPeriod(periodID int64) ([]domain.PartySnapshot, error)
}

// Service runs the coalition search over stored election results.
type Service struct {
	results    ResultSource
	parties    PartySource
	partySnaps PartySnapshotSource
	maxParties int
	log        zerolog.Logger
}

// NewService creates a new coalition service. maxParties bounds the
// exhaustive search; periods seating more parties are rejected instead
// of enumerated.
func NewService(
	results ResultSource,
	parties PartySource,
	partySnaps PartySnapshotSource,
	maxParties int,
	log zerolog.Logger,
) *Service {
	return &Service{
		results:    results,
		parties:    parties,
		partySnaps: partySnaps,
		maxParties: maxParties,
		log:        log.With().Str("component", "coalitions").Logger(),
	}
}

// Find returns every minimal winning coalition of one period, ordered
// smallest and most cohesive first.
func (s *Service) Find(periodID int64) ([]domain.Coalition, error) {
	seated, err := s.results.SeatedByPeriod(periodID)
	if err != nil {
		return nil, err
	}
	if len(seated) == 0 {
		return nil, fmt.Errorf("no seated parties in period %d: %w", periodID, domain.ErrNotFound)
	}
	if len(seated) > s.maxParties {
		return nil, fmt.Errorf("period %d seats %d parties, search bound is %d: %w",
			periodID, len(seated), s.maxParties, domain.ErrPreconditionFailed)
	}

	members, err := s.loadMembers(periodID, seated)
	if err != nil {
		return nil, err
	}

	coalitions := Enumerate(members)
	s.log.Debug().
		Int64("period_id", periodID).
		Int("seated_parties", len(members)).
		Int("coalitions", len(coalitions)).
		Msg("Coalition search completed")

	return coalitions, nil
}

// SetGovernment stores the given party set as the governing coalition of
// the period, clearing the flag on all other results.
func (s *Service) SetGovernment(periodID int64, partyIDs []int64) error {
	if len(partyIDs) == 0 {
		return fmt.Errorf("government needs at least one party: %w", domain.ErrPreconditionFailed)
	}

	seated, err := s.results.SeatedByPeriod(periodID)
	if err != nil {
		return err
	}
	seatedIDs := make(map[int64]bool, len(seated))
	for _, res := range seated {
		seatedIDs[res.CandidateID] = true
	}
	for _, id := range partyIDs {
		if !seatedIDs[id] {
			return fmt.Errorf("party %d holds no seats in period %d: %w", id, periodID, domain.ErrPreconditionFailed)
		}
	}

	if err := s.results.SetGovernment(periodID, partyIDs); err != nil {
		return err
	}

	s.log.Info().
		Int64("period_id", periodID).
		Ints64("party_ids", partyIDs).
		Msg("Government set")
	return nil
}

func (s *Service) loadMembers(periodID int64, seated []domain.ElectionResult) ([]Member, error) {
	snapshots, err := s.partySnaps.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}
	positions := make(map[int64]domain.Position, len(snapshots))
	for _, snap := range snapshots {
		positions[snap.PartyID] = snap.Position
	}

	members := make([]Member, 0, len(seated))
	for _, res := range seated {
		party, err := s.parties.GetByID(res.CandidateID)
		if err != nil {
			return nil, err
		}
		position, ok := positions[res.CandidateID]
		if !ok {
			return nil, fmt.Errorf("party snapshot for party %d in period %d: %w",
				res.CandidateID, periodID, domain.ErrNotFound)
		}
		members = append(members, Member{
			PartyID:      res.CandidateID,
			Name:         party.Name,
			Seats:        res.Seats,
			VotePct:      res.Percentage,
			Position:     position,
			InGovernment: res.InGovernment,
		})
	}

	return members, nil
}
