// Package transfer serializes a full period dataset to a portable blob
// and restores it, for backups and for moving scenarios between
// instances.
package transfer

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/election"
	"github.com/codingBeanie/Chronodemica/internal/modules/registry"
)

// FormatVersion is embedded in every export so incompatible blobs are
// rejected on import instead of half-applied.
const FormatVersion = 1

// PeriodExport is the complete dataset of one period: the period itself,
// the referenced pops and parties, their snapshots, and the stored
// simulation output.
type PeriodExport struct {
	Version        int                     `msgpack:"version"`
	Period         domain.Period           `msgpack:"period"`
	Pops           []domain.Pop            `msgpack:"pops"`
	Parties        []domain.Party          `msgpack:"parties"`
	PopSnapshots   []domain.PopSnapshot    `msgpack:"pop_snapshots"`
	PartySnapshots []domain.PartySnapshot  `msgpack:"party_snapshots"`
	Votes          []domain.VoteRecord     `msgpack:"votes"`
	Results        []domain.ElectionResult `msgpack:"results"`
}

// Service implements period export and import.
type Service struct {
	db         *database.DB
	periods    *registry.PeriodRepository
	pops       *registry.PopRepository
	parties    *registry.PartyRepository
	popSnaps   *registry.PopSnapshotRepository
	partySnaps *registry.PartySnapshotRepository
	votes      *election.VoteRepository
	results    *election.ResultRepository
	log        zerolog.Logger
}

// NewService creates a new transfer service
func NewService(
	db *database.DB,
	periods *registry.PeriodRepository,
	pops *registry.PopRepository,
	parties *registry.PartyRepository,
	popSnaps *registry.PopSnapshotRepository,
	partySnaps *registry.PartySnapshotRepository,
	votes *election.VoteRepository,
	results *election.ResultRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		db:         db,
		periods:    periods,
		pops:       pops,
		parties:    parties,
		popSnaps:   popSnaps,
		partySnaps: partySnaps,
		votes:      votes,
		results:    results,
		log:        log.With().Str("component", "transfer").Logger(),
	}
}

// ExportPeriod serializes the full dataset of one period.
func (s *Service) ExportPeriod(periodID int64) ([]byte, error) {
	period, err := s.periods.GetByID(periodID)
	if err != nil {
		return nil, err
	}

	export := PeriodExport{Version: FormatVersion, Period: *period}

	export.PopSnapshots, err = s.popSnaps.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}
	export.PartySnapshots, err = s.partySnaps.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}

	for _, snap := range export.PopSnapshots {
		pop, err := s.pops.GetByID(snap.PopID)
		if err != nil {
			return nil, err
		}
		export.Pops = append(export.Pops, *pop)
	}
	for _, snap := range export.PartySnapshots {
		party, err := s.parties.GetByID(snap.PartyID)
		if err != nil {
			return nil, err
		}
		export.Parties = append(export.Parties, *party)
	}

	export.Votes, err = s.votes.List(election.VoteFilter{PeriodID: periodID})
	if err != nil {
		return nil, err
	}
	export.Results, err = s.results.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}

	blob, err := msgpack.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("failed to encode period export: %w", err)
	}

	s.log.Info().
		Int64("period_id", periodID).
		Int("bytes", len(blob)).
		Msg("Period exported")
	return blob, nil
}

// ImportPeriod decodes a blob produced by ExportPeriod and upserts its
// contents. Periods, pops and parties are matched by their natural keys
// (year and name), so an import into another instance remaps IDs instead
// of colliding with existing rows. The whole import is one transaction.
func (s *Service) ImportPeriod(blob []byte) (*domain.Period, error) {
	var export PeriodExport
	if err := msgpack.Unmarshal(blob, &export); err != nil {
		return nil, fmt.Errorf("failed to decode period export: %w", err)
	}
	if export.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported export version %d: %w", export.Version, domain.ErrPreconditionFailed)
	}

	var imported *domain.Period
	err := database.WithTransaction(s.db.Conn(), func(tx *sql.Tx) error {
		periods := s.periods.WithTx(tx)
		pops := s.pops.WithTx(tx)
		parties := s.parties.WithTx(tx)
		popSnaps := s.popSnaps.WithTx(tx)
		partySnaps := s.partySnaps.WithTx(tx)
		votes := s.votes.WithTx(tx)
		results := s.results.WithTx(tx)

		period, err := resolvePeriod(periods, export.Period)
		if err != nil {
			return err
		}
		imported = period

		popIDs, err := resolvePops(pops, export.Pops)
		if err != nil {
			return err
		}
		partyIDs, err := resolveParties(parties, export.Parties)
		if err != nil {
			return err
		}

		for _, snap := range export.PopSnapshots {
			snap.PeriodID = period.ID
			snap.PopID = popIDs[snap.PopID]
			if err := popSnaps.Upsert(snap); err != nil {
				return err
			}
		}
		for _, snap := range export.PartySnapshots {
			snap.PeriodID = period.ID
			snap.PartyID = partyIDs[snap.PartyID]
			if err := partySnaps.Upsert(snap); err != nil {
				return err
			}
		}

		for _, vote := range export.Votes {
			vote.PeriodID = period.ID
			vote.PopID = popIDs[vote.PopID]
			if vote.CandidateID > 0 {
				vote.CandidateID = partyIDs[vote.CandidateID]
			}
			if err := votes.Upsert(vote); err != nil {
				return err
			}
		}
		for _, result := range export.Results {
			result.PeriodID = period.ID
			if result.CandidateID > 0 {
				result.CandidateID = partyIDs[result.CandidateID]
			}
			if err := results.Restore(result); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("period_id", imported.ID).
		Int("year", imported.Year).
		Msg("Period imported")
	return imported, nil
}

func resolvePeriod(periods *registry.PeriodRepository, period domain.Period) (*domain.Period, error) {
	existing, err := periods.GetByYear(period.Year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return periods.Create(domain.Period{Year: period.Year})
}

// resolvePops maps exported pop IDs to local IDs, creating missing pops.
func resolvePops(pops *registry.PopRepository, exported []domain.Pop) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(exported))
	for _, pop := range exported {
		existing, err := pops.GetByName(pop.Name)
		if err == nil {
			ids[pop.ID] = existing.ID
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		created, err := pops.Create(domain.Pop{Name: pop.Name})
		if err != nil {
			return nil, err
		}
		ids[pop.ID] = created.ID
	}
	return ids, nil
}

// resolveParties maps exported party IDs to local IDs, creating missing
// parties.
func resolveParties(parties *registry.PartyRepository, exported []domain.Party) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(exported))
	for _, party := range exported {
		existing, err := parties.GetByName(party.Name)
		if err == nil {
			ids[party.ID] = existing.ID
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		created, err := parties.Create(domain.Party{
			Name:     party.Name,
			FullName: party.FullName,
			Color:    party.Color,
		})
		if err != nil {
			return nil, err
		}
		ids[party.ID] = created.ID
	}
	return ids, nil
}
