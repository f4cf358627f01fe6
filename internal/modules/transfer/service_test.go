package transfer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/election"
	"github.com/codingBeanie/Chronodemica/internal/modules/registry"
)

type transferEnv struct {
	service    *Service
	periods    *registry.PeriodRepository
	pops       *registry.PopRepository
	parties    *registry.PartyRepository
	popSnaps   *registry.PopSnapshotRepository
	partySnaps *registry.PartySnapshotRepository
	votes      *election.VoteRepository
	results    *election.ResultRepository
}

func newTransferEnv(t *testing.T) *transferEnv {
	t.Helper()
	log := zerolog.Nop()

	db, err := database.New(database.Config{
		Path: t.TempDir() + "/test.db",
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	env := &transferEnv{
		periods:    registry.NewPeriodRepository(db, log),
		pops:       registry.NewPopRepository(db, log),
		parties:    registry.NewPartyRepository(db, log),
		popSnaps:   registry.NewPopSnapshotRepository(db, log),
		partySnaps: registry.NewPartySnapshotRepository(db, log),
		votes:      election.NewVoteRepository(db, log),
		results:    election.NewResultRepository(db, log),
	}
	env.service = NewService(
		db, env.periods, env.pops, env.parties,
		env.popSnaps, env.partySnaps, env.votes, env.results,
		log,
	)
	return env
}

// seedPeriod fills the source environment with one complete period.
func seedPeriod(t *testing.T, env *transferEnv) int64 {
	t.Helper()

	period, err := env.periods.Create(domain.Period{Year: 2000})
	require.NoError(t, err)
	pop, err := env.pops.Create(domain.Pop{Name: "Workers"})
	require.NoError(t, err)
	party, err := env.parties.Create(domain.Party{Name: "CP", FullName: "Center Party", Color: "#ff0000"})
	require.NoError(t, err)

	require.NoError(t, env.popSnaps.Upsert(domain.PopSnapshot{
		PopID:                pop.ID,
		PeriodID:             period.ID,
		PopSize:              1000,
		Position:             domain.Position{Social: 10, Economic: -10},
		MaxPoliticalDistance: 70,
		VarietyTolerance:     50,
		NonVotersDistance:    60,
		SmallPartyDistance:   50,
		RatioEligible:        75,
	}))
	require.NoError(t, env.partySnaps.Upsert(domain.PartySnapshot{
		PartyID:           party.ID,
		PeriodID:          period.ID,
		Position:          domain.Position{Social: 5, Economic: 5},
		PoliticalStrength: 80,
	}))
	require.NoError(t, env.votes.Upsert(domain.VoteRecord{
		PeriodID:    period.ID,
		PopID:       pop.ID,
		CandidateID: party.ID,
		Votes:       600,
	}))
	require.NoError(t, env.votes.Upsert(domain.VoteRecord{
		PeriodID:    period.ID,
		PopID:       pop.ID,
		CandidateID: domain.CandidateNonVoters,
		Votes:       150,
	}))
	require.NoError(t, env.results.Restore(domain.ElectionResult{
		PeriodID:     period.ID,
		CandidateID:  party.ID,
		Votes:        600,
		Percentage:   80,
		Seats:        150,
		InParliament: true,
		InGovernment: true,
	}))

	return period.ID
}

func TestExportImport_RoundTripAcrossInstances(t *testing.T) {
	source := newTransferEnv(t)
	periodID := seedPeriod(t, source)

	blob, err := source.service.ExportPeriod(periodID)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	// The destination already holds unrelated rows, so imported entities
	// get different IDs and must be remapped by natural key.
	dest := newTransferEnv(t)
	_, err = dest.parties.Create(domain.Party{Name: "Existing"})
	require.NoError(t, err)
	_, err = dest.pops.Create(domain.Pop{Name: "Existing"})
	require.NoError(t, err)

	imported, err := dest.service.ImportPeriod(blob)
	require.NoError(t, err)
	assert.Equal(t, 2000, imported.Year)

	pop, err := dest.pops.GetByName("Workers")
	require.NoError(t, err)
	party, err := dest.parties.GetByName("CP")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", party.Color)

	popSnap, err := dest.popSnaps.GetByPopAndPeriod(pop.ID, imported.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, popSnap.PopSize)
	assert.Equal(t, 10, popSnap.Social)

	partySnap, err := dest.partySnaps.GetByPartyAndPeriod(party.ID, imported.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, partySnap.PoliticalStrength)

	votes, err := dest.votes.List(election.VoteFilter{PeriodID: imported.ID})
	require.NoError(t, err)
	require.Len(t, votes, 2)

	results, err := dest.results.ListByPeriod(imported.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, party.ID, results[0].CandidateID)
	assert.Equal(t, 150, results[0].Seats)
	assert.True(t, results[0].InGovernment)
}

func TestImportPeriod_IdempotentOnSameInstance(t *testing.T) {
	env := newTransferEnv(t)
	periodID := seedPeriod(t, env)

	blob, err := env.service.ExportPeriod(periodID)
	require.NoError(t, err)

	imported, err := env.service.ImportPeriod(blob)
	require.NoError(t, err)
	assert.Equal(t, periodID, imported.ID)

	periods, err := env.periods.List()
	require.NoError(t, err)
	assert.Len(t, periods, 1)

	votes, err := env.votes.List(election.VoteFilter{PeriodID: periodID})
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}

func TestExportPeriod_UnknownPeriod(t *testing.T) {
	env := newTransferEnv(t)

	_, err := env.service.ExportPeriod(9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportPeriod_RejectsGarbage(t *testing.T) {
	env := newTransferEnv(t)

	_, err := env.service.ImportPeriod([]byte("not msgpack"))
	assert.Error(t, err)
}

func TestImportPeriod_RejectsUnknownVersion(t *testing.T) {
	env := newTransferEnv(t)

	blob, err := msgpack.Marshal(PeriodExport{Version: 99})
	require.NoError(t, err)

	_, err = env.service.ImportPeriod(blob)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}
