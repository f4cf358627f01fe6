package coalitions

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/election"
	"github.com/codingBeanie/Chronodemica/internal/modules/registry"
)

type serviceEnv struct {
	service  *Service
	results  *election.ResultRepository
	periodID int64
	partyIDs map[string]int64
}

// newServiceEnv seeds a parliament of three seated parties: A with 60
// seats, B with 50 and C with 30.
func newServiceEnv(t *testing.T, maxParties int) *serviceEnv {
	t.Helper()
	log := zerolog.Nop()

	db, err := database.New(database.Config{
		Path: t.TempDir() + "/test.db",
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	periodRepo := registry.NewPeriodRepository(db, log)
	partyRepo := registry.NewPartyRepository(db, log)
	partySnapRepo := registry.NewPartySnapshotRepository(db, log)
	resultRepo := election.NewResultRepository(db, log)

	period, err := periodRepo.Create(domain.Period{Year: 2000})
	require.NoError(t, err)

	seeds := []struct {
		name   string
		seats  int
		pct    float64
		social int
	}{
		{"A", 60, 40, 0},
		{"B", 50, 33.3, 10},
		{"C", 30, 20, 50},
	}

	partyIDs := make(map[string]int64, len(seeds))
	for _, seed := range seeds {
		party, err := partyRepo.Create(domain.Party{Name: seed.name})
		require.NoError(t, err)
		partyIDs[seed.name] = party.ID

		require.NoError(t, partySnapRepo.Upsert(domain.PartySnapshot{
			PartyID:           party.ID,
			PeriodID:          period.ID,
			Position:          domain.Position{Social: seed.social, Economic: 0},
			PoliticalStrength: 50,
		}))
		require.NoError(t, resultRepo.Restore(domain.ElectionResult{
			PeriodID:     period.ID,
			CandidateID:  party.ID,
			Votes:        seed.seats * 1000,
			Percentage:   seed.pct,
			Seats:        seed.seats,
			InParliament: true,
		}))
	}

	service := NewService(resultRepo, partyRepo, partySnapRepo, maxParties, log)

	return &serviceEnv{
		service:  service,
		results:  resultRepo,
		periodID: period.ID,
		partyIDs: partyIDs,
	}
}

func TestServiceFind_ReturnsRankedCoalitions(t *testing.T) {
	env := newServiceEnv(t, 20)

	found, err := env.service.Find(env.periodID)
	require.NoError(t, err)
	require.Len(t, found, 3)

	assert.Equal(t, "A + B", found[0].Name)
	assert.Equal(t, "B + C", found[1].Name)
	assert.Equal(t, "A + C", found[2].Name)
	assert.Equal(t, 110, found[0].Seats)
}

func TestServiceFind_EmptyPeriod(t *testing.T) {
	env := newServiceEnv(t, 20)

	_, err := env.service.Find(9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceFind_TooManySeatedParties(t *testing.T) {
	env := newServiceEnv(t, 2)

	_, err := env.service.Find(env.periodID)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestServiceSetGovernment(t *testing.T) {
	env := newServiceEnv(t, 20)

	coalition := []int64{env.partyIDs["A"], env.partyIDs["B"]}
	require.NoError(t, env.service.SetGovernment(env.periodID, coalition))

	results, err := env.results.ListByPeriod(env.periodID)
	require.NoError(t, err)
	for _, res := range results {
		expected := res.CandidateID == env.partyIDs["A"] || res.CandidateID == env.partyIDs["B"]
		assert.Equal(t, expected, res.InGovernment)
	}

	// Switching the government clears the old flags.
	require.NoError(t, env.service.SetGovernment(env.periodID, []int64{env.partyIDs["C"]}))
	results, err = env.results.ListByPeriod(env.periodID)
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, res.CandidateID == env.partyIDs["C"], res.InGovernment)
	}
}

func TestServiceSetGovernment_RejectsUnseatedParty(t *testing.T) {
	env := newServiceEnv(t, 20)

	err := env.service.SetGovernment(env.periodID, []int64{9999})
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	err = env.service.SetGovernment(env.periodID, nil)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}
