package election

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/registry"
)

type testEnv struct {
	service    *Service
	votes      *VoteRepository
	results    *ResultRepository
	periodID   int64
	popID      int64
	centerID   int64 // perfect match at full strength
	reformID   int64 // 10% of the diagonal away at strength 50
}

// newTestEnv builds a service over a fresh database seeded with one
// period, one population group and two parties.
func newTestEnv(t *testing.T) *testEnv {
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
	popRepo := registry.NewPopRepository(db, log)
	partyRepo := registry.NewPartyRepository(db, log)
	popSnapRepo := registry.NewPopSnapshotRepository(db, log)
	partySnapRepo := registry.NewPartySnapshotRepository(db, log)
	voteRepo := NewVoteRepository(db, log)
	resultRepo := NewResultRepository(db, log)

	period, err := periodRepo.Create(domain.Period{Year: 2000})
	require.NoError(t, err)
	pop, err := popRepo.Create(domain.Pop{Name: "Workers"})
	require.NoError(t, err)
	center, err := partyRepo.Create(domain.Party{Name: "CP", FullName: "Center Party"})
	require.NoError(t, err)
	reform, err := partyRepo.Create(domain.Party{Name: "RP", FullName: "Reform Party"})
	require.NoError(t, err)

	require.NoError(t, popSnapRepo.Upsert(domain.PopSnapshot{
		PopID:                pop.ID,
		PeriodID:             period.ID,
		PopSize:              1000,
		Position:             domain.Position{Social: 0, Economic: 0},
		MaxPoliticalDistance: 100,
		VarietyTolerance:     50,
		NonVotersDistance:    60,
		SmallPartyDistance:   50,
		RatioEligible:        75,
	}))
	require.NoError(t, partySnapRepo.Upsert(domain.PartySnapshot{
		PartyID:           center.ID,
		PeriodID:          period.ID,
		Position:          domain.Position{Social: 0, Economic: 0},
		PoliticalStrength: 100,
	}))
	require.NoError(t, partySnapRepo.Upsert(domain.PartySnapshot{
		PartyID:           reform.ID,
		PeriodID:          period.ID,
		Position:          domain.Position{Social: 20, Economic: 20},
		PoliticalStrength: 50,
	}))

	service := NewService(
		db, voteRepo, resultRepo,
		periodRepo, popRepo, partyRepo, popSnapRepo, partySnapRepo,
		log,
	)

	return &testEnv{
		service:  service,
		votes:    voteRepo,
		results:  resultRepo,
		periodID: period.ID,
		popID:    pop.ID,
		centerID: center.ID,
		reformID: reform.ID,
	}
}

func TestRunSimulation_FullPipeline(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.service.RunSimulation(env.periodID, 10, 5.0)
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.Equal(t, env.periodID, summary.PeriodID)
	assert.Equal(t, 747, summary.TotalVotes)
	assert.Equal(t, 2, summary.TotalParties)
	assert.Equal(t, 2, summary.PartiesInParliament)

	results, err := env.results.ListByPeriod(env.periodID)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byID := make(map[int64]domain.ElectionResult)
	for _, res := range results {
		byID[res.CandidateID] = res
	}

	center := byID[env.centerID]
	assert.Equal(t, 466, center.Votes)
	assert.InDelta(t, 62.38, center.Percentage, 0.001)
	assert.True(t, center.InParliament)
	assert.Equal(t, 7, center.Seats)

	reform := byID[env.reformID]
	assert.Equal(t, 220, reform.Votes)
	assert.True(t, reform.InParliament)
	assert.Equal(t, 3, reform.Seats)

	// Pseudo-candidates never enter parliament or hold seats, even above
	// the threshold.
	smallParties := byID[domain.CandidateSmallParties]
	assert.InDelta(t, 5.76, smallParties.Percentage, 0.001)
	assert.False(t, smallParties.InParliament)
	assert.Equal(t, 0, smallParties.Seats)

	nonVoters := byID[domain.CandidateNonVoters]
	assert.False(t, nonVoters.InParliament)
	assert.Equal(t, 0, nonVoters.Seats)
}

func TestRunSimulation_SeatsSumToTarget(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.RunSimulation(env.periodID, 150, 5.0)
	require.NoError(t, err)

	results, err := env.results.ParliamentByPeriod(env.periodID)
	require.NoError(t, err)

	sum := 0
	for _, res := range results {
		sum += res.Seats
	}
	assert.Equal(t, 150, sum)
}

func TestRunSimulation_RerunIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.service.RunSimulation(env.periodID, 10, 5.0)
	require.NoError(t, err)
	second, err := env.service.RunSimulation(env.periodID, 10, 5.0)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Vote rows are replaced, not accumulated.
	votes, err := env.votes.List(VoteFilter{PeriodID: env.periodID})
	require.NoError(t, err)
	assert.Len(t, votes, 4)
}

func TestRunSimulation_TighterThresholdClearsStaleSeats(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.RunSimulation(env.periodID, 10, 5.0)
	require.NoError(t, err)

	// With a 30% threshold only the strongest party qualifies; the other
	// party's earlier seats must not survive the rerun.
	summary, err := env.service.RunSimulation(env.periodID, 10, 30.0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PartiesInParliament)

	results, err := env.results.ListByPeriod(env.periodID)
	require.NoError(t, err)
	for _, res := range results {
		switch res.CandidateID {
		case env.centerID:
			assert.True(t, res.InParliament)
			assert.Equal(t, 10, res.Seats)
		default:
			assert.False(t, res.InParliament)
			assert.Equal(t, 0, res.Seats)
		}
	}
}

func TestRunSimulation_PreservesGovernmentFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.RunSimulation(env.periodID, 10, 5.0)
	require.NoError(t, err)
	require.NoError(t, env.results.SetGovernment(env.periodID, []int64{env.centerID}))

	_, err = env.service.RunSimulation(env.periodID, 10, 5.0)
	require.NoError(t, err)

	results, err := env.results.ListByPeriod(env.periodID)
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, res.CandidateID == env.centerID, res.InGovernment)
	}
}

func TestRunSimulation_UnknownPeriod(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.RunSimulation(9999, 10, 5.0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunSimulation_PeriodWithoutSnapshots(t *testing.T) {
	env := newTestEnv(t)

	empty, err := registry.NewPeriodRepository(env.service.db, zerolog.Nop()).Create(domain.Period{Year: 2004})
	require.NoError(t, err)

	_, err = env.service.RunSimulation(empty.ID, 10, 5.0)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestBehaviorForPop(t *testing.T) {
	env := newTestEnv(t)

	behavior, err := env.service.BehaviorForPop(env.popID, env.periodID)
	require.NoError(t, err)
	require.Len(t, behavior, 4)
	assert.Equal(t, env.centerID, behavior[0].CandidateID)
	assert.Equal(t, "Workers", behavior[0].PopName)
}

func TestCurveForPop(t *testing.T) {
	env := newTestEnv(t)

	curve, err := env.service.CurveForPop(env.popID, env.periodID)
	require.NoError(t, err)
	assert.Len(t, curve, 101)
}

func TestBehaviorForPop_MissingSnapshot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.BehaviorForPop(env.popID, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
