package statistics

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

func newStatsEnv(t *testing.T) (*Service, int64) {
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
	popSnapRepo := registry.NewPopSnapshotRepository(db, log)
	voteRepo := election.NewVoteRepository(db, log)

	period, err := periodRepo.Create(domain.Period{Year: 2000})
	require.NoError(t, err)

	for i, size := range []int{1000, 500} {
		pop, err := popRepo.Create(domain.Pop{Name: []string{"Workers", "Farmers"}[i]})
		require.NoError(t, err)
		require.NoError(t, popSnapRepo.Upsert(domain.PopSnapshot{
			PopID:         pop.ID,
			PeriodID:      period.ID,
			PopSize:       size,
			RatioEligible: 80,
		}))
		require.NoError(t, voteRepo.Upsert(domain.VoteRecord{
			PeriodID:    period.ID,
			PopID:       pop.ID,
			CandidateID: 1,
			Votes:       size / 2,
		}))
		require.NoError(t, voteRepo.Upsert(domain.VoteRecord{
			PeriodID:    period.ID,
			PopID:       pop.ID,
			CandidateID: domain.CandidateNonVoters,
			Votes:       size / 10,
		}))
	}

	return NewService(db, log), period.ID
}

func TestPopulationTotal(t *testing.T) {
	service, periodID := newStatsEnv(t)

	total, err := service.PopulationTotal(periodID)
	require.NoError(t, err)
	assert.Equal(t, 1500, total)
}

func TestPopulationTotal_EmptyPeriod(t *testing.T) {
	service, _ := newStatsEnv(t)

	total, err := service.PopulationTotal(9999)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestEligibleTotal(t *testing.T) {
	service, periodID := newStatsEnv(t)

	total, err := service.EligibleTotal(periodID)
	require.NoError(t, err)
	assert.Equal(t, 1200, total)
}

func TestTurnoutPercentage(t *testing.T) {
	service, periodID := newStatsEnv(t)

	// 750 party votes and 150 non-voters out of 900 recorded.
	turnout, err := service.TurnoutPercentage(periodID)
	require.NoError(t, err)
	assert.InDelta(t, 83.33, turnout, 0.001)
}

func TestTurnoutPercentage_NoVotes(t *testing.T) {
	service, _ := newStatsEnv(t)

	turnout, err := service.TurnoutPercentage(9999)
	require.NoError(t, err)
	assert.Equal(t, 0.0, turnout)
}
