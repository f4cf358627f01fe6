package registry

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path: t.TempDir() + "/test.db",
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return db
}

func TestPeriodRepository_CRUD(t *testing.T) {
	repo := NewPeriodRepository(newTestDB(t), zerolog.Nop())

	created, err := repo.Create(domain.Period{Year: 1990})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1990, got.Year)

	byYear, err := repo.GetByYear(1990)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byYear.ID)

	created.Year = 1994
	require.NoError(t, repo.Update(*created))

	periods, err := repo.List()
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, 1994, periods[0].Year)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.GetByID(created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPeriodRepository_ListOrderedByYear(t *testing.T) {
	repo := NewPeriodRepository(newTestDB(t), zerolog.Nop())

	for _, year := range []int{2008, 1990, 2000} {
		_, err := repo.Create(domain.Period{Year: year})
		require.NoError(t, err)
	}

	periods, err := repo.List()
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, 1990, periods[0].Year)
	assert.Equal(t, 2000, periods[1].Year)
	assert.Equal(t, 2008, periods[2].Year)
}

func TestPopRepository_CRUD(t *testing.T) {
	repo := NewPopRepository(newTestDB(t), zerolog.Nop())

	created, err := repo.Create(domain.Pop{Name: "Farmers"})
	require.NoError(t, err)

	byName, err := repo.GetByName("Farmers")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	created.Name = "Urban Workers"
	require.NoError(t, repo.Update(*created))

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Urban Workers", got.Name)

	require.NoError(t, repo.Delete(created.ID))
	assert.ErrorIs(t, repo.Delete(created.ID), domain.ErrNotFound)
}

func TestPartyRepository_DefaultColor(t *testing.T) {
	repo := NewPartyRepository(newTestDB(t), zerolog.Nop())

	created, err := repo.Create(domain.Party{Name: "NP", FullName: "New Party"})
	require.NoError(t, err)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "#525252", got.Color)
	assert.Equal(t, "New Party", got.FullName)
}

func TestPopSnapshotRepository_UpsertReplacesRow(t *testing.T) {
	db := newTestDB(t)
	log := zerolog.Nop()
	pops := NewPopRepository(db, log)
	periods := NewPeriodRepository(db, log)
	repo := NewPopSnapshotRepository(db, log)

	pop, err := pops.Create(domain.Pop{Name: "Workers"})
	require.NoError(t, err)
	period, err := periods.Create(domain.Period{Year: 2000})
	require.NoError(t, err)

	snap := domain.PopSnapshot{
		PopID:                pop.ID,
		PeriodID:             period.ID,
		PopSize:              1000,
		Position:             domain.Position{Social: 10, Economic: -20},
		MaxPoliticalDistance: 70,
		VarietyTolerance:     50,
		NonVotersDistance:    60,
		SmallPartyDistance:   50,
		RatioEligible:        75,
	}
	require.NoError(t, repo.Upsert(snap))

	snap.PopSize = 2000
	snap.RatioEligible = 80
	require.NoError(t, repo.Upsert(snap))

	snapshots, err := repo.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 1, "upsert must replace, not duplicate")
	assert.Equal(t, 2000, snapshots[0].PopSize)
	assert.Equal(t, 80, snapshots[0].RatioEligible)
	assert.Equal(t, 10, snapshots[0].Social)
}

func TestPartySnapshotRepository_FilterByPeriodAndParty(t *testing.T) {
	db := newTestDB(t)
	log := zerolog.Nop()
	parties := NewPartyRepository(db, log)
	periods := NewPeriodRepository(db, log)
	repo := NewPartySnapshotRepository(db, log)

	party1, err := parties.Create(domain.Party{Name: "AP"})
	require.NoError(t, err)
	party2, err := parties.Create(domain.Party{Name: "BP"})
	require.NoError(t, err)
	period1, err := periods.Create(domain.Period{Year: 2000})
	require.NoError(t, err)
	period2, err := periods.Create(domain.Period{Year: 2004})
	require.NoError(t, err)

	for _, partyID := range []int64{party1.ID, party2.ID} {
		for _, periodID := range []int64{period1.ID, period2.ID} {
			require.NoError(t, repo.Upsert(domain.PartySnapshot{
				PartyID:           partyID,
				PeriodID:          periodID,
				PoliticalStrength: 50,
			}))
		}
	}

	byPeriod, err := repo.List(SnapshotFilter{PeriodID: period1.ID})
	require.NoError(t, err)
	assert.Len(t, byPeriod, 2)

	both, err := repo.List(SnapshotFilter{PeriodID: period1.ID, OwnerID: party2.ID})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, party2.ID, both[0].PartyID)

	all, err := repo.List(SnapshotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPartySnapshotRepository_GetByPartyAndPeriod(t *testing.T) {
	db := newTestDB(t)
	log := zerolog.Nop()
	parties := NewPartyRepository(db, log)
	periods := NewPeriodRepository(db, log)
	repo := NewPartySnapshotRepository(db, log)

	party, err := parties.Create(domain.Party{Name: "AP"})
	require.NoError(t, err)
	period, err := periods.Create(domain.Period{Year: 2000})
	require.NoError(t, err)

	_, err = repo.GetByPartyAndPeriod(party.ID, period.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Upsert(domain.PartySnapshot{
		PartyID:           party.ID,
		PeriodID:          period.ID,
		Position:          domain.Position{Social: 5, Economic: 5},
		PoliticalStrength: 60,
	}))

	got, err := repo.GetByPartyAndPeriod(party.ID, period.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.PoliticalStrength)
}
