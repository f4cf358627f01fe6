package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingBeanie/Chronodemica/internal/domain"
)

func testPop() domain.Pop {
	return domain.Pop{ID: 1, Name: "Workers"}
}

func testPopSnapshot() domain.PopSnapshot {
	return domain.PopSnapshot{
		PopID:                1,
		PeriodID:             1,
		PopSize:              1000,
		Position:             domain.Position{Social: 0, Economic: 0},
		MaxPoliticalDistance: 100,
		VarietyTolerance:     50,
		NonVotersDistance:    60,
		SmallPartyDistance:   50,
		RatioEligible:        75,
	}
}

func testParties() []PartyCandidate {
	return []PartyCandidate{
		{
			Party: domain.Party{ID: 1, Name: "CP", FullName: "Center Party"},
			Snapshot: domain.PartySnapshot{
				PartyID:           1,
				PeriodID:          1,
				Position:          domain.Position{Social: 0, Economic: 0},
				PoliticalStrength: 100,
			},
		},
		{
			Party: domain.Party{ID: 2, Name: "RP", FullName: "Reform Party"},
			Snapshot: domain.PartySnapshot{
				PartyID:           2,
				PeriodID:          1,
				Position:          domain.Position{Social: 20, Economic: 20},
				PoliticalStrength: 50,
			},
		},
	}
}

func TestVotingBehavior_IncludesPseudoCandidates(t *testing.T) {
	behavior := VotingBehavior(testPop(), testPopSnapshot(), testParties())
	require.Len(t, behavior, 4)

	ids := make(map[int64]bool)
	for _, entry := range behavior {
		ids[entry.CandidateID] = true
	}
	assert.True(t, ids[domain.CandidateNonVoters])
	assert.True(t, ids[domain.CandidateSmallParties])
}

func TestVotingBehavior_ScoresAndVotes(t *testing.T) {
	behavior := VotingBehavior(testPop(), testPopSnapshot(), testParties())
	require.Len(t, behavior, 4)

	byID := make(map[int64]domain.CandidateScore)
	for _, entry := range behavior {
		byID[entry.CandidateID] = entry
	}

	// Perfect ideological match at full strength: raw 100 boosted to 150.
	center := byID[1]
	assert.Equal(t, 0, center.Distance)
	assert.Equal(t, 100, center.RawScore)
	assert.Equal(t, 150, center.AdjustedScore)

	// 10% of the diagonal away at middling strength.
	reform := byID[2]
	assert.Equal(t, 10, reform.Distance)
	assert.Equal(t, 92, reform.RawScore)
	assert.Equal(t, 71, reform.AdjustedScore)

	// Pseudo-candidates carry the group's own distance parameters and
	// skip the strength adjustment.
	nonVoters := byID[domain.CandidateNonVoters]
	assert.Equal(t, 60, nonVoters.Distance)
	assert.Equal(t, nonVoters.RawScore, nonVoters.AdjustedScore)

	// Adjusted scores total 241; shares and votes follow from that.
	assert.InDelta(t, 62.24, center.Percentage, 0.001)
	assert.InDelta(t, 29.46, reform.Percentage, 0.001)
	assert.Equal(t, 466, center.Votes)
	assert.Equal(t, 220, reform.Votes)
}

func TestVotingBehavior_OrderedByVotesThenID(t *testing.T) {
	behavior := VotingBehavior(testPop(), testPopSnapshot(), testParties())
	require.Len(t, behavior, 4)

	for i := 1; i < len(behavior); i++ {
		prev, cur := behavior[i-1], behavior[i]
		if prev.Votes == cur.Votes {
			assert.Less(t, prev.CandidateID, cur.CandidateID)
		} else {
			assert.Greater(t, prev.Votes, cur.Votes)
		}
	}
	assert.Equal(t, int64(1), behavior[0].CandidateID, "strongest candidate first")
}

func TestVotingBehavior_TotalDisengagement(t *testing.T) {
	snap := testPopSnapshot()
	snap.Position = domain.Position{Social: -100, Economic: -100}
	snap.MaxPoliticalDistance = 10
	snap.VarietyTolerance = 1
	snap.NonVotersDistance = 60
	snap.SmallPartyDistance = 50

	parties := []PartyCandidate{{
		Party: domain.Party{ID: 1, Name: "FP"},
		Snapshot: domain.PartySnapshot{
			PartyID:  1,
			PeriodID: 1,
			Position: domain.Position{Social: 100, Economic: 100},
		},
	}}

	behavior := VotingBehavior(testPop(), snap, parties)
	for _, entry := range behavior {
		assert.Equal(t, 0, entry.AdjustedScore)
		assert.Equal(t, 0.0, entry.Percentage)
		assert.Equal(t, 0, entry.Votes)
	}
}

func TestScoringCurve_SamplesFullRange(t *testing.T) {
	curve := ScoringCurve(testPopSnapshot())
	require.Len(t, curve, 101)

	assert.Equal(t, 0, curve[0].Distance)
	assert.Equal(t, 100, curve[0].Score)
	assert.Equal(t, 100, curve[100].Distance)
	assert.Equal(t, 0, curve[100].Score)
}

func TestEligiblePopulation(t *testing.T) {
	snap := testPopSnapshot()
	assert.Equal(t, 750, snap.EligiblePopulation())
}
