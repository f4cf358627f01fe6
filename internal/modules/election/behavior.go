package election

import (
	"math"
	"sort"

	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// PartyCandidate bundles a party with its snapshot for one period.
type PartyCandidate struct {
	Party    domain.Party
	Snapshot domain.PartySnapshot
}

// VotingBehavior computes how one population group distributes its votes
// across the given party candidates plus the two pseudo-candidates
// (non-voters and small parties). The result is ordered by votes
// descending; ties are broken by ascending candidate ID so the order is
// deterministic.
func VotingBehavior(pop domain.Pop, snap domain.PopSnapshot, parties []PartyCandidate) []domain.CandidateScore {
	behavior := make([]domain.CandidateScore, 0, len(parties)+2)

	for _, candidate := range parties {
		distance := NormalizedDistance(snap.Position, candidate.Snapshot.Position)
		rawScore := Score(snap.MaxPoliticalDistance, snap.VarietyTolerance, float64(distance))
		adjustedScore := AdjustedScore(candidate.Snapshot.PoliticalStrength, rawScore)

		behavior = append(behavior, domain.CandidateScore{
			PopID:         snap.PopID,
			PopName:       pop.Name,
			PeriodID:      snap.PeriodID,
			CandidateID:   candidate.Party.ID,
			Name:          candidate.Party.Name,
			FullName:      candidate.Party.FullName,
			Distance:      distance,
			RawScore:      rawScore,
			Strength:      candidate.Snapshot.PoliticalStrength,
			AdjustedScore: adjustedScore,
		})
	}

	// Pseudo-candidates use the group's own distance parameters and
	// receive no strength adjustment.
	behavior = append(behavior,
		pseudoCandidate(pop, snap, domain.CandidateNonVoters, domain.NonVotersName, snap.NonVotersDistance),
		pseudoCandidate(pop, snap, domain.CandidateSmallParties, domain.SmallPartiesName, snap.SmallPartyDistance),
	)

	totalScore := 0
	for _, entry := range behavior {
		totalScore += entry.AdjustedScore
	}

	// A zero total means total ideological disengagement: nobody gets
	// any votes. This is a defined outcome, not an error.
	eligible := snap.EligiblePopulation()
	for i := range behavior {
		if totalScore > 0 {
			behavior[i].Percentage = round2(float64(behavior[i].AdjustedScore) / float64(totalScore) * 100)
		}
		behavior[i].Votes = int(behavior[i].Percentage / 100 * float64(eligible))
	}

	sort.Slice(behavior, func(i, j int) bool {
		if behavior[i].Votes != behavior[j].Votes {
			return behavior[i].Votes > behavior[j].Votes
		}
		return behavior[i].CandidateID < behavior[j].CandidateID
	})

	return behavior
}

func pseudoCandidate(pop domain.Pop, snap domain.PopSnapshot, id int64, name string, distance int) domain.CandidateScore {
	score := Score(snap.MaxPoliticalDistance, snap.VarietyTolerance, float64(distance))
	return domain.CandidateScore{
		PopID:         snap.PopID,
		PopName:       pop.Name,
		PeriodID:      snap.PeriodID,
		CandidateID:   id,
		Name:          name,
		FullName:      name,
		Distance:      distance,
		RawScore:      score,
		Strength:      0,
		AdjustedScore: score,
	}
}

// ScoringCurve samples the group's distance-to-score curve at every
// integer distance from 0 to 100. Used for visualization only.
func ScoringCurve(snap domain.PopSnapshot) []domain.CurvePoint {
	points := make([]domain.CurvePoint, 0, 101)
	for d := 0; d <= 100; d++ {
		points = append(points, domain.CurvePoint{
			Distance: d,
			Score:    Score(snap.MaxPoliticalDistance, snap.VarietyTolerance, float64(d)),
		})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
