// Package coalitions enumerates minimal winning coalitions from seat
// counts and ranks them by size and ideological cohesion.
package coalitions

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/codingBeanie/Chronodemica/internal/domain"
	"github.com/codingBeanie/Chronodemica/internal/modules/election"
)

// Member is one seated party entering the coalition search.
type Member struct {
	PartyID      int64
	Name         string
	Seats        int
	VotePct      float64
	Position     domain.Position
	InGovernment bool
}

// Enumerate returns every minimal winning coalition over the given
// members: combinations whose seats reach floor(total/2)+1 and of which
// no strict subset also does. Combinations are generated in increasing
// size order, so any majority combination containing an already accepted
// one is a non-minimal superset and is discarded.
//
// The result is ordered by party count ascending, then average pairwise
// ideological distance ascending: smaller, more cohesive coalitions first.
func Enumerate(members []Member) []domain.Coalition {
	n := len(members)
	if n == 0 {
		return nil
	}

	totalSeats := 0
	for _, m := range members {
		totalSeats += m.Seats
	}
	majority := totalSeats/2 + 1

	// Accepted member sets as index bitmasks. With the enumeration bound
	// well below 64 parties a single word holds any set, and the strict
	// superset test is combo&accepted == accepted.
	var accepted []uint64
	var found []domain.Coalition

	for k := 1; k <= n; k++ {
		generator := combin.NewCombinationGenerator(n, k)
		indices := make([]int, k)
		for generator.Next() {
			generator.Combination(indices)

			seats := 0
			var mask uint64
			for _, idx := range indices {
				seats += members[idx].Seats
				mask |= 1 << uint(idx)
			}
			if seats < majority {
				continue
			}

			if containsAccepted(accepted, mask) {
				continue
			}
			accepted = append(accepted, mask)

			found = append(found, buildCoalition(members, indices, seats, majority))
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].PartyCount != found[j].PartyCount {
			return found[i].PartyCount < found[j].PartyCount
		}
		if found[i].AverageDistance != found[j].AverageDistance {
			return found[i].AverageDistance < found[j].AverageDistance
		}
		return found[i].Name < found[j].Name
	})

	return found
}

func containsAccepted(accepted []uint64, mask uint64) bool {
	for _, a := range accepted {
		if mask&a == a {
			return true
		}
	}
	return false
}

func buildCoalition(members []Member, indices []int, seats, majority int) domain.Coalition {
	selected := make([]Member, 0, len(indices))
	for _, idx := range indices {
		selected = append(selected, members[idx])
	}

	// Display order: strongest partner first.
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].Seats != selected[j].Seats {
			return selected[i].Seats > selected[j].Seats
		}
		return selected[i].PartyID < selected[j].PartyID
	})

	partyIDs := make([]int64, 0, len(selected))
	names := make([]string, 0, len(selected))
	votePct := 0.0
	inGovernment := true
	for _, m := range selected {
		partyIDs = append(partyIDs, m.PartyID)
		names = append(names, m.Name)
		votePct += m.VotePct
		inGovernment = inGovernment && m.InGovernment
	}

	return domain.Coalition{
		PartyIDs:        partyIDs,
		Name:            strings.Join(names, " + "),
		Seats:           seats,
		VotePercentage:  votePct,
		PartyCount:      len(selected),
		AverageDistance: averageDistance(selected),
		MajorityMargin:  seats - majority + 1,
		InGovernment:    inGovernment,
	}
}

// averageDistance is the mean raw Euclidean distance over all member
// pairs; zero for a single-party coalition.
func averageDistance(members []Member) float64 {
	if len(members) < 2 {
		return 0
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			total += election.Distance(members[i].Position, members[j].Position)
			pairs++
		}
	}

	return total / float64(pairs)
}
