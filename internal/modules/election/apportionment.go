package election

import "math"

// SeatShare is the apportionment input for one qualifying party.
type SeatShare struct {
	PartyID int64
	Votes   int
}

// ApportionSeats distributes totalSeats across the qualifying parties with
// the largest-remainder (Hare quota) method: every party first receives
// the whole-number part of its exact proportional share, then the leftover
// seats go one by one to the largest fractional remainders. Equal
// remainders are broken in favor of the lowest party ID.
//
// For any input with a positive vote total, the returned seat counts sum
// exactly to totalSeats. A zero vote total allocates zero seats everywhere.
func ApportionSeats(shares []SeatShare, totalSeats int) map[int64]int {
	seats := make(map[int64]int, len(shares))
	if len(shares) == 0 || totalSeats <= 0 {
		return seats
	}

	totalVotes := 0
	for _, share := range shares {
		totalVotes += share.Votes
	}
	if totalVotes <= 0 {
		for _, share := range shares {
			seats[share.PartyID] = 0
		}
		return seats
	}

	remainders := make(map[int64]float64, len(shares))
	leftover := totalSeats

	for _, share := range shares {
		exact := float64(share.Votes) / float64(totalVotes) * float64(totalSeats)
		base := int(math.Floor(exact))
		seats[share.PartyID] = base
		remainders[share.PartyID] = exact - float64(base)
		leftover -= base
	}

	for leftover > 0 {
		winner := largestRemainder(shares, remainders)
		seats[winner]++
		remainders[winner]--
		leftover--
	}

	return seats
}

// largestRemainder returns the party with the highest remainder,
// lowest party ID on ties.
func largestRemainder(shares []SeatShare, remainders map[int64]float64) int64 {
	winner := shares[0].PartyID
	best := remainders[winner]

	for _, share := range shares[1:] {
		r := remainders[share.PartyID]
		if r > best || (r == best && share.PartyID < winner) {
			winner = share.PartyID
			best = r
		}
	}

	return winner
}
