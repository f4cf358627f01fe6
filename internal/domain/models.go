// Package domain contains the core value types of the election simulation.
// It has no infrastructure dependencies.
package domain

// Pseudo-candidate IDs. These are scored alongside real parties when
// computing voting behavior but can never enter parliament or hold seats.
const (
	CandidateNonVoters    int64 = -1
	CandidateSmallParties int64 = -2
)

// Names used for pseudo-candidates wherever a display name is needed.
const (
	NonVotersName    = "Non-Voters"
	SmallPartiesName = "Small Parties"
)

// Period is a discrete historical point in time. Ordering by year defines
// the "previous period" for change tracking.
type Period struct {
	ID   int64 `json:"id"`
	Year int   `json:"year"`
}

// Pop is a population group.
type Pop struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Party is a political party.
type Party struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Color    string `json:"color"`
}

// Position is a point in the 2-D ideological space. Both axes are
// conceptually bounded to [-100, 100].
type Position struct {
	Social   int `json:"social_orientation"`
	Economic int `json:"economic_orientation"`
}

// PopSnapshot is the per-period state of a population group: its position
// in ideological space plus the behavioral parameters of its voters.
// One snapshot exists per (pop, period).
type PopSnapshot struct {
	ID       int64 `json:"id"`
	PopID    int64 `json:"pop_id"`
	PeriodID int64 `json:"period_id"`
	PopSize  int   `json:"pop_size"`
	Position
	MaxPoliticalDistance int `json:"max_political_distance"`
	VarietyTolerance     int `json:"variety_tolerance"`
	NonVotersDistance    int `json:"non_voters_distance"`
	SmallPartyDistance   int `json:"small_party_distance"`
	RatioEligible        int `json:"ratio_eligible"`
}

// EligiblePopulation returns the number of group members entitled to vote.
// The group size is used as-is (no unit scaling).
func (s PopSnapshot) EligiblePopulation() int {
	return s.PopSize * s.RatioEligible / 100
}

// PartySnapshot is the per-period state of a party.
// One snapshot exists per (party, period).
type PartySnapshot struct {
	ID       int64 `json:"id"`
	PartyID  int64 `json:"party_id"`
	PeriodID int64 `json:"period_id"`
	Position
	PoliticalStrength int `json:"political_strength"`
}

// VoteRecord holds the computed vote count of one population group for one
// candidate in one period. Recomputation fully overwrites the record.
type VoteRecord struct {
	ID          int64 `json:"id"`
	PeriodID    int64 `json:"period_id"`
	PopID       int64 `json:"pop_id"`
	CandidateID int64 `json:"candidate_id"`
	Votes       int   `json:"votes"`
}

// CandidateTotal is a national vote aggregate for one candidate.
type CandidateTotal struct {
	CandidateID int64 `json:"candidate_id"`
	Votes       int   `json:"votes"`
}

// ElectionResult is the per-period national outcome for one candidate.
// Only real parties (positive candidate IDs) may hold seats or enter
// parliament.
type ElectionResult struct {
	ID               int64   `json:"id"`
	PeriodID         int64   `json:"period_id"`
	CandidateID      int64   `json:"candidate_id"`
	Votes            int     `json:"votes"`
	Percentage       float64 `json:"percentage"`
	Seats            int     `json:"seats"`
	InParliament     bool    `json:"in_parliament"`
	InGovernment     bool    `json:"in_government"`
	HeadOfGovernment bool    `json:"head_of_government"`
}

// CandidateScore is one line of a population group's voting behavior:
// a candidate with its ideological distance, scores, vote share and votes.
type CandidateScore struct {
	PopID         int64   `json:"pop_id"`
	PopName       string  `json:"pop_name"`
	PeriodID      int64   `json:"period_id"`
	CandidateID   int64   `json:"candidate_id"`
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	Distance      int     `json:"distance"`
	RawScore      int     `json:"raw_score"`
	Strength      int     `json:"strength"`
	AdjustedScore int     `json:"adjusted_score"`
	Percentage    float64 `json:"percentage"`
	Votes         int     `json:"votes"`
}

// CurvePoint is one sample of the distance-to-score curve.
type CurvePoint struct {
	Distance int `json:"distance"`
	Score    int `json:"score"`
}

// Coalition is a candidate governing coalition: a minimal set of seated
// parties whose combined seats reach the parliamentary majority.
// Coalitions are derived on demand and never persisted.
type Coalition struct {
	PartyIDs        []int64 `json:"party_ids"`
	Name            string  `json:"name"`
	Seats           int     `json:"seats"`
	VotePercentage  float64 `json:"vote_percentage"`
	PartyCount      int     `json:"party_count"`
	AverageDistance float64 `json:"average_distance"`
	MajorityMargin  int     `json:"majority_margin"`
	InGovernment    bool    `json:"in_government"`
}

// SimulationSummary is the result of a full simulation run for one period.
type SimulationSummary struct {
	Success             bool  `json:"success"`
	PeriodID            int64 `json:"period_id"`
	TotalVotes          int   `json:"total_votes"`
	TotalParties        int   `json:"total_parties"`
	PartiesInParliament int   `json:"parties_in_parliament"`
}
