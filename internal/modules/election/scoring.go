package election

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// Strength modifier bounds: a party at strength 0 keeps 5% of its raw
// appeal, a party at strength 100 gains 50% on top of it.
const (
	minStrengthModifier = 0.05
	maxStrengthModifier = 1.5
)

// strengthCurve maps political strength (0-100) linearly onto the
// modifier range.
var strengthCurve interp.PiecewiseLinear

func init() {
	if err := strengthCurve.Fit(
		[]float64{0, 100},
		[]float64{minStrengthModifier, maxStrengthModifier},
	); err != nil {
		panic(err)
	}
}

// Score converts an ideological distance into a raw attractiveness score
// in 0..100. Beyond maxDistance the voter group is unreachable and the
// score is a hard 0. Within it, the score follows a Gaussian centered at
// distance 0 whose standard deviation is half the variety tolerance, so a
// larger tolerance produces a flatter curve.
func Score(maxDistance, varietyTolerance int, distance float64) int {
	if distance > float64(maxDistance) {
		return 0
	}

	sigma := float64(varietyTolerance) / 2
	if sigma == 0 {
		// Degenerate tolerance: only a perfect ideological match scores.
		if distance == 0 {
			return 100
		}
		return 0
	}

	score := math.Exp(-(distance * distance) / (2 * sigma * sigma))
	return int(math.Round(score * 100))
}

// AdjustedScore applies the party-strength modifier to a raw score.
// Strength models incumbency, organization and media presence distorting
// pure ideological fit. The result is truncated toward zero.
func AdjustedScore(politicalStrength, rawScore int) int {
	modifier := strengthCurve.Predict(clampStrength(float64(politicalStrength)))
	return int(float64(rawScore) * modifier)
}

func clampStrength(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}
