// Package election implements the election simulation engine: ideological
// distance scoring, voting behavior, vote aggregation and seat apportionment.
package election

import (
	"math"

	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// maxDiagonal is the largest possible distance in the ideological space:
// sqrt(200^2 + 200^2) with both axes spanning [-100, 100].
const maxDiagonal = 282.8427

// Distance returns the Euclidean distance between two ideological positions.
// It is symmetric and zero iff the positions are identical.
func Distance(a, b domain.Position) float64 {
	return math.Hypot(float64(a.Social-b.Social), float64(a.Economic-b.Economic))
}

// NormalizedDistance returns the distance between two positions scaled to
// the 0-100 range against the maximum diagonal of the coordinate space,
// truncated to an integer.
func NormalizedDistance(a, b domain.Position) int {
	return int(Distance(a, b) / maxDiagonal * 100)
}
