package election

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codingBeanie/Chronodemica/internal/domain"
)

func TestDistance_IdenticalPositions(t *testing.T) {
	p := domain.Position{Social: 42, Economic: -17}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_PythagoreanTriple(t *testing.T) {
	a := domain.Position{Social: 0, Economic: 0}
	b := domain.Position{Social: 3, Economic: 4}
	assert.Equal(t, 5.0, Distance(a, b))
}

func TestDistance_Symmetric(t *testing.T) {
	a := domain.Position{Social: -30, Economic: 80}
	b := domain.Position{Social: 55, Economic: -10}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestNormalizedDistance_OppositeCorners(t *testing.T) {
	a := domain.Position{Social: -100, Economic: -100}
	b := domain.Position{Social: 100, Economic: 100}

	// The full diagonal of the space maps to 100.
	assert.Equal(t, 100, NormalizedDistance(a, b))
}

func TestNormalizedDistance_SamePoint(t *testing.T) {
	p := domain.Position{Social: 10, Economic: 10}
	assert.Equal(t, 0, NormalizedDistance(p, p))
}

func TestNormalizedDistance_TruncatesTowardZero(t *testing.T) {
	a := domain.Position{Social: 0, Economic: 0}
	b := domain.Position{Social: 20, Economic: 20}

	// hypot(20,20) is 10% of the diagonal.
	assert.Equal(t, 10, NormalizedDistance(a, b))
}
