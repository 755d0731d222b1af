package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredibilityBoundaries(t *testing.T) {
	assert.InDelta(t, 0.95, Credibility(true, 1.0), 1e-9)
	assert.InDelta(t, 0.49, Credibility(false, 0.0), 1e-9)
	assert.InDelta(t, 0.95*0.7, Credibility(true, 0.0), 1e-9)
	assert.InDelta(t, 0.70, Credibility(false, 1.0), 1e-9)
}

func TestCredibilityMonotonicInSimilarity(t *testing.T) {
	for _, authoritative := range []bool{true, false} {
		prev := -1.0
		for sim := 0.0; sim <= 1.0; sim += 0.05 {
			c := Credibility(authoritative, sim)
			assert.GreaterOrEqual(t, c, prev)
			prev = c
		}
	}
}

func TestAuthorityOutranksSimilarity(t *testing.T) {
	// A perfectly similar unauthoritative candidate must not beat an
	// authoritative one with middling similarity.
	assert.Greater(t, Credibility(true, 0.5), Credibility(false, 1.0))
}
