package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForbiddenZones(t *testing.T) {
	t.Parallel()

	general := []Candidate{
		{Box: Box{0, 0, 50, 50}, Confidence: 0.9, ClassName: "apple"},
		{Box: Box{0, 0, 50, 50}, Confidence: 0.6, ClassName: "orange"},  // at the floor, excluded
		{Box: Box{0, 0, 50, 50}, Confidence: 0.95, ClassName: "bowl"},   // not denylisted
		{Box: Box{60, 60, 90, 90}, Confidence: 0.7, ClassName: "Person"}, // case-insensitive
	}
	zones := ForbiddenZones(general, DefaultForbiddenConfig())
	require.Len(t, zones, 2)
	assert.Equal(t, "apple", zones[0].ClassName)
	assert.Equal(t, "Person", zones[1].ClassName)
}

func TestFilterForbidden(t *testing.T) {
	t.Parallel()

	cfg := DefaultForbiddenConfig()
	zones := []ForbiddenZone{
		{Box: Box{0, 0, 100, 100}, ClassName: "apple", Confidence: 0.9},
		{Box: Box{300, 300, 400, 400}, ClassName: "hand", Confidence: 0.8},
	}
	cands := []Candidate{
		cand(0.9, Box{10, 10, 100, 100}),   // IoU 0.81 with apple
		cand(0.8, Box{150, 150, 250, 250}), // clear
		cand(0.7, Box{380, 380, 480, 480}), // IoU ~0.02 with hand, kept
	}

	kept, hits := FilterForbidden(cands, zones, cfg)
	require.Len(t, kept, 2)
	require.Len(t, hits, 1)
	assert.Equal(t, "apple", hits[0].Zone.ClassName)
	assert.Greater(t, hits[0].IoU, cfg.IoUThreshold)

	// No kept candidate overlaps any zone above the threshold.
	for _, c := range kept {
		for _, z := range zones {
			assert.LessOrEqual(t, IoU(c.Box, z.Box), cfg.IoUThreshold)
		}
	}
}

func TestFilterForbidden_NoZones(t *testing.T) {
	t.Parallel()

	cands := []Candidate{cand(0.9, Box{0, 0, 10, 10})}
	kept, hits := FilterForbidden(cands, nil, DefaultForbiddenConfig())
	assert.Equal(t, cands, kept)
	assert.Empty(t, hits)
}
