package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureChain(t *testing.T) *Chain {
	t.Helper()
	c := New()
	require.NoError(t, c.Add(&Nuclide{
		Name: "Am241",
		Reactions: []Reaction{
			{Type: "(n,gamma)", Q: 5.5e6, Target: "Am242", BranchingRatio: 1},
			{Type: "(n,2n)", Q: -6.6e6, Target: "Am240", BranchingRatio: 1},
		},
	}))
	require.NoError(t, c.Add(&Nuclide{Name: "Am242"}))
	require.NoError(t, c.Add(&Nuclide{Name: "Am242_m1"}))
	return c
}

func TestSetBranchRatios(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]float64{
		"Am241": {"Am242": 0.85, "Am242_m1": 0.15},
	}
	require.NoError(t, SetBranchRatios(c, "(n,gamma)", ratios, true, nil))

	am := c.Get("Am241")
	require.Len(t, am.Reactions, 3)

	// the untouched reaction type survives
	assert.Equal(t, "(n,2n)", am.Reactions[0].Type)

	captures := am.Reactions[1:]
	assert.Equal(t, "Am242", captures[0].Target)
	assert.InDelta(t, 0.85, captures[0].BranchingRatio, 1e-12)
	assert.Equal(t, "Am242_m1", captures[1].Target)
	assert.InDelta(t, 0.15, captures[1].BranchingRatio, 1e-12)
	// Q carried over from the evaluated reaction
	assert.Equal(t, 5.5e6, captures[0].Q)
	assert.Equal(t, 5.5e6, captures[1].Q)
}

func TestApplyBranchRatios(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]map[string]float64{
		"(n,gamma)": {
			"Am241": {"Am242": 0.85, "Am242_m1": 0.15},
		},
		"(n,2n)": {
			"Am241": {"Am240": 1.0},
		},
	}
	require.NoError(t, c.Add(&Nuclide{Name: "Am240"}))
	require.NoError(t, ApplyBranchRatios(c, ratios, true, nil))

	am := c.Get("Am241")
	require.Len(t, am.Reactions, 3)
	captures := am.ReactionsOfType("(n,gamma)")
	require.Len(t, captures, 2)
	assert.InDelta(t, 0.85, am.Reactions[captures[0]].BranchingRatio, 1e-12)
	twoN := am.ReactionsOfType("(n,2n)")
	require.Len(t, twoN, 1)
	assert.Equal(t, "Am240", am.Reactions[twoN[0]].Target)
}

func TestApplyBranchRatios_StrictFailure(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]map[string]float64{
		"(n,gamma)": {
			"Np237": {"Np238": 1.0},
		},
	}
	assert.Error(t, ApplyBranchRatios(c, ratios, true, nil))
	assert.NoError(t, ApplyBranchRatios(c, ratios, false, nil))
}

func TestSetBranchRatios_Renormalizes(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]float64{
		"Am241": {"Am242": 1.7, "Am242_m1": 0.3},
	}
	require.NoError(t, SetBranchRatios(c, "(n,gamma)", ratios, false, nil))

	var sum float64
	for _, i := range c.Get("Am241").ReactionsOfType("(n,gamma)") {
		sum += c.Get("Am241").Reactions[i].BranchingRatio
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSetBranchRatios_MissingParent(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]float64{
		"Np237": {"Np238": 1.0},
	}

	// strict fails
	assert.Error(t, SetBranchRatios(c, "(n,gamma)", ratios, true, nil))

	// lenient skips
	require.NoError(t, SetBranchRatios(c, "(n,gamma)", ratios, false, nil))
	assert.Len(t, c.Get("Am241").Reactions, 2)
}

func TestSetBranchRatios_MissingReaction(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]float64{
		"Am242": {"Am243": 1.0}, // Am242 has no reactions at all
	}
	assert.Error(t, SetBranchRatios(c, "(n,gamma)", ratios, true, nil))
	assert.NoError(t, SetBranchRatios(c, "(n,gamma)", ratios, false, nil))
}

func TestSetBranchRatios_ProductOutsideChain(t *testing.T) {
	c := captureChain(t)
	ratios := map[string]map[string]float64{
		"Am241": {"Am242": 0.9, "Am242_m2": 0.1},
	}

	// strict rejects the unknown product
	assert.Error(t, SetBranchRatios(c, "(n,gamma)", ratios, true, nil))

	// lenient keeps the ratio but terminates the branch
	require.NoError(t, SetBranchRatios(c, "(n,gamma)", ratios, false, nil))
	am := c.Get("Am241")
	captures := am.ReactionsOfType("(n,gamma)")
	require.Len(t, captures, 2)
	var terminated bool
	for _, i := range captures {
		if am.Reactions[i].Target == "" {
			terminated = true
			assert.InDelta(t, 0.1, am.Reactions[i].BranchingRatio, 1e-12)
		}
	}
	assert.True(t, terminated)
}
