package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucdata/nucdata/internal/domain"
)

func sampleChain(t *testing.T) *Chain {
	t.Helper()
	c := New()
	require.NoError(t, c.Add(&Nuclide{
		Name:        "I135",
		HalfLife:    23652,
		DecayEnergy: 1.1e6,
		DecayModes: []DecayBranch{
			{Type: "beta-", Target: "Xe135", BranchingRatio: 1},
		},
		Reactions: []Reaction{
			{Type: "(n,gamma)", Q: 6.2e6, Target: "I136", BranchingRatio: 1},
		},
	}))
	require.NoError(t, c.Add(&Nuclide{
		Name: "U235",
		Reactions: []Reaction{
			{Type: "(n,gamma)", Q: 6.5e6, Target: "U236", BranchingRatio: 0.73},
			{Type: "(n,gamma)", Q: 6.5e6, Target: "U236_m1", BranchingRatio: 0.27},
			{Type: "fission", Q: 2.0e8, BranchingRatio: 1},
		},
		Yields: &FissionYields{
			Energies: []float64{0.0253, 5.0e5},
			Products: [][]string{{"Sr90", "Xe135"}, {"Sr90", "Xe135"}},
			Data:     [][]float64{{0.058, 0.065}, {0.055, 0.06}},
		},
	}))
	require.NoError(t, c.Add(&Nuclide{Name: "Xe135", HalfLife: 32904, DecayModes: []DecayBranch{
		{Type: "beta-", Target: "", BranchingRatio: 1},
	}}))
	return c
}

func TestExportImport_RoundTrip(t *testing.T) {
	c := sampleChain(t)
	path := filepath.Join(t.TempDir(), "chain.xml")
	require.NoError(t, c.Export(path))

	got, err := Import(path)
	require.NoError(t, err)
	require.Equal(t, c.Len(), got.Len())

	i135 := got.Get("I135")
	require.NotNil(t, i135)
	assert.Equal(t, 23652.0, i135.HalfLife)
	assert.Equal(t, 1.1e6, i135.DecayEnergy)
	require.Len(t, i135.DecayModes, 1)
	assert.Equal(t, "Xe135", i135.DecayModes[0].Target)
	require.Len(t, i135.Reactions, 1)
	assert.Equal(t, 1.0, i135.Reactions[0].BranchingRatio)

	u235 := got.Get("U235")
	require.NotNil(t, u235)
	assert.True(t, u235.Stable())
	require.Len(t, u235.Reactions, 3)
	assert.Equal(t, 0.73, u235.Reactions[0].BranchingRatio)
	assert.Equal(t, "U236_m1", u235.Reactions[1].Target)
	assert.Equal(t, "", u235.Reactions[2].Target)

	require.NotNil(t, u235.Yields)
	assert.Equal(t, c.Get("U235").Yields.Energies, u235.Yields.Energies)
	assert.Equal(t, c.Get("U235").Yields.Products, u235.Yields.Products)
	assert.Equal(t, c.Get("U235").Yields.Data, u235.Yields.Data)

	// a terminated branch survives with no target
	xe := got.Get("Xe135")
	require.Len(t, xe.DecayModes, 1)
	assert.Equal(t, "", xe.DecayModes[0].Target)
}

func TestExport_Format(t *testing.T) {
	c := sampleChain(t)
	path := filepath.Join(t.TempDir(), "chain.xml")
	require.NoError(t, c.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "<depletion_chain>")
	assert.Contains(t, content, `<nuclide name="I135"`)
	assert.Contains(t, content, `decay_modes="1"`)
	assert.Contains(t, content, `reactions="3"`)
	assert.Contains(t, content, "<neutron_fission_yields>")
	// stable nuclides carry no half_life attribute
	assert.NotContains(t, content, `<nuclide name="U235" half_life`)
}

func TestImport_Malformed(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<wrong_root/>"), 0644))
	_, err := Import(path)
	assert.ErrorIs(t, err, domain.ErrParse)

	path2 := filepath.Join(dir, "noname.xml")
	require.NoError(t, os.WriteFile(path2, []byte("<depletion_chain><nuclide/></depletion_chain>"), 0644))
	_, err = Import(path2)
	assert.ErrorIs(t, err, domain.ErrParse)

	path3 := filepath.Join(dir, "mismatch.xml")
	require.NoError(t, os.WriteFile(path3, []byte(`<depletion_chain><nuclide name="U235" reactions="0">
<neutron_fission_yields><energies>0.0253</energies>
<fission_yields energy="0.0253"><products>Sr90 Xe135</products><data>0.058</data></fission_yields>
</neutron_fission_yields></nuclide></depletion_chain>`), 0644))
	_, err = Import(path3)
	assert.ErrorIs(t, err, domain.ErrParse)
}
