package chain

// DecayBranch is one decay path of a chain nuclide.
type DecayBranch struct {
	Type           string
	Target         string // empty when the branch leads out of the chain
	BranchingRatio float64
}

// Reaction is one transmutation path induced by neutron capture or
// fission.
type Reaction struct {
	Type           string
	Q              float64 // eV
	Target         string  // empty for fission
	BranchingRatio float64 // 1 unless the reaction branches to metastables
}

// FissionYields holds independent fission product yields keyed by incident
// energy, parallel slices in ascending energy order.
type FissionYields struct {
	Energies []float64
	Products [][]string
	Data     [][]float64
}

// Nuclide is one node of a depletion chain.
type Nuclide struct {
	Name        string
	HalfLife    float64 // seconds, 0 for stable
	DecayEnergy float64 // eV

	DecayModes []DecayBranch
	Reactions  []Reaction
	Yields     *FissionYields
}

// Stable reports whether the nuclide has no decay path.
func (n *Nuclide) Stable() bool {
	return n.HalfLife == 0 || len(n.DecayModes) == 0
}

// NormalizeBranches rescales decay branching ratios to sum to one. Decay
// evaluations frequently carry ratios that drift from unity after branches
// are dropped; downstream depletion solvers require a proper distribution.
func (n *Nuclide) NormalizeBranches() {
	var sum float64
	for _, b := range n.DecayModes {
		sum += b.BranchingRatio
	}
	if sum <= 0 {
		n.DecayModes = nil
		return
	}
	if sum == 1 {
		return
	}
	for i := range n.DecayModes {
		n.DecayModes[i].BranchingRatio /= sum
	}
}

// ReactionsOfType returns indices of reactions with the given type.
func (n *Nuclide) ReactionsOfType(rtype string) []int {
	var idx []int
	for i, r := range n.Reactions {
		if r.Type == rtype {
			idx = append(idx, i)
		}
	}
	return idx
}
