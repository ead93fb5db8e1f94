package chain

import (
	"context"
	"fmt"
	"sort"

	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/utils"
)

// transmutation describes how a reaction MT number changes the target
// nuclide.
type transmutation struct {
	name   string
	deltaZ int
	deltaA int
}

// transmutationReactions are the MT numbers tracked in depletion chains.
var transmutationReactions = map[int]transmutation{
	16:  {"(n,2n)", 0, -1},
	17:  {"(n,3n)", 0, -2},
	37:  {"(n,4n)", 0, -3},
	18:  {"fission", 0, 0},
	102: {"(n,gamma)", 0, 1},
	103: {"(n,p)", -1, 0},
	104: {"(n,d)", -1, -1},
	105: {"(n,t)", -1, -2},
	106: {"(n,3He)", -2, -2},
	107: {"(n,a)", -2, -3},
}

// ReactionNames lists the reaction types a chain may carry, fission last.
func ReactionNames() []string {
	names := make([]string, 0, len(transmutationReactions))
	for _, t := range transmutationReactions {
		if t.name != "fission" {
			names = append(names, t.name)
		}
	}
	sort.Strings(names)
	return append(names, "fission")
}

// BuildOptions tunes chain construction.
type BuildOptions struct {
	// HalfLifeCutoff bounds how far a missing decay product is followed
	// down its own decay before the branch is dropped. Defaults to one
	// day.
	HalfLifeCutoff float64

	Logger *utils.Logger
}

// Builder assembles a depletion chain from parsed evaluation records.
type Builder struct {
	opts BuildOptions
	log  *utils.Logger

	decay    map[string]domain.DecayRecord // nuclides entering the chain
	allDecay map[string]domain.DecayRecord // every known decay evaluation
	neutron  map[string]domain.NeutronRecord
	yields   map[string]domain.YieldRecord

	warnings []string
}

// NewBuilder creates a Builder.
func NewBuilder(opts BuildOptions) *Builder {
	if opts.HalfLifeCutoff <= 0 {
		opts.HalfLifeCutoff = 24 * 60 * 60
	}
	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger()
	}
	return &Builder{opts: opts, log: log.WithComponent("chain")}
}

// Warnings returns non-fatal messages collected while building.
func (b *Builder) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

func (b *Builder) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.warnings = append(b.warnings, msg)
	b.log.Warn().Msg(msg)
}

// Build constructs the chain from the given source. One chain nuclide is
// created per decay evaluation; transmutation reactions and fission yields
// are attached where the neutron and yield sub-libraries provide them.
func (b *Builder) Build(ctx context.Context, source domain.EvaluationSource) (*Chain, error) {
	if err := b.load(ctx, source); err != nil {
		return nil, err
	}

	c := New()
	for _, name := range sortedNuclideNames(b.decay) {
		rec := b.decay[name]
		n := &Nuclide{
			Name:        rec.Name,
			DecayEnergy: rec.DecayEnergy,
		}
		if !rec.Stable {
			n.HalfLife = rec.HalfLife
			for _, mode := range rec.Modes {
				n.DecayModes = append(n.DecayModes, DecayBranch{
					Type:           mode.Type,
					Target:         mode.Daughter,
					BranchingRatio: mode.BranchingRatio,
				})
			}
			n.NormalizeBranches()
		}
		if err := c.Add(n); err != nil {
			return nil, err
		}
	}

	b.resolveDecayTargets(c)
	b.attachReactions(c)
	b.attachYields(c)
	return c, nil
}

func (b *Builder) load(ctx context.Context, source domain.EvaluationSource) error {
	decayRecs, err := source.Decay(ctx)
	if err != nil {
		return fmt.Errorf("loading decay records: %w", err)
	}
	neutronRecs, err := source.Neutron(ctx)
	if err != nil {
		return fmt.Errorf("loading neutron records: %w", err)
	}
	yieldRecs, err := source.Yields(ctx)
	if err != nil {
		return fmt.Errorf("loading fission yield records: %w", err)
	}
	if len(decayRecs) == 0 {
		return fmt.Errorf("%w: no decay evaluations", domain.ErrNotFound)
	}

	b.decay = make(map[string]domain.DecayRecord, len(decayRecs))
	b.allDecay = make(map[string]domain.DecayRecord, len(decayRecs))
	for _, r := range decayRecs {
		b.decay[r.Name] = r
		b.allDecay[r.Name] = r
	}
	b.neutron = make(map[string]domain.NeutronRecord, len(neutronRecs))
	for _, r := range neutronRecs {
		b.neutron[r.Name] = r
	}
	b.yields = make(map[string]domain.YieldRecord, len(yieldRecs))
	for _, r := range yieldRecs {
		b.yields[r.Name] = r
	}
	return nil
}

// resolveDecayTargets rewires branches pointing at nuclides absent from the
// chain. A missing product is followed down its own dominant decay while it
// is short-lived; a stable or long-lived missing product terminates the
// branch instead, leaving it without a target.
func (b *Builder) resolveDecayTargets(c *Chain) {
	for _, n := range c.Nuclides {
		for i := range n.DecayModes {
			target := n.DecayModes[i].Target
			if target == "" || c.Contains(target) {
				continue
			}
			resolved := b.replaceMissingProduct(c, target)
			if resolved == "" {
				b.warn("%s: decay branch %s leads to %s which has no decay data; branch terminated",
					n.Name, n.DecayModes[i].Type, target)
			}
			n.DecayModes[i].Target = resolved
		}
	}
}

// replaceMissingProduct walks a missing product's decay until it lands on a
// chain nuclide. It gives up when the product is unknown entirely, stable,
// or longer-lived than the cutoff.
func (b *Builder) replaceMissingProduct(c *Chain, product string) string {
	for !c.Contains(product) {
		rec, ok := b.allDecay[product]
		if !ok {
			return ""
		}
		if rec.Stable || rec.HalfLife > b.opts.HalfLifeCutoff {
			return ""
		}
		dominant := domain.DecayMode{}
		for _, m := range rec.Modes {
			if m.BranchingRatio > dominant.BranchingRatio {
				dominant = m
			}
		}
		if dominant.Daughter == "" {
			return ""
		}
		product = dominant.Daughter
	}
	return product
}

// attachReactions adds transmutation reactions from the neutron
// sub-library. Products are derived from the MT number unless the
// evaluation names one explicitly (metastable branching).
func (b *Builder) attachReactions(c *Chain) {
	for _, n := range c.Nuclides {
		rec, ok := b.neutron[n.Name]
		if !ok {
			continue
		}
		for _, r := range rec.Reactions {
			t, tracked := transmutationReactions[r.MT]
			if !tracked {
				continue
			}
			if t.name == "fission" {
				n.Reactions = append(n.Reactions, Reaction{
					Type:           "fission",
					Q:              r.QValue,
					BranchingRatio: 1,
				})
				continue
			}

			target := r.Product
			if target == "" {
				z, a, _, err := ParseName(n.Name)
				if err != nil {
					b.warn("%s: cannot derive %s product: %v", n.Name, t.name, err)
					continue
				}
				target = BuildName(z+t.deltaZ, a+t.deltaA, 0)
			}
			if !c.Contains(target) {
				target = b.replaceMissingProduct(c, target)
			}
			n.Reactions = append(n.Reactions, Reaction{
				Type:           t.name,
				Q:              r.QValue,
				Target:         target,
				BranchingRatio: 1,
			})
		}
	}
}

// attachYields gives every fissionable chain nuclide a yield distribution.
// Actinides the yield sub-library does not cover borrow the yields of the
// nearest evaluated isotope of the same element, falling back to U235.
func (b *Builder) attachYields(c *Chain) {
	for _, n := range c.Nuclides {
		if len(n.ReactionsOfType("fission")) == 0 {
			continue
		}
		rec, ok := b.yields[n.Name]
		if !ok {
			surrogate := b.yieldSurrogate(n.Name)
			if surrogate == "" {
				b.warn("%s: fissionable but no fission yields available anywhere", n.Name)
				continue
			}
			b.warn("%s: no fission yields; borrowing from %s", n.Name, surrogate)
			rec = b.yields[surrogate]
		}
		n.Yields = yieldsFromRecord(rec)
	}
}

func (b *Builder) yieldSurrogate(name string) string {
	z, a, _, err := ParseName(name)
	if err != nil {
		return ""
	}

	best := ""
	bestDist := -1
	for candidate := range b.yields {
		cz, ca, _, err := ParseName(candidate)
		if err != nil || cz != z {
			continue
		}
		dist := ca - a
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && candidate < best) {
			best = candidate
			bestDist = dist
		}
	}
	if best != "" {
		return best
	}
	if _, ok := b.yields["U235"]; ok {
		return "U235"
	}
	return ""
}

func yieldsFromRecord(rec domain.YieldRecord) *FissionYields {
	fy := &FissionYields{}
	order := make([]int, len(rec.Energies))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return rec.Energies[order[i]] < rec.Energies[order[j]] })

	for _, idx := range order {
		products := make([]string, 0, len(rec.Yields[idx]))
		for p := range rec.Yields[idx] {
			products = append(products, p)
		}
		sort.Strings(products)
		data := make([]float64, len(products))
		for i, p := range products {
			data[i] = rec.Yields[idx][p]
		}
		fy.Energies = append(fy.Energies, rec.Energies[idx])
		fy.Products = append(fy.Products, products)
		fy.Data = append(fy.Data, data)
	}
	return fy
}

// sortedNuclideNames orders names by (Z, A, metastable level) so chain
// output is deterministic and reads in physical order.
func sortedNuclideNames(m map[string]domain.DecayRecord) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		zi, ai, mi, erri := ParseName(names[i])
		zj, aj, mj, errj := ParseName(names[j])
		if erri != nil || errj != nil {
			return names[i] < names[j]
		}
		if zi != zj {
			return zi < zj
		}
		if ai != aj {
			return ai < aj
		}
		return mi < mj
	})
	return names
}
