package chain

import (
	"fmt"
	"math"
	"sort"

	"github.com/nucdata/nucdata/internal/utils"
)

const branchRatioTolerance = 1e-5

// ApplyBranchRatios applies a ratios file keyed by reaction type, so one
// file can adjust several reactions in a single pass. ratios maps reaction
// type to parent name to product name to ratio.
func ApplyBranchRatios(c *Chain, ratios map[string]map[string]map[string]float64, strict bool, log *utils.Logger) error {
	reactions := make([]string, 0, len(ratios))
	for r := range ratios {
		reactions = append(reactions, r)
	}
	sort.Strings(reactions)

	for _, reaction := range reactions {
		if err := SetBranchRatios(c, reaction, ratios[reaction], strict, log); err != nil {
			return err
		}
	}
	return nil
}

// SetBranchRatios replaces the branching of one reaction type with
// externally supplied ratios, typically to split capture between ground
// and metastable products. ratios maps parent name to product name to
// ratio. With strict set, a parent missing from the chain or lacking the
// reaction is an error; otherwise it is skipped with a warning.
func SetBranchRatios(c *Chain, reaction string, ratios map[string]map[string]float64, strict bool, log *utils.Logger) error {
	if log == nil {
		log = utils.NewDefaultLogger()
	}
	log = log.WithComponent("chain")

	parents := make([]string, 0, len(ratios))
	for p := range ratios {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	for _, parent := range parents {
		n := c.Get(parent)
		if n == nil {
			if strict {
				return fmt.Errorf("nuclide %s not in chain", parent)
			}
			log.Warn().Str("nuclide", parent).Msg("not in chain, branch ratios skipped")
			continue
		}
		existing := n.ReactionsOfType(reaction)
		if len(existing) == 0 {
			if strict {
				return fmt.Errorf("nuclide %s has no %s reaction", parent, reaction)
			}
			log.Warn().Str("nuclide", parent).Str("reaction", reaction).Msg("reaction absent, branch ratios skipped")
			continue
		}

		products := make([]string, 0, len(ratios[parent]))
		var sum float64
		for product, ratio := range ratios[parent] {
			if strict && !c.Contains(product) {
				return fmt.Errorf("product %s of %s not in chain", product, parent)
			}
			products = append(products, product)
			sum += ratio
		}
		sort.Strings(products)
		if math.Abs(sum-1) > branchRatioTolerance {
			log.Warn().Str("nuclide", parent).Float64("sum", sum).Msg("branch ratios renormalized")
		}

		// reuse the Q value of the evaluated reaction
		q := n.Reactions[existing[0]].Q

		kept := n.Reactions[:0]
		for _, r := range n.Reactions {
			if r.Type != reaction {
				kept = append(kept, r)
			}
		}
		n.Reactions = kept
		for _, product := range products {
			target := product
			if !c.Contains(target) {
				target = ""
			}
			n.Reactions = append(n.Reactions, Reaction{
				Type:           reaction,
				Q:              q,
				Target:         target,
				BranchingRatio: ratios[parent][product] / sum,
			})
		}
	}
	return nil
}
