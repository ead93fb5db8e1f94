package chain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/nucdata/nucdata/internal/domain"
)

// Export writes the chain as a depletion_chain XML document.
func (c *Chain) Export(path string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("depletion_chain")

	for _, n := range c.Nuclides {
		elem := root.CreateElement("nuclide")
		elem.CreateAttr("name", n.Name)
		if !n.Stable() {
			elem.CreateAttr("half_life", formatFloat(n.HalfLife))
			elem.CreateAttr("decay_modes", strconv.Itoa(len(n.DecayModes)))
			elem.CreateAttr("decay_energy", formatFloat(n.DecayEnergy))
		}
		elem.CreateAttr("reactions", strconv.Itoa(len(n.Reactions)))

		for _, d := range n.DecayModes {
			de := elem.CreateElement("decay")
			de.CreateAttr("type", d.Type)
			if d.Target != "" {
				de.CreateAttr("target", d.Target)
			}
			de.CreateAttr("branching_ratio", formatFloat(d.BranchingRatio))
		}
		for _, r := range n.Reactions {
			re := elem.CreateElement("reaction")
			re.CreateAttr("type", r.Type)
			re.CreateAttr("Q", formatFloat(r.Q))
			if r.Target != "" {
				re.CreateAttr("target", r.Target)
			}
			if r.BranchingRatio != 1 {
				re.CreateAttr("branching_ratio", formatFloat(r.BranchingRatio))
			}
		}
		if n.Yields != nil {
			writeYields(elem, n.Yields)
		}
	}

	doc.Indent(2)
	return doc.WriteToFile(path)
}

func writeYields(parent *etree.Element, fy *FissionYields) {
	ye := parent.CreateElement("neutron_fission_yields")
	energies := make([]string, len(fy.Energies))
	for i, e := range fy.Energies {
		energies[i] = formatFloat(e)
	}
	ye.CreateElement("energies").SetText(strings.Join(energies, " "))

	for i := range fy.Energies {
		fe := ye.CreateElement("fission_yields")
		fe.CreateAttr("energy", energies[i])
		fe.CreateElement("products").SetText(strings.Join(fy.Products[i], " "))
		data := make([]string, len(fy.Data[i]))
		for j, v := range fy.Data[i] {
			data[j] = formatFloat(v)
		}
		fe.CreateElement("data").SetText(strings.Join(data, " "))
	}
}

// Import reads a depletion_chain XML document.
func Import(path string) (*Chain, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "depletion_chain" {
		return nil, fmt.Errorf("%w: %s: not a depletion_chain document", domain.ErrParse, path)
	}

	c := New()
	for _, elem := range root.SelectElements("nuclide") {
		n, err := nuclideFromElement(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
		}
		if err := c.Add(n); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
		}
	}
	return c, nil
}

func nuclideFromElement(elem *etree.Element) (*Nuclide, error) {
	name := elem.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("nuclide element without name")
	}
	n := &Nuclide{Name: name}

	var err error
	if v := elem.SelectAttrValue("half_life", ""); v != "" {
		if n.HalfLife, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%s: bad half_life %q", name, v)
		}
	}
	if v := elem.SelectAttrValue("decay_energy", ""); v != "" {
		if n.DecayEnergy, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%s: bad decay_energy %q", name, v)
		}
	}

	for _, de := range elem.SelectElements("decay") {
		ratio, err := strconv.ParseFloat(de.SelectAttrValue("branching_ratio", "1"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad decay branching_ratio", name)
		}
		n.DecayModes = append(n.DecayModes, DecayBranch{
			Type:           de.SelectAttrValue("type", ""),
			Target:         de.SelectAttrValue("target", ""),
			BranchingRatio: ratio,
		})
	}
	for _, re := range elem.SelectElements("reaction") {
		q, err := strconv.ParseFloat(re.SelectAttrValue("Q", "0"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad reaction Q", name)
		}
		ratio, err := strconv.ParseFloat(re.SelectAttrValue("branching_ratio", "1"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad reaction branching_ratio", name)
		}
		n.Reactions = append(n.Reactions, Reaction{
			Type:           re.SelectAttrValue("type", ""),
			Q:              q,
			Target:         re.SelectAttrValue("target", ""),
			BranchingRatio: ratio,
		})
	}

	if ye := elem.SelectElement("neutron_fission_yields"); ye != nil {
		fy, err := yieldsFromElement(ye)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", name, err)
		}
		n.Yields = fy
	}
	return n, nil
}

func yieldsFromElement(ye *etree.Element) (*FissionYields, error) {
	fy := &FissionYields{}
	for _, fe := range ye.SelectElements("fission_yields") {
		energy, err := strconv.ParseFloat(fe.SelectAttrValue("energy", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("bad fission_yields energy")
		}
		pe := fe.SelectElement("products")
		de := fe.SelectElement("data")
		if pe == nil || de == nil {
			return nil, fmt.Errorf("fission_yields missing products or data")
		}
		products := strings.Fields(pe.Text())
		values := strings.Fields(de.Text())
		if len(products) != len(values) {
			return nil, fmt.Errorf("fission_yields products/data length mismatch")
		}
		data := make([]float64, len(values))
		for i, v := range values {
			if data[i], err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("bad yield value %q", v)
			}
		}
		fy.Energies = append(fy.Energies, energy)
		fy.Products = append(fy.Products, products)
		fy.Data = append(fy.Data, data)
	}
	return fy, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
