package chain

import (
	"fmt"
	"strconv"
	"strings"
)

// symbols lists element symbols indexed by atomic number (index 0 is the
// neutron pseudo-element used by some evaluations).
var symbols = []string{
	"n",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumber = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for z, s := range symbols {
		m[s] = z
	}
	return m
}()

// ParseName splits a nuclide name like "U235" or "Am242_m1" into atomic
// number, mass number and metastable level.
func ParseName(name string) (z, a, m int, err error) {
	base := name
	if i := strings.Index(name, "_m"); i >= 0 {
		base = name[:i]
		m, err = strconv.Atoi(name[i+2:])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid metastable level in %q", name)
		}
	}

	split := len(base)
	for split > 0 && base[split-1] >= '0' && base[split-1] <= '9' {
		split--
	}
	sym, num := base[:split], base[split:]
	if sym == "" || num == "" {
		return 0, 0, 0, fmt.Errorf("invalid nuclide name %q", name)
	}

	z, ok := atomicNumber[sym]
	if !ok {
		return 0, 0, 0, fmt.Errorf("unknown element symbol in %q", name)
	}
	a, err = strconv.Atoi(num)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid mass number in %q", name)
	}
	return z, a, m, nil
}

// BuildName is the inverse of ParseName.
func BuildName(z, a, m int) string {
	if z < 0 || z >= len(symbols) {
		return fmt.Sprintf("?%d-%d", z, a)
	}
	name := fmt.Sprintf("%s%d", symbols[z], a)
	if m > 0 {
		name += fmt.Sprintf("_m%d", m)
	}
	return name
}

// GroundState strips any metastable suffix from a nuclide name.
func GroundState(name string) string {
	if i := strings.Index(name, "_m"); i >= 0 {
		return name[:i]
	}
	return name
}
