// Package chain builds isotope depletion chains: the graph of decay,
// transmutation and fission-yield relationships a depletion solver walks.
// The evaluations themselves are parsed externally; this package works on
// the parsed records.
package chain

import "fmt"

// Chain is an ordered collection of nuclides with name lookup.
type Chain struct {
	Nuclides []*Nuclide

	index map[string]int
}

// New returns an empty chain.
func New() *Chain {
	return &Chain{index: make(map[string]int)}
}

// Add appends a nuclide. Adding a name twice is an error: a chain is a
// graph keyed by nuclide name.
func (c *Chain) Add(n *Nuclide) error {
	if _, ok := c.index[n.Name]; ok {
		return fmt.Errorf("nuclide %s already in chain", n.Name)
	}
	c.index[n.Name] = len(c.Nuclides)
	c.Nuclides = append(c.Nuclides, n)
	return nil
}

// Get returns the nuclide with the given name, or nil.
func (c *Chain) Get(name string) *Nuclide {
	i, ok := c.index[name]
	if !ok {
		return nil
	}
	return c.Nuclides[i]
}

// Contains reports whether the chain holds a nuclide with the given name.
func (c *Chain) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Len returns the number of nuclides.
func (c *Chain) Len() int {
	return len(c.Nuclides)
}
