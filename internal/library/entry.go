package library

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/nucdata/nucdata/internal/domain"
)

// Entry is one row of a cross_sections.xml manifest: what kind of data a
// file holds, which materials it declares coverage for, and where the file
// lives. Entries are immutable value records; the original XML element is
// kept so attributes this tool does not model (temperatures and other
// kind-specific metadata) survive a round-trip untouched.
type Entry struct {
	Kind      domain.DataKind
	Materials []string
	Path      string // relative in the document, absolute after Load

	elem *etree.Element
}

// NewEntry creates an entry with no extra metadata attached.
func NewEntry(kind domain.DataKind, materials []string, path string) Entry {
	return Entry{
		Kind:      kind,
		Materials: append([]string(nil), materials...),
		Path:      path,
	}
}

// WithPath returns a copy of the entry pointing at a different file. Extra
// metadata carried by the source element is preserved.
func (e Entry) WithPath(path string) Entry {
	c := e
	c.Path = path
	c.Materials = append([]string(nil), e.Materials...)
	if e.elem != nil {
		c.elem = e.elem.Copy()
	}
	return c
}

// SameCoverage reports whether two entries declare the identical data kind
// and the identical set of materials. Material order is irrelevant: an
// entry listing "H1 H2" covers the same ground as one listing "H2 H1".
// File paths and file contents are deliberately not compared.
func (e Entry) SameCoverage(other Entry) bool {
	if e.Kind != other.Kind {
		return false
	}
	return materialSetEqual(e.Materials, other.Materials)
}

func materialSetEqual(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, m := range a {
		set[m] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	for _, m := range b {
		if _, ok := set[m]; !ok {
			return false
		}
		seen[m] = struct{}{}
	}
	return len(set) == len(seen)
}

// toElement renders the entry as a <library> element. The path attribute is
// written as given; callers decide whether it is relative or absolute.
func (e Entry) toElement() *etree.Element {
	var el *etree.Element
	if e.elem != nil {
		el = e.elem.Copy()
	} else {
		el = etree.NewElement("library")
		el.CreateAttr("type", string(e.Kind))
	}
	el.CreateAttr("materials", strings.Join(e.Materials, " "))
	el.CreateAttr("path", e.Path)
	return el
}

// entryFromElement parses a <library> element. The element is retained on
// the entry for metadata passthrough.
func entryFromElement(el *etree.Element) (Entry, error) {
	pathAttr := el.SelectAttr("path")
	typeAttr := el.SelectAttr("type")
	if pathAttr == nil || typeAttr == nil {
		return Entry{}, domain.NewValidationError("library", "missing path or type attribute")
	}

	var materials []string
	if m := el.SelectAttrValue("materials", ""); m != "" {
		materials = strings.Fields(m)
	}

	return Entry{
		Kind:      domain.DataKind(typeAttr.Value),
		Materials: materials,
		Path:      pathAttr.Value,
		elem:      el.Copy(),
	}, nil
}
