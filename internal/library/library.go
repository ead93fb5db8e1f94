// Package library models the cross_sections.xml manifest that enumerates
// the data files making up one nuclear data library.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/nucdata/nucdata/internal/domain"
)

// DefaultManifestName is the conventional manifest filename.
const DefaultManifestName = "cross_sections.xml"

// Library is an ordered collection of manifest entries. Order is load or
// registration order; uniqueness is the combiner's concern, not the
// Library's.
type Library struct {
	Entries []Entry
}

// New returns an empty library.
func New() *Library {
	return &Library{}
}

// Load parses a manifest document. Entry paths are resolved against the
// document's parent directory, so every entry path is absolute afterwards.
func Load(path string) (*Library, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "cross_sections" {
		return nil, fmt.Errorf("%w: %s: missing <cross_sections> root", domain.ErrParse, path)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	lib := New()
	for _, el := range root.SelectElements("library") {
		entry, err := entryFromElement(el)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
		}
		if !filepath.IsAbs(entry.Path) {
			entry.Path = filepath.Join(dir, entry.Path)
		}
		lib.Entries = append(lib.Entries, entry)
	}
	return lib, nil
}

// Register appends an entry. No uniqueness check is performed here.
func (l *Library) Register(e Entry) {
	l.Entries = append(l.Entries, e)
}

// Contains reports whether the library already holds an entry with the same
// declared coverage as the candidate.
func (l *Library) Contains(candidate Entry) bool {
	return IsDuplicate(candidate, l)
}

// Len returns the number of entries.
func (l *Library) Len() int {
	return len(l.Entries)
}

// Save serializes the manifest to path, creating parent directories as
// needed. Entry paths located under the manifest's directory are written
// relative to it; anything else is written absolute.
func (l *Library) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create %s: %w", dir, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("cross_sections")

	for _, e := range l.Entries {
		el := e.toElement()
		if rel, err := filepath.Rel(absDir, e.Path); err == nil && !strings.HasPrefix(rel, "..") {
			el.CreateAttr("path", filepath.ToSlash(rel))
		}
		root.AddChild(el)
	}

	doc.Indent(2)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
