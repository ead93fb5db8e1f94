// Package combine merges several nuclear data library manifests into one,
// deduplicating entries by declared coverage under a first-listed-wins
// precedence rule.
package combine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/library"
	"github.com/nucdata/nucdata/internal/utils"
)

// Options configures one combine operation.
type Options struct {
	// Sources are library directories in priority order; index 0 wins.
	// Each must contain a manifest named ManifestName.
	Sources []string
	// Destination is the directory the combined library is created in.
	Destination string
	// ManifestName is the manifest filename looked up inside each source
	// and written to the destination. Defaults to cross_sections.xml.
	ManifestName string
	// CopyFiles controls whether backing data files are copied into the
	// destination. When false the combined manifest points at the
	// original files in place.
	CopyFiles bool

	Logger *utils.Logger
}

// Combiner merges libraries according to its options.
type Combiner struct {
	opts Options
	log  *utils.Logger
}

// New creates a Combiner, validating options.
func New(opts Options) (*Combiner, error) {
	if opts.Destination == "" {
		return nil, domain.NewValidationError("destination", "destination directory not specified")
	}
	if len(opts.Sources) == 0 {
		return nil, domain.NewValidationError("libraries", "no input libraries specified")
	}
	if opts.ManifestName == "" {
		opts.ManifestName = library.DefaultManifestName
	}
	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger()
	}
	return &Combiner{opts: opts, log: log.WithComponent("combine")}, nil
}

// Run performs the combine: it checks preconditions, loads every source
// manifest, merges entries in priority order and writes the combined
// manifest last. On error the destination may be left with a partial set of
// copied files, but never with a manifest.
func (c *Combiner) Run() (*library.Library, error) {
	if err := c.checkDestination(); err != nil {
		return nil, err
	}

	sources, err := c.loadSources()
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("destination", c.opts.Destination).
		Int("libraries", len(sources)).
		Bool("copy", c.opts.CopyFiles).
		Msg("Combining libraries in order of preference")

	if err := os.MkdirAll(c.opts.Destination, 0755); err != nil {
		return nil, fmt.Errorf("unable to create destination: %w", err)
	}

	combined := library.New()
	copied := make(map[string]string)
	for i, lib := range sources {
		for _, entry := range lib.Entries {
			if library.IsDuplicate(entry, combined) {
				c.log.Debug().
					Str("path", entry.Path).
					Int("library", i+1).
					Msg("Skipping duplicate entry")
				continue
			}
			added, err := c.add(entry, copied)
			if err != nil {
				return nil, err
			}
			c.log.Info().
				Str("file", filepath.Base(entry.Path)).
				Str("source", c.opts.Sources[i]).
				Msg("Adding entry")
			combined.Register(added)
		}
	}

	manifestPath := filepath.Join(c.opts.Destination, c.opts.ManifestName)
	if err := combined.Save(manifestPath); err != nil {
		return nil, err
	}
	c.log.Info().Str("manifest", manifestPath).Int("entries", combined.Len()).Msg("Wrote combined manifest")
	return combined, nil
}

// checkDestination runs before any file is touched: an existing destination
// must be a directory, and must be empty when files are going to be copied
// into it.
func (c *Combiner) checkDestination() error {
	info, err := os.Stat(c.opts.Destination)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrDestinationNotADirectory, c.opts.Destination)
	}
	if c.opts.CopyFiles {
		entries, err := os.ReadDir(c.opts.Destination)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrDestinationNotEmpty, c.opts.Destination)
		}
	}
	return nil
}

func (c *Combiner) loadSources() ([]*library.Library, error) {
	libs := make([]*library.Library, 0, len(c.opts.Sources))
	for _, dir := range c.opts.Sources {
		manifest := filepath.Join(dir, c.opts.ManifestName)
		lib, err := library.Load(manifest)
		if err != nil {
			return nil, &domain.SourceManifestError{Path: manifest, Err: err}
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// add verifies the entry's backing file and, in copy mode, places a copy in
// the destination under the file's base name. The returned entry points at
// whichever path the combined manifest should record. copied tracks which
// source file each destination name came from, so a name collision is only a
// conflict between different sources; two entries backed by the same file
// share one copy.
func (c *Combiner) add(entry library.Entry, copied map[string]string) (library.Entry, error) {
	info, err := os.Stat(entry.Path)
	if err != nil {
		return library.Entry{}, fmt.Errorf("%w: backing file %s", domain.ErrNotFound, entry.Path)
	}
	if info.IsDir() {
		return library.Entry{}, fmt.Errorf("%w: backing file %s is a directory", domain.ErrNotFound, entry.Path)
	}

	if !c.opts.CopyFiles {
		return entry, nil
	}

	name := filepath.Base(entry.Path)
	dest := filepath.Join(c.opts.Destination, name)
	if source, ok := copied[name]; ok {
		if source == entry.Path {
			return entry.WithPath(dest), nil
		}
		return library.Entry{}, &domain.FileConflictError{Name: name, Source: entry.Path}
	}
	if _, err := os.Stat(dest); err == nil {
		return library.Entry{}, &domain.FileConflictError{Name: name, Source: entry.Path}
	}
	if err := copyFile(entry.Path, dest); err != nil {
		return library.Entry{}, err
	}
	copied[name] = entry.Path
	return entry.WithPath(dest), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
