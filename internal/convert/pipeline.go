// Package convert orchestrates turning a published nuclear data release
// into an HDF5 library: download, extract, per-release fixups, conversion
// through the external engine, and the final cross_sections.xml manifest.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/nucdata/nucdata/internal/archive"
	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/fetcher"
	"github.com/nucdata/nucdata/internal/library"
	"github.com/nucdata/nucdata/internal/release"
	"github.com/nucdata/nucdata/internal/utils"
)

// Options configures one conversion run.
type Options struct {
	Release   release.Release
	Particles []domain.Particle // nil selects every particle the release ships

	// Destination receives the HDF5 library; defaults to
	// <library>-<version>-hdf5 under WorkDir.
	Destination string
	// WorkDir holds download and extraction directories; defaults to the
	// current directory.
	WorkDir string

	Download bool
	Extract  bool
	// Cleanup removes download and extraction directories once their
	// contents have been processed.
	Cleanup bool

	LibVer       string
	Temperatures []float64
	Concurrency  int
	// Progress renders a conversion progress bar.
	Progress bool

	Converter domain.Converter
	Client    *fetcher.Client
	Logger    *utils.Logger
}

// Pipeline runs a conversion end to end.
type Pipeline struct {
	opts      Options
	converter domain.Converter
	client    *fetcher.Client
	log       *utils.Logger

	mu       sync.Mutex
	warnings []string
}

// New creates a Pipeline, validating options and filling defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Release.Library == "" {
		return nil, domain.NewValidationError("release", "no release given")
	}
	if opts.Converter == nil {
		return nil, domain.NewValidationError("converter", "no converter given")
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Destination == "" {
		opts.Destination = filepath.Join(opts.WorkDir, dirName(opts.Release, "hdf5"))
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if len(opts.Temperatures) == 0 {
		opts.Temperatures = opts.Release.Temperatures
	}
	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger()
	}
	return &Pipeline{
		opts:      opts,
		converter: opts.Converter,
		client:    opts.Client,
		log:       log.WithRelease(opts.Release.Library, opts.Release.Version),
	}, nil
}

// Warnings returns the non-fatal messages collected during the run, in the
// order they were recorded.
func (p *Pipeline) Warnings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.warnings...)
}

func (p *Pipeline) warn(msg string) {
	p.mu.Lock()
	p.warnings = append(p.warnings, msg)
	p.mu.Unlock()
	p.log.Warn().Msg(msg)
}

// Run executes the pipeline and returns the registered library. The
// manifest is written only after every selected file set has been
// processed.
func (p *Pipeline) Run(ctx context.Context) (*library.Library, error) {
	fileSets := p.opts.Release.Select(p.opts.Particles)
	if len(fileSets) == 0 {
		return nil, domain.NewValidationError("particles", "release ships none of the requested particles")
	}

	if p.opts.Download {
		compressed, uncompressed := p.opts.Release.DownloadSize(p.opts.Particles)
		p.log.Info().
			Int("download_mb", compressed).
			Int("disk_mb", uncompressed).
			Msg("Downloading release data")
		if err := p.download(ctx, fileSets); err != nil {
			return nil, err
		}
	}

	if p.opts.Extract {
		if err := p.extract(fileSets); err != nil {
			return nil, err
		}
		if p.opts.Cleanup {
			p.removeDir(p.downloadDir())
		}
	}

	lib := library.New()
	for _, fs := range fileSets {
		if err := p.convertFileSet(ctx, fs, lib); err != nil {
			return nil, err
		}
	}

	if p.opts.Cleanup {
		for _, fs := range fileSets {
			p.removeDir(p.extractDir(fs))
		}
	}

	manifest := filepath.Join(p.opts.Destination, library.DefaultManifestName)
	if err := lib.Save(manifest); err != nil {
		return nil, err
	}
	p.log.Info().Str("manifest", manifest).Int("entries", lib.Len()).Msg("Wrote manifest")
	return lib, nil
}

func (p *Pipeline) download(ctx context.Context, fileSets []release.FileSet) error {
	if p.client == nil {
		return domain.NewValidationError("client", "download requested but no client given")
	}
	for _, fs := range fileSets {
		dest := filepath.Join(p.downloadDir(), string(fs.Particle))
		for _, a := range fs.Archives {
			url, err := fetcher.JoinURL(fs.BaseURL, a.Name)
			if err != nil {
				return err
			}
			if _, err := p.client.Download(ctx, url, dest, a.MD5); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) extract(fileSets []release.FileSet) error {
	for _, fs := range fileSets {
		srcDir := filepath.Join(p.downloadDir(), string(fs.Particle))
		for _, a := range fs.Archives {
			src := filepath.Join(srcDir, filepath.Base(a.Name))
			p.log.Info().Str("archive", filepath.Base(src)).Msg("Extracting")
			if err := archive.Extract(src, p.extractDir(fs)); err != nil {
				return err
			}
		}
	}
	return nil
}

// convertFileSet converts every data file of one file set and registers the
// produced HDF5 files. Conversion is task-parallel; registration happens
// afterwards in sorted file order so the manifest is deterministic.
func (p *Pipeline) convertFileSet(ctx context.Context, fs release.FileSet, lib *library.Library) error {
	files, err := p.dataFiles(fs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no %s data files found in %s", domain.ErrNotFound, fs.Particle, p.extractDir(fs))
	}

	outDir := filepath.Join(p.opts.Destination, string(fs.Particle))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	convOpts := domain.ConvertOptions{
		Format:       fs.Format,
		Particle:     fs.Particle,
		LibVer:       p.opts.LibVer,
		Temperatures: p.opts.Temperatures,
	}

	var bar *progressbar.ProgressBar
	if p.opts.Progress {
		bar = utils.NewProgressBar(len(files), utils.DescConverting)
		defer bar.Finish()
	}

	produced := make([][]string, len(files))
	type job struct {
		idx  int
		path string
	}
	jobs := make([]job, len(files))
	for i, f := range files {
		jobs[i] = job{idx: i, path: f}
	}

	errs := utils.ParallelForEach(ctx, jobs, p.opts.Concurrency, func(ctx context.Context, j job) error {
		if bar != nil {
			defer bar.Add(1)
		}

		skip, err := p.applyFixups(fs, j.path)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}

		p.log.Debug().Str("file", filepath.Base(j.path)).Msg("Converting")
		out, err := p.converter.Convert(ctx, j.path, outDir, convOpts)
		if err != nil {
			return err
		}
		produced[j.idx] = out
		return nil
	})
	if err := utils.FirstError(errs); err != nil {
		return err
	}

	for i := range files {
		for _, h5 := range produced[i] {
			lib.Register(entryFor(fs.Particle, h5))
		}
	}
	return nil
}

// dataFiles locates the file set's evaluated data files after extraction,
// dropping backwards-compatibility leftovers.
func (p *Pipeline) dataFiles(fs release.FileSet) ([]string, error) {
	dir := p.extractDir(fs)
	var files []string
	var err error
	if fs.Recursive {
		files, err = utils.RGlob(dir, fs.Glob)
	} else {
		files, err = utils.Glob(dir, fs.Glob)
	}
	if err != nil {
		return nil, err
	}

	var kept []string
	for _, f := range files {
		if excluded(filepath.Base(f), fs.ExcludeSuffixes) {
			continue
		}
		kept = append(kept, f)
	}
	sort.Strings(kept)
	return kept, nil
}

// excluded reports whether a file name carries one of the suffixes a release
// ships only for backwards compatibility.
func excluded(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// applyFixups runs the release's named corrections for a file. It reports
// whether the file must be skipped; warnings are collected for the end of
// the run.
func (p *Pipeline) applyFixups(fs release.FileSet, path string) (bool, error) {
	name, ok := fs.Fixups[filepath.Base(path)]
	if !ok {
		return false, nil
	}
	fixup, ok := release.GetFixup(name)
	if !ok {
		return false, fmt.Errorf("unknown fixup %q for %s", name, path)
	}
	verdict, err := fixup(path)
	if err != nil {
		return false, err
	}
	if verdict.Warning != "" {
		p.warn(verdict.Warning)
	}
	return verdict.Skip, nil
}

func (p *Pipeline) downloadDir() string {
	return filepath.Join(p.opts.WorkDir, dirName(p.opts.Release, "download"))
}

func (p *Pipeline) extractDir(fs release.FileSet) string {
	return filepath.Join(p.opts.WorkDir, dirName(p.opts.Release, string(fs.Format)))
}

func (p *Pipeline) removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.warn(fmt.Sprintf("cleanup of %s failed: %v", dir, err))
	}
}

func dirName(rel release.Release, suffix string) string {
	return strings.Join([]string{rel.Library, rel.Version, suffix}, "-")
}

// entryFor derives the manifest entry for one produced HDF5 file. The
// engine names files after the nuclide or thermal material they hold.
func entryFor(particle domain.Particle, h5 string) library.Entry {
	name := strings.TrimSuffix(filepath.Base(h5), filepath.Ext(h5))
	kind := domain.KindNeutron
	switch particle {
	case domain.ParticlePhoton:
		kind = domain.KindPhoton
	case domain.ParticleThermal:
		kind = domain.KindThermal
	}
	abs, err := filepath.Abs(h5)
	if err != nil {
		abs = h5
	}
	return library.NewEntry(kind, []string{name}, abs)
}
