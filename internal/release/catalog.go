// Package release holds the per-release configuration records for the
// published nuclear data libraries this tool knows how to fetch and
// convert. Each record is an immutable value looked up by (library,
// version); there is no process-global mutable table.
package release

import (
	"fmt"
	"sort"

	"github.com/nucdata/nucdata/internal/domain"
)

// Archive is one downloadable compressed file of a release.
type Archive struct {
	Name string
	// MD5 is the known checksum, empty when the publisher does not
	// provide one.
	MD5 string
}

// FileSet describes where one particle family of a release lives: the
// download location, the archives to fetch, and how to find the evaluated
// data files after extraction.
type FileSet struct {
	Particle domain.Particle
	Format   domain.SourceFormat
	BaseURL  string
	Archives []Archive

	// Glob locates data files relative to the extraction directory.
	// Recursive switches from path globbing to a recursive basename
	// match, mirroring how deeply nested releases are laid out.
	Glob      string
	Recursive bool
	// ExcludeSuffixes drops files kept in releases only for backwards
	// compatibility (trailing "_" copies, ".xsd" schema files).
	ExcludeSuffixes []string

	// Fixups maps data file base names to the named correction that must
	// run before conversion.
	Fixups map[string]string

	CompressedMB   int
	UncompressedMB int
}

// Release is the full configuration record for one library release.
type Release struct {
	Library  string
	Version  string
	FileSets []FileSet
	// Temperatures are the default processing temperatures in Kelvin for
	// ENDF-sourced releases.
	Temperatures []float64
}

// DownloadSize returns the compressed and uncompressed footprint in MB for
// the selected particles (nil selects all).
func (r Release) DownloadSize(particles []domain.Particle) (compressed, uncompressed int) {
	for _, fs := range r.FileSets {
		if particles != nil && !containsParticle(particles, fs.Particle) {
			continue
		}
		compressed += fs.CompressedMB
		uncompressed += fs.UncompressedMB
	}
	return
}

// Select returns the file sets matching the requested particles, all of
// them when particles is nil.
func (r Release) Select(particles []domain.Particle) []FileSet {
	if particles == nil {
		return r.FileSets
	}
	var out []FileSet
	for _, fs := range r.FileSets {
		if containsParticle(particles, fs.Particle) {
			out = append(out, fs)
		}
	}
	return out
}

func containsParticle(ps []domain.Particle, p domain.Particle) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// TapeSet names the evaluation tapes one sublibrary of a depletion chain is
// built from: where to download them, and any repair a tape needs before the
// parsing engine can read it.
type TapeSet struct {
	// Sub is the sublibrary directory the tapes land in (decay, nfy,
	// neutrons).
	Sub      string
	BaseURL  string
	Archives []Archive

	// Fixups maps a downloaded tape's base name to a named tape fixup.
	Fixups map[string]string
}

// Catalog is the set of known releases.
type Catalog struct {
	releases   map[string]map[string]Release
	chainTapes map[string]map[string][]TapeSet
}

// Lookup returns the record for a (library, version) pair.
func (c *Catalog) Lookup(libraryName, version string) (Release, error) {
	versions, ok := c.releases[libraryName]
	if !ok {
		return Release{}, fmt.Errorf("%w: %s", domain.ErrUnknownRelease, libraryName)
	}
	rel, ok := versions[version]
	if !ok {
		return Release{}, fmt.Errorf("%w: %s %s", domain.ErrUnknownRelease, libraryName, version)
	}
	return rel, nil
}

// ChainTapes returns the tape sets a depletion chain for a (library,
// version) pair is built from.
func (c *Catalog) ChainTapes(libraryName, version string) ([]TapeSet, error) {
	versions, ok := c.chainTapes[libraryName]
	if !ok {
		return nil, fmt.Errorf("%w: no chain tapes for %s", domain.ErrUnknownRelease, libraryName)
	}
	sets, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: no chain tapes for %s %s", domain.ErrUnknownRelease, libraryName, version)
	}
	return sets, nil
}

// Libraries lists the known library names, sorted.
func (c *Catalog) Libraries() []string {
	names := make([]string, 0, len(c.releases))
	for name := range c.releases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Versions lists the known versions of a library, sorted.
func (c *Catalog) Versions(libraryName string) []string {
	versions := make([]string, 0, len(c.releases[libraryName]))
	for v := range c.releases[libraryName] {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Validate checks every record for the fields all releases must carry.
func (c *Catalog) Validate() error {
	for name, versions := range c.releases {
		for version, rel := range versions {
			if len(rel.FileSets) == 0 {
				return domain.NewValidationError(name+"/"+version, "release has no file sets")
			}
			for _, fs := range rel.FileSets {
				if fs.BaseURL == "" {
					return domain.NewValidationError(name+"/"+version, "file set missing base URL")
				}
				if len(fs.Archives) == 0 {
					return domain.NewValidationError(name+"/"+version, "file set has no archives")
				}
				if fs.Format != domain.FormatACE && fs.Format != domain.FormatENDF {
					return domain.NewValidationError(name+"/"+version, "unknown source format "+string(fs.Format))
				}
				for fname, fixup := range fs.Fixups {
					if _, ok := GetFixup(fixup); !ok {
						return domain.NewValidationError(name+"/"+version, "unknown fixup "+fixup+" for "+fname)
					}
				}
			}
		}
	}
	return nil
}

func names(files []string) []Archive {
	archives := make([]Archive, len(files))
	for i, f := range files {
		archives[i] = Archive{Name: f}
	}
	return archives
}

// DefaultTemperatures are the processing temperatures used when a release
// does not override them.
var DefaultTemperatures = []float64{250.0, 293.6, 600.0, 900.0, 1200.0, 2500.0}

// DefaultCatalog returns the built-in release records.
func DefaultCatalog() *Catalog {
	c := &Catalog{releases: map[string]map[string]Release{
		"fendl": {
			"3.2":  fendl("3.2", "https://www-nds.iaea.org/fendl/data/neutron/", "fendl32-neutron-ace.zip", "neutron/ace/*", "https://www-nds.iaea.org/fendl/data/atom/", "fendl32-atom-endf.zip", "*.endf", true, 565, 4226, nil),
			"3.1d": fendl("3.1d", "https://www-nds.iaea.org/fendl31d/data/neutron/", "fendl31d-neutron-ace.zip", "fendl31d_ACE/*", "https://www-nds.iaea.org/fendl31d/data/atom/", "fendl30-atom-endf.zip", "endf/*.txt", false, 425, 2290, nil),
			"3.1a": fendl("3.1a", "https://www-nds.iaea.org/fendl31/data/neutron/", "fendl31a-neutron-ace.zip", "*.ace", "https://www-nds.iaea.org/fendl31/data/atom/", "fendl30-atom-endf.zip", "endf/*.txt", false, 384, 2250, nil),
			"3.0": fendl("3.0", "https://www-nds.iaea.org/fendl30/data/neutron/", "fendl30-neutron-ace.zip", "ace/*.ace", "https://www-nds.iaea.org/fendl30/data/atom/", "fendl30-atom-endf.zip", "endf/*.txt", false, 364, 2200,
				map[string]string{"19K_039.ace": FixupInfXSS}),
		},
		"tendl": {
			"2015": tendl("2015", "ACE-n.tgz", "neutron_file/*/*/lib/endf/*-n.ace", 5100, 40000),
			"2017": tendl("2017", "tendl17c.tar.bz2", "ace-17/*", 2100, 14000),
			"2019": tendl("2019", "tendl19c.tar.bz2", "tendl19c/*", 2300, 10100),
			"2021": tendl("2021", "tendl21c.tar.bz2", "tendl21c/*", 2200, 10500),
		},
		"jendl": {
			"4.0": {
				Library: "jendl", Version: "4.0",
				Temperatures: DefaultTemperatures,
				FileSets: []FileSet{{
					Particle: domain.ParticleNeutron,
					Format:   domain.FormatENDF,
					BaseURL:  "https://wwwndc.jaea.go.jp/ftpnd/ftp/JENDL/",
					Archives: names([]string{"jendl40-or-up_20160106.tar.gz"}),
					Glob:     "jendl40-or-up_20160106/*.dat",
					CompressedMB: 200, UncompressedMB: 2000,
				}},
			},
			"5.0": {
				Library: "jendl", Version: "5.0",
				Temperatures: DefaultTemperatures,
				FileSets: []FileSet{{
					Particle: domain.ParticleNeutron,
					Format:   domain.FormatENDF,
					BaseURL:  "https://wwwndc.jaea.go.jp/ftpnd/",
					Archives: names([]string{
						"ftp/JENDL/jendl5-n.tar.gz",
						"jendl/jendl5-update/data/jendl5_upd6.tar.gz",
						"jendl/jendl5-update/data/n_059-Pr-141.dat.gz",
					}),
					Glob:         "*.dat",
					CompressedMB: 4100, UncompressedMB: 16000,
				}},
			},
		},
		"cendl": {
			"3.1": {
				Library: "cendl", Version: "3.1",
				Temperatures: DefaultTemperatures,
				FileSets: []FileSet{{
					Particle: domain.ParticleNeutron,
					Format:   domain.FormatENDF,
					BaseURL:  "https://www.oecd-nea.org/dbforms/data/eva/evatapes/cendl_31/",
					Archives: names([]string{"CENDL-31.zip"}),
					Glob:     "*.C31",
					Fixups: map[string]string{
						"22-Ti-047.C31": FixupCENDLTi47,
						"5-B-010.C31":   FixupCENDLB10,
					},
					CompressedMB: 30, UncompressedMB: 400,
				}},
			},
		},
		"jeff": {
			"3.3": {
				Library: "jeff", Version: "3.3",
				Temperatures: DefaultTemperatures,
				FileSets: []FileSet{
					{
						Particle: domain.ParticleNeutron,
						Format:   domain.FormatENDF,
						BaseURL:  "https://www.oecd-nea.org/dbdata/jeff/jeff33/downloads/",
						Archives: []Archive{{Name: "JEFF33-n.tgz", MD5: "88771640ab08f4dccce8e542fdf90062"}},
						Glob:     "endf6/*.jeff33",
						CompressedMB: 1100, UncompressedMB: 5400,
					},
					{
						Particle: domain.ParticleThermal,
						Format:   domain.FormatENDF,
						BaseURL:  "https://www.oecd-nea.org/dbdata/jeff/jeff33/downloads/",
						Archives: []Archive{{Name: "JEFF33-tsl.tgz", MD5: "82a6df4cb802aa4a09b95309f7861c54"}},
						Glob:     "JEFF33-tsl/*.jeff33",
						CompressedMB: 8, UncompressedMB: 60,
					},
				},
			},
		},
		"endfb": {
			"8.0": {
				Library: "endfb", Version: "8.0",
				Temperatures: DefaultTemperatures,
				FileSets: []FileSet{
					{
						Particle: domain.ParticleNeutron,
						Format:   domain.FormatENDF,
						BaseURL:  "https://www.nndc.bnl.gov/endf/b8.0/zips/",
						Archives: []Archive{{Name: "ENDF-B-VIII.0_neutrons.zip", MD5: "90c1b1a6653a148f17cbf3c5d1171859"}},
						Glob:     "ENDF-B-VIII.0_neutrons/*.endf",
						CompressedMB: 460, UncompressedMB: 2400,
					},
					{
						Particle: domain.ParticleThermal,
						Format:   domain.FormatENDF,
						BaseURL:  "https://www.nndc.bnl.gov/endf/b8.0/zips/",
						Archives: []Archive{{Name: "ENDF-B-VIII.0_thermal_scatt.zip", MD5: "ecd503d3f8214f703e95e17cc947062c"}},
						Glob:     "ENDF-B-VIII.0_thermal_scatt/*.endf",
						CompressedMB: 17, UncompressedMB: 140,
					},
					{
						Particle: domain.ParticlePhoton,
						Format:   domain.FormatENDF,
						BaseURL:  "https://www.nndc.bnl.gov/endf/b8.0/zips/",
						Archives: []Archive{
							{Name: "ENDF-B-VIII.0_photoat.zip", MD5: "d49f5b54be278862e1ce742ccd94f5c0"},
							{Name: "ENDF-B-VIII.0_atomic_relax.zip", MD5: "e04d50098cb2a7e4fe404ec4071611cc"},
						},
						Glob:      "*.endf",
						Recursive: true,
						CompressedMB: 60, UncompressedMB: 500,
					},
				},
			},
		},
	}}

	jeff33Tapes := "https://www.oecd-nea.org/dbdata/jeff/jeff33/downloads/"
	endf71Tapes := "https://www.nndc.bnl.gov/endf/b7.1/zips/"
	endf80Tapes := "https://www.nndc.bnl.gov/endf-b8.0/zips/"
	c.chainTapes = map[string]map[string][]TapeSet{
		"jeff": {
			"3.3": {
				{Sub: "neutrons", BaseURL: jeff33Tapes, Archives: names([]string{"JEFF33-n.tgz"})},
				{Sub: "decay", BaseURL: jeff33Tapes, Archives: names([]string{"JEFF33-rdd.zip"})},
				{
					Sub: "nfy", BaseURL: jeff33Tapes,
					Archives: names([]string{"JEFF33-nfy.asc"}),
					Fixups:   map[string]string{"JEFF33-nfy.asc": FixupNFYTPID},
				},
			},
		},
		"endfb": {
			"7.1": {
				{Sub: "neutrons", BaseURL: endf71Tapes, Archives: names([]string{"ENDF-B-VII.1-neutrons.zip"})},
				{Sub: "decay", BaseURL: endf71Tapes, Archives: names([]string{"ENDF-B-VII.1-decay.zip"})},
				{Sub: "nfy", BaseURL: endf71Tapes, Archives: names([]string{"ENDF-B-VII.1-nfy.zip"})},
			},
			"8.0": {
				{Sub: "neutrons", BaseURL: endf80Tapes, Archives: names([]string{"ENDF-B-VIII.0_neutrons.zip"})},
				{Sub: "decay", BaseURL: endf80Tapes, Archives: names([]string{"ENDF-B-VIII.0_decay.zip"})},
				{Sub: "nfy", BaseURL: endf80Tapes, Archives: names([]string{"ENDF-B-VIII.0_nfy.zip"})},
			},
		},
	}
	return c
}

func fendl(version, neutronURL, neutronZip, neutronGlob, photonURL, photonZip, photonGlob string, photonRecursive bool, compMB, uncompMB int, fixups map[string]string) Release {
	return Release{
		Library: "fendl",
		Version: version,
		FileSets: []FileSet{
			{
				Particle:        domain.ParticleNeutron,
				Format:          domain.FormatACE,
				BaseURL:         neutronURL,
				Archives:        names([]string{neutronZip}),
				Glob:            neutronGlob,
				ExcludeSuffixes: []string{"_", ".xsd"},
				Fixups:          fixups,
				CompressedMB:    compMB,
				UncompressedMB:  uncompMB,
			},
			{
				Particle:       domain.ParticlePhoton,
				Format:         domain.FormatENDF,
				BaseURL:        photonURL,
				Archives:       names([]string{photonZip}),
				Glob:           photonGlob,
				Recursive:      photonRecursive,
				CompressedMB:   4,
				UncompressedMB: 33,
			},
		},
	}
}

func tendl(version, archive, glob string, compMB, uncompMB int) Release {
	return Release{
		Library: "tendl",
		Version: version,
		FileSets: []FileSet{{
			Particle:       domain.ParticleNeutron,
			Format:         domain.FormatACE,
			BaseURL:        fmt.Sprintf("https://tendl.web.psi.ch/tendl_%s/tar_files/", version),
			Archives:       names([]string{archive}),
			Glob:           glob,
			CompressedMB:   compMB,
			UncompressedMB: uncompMB,
		}},
	}
}
