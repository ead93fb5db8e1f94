package domain

import "context"

// Converter turns one evaluated data file (ACE or ENDF) into one or more
// HDF5 files under outDir. The heavy lifting (format parsing, physics,
// HDF5 serialization) lives in an external engine; implementations only
// drive it. Returned paths are the produced HDF5 files.
type Converter interface {
	// Convert processes a single source file and returns produced file paths
	Convert(ctx context.Context, src string, outDir string, opts ConvertOptions) ([]string, error)
	// Check verifies the external engine is usable
	Check(ctx context.Context) error
}

// ConvertOptions carries per-run conversion parameters.
type ConvertOptions struct {
	Format       SourceFormat
	Particle     Particle
	LibVer       string    // HDF5 versioning: "earliest" or "latest"
	Temperatures []float64 // Kelvin, ENDF processing only
}

// EvaluationSource supplies the parsed evaluation records a depletion chain
// is built from. The default implementation reads JSON record dumps emitted
// by the external parser; tests construct records directly.
type EvaluationSource interface {
	Decay(ctx context.Context) ([]DecayRecord, error)
	Neutron(ctx context.Context) ([]NeutronRecord, error)
	Yields(ctx context.Context) ([]YieldRecord, error)
}

// Ledger records completed downloads so re-runs can skip files that are
// already present with matching size and checksum.
type Ledger interface {
	// Lookup returns the recorded size and checksum for a URL
	Lookup(ctx context.Context, url string) (size int64, checksum string, ok bool)
	// Record stores the size and checksum for a URL
	Record(ctx context.Context, url string, size int64, checksum string) error
	// Close releases ledger resources
	Close() error
}
