package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nucdata/nucdata/internal/domain"
)

// Record dump filenames the external parser writes into its output
// directory.
const (
	DecayDumpName   = "decay.json"
	NeutronDumpName = "neutrons.json"
	YieldDumpName   = "nfy.json"
)

// JSONSource reads evaluation record dumps from a directory. The dumps are
// JSON arrays produced by the external ENDF parser, one file per
// sub-library.
type JSONSource struct {
	dir string
}

// NewJSONSource returns a source reading record dumps from dir.
func NewJSONSource(dir string) (*JSONSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &JSONSource{dir: dir}, nil
}

func (s *JSONSource) Decay(ctx context.Context) ([]domain.DecayRecord, error) {
	var recs []domain.DecayRecord
	if err := s.read(ctx, DecayDumpName, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *JSONSource) Neutron(ctx context.Context) ([]domain.NeutronRecord, error) {
	var recs []domain.NeutronRecord
	if err := s.read(ctx, NeutronDumpName, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Yields returns the fission yield records. A missing dump is not an
// error: some libraries ship no yield sub-library.
func (s *JSONSource) Yields(ctx context.Context) ([]domain.YieldRecord, error) {
	var recs []domain.YieldRecord
	err := s.read(ctx, YieldDumpName, &recs)
	if err != nil && os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *JSONSource) read(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}
	return nil
}
