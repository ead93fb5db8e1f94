package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucdata/nucdata/internal/domain"
	"github.com/nucdata/nucdata/internal/library"
	"github.com/nucdata/nucdata/internal/release"
)

// fakeConverter turns each source file into one fake HDF5 file named after
// the source, recording what it was asked to do.
type fakeConverter struct {
	mu    sync.Mutex
	calls []string
	opts  []domain.ConvertOptions
	fail  map[string]bool
}

func (f *fakeConverter) Check(ctx context.Context) error { return nil }

func (f *fakeConverter) Convert(ctx context.Context, src, outDir string, opts domain.ConvertOptions) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(src))
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	if f.fail[filepath.Base(src)] {
		return nil, &domain.ConversionError{File: src, Err: domain.ErrConversionFailed}
	}

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".h5"
	out := filepath.Join(outDir, name)
	if err := os.WriteFile(out, []byte("h5"), 0644); err != nil {
		return nil, err
	}
	return []string{out}, nil
}

// testRelease builds a single-fileset ACE release whose extraction
// directory is pre-populated, so the pipeline runs with Download and
// Extract off.
func testRelease(t *testing.T, workDir string, files []string, fixups map[string]string) release.Release {
	t.Helper()
	rel := release.Release{
		Library: "testlib",
		Version: "1.0",
		FileSets: []release.FileSet{{
			Particle:        domain.ParticleNeutron,
			Format:          domain.FormatACE,
			BaseURL:         "https://example.org/testlib/",
			Archives:        []release.Archive{{Name: "testlib.zip"}},
			Glob:            "ace/*",
			ExcludeSuffixes: []string{"_", ".xsd"},
			Fixups:          fixups,
		}},
	}
	extractDir := filepath.Join(workDir, "testlib-1.0-ace", "ace")
	require.NoError(t, os.MkdirAll(extractDir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(extractDir, f), []byte("ace data"), 0644))
	}
	return rel
}

func TestPipeline_Run(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, []string{"1H_001.ace", "92U_235.ace", "legacy.ace_", "schema.xsd"}, nil)
	conv := &fakeConverter{}

	p, err := New(Options{
		Release:     rel,
		WorkDir:     workDir,
		Converter:   conv,
		Concurrency: 2,
		LibVer:      "earliest",
	})
	require.NoError(t, err)

	lib, err := p.Run(context.Background())
	require.NoError(t, err)

	// excluded suffixes never reach the converter
	assert.ElementsMatch(t, []string{"1H_001.ace", "92U_235.ace"}, conv.calls)
	for _, o := range conv.opts {
		assert.Equal(t, domain.FormatACE, o.Format)
		assert.Equal(t, "earliest", o.LibVer)
	}

	require.Equal(t, 2, lib.Len())
	// registration order follows sorted source order regardless of
	// worker scheduling
	assert.Equal(t, []string{"1H_001"}, lib.Entries[0].Materials)
	assert.Equal(t, []string{"92U_235"}, lib.Entries[1].Materials)
	assert.Equal(t, domain.KindNeutron, lib.Entries[0].Kind)

	// manifest written into the destination
	manifest := filepath.Join(workDir, "testlib-1.0-hdf5", library.DefaultManifestName)
	loaded, err := library.Load(manifest)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestExcluded(t *testing.T) {
	suffixes := []string{"_", ".xsd"}
	assert.True(t, excluded("28Ni_058.ace_", suffixes))
	assert.True(t, excluded("fendl.xsd", suffixes))
	assert.False(t, excluded("28Ni_058.ace", suffixes))
	assert.False(t, excluded("anything.ace", nil))
}

func TestPipeline_FixupSkip(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, []string{"19K_039.ace"}, map[string]string{
		"19K_039.ace": release.FixupInfXSS,
	})
	extractDir := filepath.Join(workDir, "testlib-1.0-ace", "ace")
	require.NoError(t, os.WriteFile(filepath.Join(extractDir, "19K_039.ace"), []byte("1.0 Inf 2.0"), 0644))

	conv := &fakeConverter{}
	p, err := New(Options{Release: rel, WorkDir: workDir, Converter: conv})
	require.NoError(t, err)

	lib, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, conv.calls)
	assert.Equal(t, 0, lib.Len())
	require.Len(t, p.Warnings(), 1)
	assert.Contains(t, p.Warnings()[0], "Inf")
}

func TestPipeline_ConversionFailureAborts(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, []string{"1H_001.ace", "92U_235.ace"}, nil)
	conv := &fakeConverter{fail: map[string]bool{"92U_235.ace": true}}

	p, err := New(Options{Release: rel, WorkDir: workDir, Converter: conv})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversionFailed)

	// no manifest on failure
	_, statErr := os.Stat(filepath.Join(workDir, "testlib-1.0-hdf5", library.DefaultManifestName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_NoDataFiles(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, nil, nil)

	p, err := New(Options{Release: rel, WorkDir: workDir, Converter: &fakeConverter{}})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPipeline_ParticleSelection(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, []string{"1H_001.ace"}, nil)

	p, err := New(Options{
		Release:   rel,
		WorkDir:   workDir,
		Particles: []domain.Particle{domain.ParticlePhoton},
		Converter: &fakeConverter{},
	})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestPipeline_CleanupRemovesExtraction(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, []string{"1H_001.ace"}, nil)

	p, err := New(Options{Release: rel, WorkDir: workDir, Converter: &fakeConverter{}, Cleanup: true})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(workDir, "testlib-1.0-ace"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_ProgressSuppressed(t *testing.T) {
	workDir := t.TempDir()
	rel := testRelease(t, workDir, []string{"1H_001.ace"}, nil)

	p, err := New(Options{Release: rel, WorkDir: workDir, Converter: &fakeConverter{}})
	require.NoError(t, err)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	oldStdout, oldStderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = w, w
	_, runErr := p.Run(context.Background())
	w.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr
	out, _ := io.ReadAll(r)

	require.NoError(t, runErr)
	assert.NotContains(t, string(out), "Converting")
}

func TestPipeline_ManyFilesConcurrent(t *testing.T) {
	workDir := t.TempDir()
	var files []string
	for i := 0; i < 40; i++ {
		files = append(files, fmt.Sprintf("file_%03d.ace", i))
	}
	rel := testRelease(t, workDir, files, nil)
	conv := &fakeConverter{}

	p, err := New(Options{Release: rel, WorkDir: workDir, Converter: conv, Concurrency: 8})
	require.NoError(t, err)

	lib, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, lib.Len())
	for i, e := range lib.Entries {
		assert.Equal(t, fmt.Sprintf("file_%03d", i), e.Materials[0])
	}
}
