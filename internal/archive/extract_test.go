package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucdata/nucdata/internal/domain"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestExtract_Zip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "release.zip")
	writeZip(t, src, map[string]string{
		"ace/1H_001.ace":      "hydrogen",
		"ace/sub/92U_235.ace": "uranium",
	})

	out := filepath.Join(dir, "out")
	require.NoError(t, Extract(src, out))
	assertFileContent(t, filepath.Join(out, "ace", "1H_001.ace"), "hydrogen")
	assertFileContent(t, filepath.Join(out, "ace", "sub", "92U_235.ace"), "uranium")
}

func TestExtract_TarGz(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"release.tar.gz", "release.tgz"} {
		src := filepath.Join(dir, name)
		writeTarGz(t, src, map[string]string{
			"endf6/n_9228.jeff33": "u235 evaluation",
		})

		out := filepath.Join(dir, "out-"+name)
		require.NoError(t, Extract(src, out))
		assertFileContent(t, filepath.Join(out, "endf6", "n_9228.jeff33"), "u235 evaluation")
	}
}

func TestExtract_GzipFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "n_059-Pr-141.dat.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("praseodymium"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(src, buf.Bytes(), 0644))

	out := filepath.Join(dir, "out")
	require.NoError(t, Extract(src, out))
	assertFileContent(t, filepath.Join(out, "n_059-Pr-141.dat"), "praseodymium")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("JEFF33-rdd.zip"))
	assert.True(t, Supported("JEFF33-n.tgz"))
	assert.True(t, Supported("tendl21c.tar.bz2"))
	assert.True(t, Supported("n_059-Pr-141.dat.gz"))
	assert.False(t, Supported("JEFF33-nfy.asc"))
	assert.False(t, Supported("release.rar"))
}

func TestExtract_Unsupported(t *testing.T) {
	src := filepath.Join(t.TempDir(), "release.rar")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	err := Extract(src, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedArchive)
}

func TestExtract_CorruptArchive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "release.zip")
	require.NoError(t, os.WriteFile(src, []byte("not a zip"), 0644))

	err := Extract(src, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedArchive)
}

func TestExtract_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, src, map[string]string{
		"../escape.txt": "outside",
	})

	err := Extract(src, filepath.Join(dir, "out"))
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
