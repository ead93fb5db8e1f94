// Package archive extracts the compressed files nuclear data releases ship
// in: zip, tar, tar.gz/tgz, tar.bz2 and single gzipped files.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/nucdata/nucdata/internal/domain"
)

// Supported reports whether Extract recognizes the file's extension. Plain
// data tapes (for example .asc) are not archives and are used as downloaded.
func Supported(name string) bool {
	name = strings.ToLower(name)
	for _, suffix := range []string{".zip", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar", ".gz"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Extract unpacks the archive at src into dir, creating dir if needed. The
// format is chosen by file extension. Entries escaping dir are rejected.
func Extract(src, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	name := strings.ToLower(src)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(src, dir)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return extractTar(src, dir, compressionGzip)
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return extractTar(src, dir, compressionBzip2)
	case strings.HasSuffix(name, ".tar"):
		return extractTar(src, dir, compressionNone)
	case strings.HasSuffix(name, ".gz"):
		return extractGzipFile(src, dir)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedArchive, filepath.Base(src))
	}
}

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionBzip2
)

// securePath joins name under dir, rejecting traversal outside dir.
func securePath(dir, name string) (string, error) {
	cleaned := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(cleaned, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return cleaned, nil
}

func extractZip(src, dir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedArchive, filepath.Base(src), err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := securePath(dir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTar(src, dir string, comp compression) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch comp {
	case compressionGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedArchive, filepath.Base(src), err)
		}
		defer gz.Close()
		reader = gz
	case compressionBzip2:
		reader = bzip2.NewReader(f)
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedArchive, filepath.Base(src), err)
		}

		target, err := securePath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeFile(target, tr); err != nil {
				return err
			}
		}
	}
}

// extractGzipFile decompresses a standalone .gz file (not a tarball) into
// dir under its own name minus the .gz suffix.
func extractGzipFile(src, dir string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedArchive, filepath.Base(src), err)
	}
	defer gz.Close()

	name := strings.TrimSuffix(filepath.Base(src), ".gz")
	target, err := securePath(dir, name)
	if err != nil {
		return err
	}
	return writeFile(target, gz)
}

func writeFile(target string, r io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	return out.Sync()
}
