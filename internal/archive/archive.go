// Package archive unpacks uploaded ZIP files and discovers the PDFs inside.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMalformedZip = errors.New("malformed zip archive")
	ErrTooLarge     = errors.New("zip archive expands beyond the allowed size")
)

// DefaultMaxBytes caps the total uncompressed size of one archive.
const DefaultMaxBytes int64 = 1 << 30

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// IsZip reports whether name has a .zip extension, ignoring case.
func IsZip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// Extractor unpacks ZIP archives into a directory.
type Extractor struct {
	MaxBytes int64
}

// NewExtractor returns an extractor with the default size cap.
func NewExtractor() *Extractor {
	return &Extractor{MaxBytes: DefaultMaxBytes}
}

// Extract unpacks src into dest. Archives that cannot be read or contain
// entries escaping dest fail with ErrMalformedZip.
func (e *Extractor) Extract(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedZip, err)
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	limit := e.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	var written int64
	for _, f := range r.File {
		target, err := entryPath(root, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
			continue
		}
		n, err := writeEntry(f, target, limit-written)
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

func entryPath(root, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes extraction root", ErrMalformedZip, name)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string, remaining int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return 0, err
	}
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrMalformedZip, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, remaining+1))
	if err != nil {
		return n, fmt.Errorf("%w: read %s: %v", ErrMalformedZip, f.Name, err)
	}
	if n > remaining {
		return n, ErrTooLarge
	}
	return n, nil
}

// DiscoverPDFs walks root recursively and returns every .pdf file in lexical
// walk order. macOS resource-fork folders are skipped.
func DiscoverPDFs(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsPDF(d.Name()) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
