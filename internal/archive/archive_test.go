package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("a.pdf"))
	assert.True(t, IsPDF("A.PDF"))
	assert.False(t, IsPDF("a.pdf.txt"))
	assert.True(t, IsZip("lote.ZIP"))
	assert.False(t, IsZip("lote.pdf"))
}

func TestExtractAndDiscover(t *testing.T) {
	src := writeZip(t, map[string]string{
		"lote/AY-0001 A.pdf":          "%PDF-1.4",
		"lote/sub/AY-0002 B.PDF":      "%PDF-1.4",
		"lote/sub/deeper/AY-0003.pdf": "%PDF-1.4",
		"lote/notes.txt":              "ignore me",
		"__MACOSX/lote/._AY-0001.pdf": "junk",
	})
	dest := t.TempDir()

	require.NoError(t, NewExtractor().Extract(src, dest))

	pdfs, err := DiscoverPDFs(dest)
	require.NoError(t, err)

	var names []string
	for _, p := range pdfs {
		rel, err := filepath.Rel(dest, p)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{
		"lote/AY-0001 A.pdf",
		"lote/sub/AY-0002 B.PDF",
		"lote/sub/deeper/AY-0003.pdf",
	}, names)
}

func TestExtract_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK not really"), 0o600))

	err := NewExtractor().Extract(path, t.TempDir())
	assert.ErrorIs(t, err, ErrMalformedZip)
}

func TestExtract_ZipSlip(t *testing.T) {
	src := writeZip(t, map[string]string{"../../evil.pdf": "x"})
	err := NewExtractor().Extract(src, t.TempDir())
	assert.ErrorIs(t, err, ErrMalformedZip)
}

func TestExtract_TooLarge(t *testing.T) {
	src := writeZip(t, map[string]string{"big.pdf": "0123456789"})
	err := (&Extractor{MaxBytes: 5}).Extract(src, t.TempDir())
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDiscoverPDFs_Empty(t *testing.T) {
	pdfs, err := DiscoverPDFs(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, pdfs)
}
