package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
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
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "repo.zip")
	require.NoError(t, os.WriteFile(src, buildZip(t, map[string]string{
		"proj/a.py":     "def helper():\n    pass\n",
		"proj/pkg/b.py": "import a\n",
		"proj/empty/":   "",
	}), 0o644))

	dest := t.TempDir()
	n, err := ExtractZip(src, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dest, "proj", "pkg", "b.py"))
	require.NoError(t, err)
	assert.Equal(t, "import a\n", string(data))
	assert.DirExists(t, filepath.Join(dest, "proj", "empty"))
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	data := buildZip(t, map[string]string{"../evil.py": "x"})
	dest := filepath.Join(t.TempDir(), "out")

	_, err := ExtractZipReader(bytes.NewReader(data), int64(len(data)), dest)
	assert.ErrorIs(t, err, ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil.py"))
}

func TestExtractZipInvalid(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(src, []byte("not a zip"), 0o644))
	_, err := ExtractZip(src, t.TempDir())
	assert.Error(t, err)
}
