// Package archive extracts uploaded zip archives.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for entries that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// ExtractZip extracts the zip file at src into dest and returns the number
// of files written. Symlink entries are skipped. Insecure names are
// rejected by extract with ErrUnsafePath.
func ExtractZip(src, dest string) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return 0, fmt.Errorf("open zip %s: %w", src, err)
	}
	defer r.Close()
	return extract(&r.Reader, dest)
}

// ExtractZipReader extracts a zip read from ra into dest.
func ExtractZipReader(ra io.ReaderAt, size int64, dest string) (int, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return 0, fmt.Errorf("read zip: %w", err)
	}
	return extract(r, dest)
}

func extract(r *zip.Reader, dest string) (int, error) {
	dest, err := filepath.Abs(dest)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, err
	}

	n := 0
	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return n, err
		}
		mode := f.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			continue
		case f.FileInfo().IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, err
			}
			continue
		}
		if err := writeFile(f, target); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}
