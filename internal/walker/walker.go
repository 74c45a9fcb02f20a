package walker

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"
)

// IgnoreFileName holds extra ignore patterns at the root of a walked tree.
const IgnoreFileName = ".codedocignore"

// DefaultMaxFileSize is the largest file considered (1 MB).
const DefaultMaxFileSize = 1 << 20

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string
	RelPath string
	Ext     string
	Size    int64
}

// Config controls a walk.
type Config struct {
	Root string
	// Extensions are lower-cased with a leading dot; empty accepts all.
	Extensions []string
	// IgnoreDirs are directory base names skipped with their descendants.
	IgnoreDirs  []string
	MaxFileSize int64
}

// Walk traverses the tree rooted at cfg.Root and returns the matching
// files sorted by relative path.
func Walk(cfg Config) ([]FileInfo, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", cfg.Root, ErrNotDirectory)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	allowed := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		allowed[strings.ToLower(ext)] = true
	}
	ignoreNames := make(map[string]bool, len(cfg.IgnoreDirs))
	for _, d := range cfg.IgnoreDirs {
		ignoreNames[d] = true
	}
	patterns := loadIgnorePatterns(cfg.Root)

	var files []FileInfo
	err = godirwalk.Walk(cfg.Root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(cfg.Root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if rel == "." {
				return nil
			}

			if de.IsDir() {
				if ignoreNames[de.Name()] || matchesIgnore(de.Name(), rel, patterns) {
					return godirwalk.SkipThis
				}
				return nil
			}
			if de.IsSymlink() || !de.IsRegular() {
				return nil
			}
			if matchesIgnore(de.Name(), rel, patterns) {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if len(allowed) > 0 && !allowed[ext] {
				return nil
			}

			st, err := os.Lstat(path)
			if err != nil {
				return err
			}
			if st.Size() > maxSize {
				log.Debug().Str("path", rel).Int64("size", st.Size()).Msg("skipping file by size")
				return nil
			}
			files = append(files, FileInfo{Path: path, RelPath: rel, Ext: ext, Size: st.Size()})
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			log.Warn().Err(err).Str("path", path).Msg("error walking path")
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// loadIgnorePatterns reads the ignore file from the root, if present.
func loadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !doublestar.ValidatePattern(line) {
			log.Warn().Str("pattern", line).Msg("ignoring invalid pattern")
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	return patterns
}

// matchesIgnore checks a base name or slash-separated relative path against
// the ignore patterns.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if name == p {
			return true
		}
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
