package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codedoc/internal/charset"
	"codedoc/internal/chunker"
	"codedoc/internal/walker"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the directory or file to ingest is missing.
var ErrNotFound = errors.New("not found")

// DefaultExtensions are the file types ingested unless configured otherwise.
var DefaultExtensions = []string{
	".py", ".pyi", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts",
	".java", ".cpp", ".c", ".h", ".go", ".rs", ".rb", ".php", ".swift", ".kt",
	".scala", ".json", ".yaml", ".yml", ".xml", ".html", ".css", ".md", ".txt",
	".sh", ".bash",
}

// DefaultIgnoreDirs are directory names skipped with their descendants.
var DefaultIgnoreDirs = []string{
	"__pycache__", ".git", "node_modules", ".venv", "venv", "dist", "build",
	".pytest_cache", "htmlcov",
}

// Options configures an Ingestor.
type Options struct {
	Extensions  []string
	IgnoreDirs  []string
	MaxFileSize int64
}

// Ingestor turns files on disk into chunks and a cross-reference index.
type Ingestor struct {
	chunker *chunker.Chunker
	opts    Options
}

// New creates an Ingestor. Empty option lists take the defaults.
func New(c *chunker.Chunker, opts Options) *Ingestor {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.IgnoreDirs == nil {
		opts.IgnoreDirs = DefaultIgnoreDirs
	}
	exts := make([]string, len(opts.Extensions))
	for i, ext := range opts.Extensions {
		exts[i] = normalizeExt(ext)
	}
	opts.Extensions = exts
	return &Ingestor{chunker: c, opts: opts}
}

type document struct {
	path     string
	text     string
	fileType string
}

// IngestDirectory chunks every supported file below root.
func (in *Ingestor) IngestDirectory(ctx context.Context, root string) (*Result, error) {
	files, err := walker.Walk(walker.Config{
		Root:        root,
		Extensions:  in.opts.Extensions,
		IgnoreDirs:  in.opts.IgnoreDirs,
		MaxFileSize: in.opts.MaxFileSize,
	})
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, walker.ErrNotDirectory) {
		return nil, fmt.Errorf("directory %s: %w", root, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	docs := make([]document, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readDocument(f.Path, f.Ext)
		if err != nil {
			log.Error().Err(err).Str("file", f.Path).Msg("error reading file")
			continue
		}
		docs = append(docs, doc)
	}

	res := newResult()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.add(in.chunker.Chunk(doc.path, doc.text, doc.fileType)...)
	}
	res.FilesIngested = len(docs)

	fns, classes := res.Index.Len()
	log.Info().
		Str("path", root).
		Int("files", res.FilesIngested).
		Int("chunks", len(res.Chunks)).
		Int("functions", fns).
		Int("classes", classes).
		Msg("ingested directory")
	return res, nil
}

// IngestFile chunks a single file regardless of its extension.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("file %s: %w", path, ErrNotFound)
	}

	doc, err := readDocument(path, normalizeExt(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}

	res := newResult()
	res.add(in.chunker.Chunk(doc.path, doc.text, doc.fileType)...)
	res.FilesIngested = 1
	log.Info().Str("file", path).Int("chunks", len(res.Chunks)).Msg("ingested file")
	return res, nil
}

func readDocument(path, fileType string) (document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", path, err)
	}
	text, enc := charset.Decode(raw)
	if enc != charset.UTF8 {
		log.Debug().Str("file", path).Str("encoding", enc).Msg("decoded non-utf8 file")
	}
	return document{path: path, text: text, fileType: fileType}, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
