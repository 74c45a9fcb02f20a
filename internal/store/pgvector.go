package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"codedoc/internal/chunker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

const defaultPGDimensions = 768

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PGStore implements VectorStore on Postgres with the pgvector extension.
type PGStore struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPG connects to Postgres and migrates the chunk table.
func OpenPG(ctx context.Context, dsn, table string, dims int) (*PGStore, error) {
	if dsn == "" {
		return nil, errors.New("pgvector store needs a DSN")
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if dims <= 0 {
		dims = defaultPGDimensions
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PGStore{pool: pool, table: table}
	if err := s.Migrate(ctx, dims); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Migrate creates the extension and tables if missing.
func (s *PGStore) Migrate(ctx context.Context, dims int) error {
	q := `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS %[1]s (
  id          TEXT PRIMARY KEY,
  file_path   TEXT NOT NULL,
  chunk_index INT NOT NULL,
  content     TEXT NOT NULL,
  metadata    JSONB NOT NULL DEFAULT '{}',
  embedding   vector(%[2]d) NOT NULL
);

CREATE INDEX IF NOT EXISTS %[1]s_file_path_idx ON %[1]s (file_path);

CREATE TABLE IF NOT EXISTS %[1]s_meta (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := s.pool.Exec(ctx, fmt.Sprintf(q, s.table, dims))
	return err
}

func (s *PGStore) Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if err := checkLengths(chunks, embeddings); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	q := fmt.Sprintf(`
INSERT INTO %s (id, file_path, chunk_index, content, metadata, embedding)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  file_path = EXCLUDED.file_path,
  chunk_index = EXCLUDED.chunk_index,
  content = EXCLUDED.content,
  metadata = EXCLUDED.metadata,
  embedding = EXCLUDED.embedding`, s.table)

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(q, ID(c), c.FilePath, c.ChunkIndex, c.Content, FlattenMetadata(c), pgvector.NewVector(embeddings[i]))
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, c := range chunks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", ID(c), err)
		}
	}
	return br.Close()
}

func (s *PGStore) Query(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`
SELECT content, metadata, 1 - (embedding <=> $1) AS score
FROM %s
ORDER BY embedding <=> $1
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var content string
		var md map[string]string
		var score float64
		if err := rows.Scan(&content, &md, &score); err != nil {
			return nil, err
		}
		results = append(results, Result{Chunk: ChunkFromMetadata(content, md), Score: score})
	}
	return results, rows.Err()
}

func (s *PGStore) DeleteAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", s.table))
	return err
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n)
	return n, err
}

func (s *PGStore) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT value FROM %s_meta WHERE key = $1", s.table), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *PGStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s_meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		s.table), key, value)
	return err
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
