package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codedoc/internal/chunker"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

const defaultSQLiteDimensions = 768

// SQLiteStore implements VectorStore backed by SQLite + sqlite-vec.
type SQLiteStore struct {
	db   *sql.DB
	dims int
}

// OpenSQLite creates or opens a SQLite database at the given path and
// initializes the schema for vectors of dims dimensions.
func OpenSQLite(dbPath string, dims int) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite store needs a database path")
	}
	if dims <= 0 {
		dims = defaultSQLiteDimensions
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db, dims); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, dims: dims}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if err := checkLengths(chunks, embeddings); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, c := range chunks {
		key := ID(c)
		var existing int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM chunks WHERE chunk_key = ?", key).Scan(&existing)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, "DELETE FROM vec_chunks WHERE chunk_id = ?", existing); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE id = ?", existing); err != nil {
				return err
			}
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		meta, err := json.Marshal(FlattenMetadata(c))
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", key, err)
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO chunks (chunk_key, file_path, chunk_index, content, metadata) VALUES (?, ?, ?, ?, ?)",
			key, c.FilePath, c.ChunkIndex, c.Content, string(meta),
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", key, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)", id, blob); err != nil {
			return fmt.Errorf("insert embedding for %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Query(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}
	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		WITH knn AS (
			SELECT chunk_id, distance
			FROM vec_chunks
			WHERE embedding MATCH ? AND k = ?
		)
		SELECT c.content, c.metadata, knn.distance
		FROM knn
		JOIN chunks c ON c.id = knn.chunk_id
		ORDER BY knn.distance
	`, blob, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var content, meta string
		var distance float64
		if err := rows.Scan(&content, &meta, &distance); err != nil {
			return nil, err
		}
		md := map[string]string{}
		if err := json.Unmarshal([]byte(meta), &md); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		results = append(results, Result{Chunk: ChunkFromMetadata(content, md), Score: 1 - distance})
	}
	return results, rows.Err()
}

func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// DeleteAll removes every chunk and recreates the vector table, which also
// picks up a changed embedding size.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS vec_chunks"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(vecDDL, s.dims)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
