package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codedoc/internal/chunker"

	"github.com/philippgille/chromem-go"
)

var errNoEmbedding = errors.New("chromem store requires precomputed embeddings")

// ChromemStore keeps vectors in an embedded chromem-go database, in memory
// or persisted to a directory.
type ChromemStore struct {
	db   *chromem.DB
	name string

	mu         sync.RWMutex
	collection *chromem.Collection
	meta       *chromem.Collection
}

// OpenChromem opens a chromem database. An empty path keeps it in memory.
func OpenChromem(path, collection string) (*ChromemStore, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db %s: %w", path, err)
		}
	}
	meta, err := db.GetOrCreateCollection(collection+"_meta", nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("create collection %s_meta: %w", collection, err)
	}
	s := &ChromemStore{db: db, name: collection, meta: meta}
	if err := s.reset(false); err != nil {
		return nil, err
	}
	return s, nil
}

// noEmbed is the collection's embedding function; every document and
// query arrives with its vector.
func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

func (s *ChromemStore) reset(drop bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if drop {
		if err := s.db.DeleteCollection(s.name); err != nil {
			return fmt.Errorf("delete collection %s: %w", s.name, err)
		}
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.name, err)
	}
	s.collection = c
	return nil
}

func (s *ChromemStore) current() *chromem.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection
}

func (s *ChromemStore) Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if err := checkLengths(chunks, embeddings); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        ID(c),
			Content:   c.Content,
			Metadata:  FlattenMetadata(c),
			Embedding: embeddings[i],
		}
	}
	if err := s.current().AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	c := s.current()
	n := min(topK, c.Count())
	if n <= 0 {
		return nil, nil
	}
	res, err := c.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]Result, len(res))
	for i, r := range res {
		out[i] = Result{
			Chunk: ChunkFromMetadata(r.Content, r.Metadata),
			Score: float64(r.Similarity),
		}
	}
	return out, nil
}

func (s *ChromemStore) DeleteAll(context.Context) error {
	return s.reset(true)
}

func (s *ChromemStore) Count(context.Context) (int, error) {
	return s.current().Count(), nil
}

// metaVector is the placeholder embedding of metadata documents.
var metaVector = []float32{1}

// GetMeta returns a metadata value, or "" if the key is not set.
func (s *ChromemStore) GetMeta(ctx context.Context, key string) (string, error) {
	doc, err := s.meta.GetByID(ctx, key)
	if err != nil {
		return "", nil
	}
	return doc.Content, nil
}

// SetMeta stores a metadata value. Metadata survives DeleteAll.
func (s *ChromemStore) SetMeta(ctx context.Context, key, value string) error {
	if err := s.meta.AddDocument(ctx, chromem.Document{ID: key, Content: value, Embedding: metaVector}); err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; persistent databases write through on every change.
func (s *ChromemStore) Close() error { return nil }
