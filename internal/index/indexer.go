package index

import (
	"context"
	"fmt"
	"os"
	"sync"

	"codedoc/internal/chunker"
	"codedoc/internal/chunker/languages"
	"codedoc/internal/embedder"
	"codedoc/internal/ingest"
	"codedoc/internal/llm"
	"codedoc/internal/rag"
	"codedoc/internal/store"

	"github.com/rs/zerolog/log"
)

// Metadata keys kept in stores that implement store.MetaStore.
const (
	MetaEmbeddingModel = "embedding_model"
	MetaIngestRoot     = "ingest_root"
)

// Config holds the indexer configuration.
type Config struct {
	Chunker          chunker.Options
	Ingest           ingest.Options
	TopK             int
	MaxContextTokens int
	Workers          int
	BatchSize        int
	// ResetOnIngest clears the store before every directory ingest so the
	// vectors and the cross-reference index describe the same files.
	ResetOnIngest bool
}

// Indexer is the public API for indexing and querying codebases. It owns
// the embedding, storage and answering backends for the process lifetime.
type Indexer struct {
	cfg      Config
	store    store.VectorStore
	embedder embedder.Embedder
	llm      llm.Completer
	ingestor *ingest.Ingestor

	ingestMu sync.Mutex

	mu   sync.RWMutex
	last *ingest.Result
}

// Stats reports indexing results.
type Stats struct {
	FilesIngested int
	Chunks        int
}

// Answer is a generated answer with the chunks it was grounded on.
type Answer struct {
	Text    string
	Context []chunker.Chunk
	Results []store.Result
}

// New creates an Indexer over already constructed backends.
func New(cfg Config, st store.VectorStore, emb embedder.Embedder, c llm.Completer) *Indexer {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = 2048
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = embedBatchSize
	}
	ch := chunker.New(languages.Default(), cfg.Chunker)
	return &Indexer{
		cfg:      cfg,
		store:    st,
		embedder: emb,
		llm:      c,
		ingestor: ingest.New(ch, cfg.Ingest),
	}
}

// Index ingests the directory at root, embeds its chunks and stores them.
// The new cross-reference index is used by later calls to Ask.
func (idx *Indexer) Index(ctx context.Context, root string, onProgress ProgressFunc) (*Stats, error) {
	return idx.run(ctx, root, idx.cfg.ResetOnIngest, onProgress, idx.ingestor.IngestDirectory)
}

// IndexFile ingests a single file and adds it to the existing index.
func (idx *Indexer) IndexFile(ctx context.Context, path string, onProgress ProgressFunc) (*Stats, error) {
	return idx.run(ctx, path, false, onProgress, idx.ingestor.IngestFile)
}

type ingestFunc func(ctx context.Context, path string) (*ingest.Result, error)

func (idx *Indexer) run(ctx context.Context, path string, reset bool, onProgress ProgressFunc, ingestFn ingestFunc) (*Stats, error) {
	idx.ingestMu.Lock()
	defer idx.ingestMu.Unlock()

	progress(onProgress, "Reading files...", 0, 0)
	res, err := ingestFn(ctx, path)
	if err != nil {
		return nil, err
	}

	modelChanged, err := idx.modelChanged(ctx)
	if err != nil {
		return nil, err
	}
	if reset || modelChanged {
		if err := idx.store.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("delete all chunks: %w", err)
		}
		idx.forget(ctx)
	}

	if err := idx.embedAndStore(ctx, res.Chunks, onProgress); err != nil {
		return nil, err
	}

	if ms, ok := idx.store.(store.MetaStore); ok {
		if err := ms.SetMeta(ctx, MetaEmbeddingModel, idx.embedder.Name()); err != nil {
			return nil, fmt.Errorf("set meta: %w", err)
		}
		if reset {
			if err := ms.SetMeta(ctx, MetaIngestRoot, path); err != nil {
				return nil, fmt.Errorf("set meta: %w", err)
			}
		}
	}

	idx.mu.Lock()
	if reset || modelChanged {
		idx.last = res
	} else {
		idx.last = ingest.Merge(idx.last, res)
	}
	idx.mu.Unlock()

	return &Stats{FilesIngested: res.FilesIngested, Chunks: len(res.Chunks)}, nil
}

// forget drops the cross-reference result and its recorded root once the
// store has been emptied, so a failed run leaves nothing pointing at
// vanished chunks.
func (idx *Indexer) forget(ctx context.Context) {
	idx.mu.Lock()
	idx.last = nil
	idx.mu.Unlock()

	if ms, ok := idx.store.(store.MetaStore); ok {
		if err := ms.SetMeta(ctx, MetaIngestRoot, ""); err != nil {
			log.Warn().Err(err).Msg("could not clear ingest root")
		}
	}
}

// modelChanged reports whether the store holds vectors from another
// embedding model.
func (idx *Indexer) modelChanged(ctx context.Context) (bool, error) {
	ms, ok := idx.store.(store.MetaStore)
	if !ok {
		return false, nil
	}
	lastModel, err := ms.GetMeta(ctx, MetaEmbeddingModel)
	if err != nil {
		return false, fmt.Errorf("get meta: %w", err)
	}
	if lastModel != "" && lastModel != idx.embedder.Name() {
		log.Warn().
			Str("from", lastModel).
			Str("to", idx.embedder.Name()).
			Msg("embedding model changed, re-indexing all files")
		return true, nil
	}
	return false, nil
}

// Search finds the top-k chunks closest to the query.
func (idx *Indexer) Search(ctx context.Context, query string, k int) ([]store.Result, error) {
	if k <= 0 {
		k = idx.cfg.TopK
	}
	embedding, err := embedder.EmbedSingle(ctx, idx.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := idx.store.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	return results, nil
}

// Retrieve returns the expanded, budget-limited context for a question.
func (idx *Indexer) Retrieve(ctx context.Context, question string) ([]chunker.Chunk, []store.Result, error) {
	results, err := idx.Search(ctx, question, idx.cfg.TopK)
	if err != nil {
		return nil, nil, err
	}
	initial := make([]chunker.Chunk, len(results))
	for i, r := range results {
		initial[i] = r.Chunk
	}
	return rag.Expand(initial, idx.Result(ctx), idx.cfg.MaxContextTokens), results, nil
}

// Ask answers a question from the indexed code.
func (idx *Indexer) Ask(ctx context.Context, question string) (*Answer, error) {
	chunks, results, err := idx.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	text, err := idx.llm.Complete(ctx, rag.BuildPrompt(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	log.Debug().Int("context", len(chunks)).Int("retrieved", len(results)).Msg("answered question")
	return &Answer{Text: text, Context: chunks, Results: results}, nil
}

// Result returns the latest ingestion result. A process that did not ingest
// itself rebuilds the cross-reference index from the recorded ingest root;
// nil means expansion is unavailable.
func (idx *Indexer) Result(ctx context.Context) *ingest.Result {
	idx.mu.RLock()
	res := idx.last
	idx.mu.RUnlock()
	if res != nil {
		return res
	}

	ms, ok := idx.store.(store.MetaStore)
	if !ok {
		return nil
	}
	root, err := ms.GetMeta(ctx, MetaIngestRoot)
	if err != nil || root == "" {
		return nil
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil
	}
	res, err = idx.ingestor.IngestDirectory(ctx, root)
	if err != nil {
		log.Warn().Err(err).Str("path", root).Msg("could not rebuild cross-reference index")
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.last == nil {
		idx.last = res
	}
	return idx.last
}

// Count returns the number of stored chunks.
func (idx *Indexer) Count(ctx context.Context) (int, error) {
	return idx.store.Count(ctx)
}

// Close releases resources.
func (idx *Indexer) Close() error {
	return idx.store.Close()
}
