package index

import (
	"context"
	"fmt"
	"runtime"

	"codedoc/internal/chunker"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const embedBatchSize = 32

// ProgressFunc is called as indexing advances. total is 0 while unknown.
type ProgressFunc func(stage string, done, total int)

func progress(fn ProgressFunc, stage string, done, total int) {
	if fn != nil {
		fn(stage, done, total)
	}
}

// embeddedBatch has chunks with their embeddings ready to store.
type embeddedBatch struct {
	chunks     []chunker.Chunk
	embeddings [][]float32
}

// embedAndStore embeds chunks in batches on up to Workers goroutines and
// writes them to the store from a single goroutine.
func (idx *Indexer) embedAndStore(ctx context.Context, chunks []chunker.Chunk, onProgress ProgressFunc) error {
	if len(chunks) == 0 {
		return nil
	}
	workers := idx.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	embeddedCh := make(chan embeddedBatch, workers)
	g, gctx := errgroup.WithContext(ctx)

	// Embed.
	g.Go(func() error {
		defer close(embeddedCh)
		eg, ectx := errgroup.WithContext(gctx)
		eg.SetLimit(workers)
		for start := 0; start < len(chunks); start += idx.cfg.BatchSize {
			if ectx.Err() != nil {
				break
			}
			batch := chunks[start:min(start+idx.cfg.BatchSize, len(chunks))]
			eg.Go(func() error {
				texts := make([]string, len(batch))
				for i, c := range batch {
					texts[i] = c.Content
				}
				embs, err := idx.embedder.Embed(ectx, texts)
				if err != nil {
					log.Error().Err(err).Str("file", batch[0].FilePath).Msg("embed error")
					return fmt.Errorf("embedding failed: %w", err)
				}
				if len(embs) != len(batch) {
					return fmt.Errorf("embedding failed: got %d vectors for %d chunks", len(embs), len(batch))
				}
				select {
				case embeddedCh <- embeddedBatch{chunks: batch, embeddings: embs}:
					return nil
				case <-ectx.Done():
					return ectx.Err()
				}
			})
		}
		return eg.Wait()
	})

	// Store.
	g.Go(func() error {
		stored := 0
		for eb := range embeddedCh {
			if err := idx.store.Add(gctx, eb.chunks, eb.embeddings); err != nil {
				log.Error().Err(err).Str("file", eb.chunks[0].FilePath).Msg("store error")
				return fmt.Errorf("storage failed: %w", err)
			}
			stored += len(eb.chunks)
			progress(onProgress, "Embedding chunks...", stored, len(chunks))
		}
		return nil
	})

	return g.Wait()
}
