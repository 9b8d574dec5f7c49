package ai

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/sieve/internal/embed"
)

// maxConcurrentChunks bounds in-flight embedding calls.
const maxConcurrentChunks = 4

// batchEmbed embeds all texts in chunks of at most chunkSize, issuing
// chunk calls concurrently and reassembling results by original index.
// Any chunk failure fails the whole pass; partial results are discarded.
func batchEmbed(ctx context.Context, emb embed.Embedder, texts []string, chunkSize int) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if chunkSize <= 0 {
		chunkSize = 512
	}

	vectors := make([][]float64, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChunks)

	for start := 0; start < len(texts); start += chunkSize {
		end := start + chunkSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			chunk, err := emb.Embed(ctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunk [%d:%d]: %w", start, end, err)
			}
			if len(chunk) != end-start {
				return fmt.Errorf("embed chunk [%d:%d]: got %d vectors for %d texts",
					start, end, len(chunk), end-start)
			}
			copy(vectors[start:end], chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
