package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps each text to a deterministic vector and records how
// many Embed calls it served.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  error
	// vectorFor overrides the default encoding when set.
	vectorFor func(text string) []float64
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if f.vectorFor != nil {
			out[i] = f.vectorFor(text)
			continue
		}
		// Default encoding keyed on text length, distinct enough for
		// reassembly checks.
		out[i] = []float64{float64(len(text)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBatchEmbed_PreservesOrder(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("%0*d", i+1, 0) // lengths 1..10
	}

	emb := &fakeEmbedder{}
	vectors, err := batchEmbed(context.Background(), emb, texts, 3)
	require.NoError(t, err)
	require.Len(t, vectors, 10)

	for i, v := range vectors {
		assert.Equal(t, float64(i+1), v[0], "index %d", i)
	}
}

func TestBatchEmbed_ChunkCount(t *testing.T) {
	texts := make([]string, 1025)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	emb := &fakeEmbedder{}
	_, err := batchEmbed(context.Background(), emb, texts, 512)
	require.NoError(t, err)
	assert.Equal(t, 3, emb.callCount())
}

func TestBatchEmbed_SingleChunk(t *testing.T) {
	emb := &fakeEmbedder{}
	_, err := batchEmbed(context.Background(), emb, []string{"a", "b"}, 512)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.callCount())
}

func TestBatchEmbed_AnyChunkFailureFailsAll(t *testing.T) {
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	emb := &fakeEmbedder{fail: errors.New("provider down")}
	vectors, err := batchEmbed(context.Background(), emb, texts, 5)
	require.Error(t, err)
	assert.Nil(t, vectors)
	assert.Contains(t, err.Error(), "provider down")
}

func TestBatchEmbed_SizeMismatchIsError(t *testing.T) {
	bad := embedFunc(func(ctx context.Context, texts []string) ([][]float64, error) {
		return [][]float64{{1}}, nil
	})
	_, err := batchEmbed(context.Background(), bad, []string{"a", "b"}, 512)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 texts")
}

func TestBatchEmbed_Empty(t *testing.T) {
	emb := &fakeEmbedder{}
	vectors, err := batchEmbed(context.Background(), emb, nil, 512)
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Equal(t, 0, emb.callCount())
}

type embedFunc func(ctx context.Context, texts []string) ([][]float64, error)

func (f embedFunc) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return f(ctx, texts)
}
