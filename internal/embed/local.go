package embed

import (
	"context"
	"fmt"
	"sync"
)

// LocalEmbedder runs embedding inference against an on-disk ONNX model:
// tokenize, forward pass, attention-masked mean pooling, then an optional
// dense projection. A single session backs all calls; the mutex
// serializes inference so concurrent batch workers stay safe.
type LocalEmbedder struct {
	mu      sync.Mutex
	session *onnxSession
	tok     *tokenizer
	proj    *projection // nil when no projection file is configured
}

// NewLocalEmbedder loads the model, vocabulary, and (when projectionPath
// is non-empty) the projection weights. libraryPath locates the ONNX
// Runtime shared library; empty means next to the model file.
func NewLocalEmbedder(modelPath, vocabPath, projectionPath, libraryPath string) (*LocalEmbedder, error) {
	sess, err := newONNXSession(modelPath, libraryPath)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	tok, err := newTokenizer(vocabPath)
	if err != nil {
		sess.close()
		return nil, fmt.Errorf("embed: %w", err)
	}

	var proj *projection
	if projectionPath != "" {
		proj, err = loadProjection(projectionPath)
		if err != nil {
			sess.close()
			return nil, fmt.Errorf("embed: %w", err)
		}
		if int(sess.hiddenDim) != proj.inDim {
			sess.close()
			return nil, fmt.Errorf("embed: model hidden dim %d != projection input dim %d",
				sess.hiddenDim, proj.inDim)
		}
	}

	return &LocalEmbedder{session: sess, tok: tok, proj: proj}, nil
}

// Dim returns the dimensionality of produced vectors.
func (e *LocalEmbedder) Dim() int {
	if e.proj != nil {
		return e.proj.outDim
	}
	return int(e.session.hiddenDim)
}

// Embed produces one vector per text. The context is checked before the
// forward pass; inference itself is not interruptible.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := e.tok.tokenizeBatch(texts)

	e.mu.Lock()
	hidden, err := e.session.infer(
		batch.inputIDs, batch.attentionMask, batch.tokenTypeIDs,
		batch.batchSize, batch.seqLen,
	)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	pooled := meanPool(hidden, batch.attentionMask, batch.batchSize, batch.seqLen, e.session.hiddenDim)

	dim := e.session.hiddenDim
	results := make([][]float64, batch.batchSize)
	for i := int64(0); i < batch.batchSize; i++ {
		vec := pooled[i*dim : (i+1)*dim]
		if e.proj != nil {
			vec = e.proj.apply(vec)
		}
		out := make([]float64, len(vec))
		for j, v := range vec {
			out[j] = float64(v)
		}
		results[i] = out
	}
	return results, nil
}

// Close releases ONNX Runtime resources.
func (e *LocalEmbedder) Close() error {
	if e.session != nil {
		return e.session.close()
	}
	return nil
}

// meanPool computes attention-mask-weighted mean pooling over the
// sequence dimension. hidden is flat [batchSize * seqLen * dim], mask is
// flat [batchSize * seqLen]; the result is flat [batchSize * dim].
func meanPool(hidden []float32, mask []int64, batchSize, seqLen, dim int64) []float32 {
	out := make([]float32, batchSize*dim)

	for b := int64(0); b < batchSize; b++ {
		maskOff := b * seqLen
		hiddenOff := b * seqLen * dim
		outOff := b * dim

		var count float32
		for s := int64(0); s < seqLen; s++ {
			if mask[maskOff+s] == 1 {
				count++
			}
		}
		if count == 0 {
			continue
		}

		for s := int64(0); s < seqLen; s++ {
			if mask[maskOff+s] != 1 {
				continue
			}
			tokOff := hiddenOff + s*dim
			for d := int64(0); d < dim; d++ {
				out[outOff+d] += hidden[tokOff+d]
			}
		}

		inv := 1.0 / count
		for d := int64(0); d < dim; d++ {
			out[outOff+d] *= inv
		}
	}

	return out
}
