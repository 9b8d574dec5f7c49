// Package embed provides text embedding backends: a local ONNX
// transformer model and a remote OpenAI-compatible endpoint. Both speak
// float64 vectors; distance math downstream works in float64 throughout.
package embed

import "context"

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
