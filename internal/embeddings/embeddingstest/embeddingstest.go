// Package embeddingstest provides development fixtures for the
// embeddings.Embedder interface. Nothing in here is wired into the
// production provider factory.
package embeddingstest

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
)

// Hash is a deterministic bag-of-words embedder: every lowercase word is
// hashed into one of Dims buckets and the vector is L2 normalized. Texts that
// share words have positive cosine similarity.
type Hash struct {
	Dims int

	mu    sync.Mutex
	calls int
}

// NewHash returns a Hash embedder with the given dimensionality.
func NewHash(dims int) *Hash {
	return &Hash{Dims: dims}
}

func (h *Hash) Name() string    { return "hash-fixture" }
func (h *Hash) Dimensions() int { return h.Dims }

// Calls reports how many times Embed was invoked.
func (h *Hash) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *Hash) Embed(_ context.Context, texts []string) ([][]float32, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, h.Dims)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if word == "" {
				continue
			}
			f := fnv.New32a()
			f.Write([]byte(word))
			vec[int(f.Sum32()%uint32(h.Dims))]++
		}
		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

// Random returns uniformly random vectors, mirroring a placeholder embedding
// service. Similarities between its vectors carry no meaning.
type Random struct {
	Dims int
}

func (r Random) Name() string    { return "random-fixture" }
func (r Random) Dimensions() int { return r.Dims }

func (r Random) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, r.Dims)
		for j := range vec {
			vec[j] = rand.Float32()*2 - 1
		}
		out[i] = vec
	}
	return out, nil
}

// ErrEmbed is returned by Failing.
var ErrEmbed = errors.New("embedding service unavailable")

// Failing always returns ErrEmbed.
type Failing struct {
	Dims int
}

func (f Failing) Name() string    { return "failing-fixture" }
func (f Failing) Dimensions() int { return f.Dims }

func (f Failing) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrEmbed
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
