// Package retrieval ranks corpus chunks against a query and formats the
// best matches as grounding context for a prompt.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/embeddings"
)

// NoRelevantDocuments is returned by RelevantContext when nothing qualifies.
const NoRelevantDocuments = "No relevant documents found."

// DefaultContextTopK is the number of candidates RelevantContext considers.
const DefaultContextTopK = 10

// Result is one ranked chunk.
type Result struct {
	Chunk      corpus.Chunk `json:"chunk"`
	Similarity float64      `json:"similarity"`
}

// ChunkSource lists the chunks of an owner's corpus.
type ChunkSource interface {
	Chunks(ctx context.Context, owner string) ([]corpus.Chunk, error)
}

// Index is an approximate nearest-neighbour backend that can replace the
// exhaustive scan.
type Index interface {
	Query(ctx context.Context, owner string, query []float32, topK int) ([]Result, error)
}

// Engine embeds queries and ranks chunks by cosine similarity.
type Engine struct {
	source   ChunkSource
	embedder embeddings.Embedder
	index    Index
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndex makes Search use an Index instead of scanning every chunk.
func WithIndex(idx Index) Option {
	return func(e *Engine) { e.index = idx }
}

// New creates an Engine. The embedder must be the one the corpus was
// embedded with.
func New(source ChunkSource, embedder embeddings.Embedder, opts ...Option) *Engine {
	e := &Engine{source: source, embedder: embedder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns at most topK chunks sorted by descending similarity. Chunks
// without embeddings are ignored; an empty corpus yields an empty slice
// without calling the embedder.
func (e *Engine) Search(ctx context.Context, owner, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return []Result{}, nil
	}

	var chunks []corpus.Chunk
	if e.index == nil {
		var err error
		chunks, err = e.source.Chunks(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("loading chunks: %w", err)
		}
		if !anyEmbedded(chunks) {
			return []Result{}, nil
		}
	}

	vecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors", len(vecs))
	}
	if e.index != nil {
		return e.index.Query(ctx, owner, vecs[0], topK)
	}
	return Rank(vecs[0], chunks, topK), nil
}

func anyEmbedded(chunks []corpus.Chunk) bool {
	for _, c := range chunks {
		if len(c.Embedding) > 0 {
			return true
		}
	}
	return false
}

// Rank scores chunks against query and keeps the topK best.
func Rank(query []float32, chunks []corpus.Chunk, topK int) []Result {
	results := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		results = append(results, Result{Chunk: c, Similarity: CosineSimilarity(query, c.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// CosineSimilarity returns the cosine of the angle between a and b. A zero
// vector, or vectors of different length, score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EstimateTokens approximates a token count as a quarter of the characters.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(text)) * 0.25))
}

// RelevantContext concatenates the best chunks for query, each headed by its
// source title and similarity, stopping before the token estimate would pass
// maxTokens.
func (e *Engine) RelevantContext(ctx context.Context, owner, query string, maxTokens int) (string, error) {
	results, err := e.Search(ctx, owner, query, DefaultContextTopK)
	if err != nil {
		return "", err
	}
	return FormatContext(results, maxTokens), nil
}

// FormatContext renders results within a token budget.
func FormatContext(results []Result, maxTokens int) string {
	var sb strings.Builder
	used := 0
	for _, r := range results {
		entry := fmt.Sprintf("[Source: %s (similarity: %.2f)]\n%s\n\n", r.Chunk.DocumentTitle, r.Similarity, r.Chunk.Content)
		cost := EstimateTokens(entry)
		if used+cost > maxTokens {
			break
		}
		sb.WriteString(entry)
		used += cost
	}
	if sb.Len() == 0 {
		return NoRelevantDocuments
	}
	return strings.TrimRight(sb.String(), "\n")
}
