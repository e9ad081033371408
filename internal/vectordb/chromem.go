// Package vectordb keeps an approximate nearest-neighbour copy of each
// owner's chunk embeddings in chromem-go. The corpus repository stays the
// source of truth: collections are hydrated from it on first use and kept
// current through corpus hooks.
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/embeddings"
	"github.com/kakuhq/kaku/internal/retrieval"
)

const collectionPrefix = "corpus-"

// Index implements retrieval.Index and corpus.Hook on top of chromem-go.
type Index struct {
	mu        sync.Mutex
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
	source    retrieval.ChunkSource
	hydrated  map[string]bool
}

// NewIndex creates an empty in-memory index that hydrates owners from source.
func NewIndex(embedder embeddings.Embedder, source retrieval.ChunkSource) *Index {
	return &Index{
		db:        chromem.NewDB(),
		embedFunc: embeddings.ToChromemFunc(embedder),
		source:    source,
		hydrated:  make(map[string]bool),
	}
}

func collectionName(owner string) string {
	return collectionPrefix + owner
}

// collection returns the owner's collection, loading it from the source the
// first time. Callers hold x.mu.
func (x *Index) collection(ctx context.Context, owner string) (*chromem.Collection, error) {
	col, err := x.db.GetOrCreateCollection(collectionName(owner), nil, x.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if x.hydrated[owner] {
		return col, nil
	}

	chunks, err := x.source.Chunks(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("loading chunks for index: %w", err)
	}
	if err := addChunks(ctx, col, chunks); err != nil {
		return nil, err
	}
	x.hydrated[owner] = true
	return col, nil
}

func addChunks(ctx context.Context, col *chromem.Collection, chunks []corpus.Chunk) error {
	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: c.Embedding,
			Metadata: map[string]string{
				"document_id":    c.DocumentID,
				"document_title": c.DocumentTitle,
				"chunk_index":    strconv.Itoa(c.Index),
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding chunks to index: %w", err)
	}
	return nil
}

// Query returns the topK nearest chunks to query.
func (x *Index) Query(ctx context.Context, owner string, query []float32, topK int) ([]retrieval.Result, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	col, err := x.collection(ctx, owner)
	if err != nil {
		return nil, err
	}
	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 || topK <= 0 {
		return []retrieval.Result{}, nil
	}
	if topK > count {
		topK = count
	}

	if isZero(query) {
		return x.unranked(ctx, owner, topK)
	}

	found, err := col.QueryEmbedding(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	results := make([]retrieval.Result, len(found))
	for i, r := range found {
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		results[i] = retrieval.Result{
			Chunk: corpus.Chunk{
				ID:            r.ID,
				DocumentID:    r.Metadata["document_id"],
				DocumentTitle: r.Metadata["document_title"],
				Content:       r.Content,
				Index:         idx,
			},
			Similarity: float64(r.Similarity),
		}
		// Zero-norm stored vectors normalize to NaN.
		if math.IsNaN(results[i].Similarity) {
			results[i].Similarity = 0
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

// unranked answers a zero-norm query: every embedded chunk scores 0, in
// source order.
func (x *Index) unranked(ctx context.Context, owner string, topK int) ([]retrieval.Result, error) {
	chunks, err := x.source.Chunks(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	results := []retrieval.Result{}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if len(results) == topK {
			break
		}
		c.Embedding = nil
		results = append(results, retrieval.Result{Chunk: c})
	}
	return results, nil
}

func isZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// DocumentAdded indexes the chunks of a new document. Owners that were never
// queried are skipped; they pick the document up when hydrated.
func (x *Index) DocumentAdded(ctx context.Context, doc *corpus.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.hydrated[doc.Owner] {
		return nil
	}
	col := x.db.GetCollection(collectionName(doc.Owner), x.embedFunc)
	if col == nil {
		delete(x.hydrated, doc.Owner)
		return nil
	}
	return addChunks(ctx, col, doc.Chunks)
}

// DocumentDeleted drops the chunks of a document.
func (x *Index) DocumentDeleted(ctx context.Context, owner, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	col := x.db.GetCollection(collectionName(owner), x.embedFunc)
	if col == nil || col.Count() == 0 {
		return nil
	}
	if err := col.Delete(ctx, map[string]string{"document_id": id}, nil); err != nil {
		return fmt.Errorf("deleting document %s from index: %w", id, err)
	}
	return nil
}

// CorpusCleared drops the owner's collection.
func (x *Index) CorpusCleared(_ context.Context, owner string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.hydrated, owner)
	if x.db.GetCollection(collectionName(owner), x.embedFunc) == nil {
		return nil
	}
	if err := x.db.DeleteCollection(collectionName(owner)); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks of owner, 0 when the owner has
// not been hydrated.
func (x *Index) Count(owner string) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	col := x.db.GetCollection(collectionName(owner), x.embedFunc)
	if col == nil {
		return 0
	}
	return col.Count()
}

// Persist writes every collection to a gzip-compressed gob file.
func (x *Index) Persist(path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	return nil
}

// Load restores collections written by Persist. A missing file is not an
// error. Restored owners count as hydrated.
func (x *Index) Load(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import index: %w", err)
	}
	for name := range x.db.ListCollections() {
		if owner, ok := strings.CutPrefix(name, collectionPrefix); ok {
			x.hydrated[owner] = true
		}
	}
	return nil
}

// Reconcile drops restored collections whose size no longer matches the
// source, so they are rebuilt on next use. It returns the owners dropped.
func (x *Index) Reconcile(ctx context.Context) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var dropped []string
	for owner := range x.hydrated {
		chunks, err := x.source.Chunks(ctx, owner)
		if err != nil {
			return dropped, fmt.Errorf("loading chunks for %s: %w", owner, err)
		}
		want := 0
		for _, c := range chunks {
			if len(c.Embedding) > 0 {
				want++
			}
		}
		col := x.db.GetCollection(collectionName(owner), x.embedFunc)
		if col != nil && col.Count() == want {
			continue
		}
		delete(x.hydrated, owner)
		if col != nil {
			if err := x.db.DeleteCollection(collectionName(owner)); err != nil {
				return dropped, fmt.Errorf("dropping collection: %w", err)
			}
		}
		dropped = append(dropped, owner)
	}
	return dropped, nil
}
