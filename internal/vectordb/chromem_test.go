package vectordb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/embeddings/embeddingstest"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

func setup(t *testing.T) (*corpus.Service, *Index) {
	t.Helper()
	embedder := embeddingstest.NewHash(64)
	repo := corpus.NewMemoryRepository()
	var idx *Index
	svc := corpus.NewService(repo, embedder, logger.Nop(), corpus.WithHook(hookFunc(func() *Index { return idx })))
	idx = NewIndex(embedder, svc)
	return svc, idx
}

// hookFunc defers to an Index created after the service.
type hookFunc func() *Index

func (h hookFunc) DocumentAdded(ctx context.Context, doc *corpus.Document) error {
	return h().DocumentAdded(ctx, doc)
}

func (h hookFunc) DocumentDeleted(ctx context.Context, owner, id string) error {
	return h().DocumentDeleted(ctx, owner, id)
}

func (h hookFunc) CorpusCleared(ctx context.Context, owner string) error {
	return h().CorpusCleared(ctx, owner)
}

func query(t *testing.T, idx *Index, text string, topK int) []retrieval.Result {
	t.Helper()
	vecs, err := embeddingstest.NewHash(64).Embed(context.Background(), []string{text})
	require.NoError(t, err)
	results, err := idx.Query(context.Background(), owner, vecs[0], topK)
	require.NoError(t, err)
	return results
}

func TestQueryHydratesFromSource(t *testing.T) {
	svc, idx := setup(t)
	ctx := context.Background()

	_, err := svc.AddText(ctx, owner, "Gardening", "Tomatoes need sunlight and regular watering in summer.")
	require.NoError(t, err)
	_, err = svc.AddText(ctx, owner, "Finance", "Quarterly revenue grew while operating costs declined.")
	require.NoError(t, err)

	assert.Equal(t, 0, idx.Count(owner))

	results := query(t, idx, "watering tomatoes in summer sunlight", 5)
	require.Len(t, results, 2)
	assert.Equal(t, "Gardening", results[0].Chunk.DocumentTitle)
	assert.Equal(t, 0, results[0].Chunk.Index)
	assert.NotEmpty(t, results[0].Chunk.DocumentID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestQueryEmptyOwner(t *testing.T) {
	_, idx := setup(t)
	assert.Empty(t, query(t, idx, "anything", 3))
}

func TestQueryCapsTopK(t *testing.T) {
	svc, idx := setup(t)
	_, err := svc.AddText(context.Background(), owner, "One", "A single short paragraph.")
	require.NoError(t, err)
	assert.Len(t, query(t, idx, "short paragraph", 10), 1)
}

func TestHooksKeepIndexCurrent(t *testing.T) {
	svc, idx := setup(t)
	ctx := context.Background()

	first, err := svc.AddText(ctx, owner, "First", "The first document talks about mountains.")
	require.NoError(t, err)
	query(t, idx, "mountains", 1)
	assert.Equal(t, 1, idx.Count(owner))

	_, err = svc.AddText(ctx, owner, "Second", "The second document talks about rivers.")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Count(owner))

	require.NoError(t, svc.Delete(ctx, owner, first.ID))
	assert.Equal(t, 1, idx.Count(owner))

	require.NoError(t, svc.Clear(ctx, owner))
	assert.Equal(t, 0, idx.Count(owner))
	assert.Empty(t, query(t, idx, "rivers", 1))
}

func TestPersistAndLoad(t *testing.T) {
	svc, idx := setup(t)
	ctx := context.Background()
	_, err := svc.AddText(ctx, owner, "Notes", "Persisted notes about the ocean.")
	require.NoError(t, err)
	query(t, idx, "ocean", 1)

	path := filepath.Join(t.TempDir(), "vectors.gob.gz")
	require.NoError(t, idx.Persist(path))

	restored := NewIndex(embeddingstest.NewHash(64), corpus.NewService(corpus.NewMemoryRepository(), embeddingstest.NewHash(64), logger.Nop()))
	require.NoError(t, restored.Load(path))
	assert.Equal(t, 1, restored.Count(owner))

	results := query(t, restored, "ocean", 1)
	require.Len(t, results, 1)
	assert.Equal(t, "Notes", results[0].Chunk.DocumentTitle)
}

func TestLoadMissingFile(t *testing.T) {
	_, idx := setup(t)
	require.NoError(t, idx.Load(filepath.Join(t.TempDir(), "missing.gob.gz")))
}

func TestReconcileDropsStaleOwners(t *testing.T) {
	svc, idx := setup(t)
	ctx := context.Background()
	_, err := svc.AddText(ctx, owner, "Notes", "Persisted notes about the ocean.")
	require.NoError(t, err)
	query(t, idx, "ocean", 1)

	path := filepath.Join(t.TempDir(), "vectors.gob.gz")
	require.NoError(t, idx.Persist(path))

	restored := NewIndex(embeddingstest.NewHash(64), svc)
	require.NoError(t, restored.Load(path))
	dropped, err := restored.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, 1, restored.Count(owner))

	// Written while the restored index was not listening.
	_, err = svc.AddText(ctx, owner, "More", "Further notes about the desert.")
	require.NoError(t, err)

	dropped, err = restored.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{owner}, dropped)
	assert.Equal(t, 0, restored.Count(owner))
	assert.Len(t, query(t, restored, "desert", 5), 2)
}

type staticChunks []corpus.Chunk

func (s staticChunks) Chunks(ctx context.Context, owner string) ([]corpus.Chunk, error) {
	return s, nil
}

func TestQueryZeroNormScoresZero(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(embeddingstest.NewHash(3), staticChunks{
		{ID: "a", DocumentID: "d1", Content: "first", Index: 0, Embedding: []float32{1, 0, 0}},
		{ID: "b", DocumentID: "d1", Content: "second", Index: 1, Embedding: []float32{0, 0, 0}},
	})

	results, err := idx.Query(ctx, owner, []float32{0, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 0.0, r.Similarity, r.Chunk.ID)
	}
	assert.Equal(t, "a", results[0].Chunk.ID)

	results, err = idx.Query(ctx, owner, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, 0.0, results[1].Similarity)
}
