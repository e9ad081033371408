package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kakuhq/kaku/internal/auth"
	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/embeddings/embeddingstest"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

func seededCorpus(t *testing.T) (*corpus.Service, *embeddingstest.Hash) {
	t.Helper()
	emb := embeddingstest.NewHash(256)
	svc := corpus.NewService(corpus.NewMemoryRepository(), emb, logger.Nop())
	_, err := svc.Upload(context.Background(), owner, []corpus.File{
		{Name: "garden.txt", Data: []byte("Tomatoes and basil grow well in the summer garden.")},
		{Name: "finance.txt", Data: []byte("Quarterly revenue exceeded the budget forecast.")},
		{Name: "pets.txt", Data: []byte("My dog enjoys long walks in the park.")},
	})
	require.NoError(t, err)
	return svc, emb
}

type fakeSource []corpus.Chunk

func (f fakeSource) Chunks(context.Context, string) ([]corpus.Chunk, error) {
	return f, nil
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestSearchEmptyCorpus(t *testing.T) {
	emb := embeddingstest.NewHash(8)
	e := New(fakeSource(nil), emb)
	results, err := e.Search(context.Background(), owner, "anything", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, emb.Calls())
}

func TestSearchSkipsChunksWithoutEmbeddings(t *testing.T) {
	e := New(fakeSource{{ID: "a", Content: "no vector"}}, embeddingstest.NewHash(8))
	results, err := e.Search(context.Background(), owner, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksAndLimits(t *testing.T) {
	svc, emb := seededCorpus(t)
	e := New(svc, emb)

	results, err := e.Search(context.Background(), owner, "summer garden basil", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "garden", results[0].Chunk.DocumentTitle)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)

	all, err := e.Search(context.Background(), owner, "summer garden basil", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Similarity, all[i].Similarity)
	}

	none, err := e.Search(context.Background(), owner, "x", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchEmbedderFailure(t *testing.T) {
	e := New(fakeSource{{ID: "a", Embedding: []float32{1}}}, embeddingstest.Failing{Dims: 1})
	_, err := e.Search(context.Background(), owner, "q", 3)
	assert.ErrorIs(t, err, embeddingstest.ErrEmbed)
}

type fakeIndex struct {
	called bool
}

func (f *fakeIndex) Query(_ context.Context, _ string, _ []float32, topK int) ([]Result, error) {
	f.called = true
	return []Result{{Chunk: corpus.Chunk{ID: "from-index"}, Similarity: 0.5}}, nil
}

func TestSearchUsesIndex(t *testing.T) {
	idx := &fakeIndex{}
	e := New(fakeSource(nil), embeddingstest.NewHash(8), WithIndex(idx))
	results, err := e.Search(context.Background(), owner, "q", 3)
	require.NoError(t, err)
	assert.True(t, idx.called)
	assert.Equal(t, "from-index", results[0].Chunk.ID)
}

func TestRelevantContext(t *testing.T) {
	svc, emb := seededCorpus(t)
	e := New(svc, emb)

	text, err := e.RelevantContext(context.Background(), owner, "garden basil", 2000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "[Source: garden (similarity: "), text)
	assert.Contains(t, text, "Tomatoes and basil")

	tiny, err := e.RelevantContext(context.Background(), owner, "garden basil", 5)
	require.NoError(t, err)
	assert.Equal(t, NoRelevantDocuments, tiny)

	empty, err := New(fakeSource(nil), emb).RelevantContext(context.Background(), owner, "q", 2000)
	require.NoError(t, err)
	assert.Equal(t, NoRelevantDocuments, empty)
}

func TestFormatContextRespectsBudget(t *testing.T) {
	results := []Result{
		{Chunk: corpus.Chunk{DocumentTitle: "a", Content: strings.Repeat("x", 100)}, Similarity: 0.9},
		{Chunk: corpus.Chunk{DocumentTitle: "b", Content: strings.Repeat("y", 100)}, Similarity: 0.8},
	}
	one := FormatContext(results, 40)
	assert.Contains(t, one, "[Source: a (similarity: 0.90)]")
	assert.NotContains(t, one, "[Source: b")
	assert.LessOrEqual(t, EstimateTokens(one), 40)

	both := FormatContext(results, 1000)
	assert.Contains(t, both, "[Source: b (similarity: 0.80)]")
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func TestSearchRoute(t *testing.T) {
	svc, emb := seededCorpus(t)
	r := chi.NewRouter()
	r.Use(auth.Static(auth.Session{Kind: auth.KindAuthenticated, UserID: owner}))
	RegisterRoutes(r, New(svc, emb))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"dog walks","topK":1,"maxTokens":500}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp searchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "pets", resp.Results[0].Chunk.DocumentTitle)
	assert.Nil(t, resp.Results[0].Chunk.Embedding)
	assert.Contains(t, resp.Context, "[Source: pets")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"topK":1}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
