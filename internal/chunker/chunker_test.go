package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, New().Split(""))
	assert.Empty(t, New().Split("\n\n  \n"))
}

func TestSplitShortDocumentSingleChunk(t *testing.T) {
	content := "First paragraph.\n\nSecond paragraph."
	chunks := New().Split(content)
	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0])
}

func TestSplitClosesChunksAtSizeBudget(t *testing.T) {
	para := strings.Repeat("word ", 30) // 150 chars
	content := strings.Repeat(para+"\n\n", 10)

	chunks := New(WithChunkSize(400), WithOverlap(0)).Split(content)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch), 400)
	}
}

func TestSplitOverlapSeedsNextChunk(t *testing.T) {
	paras := []string{"alpha beta gamma delta", "epsilon zeta eta theta", "iota kappa lambda mu"}
	chunks := New(WithChunkSize(30), WithOverlap(2)).Split(strings.Join(paras, "\n\n"))

	require.Len(t, chunks, 3)
	assert.Equal(t, "alpha beta gamma delta", chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "gamma delta\n\n"), chunks[1])
	assert.True(t, strings.HasPrefix(chunks[2], "eta theta\n\n"), chunks[2])
}

func TestSplitOverlapWholeChunkWhenShort(t *testing.T) {
	chunks := New(WithChunkSize(10), WithOverlap(50)).Split("one two\n\nthree four")
	require.Len(t, chunks, 2)
	assert.Equal(t, "one two\n\nthree four", chunks[1])
}

func TestSplitPreservesParagraphOrder(t *testing.T) {
	var paras []string
	for i := 0; i < 40; i++ {
		paras = append(paras, fmt.Sprintf("Paragraph number %d has a little text in it.", i))
	}
	chunks := New(WithChunkSize(200), WithOverlap(5)).Split(strings.Join(paras, "\n\n"))
	joined := strings.Join(chunks, "\n\n")

	pos := 0
	for _, p := range paras {
		idx := strings.Index(joined[pos:], p)
		require.GreaterOrEqual(t, idx, 0, "paragraph %q missing or out of order", p)
		pos += idx + len(p)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	c := New(WithChunkSize(0), WithOverlap(-1))
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, c.overlap)
}
