// Package chunker splits documents into overlapping, paragraph-aligned
// chunks for retrieval.
package chunker

import (
	"strings"

	"github.com/kakuhq/kaku/internal/textstat"
)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of trailing words carried from
// one chunk into the next.
const DefaultChunkOverlap = 200

const paragraphSeparator = "\n\n"

// Chunker greedily packs paragraphs into chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets how many trailing words seed the next chunk.
func WithOverlap(words int) Option {
	return func(c *Chunker) {
		if words >= 0 {
			c.overlap = words
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split returns the chunk texts of content in document order. When adding the
// next paragraph would exceed the chunk size, the running chunk is closed and
// the next one starts with its trailing overlap words followed by that
// paragraph. A paragraph longer than the chunk size becomes an oversized chunk.
func (c *Chunker) Split(content string) []string {
	paragraphs := textstat.Paragraphs(content)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	current := ""
	for _, para := range paragraphs {
		if current != "" && len(current)+len(paragraphSeparator)+len(para) > c.chunkSize {
			chunks = append(chunks, current)
			current = c.tail(current)
		}
		if current == "" {
			current = para
		} else {
			current += paragraphSeparator + para
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// tail returns the last overlap words of chunk, or all of it when shorter.
func (c *Chunker) tail(chunk string) string {
	if c.overlap == 0 {
		return ""
	}
	words := strings.Fields(chunk)
	if len(words) <= c.overlap {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-c.overlap:], " ")
}
