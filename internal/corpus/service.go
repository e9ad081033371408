package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kakuhq/kaku/internal/chunker"
	"github.com/kakuhq/kaku/internal/embeddings"
	"github.com/kakuhq/kaku/internal/extract"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/style"
	"github.com/kakuhq/kaku/internal/textstat"
)

// Hook is notified after the corpus changes, for indexes and logs kept outside the
// repository. Hook errors are logged and never undo the change.
type Hook interface {
	DocumentAdded(ctx context.Context, doc *Document) error
	DocumentDeleted(ctx context.Context, owner, id string) error
	CorpusCleared(ctx context.Context, owner string) error
}

// Service processes uploads into documents and answers corpus queries.
type Service struct {
	repo      Repository
	embedder  embeddings.Embedder
	extractor *extract.Registry
	chunker   *chunker.Chunker
	hooks     []Hook
	log       *logger.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithChunker overrides the default chunker.
func WithChunker(c *chunker.Chunker) Option {
	return func(s *Service) { s.chunker = c }
}

// WithExtractor overrides the default extraction registry.
func WithExtractor(r *extract.Registry) Option {
	return func(s *Service) { s.extractor = r }
}

// WithHook registers a change listener.
func WithHook(h Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, h) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a corpus service.
func NewService(repo Repository, embedder embeddings.Embedder, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		embedder:  embedder,
		extractor: extract.New(),
		chunker:   chunker.New(),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embedder returns the embedder used for chunks, so queries can be embedded
// into the same vector space.
func (s *Service) Embedder() embeddings.Embedder {
	return s.embedder
}

// Extractor returns the extraction registry.
func (s *Service) Extractor() *extract.Registry {
	return s.extractor
}

// Upload processes each file independently. A file that fails extraction
// or embedding is logged and reported in the result while the rest of the
// batch continues. ErrNoDocumentsProcessed is returned only when no file
// succeeded.
func (s *Service) Upload(ctx context.Context, owner string, files []File) (*UploadResult, error) {
	result := &UploadResult{Documents: []Document{}, Failed: []FileError{}}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		doc, err := s.uploadOne(ctx, owner, f)
		if err != nil {
			s.log.Warn("skipping file", "owner", owner, "file", f.Name, "error", err)
			result.Failed = append(result.Failed, FileError{FileName: f.Name, Error: err.Error()})
			continue
		}
		result.Documents = append(result.Documents, *doc)
	}

	s.log.Info("upload processed", "owner", owner,
		"succeeded", len(result.Documents), "failed", len(result.Failed))
	if len(result.Documents) == 0 {
		return result, ErrNoDocumentsProcessed
	}
	return result, nil
}

func (s *Service) uploadOne(ctx context.Context, owner string, f File) (*Document, error) {
	text, err := s.extractor.Extract(ctx, f.Name, f.Data)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, owner, titleFromFileName(f.Name), f.Name, text)
}

// AddText stores text that needs no extraction, such as a confirmed draft.
func (s *Service) AddText(ctx context.Context, owner, title, content string) (*Document, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("adding %q: %w", title, extract.ErrEmptyDocument)
	}
	if title == "" {
		title = "Untitled"
	}
	return s.store(ctx, owner, title, title+".txt", content)
}

func (s *Service) store(ctx context.Context, owner, title, fileName, text string) (*Document, error) {
	doc := &Document{
		ID:      uuid.New().String(),
		Owner:   owner,
		Title:   title,
		Content: text,
		Metadata: Metadata{
			FileName:       fileName,
			FileType:       strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."),
			UploadedAt:     s.now().UTC(),
			WordCount:      len(textstat.Words(text)),
			CharacterCount: utf8.RuneCountInString(text),
		},
		Style: style.Analyze(text),
	}

	pieces := s.chunker.Split(text)
	vectors, err := s.embedder.Embed(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vectors), len(pieces))
	}
	doc.Chunks = make([]Chunk, len(pieces))
	for i, piece := range pieces {
		doc.Chunks[i] = Chunk{
			ID:            uuid.New().String(),
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			Content:       piece,
			Index:         i,
			Embedding:     vectors[i],
		}
	}

	if err := s.repo.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}
	for _, h := range s.hooks {
		if err := h.DocumentAdded(ctx, doc); err != nil {
			s.log.Error("corpus hook failed", "owner", owner, "document", doc.ID, "error", err)
		}
	}
	return doc, nil
}

// Delete removes a document and its chunks. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	for _, h := range s.hooks {
		if err := h.DocumentDeleted(ctx, owner, id); err != nil {
			s.log.Error("corpus hook failed", "owner", owner, "document", id, "error", err)
		}
	}
	return nil
}

// Clear removes every document of owner.
func (s *Service) Clear(ctx context.Context, owner string) error {
	if err := s.repo.Clear(ctx, owner); err != nil {
		return fmt.Errorf("clearing corpus: %w", err)
	}
	for _, h := range s.hooks {
		if err := h.CorpusCleared(ctx, owner); err != nil {
			s.log.Error("corpus hook failed", "owner", owner, "error", err)
		}
	}
	return nil
}

// List returns the owner's documents without chunks.
func (s *Service) List(ctx context.Context, owner string) ([]Document, error) {
	docs, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// Get returns one document with its chunks.
func (s *Service) Get(ctx context.Context, owner, id string) (*Document, error) {
	return s.repo.Get(ctx, owner, id)
}

// Chunks returns every chunk of the owner.
func (s *Service) Chunks(ctx context.Context, owner string) ([]Chunk, error) {
	return s.repo.ListChunks(ctx, owner)
}

// Ready reports whether the owner has at least one document.
func (s *Service) Ready(ctx context.Context, owner string) (bool, error) {
	docs, err := s.repo.List(ctx, owner)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// Stats is recomputed from the current documents on every call.
func (s *Service) Stats(ctx context.Context, owner string) (Stats, error) {
	docs, err := s.repo.List(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(docs), nil
}

// Profile aggregates the style of every document of the owner.
func (s *Service) Profile(ctx context.Context, owner string) (style.Profile, error) {
	docs, err := s.repo.List(ctx, owner)
	if err != nil {
		return style.Profile{}, err
	}
	samples := make([]style.Sample, len(docs))
	for i, d := range docs {
		samples[i] = style.Sample{Content: d.Content, Metrics: d.Style}
	}
	return style.Aggregate(samples), nil
}

func computeStats(docs []Document) Stats {
	var st Stats
	st.DocumentCount = len(docs)
	if len(docs) == 0 {
		return st
	}
	var formality float64
	var last time.Time
	for _, d := range docs {
		st.WordCount += d.Metadata.WordCount
		st.CharacterCount += d.Metadata.CharacterCount
		formality += d.Style.FormalityScore
		if d.Metadata.UploadedAt.After(last) {
			last = d.Metadata.UploadedAt
		}
	}
	st.AverageFormality = formality / float64(len(docs))
	st.LastUpdated = &last
	return st
}

// titleFromFileName turns "my_essay-draft.docx" into "my essay draft".
func titleFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	if base = strings.TrimSpace(base); base == "" {
		return "Untitled"
	}
	return base
}
