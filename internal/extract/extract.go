// Package extract pulls plain text out of uploaded writing samples.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrInvalidDocument is returned when a file cannot be parsed as its format.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrEmptyDocument is returned when a file yields no text.
	ErrEmptyDocument = errors.New("document contains no text")
)

// Extractor converts the raw bytes of one format to plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// Registry dispatches extraction by file extension.
type Registry struct {
	byExt map[string]Extractor
}

// Option configures a Registry.
type Option func(*Registry)

// WithExtractor registers (or replaces) the extractor for an extension such
// as ".txt".
func WithExtractor(ext string, e Extractor) Option {
	return func(r *Registry) {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// WithCommandRunner sets the runner used to invoke pdftotext.
func WithCommandRunner(runner CommandRunner) Option {
	return WithExtractor(".pdf", &PDFExtractor{Runner: runner})
}

// New creates a Registry that handles .txt, .md, .rtf, .docx and .pdf.
func New(opts ...Option) *Registry {
	r := &Registry{byExt: map[string]Extractor{
		".txt":      ExtractorFunc(plainText),
		".md":       ExtractorFunc(markdownText),
		".markdown": ExtractorFunc(markdownText),
		".rtf":      ExtractorFunc(rtfText),
		".docx":     ExtractorFunc(docxText),
		".pdf":      &PDFExtractor{Runner: ExecRunner{}},
	}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supported reports whether fileName has a registered extractor.
func (r *Registry) Supported(fileName string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract returns the plain text of a file, choosing the extractor by the
// extension of fileName.
func (r *Registry) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	text, err := e.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", fileName, err)
	}
	text = normalizeWhitespace(text)
	if text == "" {
		return "", fmt.Errorf("extracting %s: %w", fileName, ErrEmptyDocument)
	}
	return text, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func plainText(_ context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidDocument)
	}
	return string(data), nil
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
