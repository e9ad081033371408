// Package corpus stores a user's writing samples: their text, metadata,
// style metrics and embedded chunks.
package corpus

import (
	"errors"
	"time"

	"github.com/kakuhq/kaku/internal/style"
)

var (
	// ErrNotFound is returned when a document does not exist for the owner.
	ErrNotFound = errors.New("document not found")
	// ErrNoDocumentsProcessed is returned by Upload when every file failed.
	ErrNoDocumentsProcessed = errors.New("no documents could be processed")
)

// Metadata is derived once when a document is processed.
type Metadata struct {
	FileName       string    `json:"fileName"`
	FileType       string    `json:"fileType"`
	UploadedAt     time.Time `json:"uploadedAt"`
	WordCount      int       `json:"wordCount"`
	CharacterCount int       `json:"characterCount"`
}

// Chunk is a retrieval unit of one document. DocumentTitle is filled on
// read so search results can cite their source.
type Chunk struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"documentId"`
	DocumentTitle string    `json:"documentTitle,omitempty"`
	Content       string    `json:"content"`
	Index         int       `json:"index"`
	Embedding     []float32 `json:"embedding,omitempty"`
}

// Document is a processed writing sample. Documents are immutable once
// stored; they can only be deleted.
type Document struct {
	ID       string        `json:"id"`
	Owner    string        `json:"-"`
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Metadata Metadata      `json:"metadata"`
	Style    style.Metrics `json:"styleMetrics"`
	Chunks   []Chunk       `json:"chunks,omitempty"`
}

// Stats summarizes the current documents of one owner.
type Stats struct {
	DocumentCount    int        `json:"documentCount"`
	WordCount        int        `json:"wordCount"`
	CharacterCount   int        `json:"characterCount"`
	AverageFormality float64    `json:"averageFormality"`
	LastUpdated      *time.Time `json:"lastUpdated"`
}

// File is one uploaded file.
type File struct {
	Name string
	Data []byte
}

// FileError records why a file in an upload batch was skipped.
type FileError struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// UploadResult lists what happened to each file of a batch.
type UploadResult struct {
	Documents []Document  `json:"documents"`
	Failed    []FileError `json:"failed"`
}
