// Package audit keeps a per-owner trail of corpus changes: uploads, saved
// drafts, deletions and clears.
package audit

import "time"

// Action describes what changed.
type Action string

const (
	ActionDocumentAdded   Action = "document_added"
	ActionDocumentDeleted Action = "document_deleted"
	ActionCorpusCleared   Action = "corpus_cleared"
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Owner      string    `json:"-"`
	Action     Action    `json:"action"`
	DocumentID string    `json:"documentId,omitempty"`
	Summary    string    `json:"summary"`
	// WordCount is the size of an added document.
	WordCount int `json:"wordCount,omitempty"`
}
