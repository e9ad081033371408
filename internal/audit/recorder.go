package audit

import (
	"context"
	"fmt"

	"github.com/kakuhq/kaku/internal/corpus"
)

// Recorder writes corpus changes to the trail. It implements corpus.Hook.
type Recorder struct {
	store *Store
}

var _ corpus.Hook = (*Recorder)(nil)

// NewRecorder returns a Recorder that logs to store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) DocumentAdded(ctx context.Context, doc *corpus.Document) error {
	return r.store.Log(ctx, Entry{
		Owner:      doc.Owner,
		Action:     ActionDocumentAdded,
		DocumentID: doc.ID,
		Summary:    fmt.Sprintf("added %q", doc.Title),
		WordCount:  doc.Metadata.WordCount,
	})
}

func (r *Recorder) DocumentDeleted(ctx context.Context, owner, id string) error {
	return r.store.Log(ctx, Entry{
		Owner:      owner,
		Action:     ActionDocumentDeleted,
		DocumentID: id,
		Summary:    "deleted document " + id,
	})
}

func (r *Recorder) CorpusCleared(ctx context.Context, owner string) error {
	return r.store.Log(ctx, Entry{
		Owner:   owner,
		Action:  ActionCorpusCleared,
		Summary: "cleared all documents",
	})
}
