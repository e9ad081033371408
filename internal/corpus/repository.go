package corpus

import "context"

// Repository is the storage boundary for documents. Implementations must
// make Put atomic (a reader never sees a document without its chunks) and
// Delete idempotent.
type Repository interface {
	// Put stores a document together with its chunks.
	Put(ctx context.Context, doc *Document) error
	// Get returns a document with its chunks, or ErrNotFound.
	Get(ctx context.Context, owner, id string) (*Document, error)
	// List returns the owner's documents, oldest first, without chunks.
	List(ctx context.Context, owner string) ([]Document, error)
	// Delete removes a document and its chunks. Missing ids are not an error.
	Delete(ctx context.Context, owner, id string) error
	// Clear removes every document of the owner.
	Clear(ctx context.Context, owner string) error
	// ListChunks returns every chunk of the owner, with DocumentTitle set.
	ListChunks(ctx context.Context, owner string) ([]Chunk, error)
}
