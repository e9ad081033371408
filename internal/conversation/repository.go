package conversation

import "context"

// Repository stores conversations with their messages. Put replaces the
// whole conversation atomically. List omits messages and orders by most
// recently updated first.
type Repository interface {
	Put(ctx context.Context, c *Conversation) error
	Get(ctx context.Context, owner, id string) (*Conversation, error)
	List(ctx context.Context, owner string) ([]Conversation, error)
	Delete(ctx context.Context, owner, id string) error
}
