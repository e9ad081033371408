// Package conversation manages chat conversations: turns dispatched to a
// chat backend, derived titles and drafts awaiting confirmation.
package conversation

import (
	"errors"
	"time"

	"github.com/kakuhq/kaku/internal/prompt"
)

var (
	// ErrNotFound is returned for unknown conversation IDs.
	ErrNotFound = errors.New("conversation not found")
	// ErrNoDraft is returned when confirming or discarding without a pending draft.
	ErrNoDraft = errors.New("conversation has no pending draft")
	// ErrEmptyMessage is returned when sending blank content.
	ErrEmptyMessage = errors.New("message content is empty")
)

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn. An assistant message starts with IsLoading set and
// empty content; filling it in is the only change a message ever sees.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsLoading   bool      `json:"isLoading,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// DraftState tracks a draft through confirmation.
type DraftState string

const (
	DraftPending   DraftState = "drafted"
	DraftSaved     DraftState = "saved"
	DraftDiscarded DraftState = "discarded"
)

// Draft is a document the assistant produced, held until the user saves it
// to the corpus or discards it.
type Draft struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	State      DraftState `json:"state"`
	DocumentID string     `json:"documentId,omitempty"`
}

// Conversation is a titled message history owned by one user.
type Conversation struct {
	ID        string       `json:"id"`
	Owner     string       `json:"-"`
	Title     string       `json:"title"`
	Messages  []Message    `json:"messages"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Documents []string     `json:"documents"`
	Draft     *Draft       `json:"draft,omitempty"`
	Stage     prompt.Stage `json:"stage,omitempty"`
}

// Selection is the style and purpose chosen for a turn.
type Selection struct {
	Style   string `json:"style"`
	Purpose string `json:"purpose"`
}

func (c *Conversation) clone() *Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Suggestions = append([]string(nil), m.Suggestions...)
		out.Messages[i] = m
	}
	out.Documents = append([]string{}, c.Documents...)
	if c.Draft != nil {
		d := *c.Draft
		out.Draft = &d
	}
	return &out
}

func (c *Conversation) userMessageCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// PendingDraft returns the draft awaiting confirmation, or nil.
func (c *Conversation) PendingDraft() *Draft {
	if c.Draft != nil && c.Draft.State == DraftPending {
		return c.Draft
	}
	return nil
}
