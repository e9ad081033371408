// Package chat produces assistant replies for a conversation transcript.
package chat

import (
	"context"
	"errors"
)

// ErrNoUserMessage is returned when a request has no user turn to answer.
var ErrNoUserMessage = errors.New("request has no user message")

// Roles accepted in a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// Request asks for the next assistant turn.
type Request struct {
	Owner     string    `json:"-"`
	Messages  []Message `json:"messages" validate:"required,min=1,dive"`
	Style     string    `json:"style"`
	Purpose   string    `json:"purpose"`
	HasCorpus bool      `json:"hasCorpus"`
}

// Draft is a finished document proposed for saving to the corpus.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Response is the assistant turn. A non-nil DraftContent means the caller
// must hold the draft until the user confirms or discards it.
type Response struct {
	Message      string   `json:"message"`
	Title        string   `json:"title,omitempty"`
	DraftContent *Draft   `json:"draftContent,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	// FollowUp is set when Message is a clarifying question.
	FollowUp bool `json:"followUp,omitempty"`
}

// Backend answers chat requests.
type Backend interface {
	Reply(ctx context.Context, req Request) (*Response, error)
}

// lastUserMessage returns the index of the final user turn, or -1.
func lastUserMessage(msgs []Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return i
		}
	}
	return -1
}
