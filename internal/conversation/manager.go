package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kakuhq/kaku/internal/chat"
	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/prompt"
)

// ErrorReply replaces the pending assistant message when the backend fails.
const ErrorReply = "I encountered an error while generating a response. Please try again."

const (
	firstGreeting = "Hi! I'm Kaku, your writing assistant. Upload a few samples of your writing " +
		"and I'll help you write anything in your own voice. What would you like to write today?"
	returningGreeting = "Welcome back! What would you like to write next?"
)

// DefaultTimeout bounds one backend reply.
const DefaultTimeout = 60 * time.Second

// Corpus is the part of the corpus service the manager needs.
type Corpus interface {
	Ready(ctx context.Context, owner string) (bool, error)
	AddText(ctx context.Context, owner, title, content string) (*corpus.Document, error)
}

// Manager runs conversations. Turns on one conversation are serialized.
type Manager struct {
	repo    Repository
	backend chat.Backend
	corpus  Corpus
	log     *logger.Logger
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*turnLock
}

type turnLock struct {
	sync.Mutex
	refs int
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager.
func NewManager(repo Repository, backend chat.Backend, c Corpus, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:    repo,
		backend: backend,
		corpus:  c,
		log:     log,
		timeout: DefaultTimeout,
		now:     time.Now,
		locks:   make(map[string]*turnLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &turnLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) timestamp() time.Time {
	return m.now().UTC()
}

// New creates a conversation seeded with a greeting, which is shorter for
// owners who already have conversations.
func (m *Manager) New(ctx context.Context, owner string) (*Conversation, error) {
	existing, err := m.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	greeting := firstGreeting
	if len(existing) > 0 {
		greeting = returningGreeting
	}

	now := m.timestamp()
	c := &Conversation{
		ID:        uuid.NewString(),
		Owner:     owner,
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Documents: []string{},
		Messages: []Message{{
			ID:        uuid.NewString(),
			Role:      RoleAssistant,
			Content:   greeting,
			Timestamp: now,
		}},
	}
	if err := m.repo.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("saving conversation: %w", err)
	}
	m.log.Debug("conversation created", "owner", owner, "id", c.ID)
	return c, nil
}

// Load returns a conversation with its messages.
func (m *Manager) Load(ctx context.Context, owner, id string) (*Conversation, error) {
	return m.repo.Get(ctx, owner, id)
}

// List returns the owner's conversations without messages, most recent first.
func (m *Manager) List(ctx context.Context, owner string) ([]Conversation, error) {
	return m.repo.List(ctx, owner)
}

// Delete removes a conversation and returns the one to show next: the most
// recently updated remaining conversation, or a new one when none remain.
// Deleting an unknown ID is not an error.
func (m *Manager) Delete(ctx context.Context, owner, id string) (*Conversation, error) {
	unlock := m.lock(id)
	err := m.repo.Delete(ctx, owner, id)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("deleting conversation: %w", err)
	}

	remaining, err := m.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		return m.repo.Get(ctx, owner, remaining[0].ID)
	}
	return m.New(ctx, owner)
}

// Send runs one user turn and returns the updated conversation.
func (m *Manager) Send(ctx context.Context, owner, id, content string, sel Selection) (*Conversation, error) {
	return m.SendObserved(ctx, owner, id, content, sel, nil)
}

// SendObserved is Send with a callback that receives the conversation once
// the user message and the loading placeholder are stored.
func (m *Manager) SendObserved(ctx context.Context, owner, id, content string, sel Selection, onPending func(*Conversation)) (*Conversation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	unlock := m.lock(id)
	defer unlock()

	c, err := m.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	now := m.timestamp()
	firstTurn := c.userMessageCount() == 0
	c.Messages = append(c.Messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: now,
	})
	if firstTurn {
		c.Title = ProvisionalTitle(content)
	}
	history := toChatMessages(c.Messages)

	c.Messages = append(c.Messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: now,
		IsLoading: true,
	})
	c.UpdatedAt = now
	if err := m.repo.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("saving user message: %w", err)
	}
	if onPending != nil {
		onPending(c.clone())
	}

	resp, replyErr := m.reply(ctx, owner, history, sel)

	pending := &c.Messages[len(c.Messages)-1]
	pending.IsLoading = false
	pending.Timestamp = m.timestamp()
	if replyErr != nil {
		m.log.Error("chat reply failed", "owner", owner, "conversation", id, "error", replyErr)
		pending.Content = ErrorReply
	} else {
		pending.Content = resp.Message
		pending.Suggestions = resp.Suggestions
		if resp.DraftContent != nil {
			title := resp.DraftContent.Title
			if title == "" {
				title = c.Title
			}
			c.Draft = &Draft{Title: title, Content: resp.DraftContent.Content, State: DraftPending}
		}
		c.Stage = prompt.Next(c.Stage, resp.FollowUp, resp.DraftContent != nil)
		if firstTurn {
			c.Title = m.finalTitle(content, resp)
		}
	}
	c.UpdatedAt = pending.Timestamp

	// The reply is stored even when the caller went away mid-turn.
	if err := m.repo.Put(context.WithoutCancel(ctx), c); err != nil {
		return nil, fmt.Errorf("saving reply: %w", err)
	}
	return c, nil
}

func (m *Manager) reply(ctx context.Context, owner string, history []chat.Message, sel Selection) (*chat.Response, error) {
	ready, err := m.corpus.Ready(ctx, owner)
	if err != nil {
		m.log.Warn("checking corpus", "owner", owner, "error", err)
		ready = false
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.backend.Reply(ctx, chat.Request{
		Owner:     owner,
		Messages:  history,
		Style:     sel.Style,
		Purpose:   sel.Purpose,
		HasCorpus: ready,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Message) == "" {
		return nil, errors.New("backend returned an empty message")
	}
	return resp, nil
}

// finalTitle prefers the topic heuristic and falls back to a title the model
// suggested, then to the first words of the message.
func (m *Manager) finalTitle(content string, resp *chat.Response) string {
	if topic := extractTopic(strings.Join(strings.Fields(content), " ")); topic != "" {
		return topic
	}
	if resp.Title != "" && !resp.FollowUp {
		return truncate(resp.Title, provisionalTitleLength)
	}
	return FinalTitle(content)
}

func toChatMessages(msgs []Message) []chat.Message {
	out := make([]chat.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsLoading {
			continue
		}
		out = append(out, chat.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

// ConfirmDraft saves the pending draft to the owner's corpus.
func (m *Manager) ConfirmDraft(ctx context.Context, owner, id string) (*Conversation, *corpus.Document, error) {
	unlock := m.lock(id)
	defer unlock()

	c, err := m.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}
	draft := c.PendingDraft()
	if draft == nil {
		return nil, nil, ErrNoDraft
	}

	doc, err := m.corpus.AddText(ctx, owner, draft.Title, draft.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("saving draft to corpus: %w", err)
	}

	now := m.timestamp()
	draft.State = DraftSaved
	draft.DocumentID = doc.ID
	c.Documents = append(c.Documents, doc.ID)
	c.Stage = prompt.StageSaved
	c.Messages = append(c.Messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   fmt.Sprintf("Saved %q to your writing samples.", doc.Title),
		Timestamp: now,
	})
	c.UpdatedAt = now
	if err := m.repo.Put(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("saving conversation: %w", err)
	}
	m.log.Info("draft saved", "owner", owner, "conversation", id, "document", doc.ID)
	return c, doc, nil
}

// DiscardDraft drops the pending draft.
func (m *Manager) DiscardDraft(ctx context.Context, owner, id string) (*Conversation, error) {
	unlock := m.lock(id)
	defer unlock()

	c, err := m.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	draft := c.PendingDraft()
	if draft == nil {
		return nil, ErrNoDraft
	}
	draft.State = DraftDiscarded
	c.Stage = ""
	c.UpdatedAt = m.timestamp()
	if err := m.repo.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("saving conversation: %w", err)
	}
	return c, nil
}
