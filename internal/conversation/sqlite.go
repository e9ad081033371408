package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kakuhq/kaku/internal/db"
	"github.com/kakuhq/kaku/internal/prompt"
)

// SQLiteRepository persists conversations in the Kaku SQLite database.
type SQLiteRepository struct {
	db *db.DB
}

// NewSQLiteRepository creates a repository backed by d.
func NewSQLiteRepository(d *db.DB) *SQLiteRepository {
	return &SQLiteRepository{db: d}
}

func (s *SQLiteRepository) Put(ctx context.Context, c *Conversation) error {
	docs, err := json.Marshal(c.Documents)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}
	var draft string
	if c.Draft != nil {
		b, err := json.Marshal(c.Draft)
		if err != nil {
			return fmt.Errorf("marshalling draft: %w", err)
		}
		draft = string(b)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, owner, title, documents, draft, stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			documents = excluded.documents,
			draft = excluded.draft,
			stage = excluded.stage,
			updated_at = excluded.updated_at
		WHERE conversations.owner = excluded.owner`,
		c.ID, c.Owner, c.Title, string(docs), draft, string(c.Stage),
		c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upserting conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The ID belongs to another owner.
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, c.ID); err != nil {
		return fmt.Errorf("replacing messages: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, conversation_id, seq, role, content, is_loading, suggestions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing message insert: %w", err)
	}
	defer stmt.Close()
	for i, m := range c.Messages {
		suggestions, err := json.Marshal(nonNil(m.Suggestions))
		if err != nil {
			return fmt.Errorf("marshalling suggestions: %w", err)
		}
		loading := 0
		if m.IsLoading {
			loading = 1
		}
		if _, err := stmt.ExecContext(ctx, m.ID, c.ID, i, string(m.Role), m.Content, loading, string(suggestions), m.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("inserting message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing conversation: %w", err)
	}
	return nil
}

const conversationColumns = `id, owner, title, documents, draft, stage, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var (
		c                  Conversation
		docs, draft, stage string
		created, updated   int64
	)
	if err := row.Scan(&c.ID, &c.Owner, &c.Title, &docs, &draft, &stage, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(docs), &c.Documents); err != nil {
		return nil, fmt.Errorf("decoding documents of %s: %w", c.ID, err)
	}
	if c.Documents == nil {
		c.Documents = []string{}
	}
	if draft != "" {
		c.Draft = &Draft{}
		if err := json.Unmarshal([]byte(draft), c.Draft); err != nil {
			return nil, fmt.Errorf("decoding draft of %s: %w", c.ID, err)
		}
	}
	c.Stage = prompt.Stage(stage)
	c.CreatedAt = time.Unix(0, created).UTC()
	c.UpdatedAt = time.Unix(0, updated).UTC()
	return &c, nil
}

func (s *SQLiteRepository) Get(ctx context.Context, owner, id string) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE owner = ? AND id = ?`, owner, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, is_loading, suggestions, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	c.Messages = []Message{}
	for rows.Next() {
		var (
			m           Message
			role        string
			loading     int
			suggestions string
			ts          int64
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &loading, &suggestions, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = Role(role)
		m.IsLoading = loading != 0
		m.Timestamp = time.Unix(0, ts).UTC()
		if err := json.Unmarshal([]byte(suggestions), &m.Suggestions); err != nil {
			return nil, fmt.Errorf("decoding suggestions: %w", err)
		}
		if len(m.Suggestions) == 0 {
			m.Suggestions = nil
		}
		c.Messages = append(c.Messages, m)
	}
	return c, rows.Err()
}

func (s *SQLiteRepository) List(ctx context.Context, owner string) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE owner = ? ORDER BY updated_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	out := []Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteRepository) Delete(ctx context.Context, owner, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
			return fmt.Errorf("deleting messages: %w", err)
		}
	}
	return tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
