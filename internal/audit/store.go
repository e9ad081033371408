package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kakuhq/kaku/internal/db"
)

// Store provides persistence for audit entries.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Log inserts a new audit entry. Empty ID and Timestamp are filled in.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Owner == "" {
		return fmt.Errorf("audit entry has no owner")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, owner, created_at, action, document_id, summary, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Owner, entry.Timestamp.UnixNano(), string(entry.Action),
		entry.DocumentID, entry.Summary, entry.WordCount,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// QueryFilter controls which audit entries are returned by Query. Owner is
// required.
type QueryFilter struct {
	Owner      string
	Action     Action
	DocumentID string
	Since      *time.Time
	Limit      int
	Offset     int
}

// Query returns the matching entries, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	if filter.Owner == "" {
		return nil, fmt.Errorf("audit query needs an owner")
	}
	clauses := []string{"owner = ?"}
	args := []any{filter.Owner}

	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.DocumentID != "" {
		clauses = append(clauses, "document_id = ?")
		args = append(args, filter.DocumentID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}

	query := "SELECT id, owner, created_at, action, document_id, summary, word_count FROM audit_entries WHERE " +
		strings.Join(clauses, " AND ") + " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e      Entry
			ts     int64
			action string
		)
		if err := rows.Scan(&e.ID, &e.Owner, &ts, &action, &e.DocumentID, &e.Summary, &e.WordCount); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		e.Action = Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes the owner's entries older than before and returns how
// many were removed.
func (s *Store) DeleteBefore(ctx context.Context, owner string, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_entries WHERE owner = ? AND created_at < ?",
		owner, before.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}
