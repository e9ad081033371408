package corpus

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kakuhq/kaku/internal/db"
)

// SQLiteRepository persists documents in the Kaku SQLite database.
type SQLiteRepository struct {
	db *db.DB
}

// NewSQLiteRepository creates a repository backed by d.
func NewSQLiteRepository(d *db.DB) *SQLiteRepository {
	return &SQLiteRepository{db: d}
}

func (s *SQLiteRepository) Put(ctx context.Context, doc *Document) error {
	styleJSON, err := json.Marshal(doc.Style)
	if err != nil {
		return fmt.Errorf("marshalling style metrics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("replacing chunks: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
			(id, owner, title, content, file_name, file_type, uploaded_at, word_count, character_count, style)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Owner, doc.Title, doc.Content,
		doc.Metadata.FileName, doc.Metadata.FileType, doc.Metadata.UploadedAt.UnixNano(),
		doc.Metadata.WordCount, doc.Metadata.CharacterCount, string(styleJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (id, document_id, owner, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range doc.Chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, doc.ID, doc.Owner, c.Index, c.Content, encodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing document: %w", err)
	}
	return nil
}

const documentColumns = `id, owner, title, content, file_name, file_type, uploaded_at, word_count, character_count, style`

func (s *SQLiteRepository) Get(ctx context.Context, owner, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner = ? AND id = ?`, owner, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, chunk_index, content, embedding
		FROM document_chunks WHERE document_id = ? ORDER BY chunk_index`, id)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		c.DocumentTitle = doc.Title
		doc.Chunks = append(doc.Chunks, c)
	}
	return doc, rows.Err()
}

func (s *SQLiteRepository) List(ctx context.Context, owner string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner = ? ORDER BY uploaded_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteRepository) Delete(ctx context.Context, owner, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE owner = ? AND document_id = ?`, owner, id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE owner = ? AND id = ?`, owner, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteRepository) Clear(ctx context.Context, owner string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteRepository) ListChunks(ctx context.Context, owner string) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.embedding, d.title
		FROM document_chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.owner = ?
		ORDER BY d.uploaded_at, d.id, c.chunk_index`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c    Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &blob, &c.DocumentTitle); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if c.Embedding, err = decodeVector(blob); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (*Document, error) {
	var (
		doc        Document
		uploadedAt int64
		styleJSON  string
	)
	err := sc.Scan(&doc.ID, &doc.Owner, &doc.Title, &doc.Content,
		&doc.Metadata.FileName, &doc.Metadata.FileType, &uploadedAt,
		&doc.Metadata.WordCount, &doc.Metadata.CharacterCount, &styleJSON)
	if err != nil {
		return nil, err
	}
	doc.Metadata.UploadedAt = time.Unix(0, uploadedAt).UTC()
	if err := json.Unmarshal([]byte(styleJSON), &doc.Style); err != nil {
		return nil, fmt.Errorf("decoding style metrics of %s: %w", doc.ID, err)
	}
	return &doc, nil
}

func scanChunk(sc scanner) (Chunk, error) {
	var (
		c    Chunk
		blob []byte
	)
	if err := sc.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &blob); err != nil {
		return Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	vec, err := decodeVector(blob)
	if err != nil {
		return Chunk{}, err
	}
	c.Embedding = vec
	return c, nil
}

// encodeVector stores a vector as little-endian float32s. A missing vector
// is stored as NULL.
func encodeVector(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt embedding: %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
