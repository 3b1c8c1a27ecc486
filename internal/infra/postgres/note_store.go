package postgres

import (
	"context"
	"fmt"

	"classquiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// NoteStore persists educator study notes.
type NoteStore struct {
	pool *pgxpool.Pool
}

func NewNoteStore(pool *pgxpool.Pool) *NoteStore {
	return &NoteStore{pool: pool}
}

func (s *NoteStore) SaveNote(ctx context.Context, note domain.Note) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notes (id, title, body, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body`,
		note.ID, note.Title, note.Body, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}

func (s *NoteStore) ListNotes(ctx context.Context) ([]domain.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, body, created_at FROM notes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) DeleteNote(ctx context.Context, noteID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id=$1`, noteID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
