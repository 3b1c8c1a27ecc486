package memory

import (
	"context"
	"sort"
	"sync"

	"classquiz-service/internal/domain"
)

// NoteStore is an in-memory educator-note collection.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
}

func NewNoteStore() *NoteStore {
	return &NoteStore{notes: make(map[string]domain.Note)}
}

func (s *NoteStore) SaveNote(_ context.Context, note domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = note
	return nil
}

func (s *NoteStore) ListNotes(_ context.Context) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := make([]domain.Note, 0, len(s.notes))
	for _, note := range s.notes {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (s *NoteStore) DeleteNote(_ context.Context, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[noteID]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(s.notes, noteID)
	return nil
}
