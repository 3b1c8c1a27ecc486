package memory

import (
	"context"
	"sort"
	"sync"

	"classquiz-service/internal/domain"
)

// ResultStore is an append-only in-memory result collection with live
// snapshot subscriptions: every append pushes the full collection, ordered
// by submission time descending, to all subscribers.
type ResultStore struct {
	mu          sync.RWMutex
	results     []domain.Result
	subscribers map[chan []domain.Result]struct{}
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		subscribers: make(map[chan []domain.Result]struct{}),
	}
}

func (s *ResultStore) Append(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	s.broadcastLocked()
	return nil
}

func (s *ResultStore) ByQuiz(_ context.Context, quizID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Result, 0, len(s.results))
	for _, r := range s.results {
		if r.QuizID == quizID {
			results = append(results, r)
		}
	}
	return results, nil
}

func (s *ResultStore) All(_ context.Context) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

// Subscribe registers a snapshot observer. The channel receives the
// current collection immediately and again after every append. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *ResultStore) Subscribe(_ context.Context) (<-chan []domain.Result, func(), error) {
	ch := make(chan []domain.Result, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *ResultStore) broadcastLocked() {
	snapshot := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow reader never blocks a write.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *ResultStore) snapshotLocked() []domain.Result {
	snapshot := make([]domain.Result, len(s.results))
	copy(snapshot, s.results)
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].SubmittedAt.After(snapshot[j].SubmittedAt)
	})
	return snapshot
}
