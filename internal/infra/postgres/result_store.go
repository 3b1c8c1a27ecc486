package postgres

import (
	"context"
	"fmt"
	"sync"

	"classquiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore is the append-only attempt record table.
// Notes:
//   - Rows are never updated or deleted; a Result is immutable once written.
//   - Live subscriptions are served by an in-process subscriber set fed on
//     every append, mirroring how the memory store broadcasts. Cross-instance
//     feeds would pair this with LISTEN/NOTIFY or a pub/sub projector.
type ResultStore struct {
	pool *pgxpool.Pool

	mu          sync.Mutex
	subscribers map[chan []domain.Result]struct{}
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{
		pool:        pool,
		subscribers: make(map[chan []domain.Result]struct{}),
	}
}

func (s *ResultStore) Append(ctx context.Context, result domain.Result) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results (quiz_id, student_name, score, total, submitted_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		result.QuizID, result.StudentName, result.Score, result.Total, result.SubmittedAt)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	s.broadcast(ctx)
	return nil
}

func (s *ResultStore) ByQuiz(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.query(ctx,
		`SELECT quiz_id, student_name, score, total, submitted_at
		 FROM results WHERE quiz_id=$1 ORDER BY submitted_at DESC`, quizID)
}

func (s *ResultStore) All(ctx context.Context) ([]domain.Result, error) {
	return s.query(ctx,
		`SELECT quiz_id, student_name, score, total, submitted_at
		 FROM results ORDER BY submitted_at DESC`)
}

// Subscribe registers a snapshot observer fed with the full collection on
// every append. The caller must invoke the returned cancel function.
func (s *ResultStore) Subscribe(ctx context.Context) (<-chan []domain.Result, func(), error) {
	initial, err := s.All(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.Result, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
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

func (s *ResultStore) broadcast(ctx context.Context) {
	s.mu.Lock()
	if len(s.subscribers) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	snapshot, err := s.All(ctx)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *ResultStore) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var r domain.Result
		if err := rows.Scan(&r.QuizID, &r.StudentName, &r.Score, &r.Total, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
