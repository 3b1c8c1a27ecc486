package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"classquiz-service/internal/domain"
)

// State is the attempt-session lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateFinished State = "finished"
)

// AttemptSnapshot is the observable view of a session pushed to subscribers
// on every change (start, tick, selection, finalization, cancel).
type AttemptSnapshot struct {
	QuizID    string         `json:"quizId"`
	State     State          `json:"state"`
	Remaining int            `json:"remaining"`
	Answers   []int          `json:"answers"`
	Result    *domain.Result `json:"result,omitempty"`
}

// PersistFunc receives the finalized Result exactly once per attempt.
type PersistFunc func(context.Context, domain.Result) error

// AttemptSession is the timed state machine for one quiz attempt by one
// student. Idle until Start, Active while the countdown runs, Finished once
// finalized (terminal). Cancel returns an Active session to Idle without a
// Result. The countdown timer is acquired on Active entry and released on
// every exit path; a tick never fires after the session left Active.
type AttemptSession struct {
	quiz    domain.Quiz
	persist PersistFunc
	now     func() time.Time
	manual  bool

	mu          sync.Mutex
	state       State
	studentName string
	answers     []int
	remaining   int
	result      *domain.Result
	stopTimer   context.CancelFunc
	subscribers map[chan AttemptSnapshot]struct{}
}

// SessionOption configures an AttemptSession.
type SessionOption func(*AttemptSession)

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *AttemptSession) { s.now = now }
}

// WithManualTimer disables the background one-second ticker; the caller
// drives the countdown through Tick. Used by tests.
func WithManualTimer() SessionOption {
	return func(s *AttemptSession) { s.manual = true }
}

// NewAttemptSession builds an Idle session for the given quiz. persist is
// invoked with the Result on finalization; it may be nil when the caller
// only wants scoring.
func NewAttemptSession(quiz domain.Quiz, persist PersistFunc, opts ...SessionOption) *AttemptSession {
	s := &AttemptSession{
		quiz:        quiz,
		persist:     persist,
		now:         time.Now,
		state:       StateIdle,
		subscribers: make(map[chan AttemptSnapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the student name, allocates the answer set, arms the
// countdown, and transitions Idle -> Active.
func (s *AttemptSession) Start(studentName string) error {
	if domain.NormalizeName(studentName) == "" {
		return domain.ErrEmptyStudentName
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return domain.ErrSessionAlreadyStarted
	}

	s.studentName = studentName
	s.answers = make([]int, len(s.quiz.Questions))
	for i := range s.answers {
		s.answers[i] = domain.Unanswered
	}
	s.remaining = int(s.quiz.Duration() / time.Second)
	s.state = StateActive

	if !s.manual {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopTimer = cancel
		go s.runTimer(ctx)
	}
	s.broadcastLocked()
	s.mu.Unlock()
	return nil
}

// runTimer drives the one-second countdown until the session leaves Active.
func (s *AttemptSession) runTimer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Tick() {
				return
			}
		}
	}
}

// Tick decrements the remaining time by one second and auto-finalizes at
// zero regardless of how many questions are answered; the time limit is
// authoritative over completeness. Returns false once the session is no
// longer Active.
func (s *AttemptSession) Tick() bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		s.broadcastLocked()
		s.mu.Unlock()
		return true
	}
	s.remaining = 0
	result := s.finalizeLocked()
	s.mu.Unlock()

	if err := s.persistResult(result); err != nil {
		log.Printf("persist result for quiz %s: %v", result.QuizID, err)
	}
	return false
}

// SelectAnswer overwrites the answer at questionIndex. Valid only while
// Active; re-selecting the same question overwrites without error.
func (s *AttemptSession) SelectAnswer(questionIndex, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrSessionNotActive
	}
	if questionIndex < 0 || questionIndex >= len(s.answers) {
		return domain.ErrQuestionIndexOutOfRange
	}
	if optionIndex < 0 || optionIndex >= len(s.quiz.Questions[questionIndex].Options) {
		return domain.ErrOptionIndexOutOfRange
	}
	s.answers[questionIndex] = optionIndex
	s.broadcastLocked()
	return nil
}

// Submit finalizes an Active session manually. The core never gates on
// completeness; partial answer sets score normally. Calling Submit after
// the session is Finished returns the cached Result with no error and no
// second persistence write.
func (s *AttemptSession) Submit() (domain.Result, error) {
	s.mu.Lock()
	if s.state == StateFinished {
		result := *s.result
		s.mu.Unlock()
		return result, nil
	}
	if s.state != StateActive {
		s.mu.Unlock()
		return domain.Result{}, domain.ErrSessionNotActive
	}
	result := s.finalizeLocked()
	s.mu.Unlock()

	if err := s.persistResult(result); err != nil {
		// Surfaced, not retried; the session is Finished either way.
		return result, err
	}
	return result, nil
}

// Cancel discards an Active session and returns it to Idle. No Result is
// produced and nothing is persisted.
func (s *AttemptSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrSessionNotActive
	}
	s.releaseTimerLocked()
	s.state = StateIdle
	s.studentName = ""
	s.answers = nil
	s.remaining = 0
	s.broadcastLocked()
	return nil
}

// Close releases the timer and drops all subscribers. Safe to call in any
// state and more than once; the hosting transport calls it on disconnect.
func (s *AttemptSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseTimerLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// finalizeLocked freezes the answer set, scores it, and transitions to
// Finished. Callers must hold s.mu and invoke persistResult afterwards.
func (s *AttemptSession) finalizeLocked() domain.Result {
	s.releaseTimerLocked()
	result := domain.Result{
		QuizID:      s.quiz.ID,
		StudentName: s.studentName,
		Score:       Score(s.quiz, s.answers),
		Total:       len(s.quiz.Questions),
		SubmittedAt: s.now(),
	}
	s.result = &result
	s.state = StateFinished
	s.broadcastLocked()
	return result
}

// persistResult issues the single outstanding write for a finalization.
func (s *AttemptSession) persistResult(result domain.Result) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(context.Background(), result); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *AttemptSession) releaseTimerLocked() {
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

// State reports the current lifecycle state.
func (s *AttemptSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining reports the remaining seconds of an Active session.
func (s *AttemptSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Result returns the finalized Result once the session is Finished.
func (s *AttemptSession) Result() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// Subscribe registers an observer for session snapshots. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *AttemptSession) Subscribe() (<-chan AttemptSnapshot, func()) {
	ch := make(chan AttemptSnapshot, 8)

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
	return ch, cancel
}

func (s *AttemptSession) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks a tick.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *AttemptSession) snapshotLocked() AttemptSnapshot {
	answers := make([]int, len(s.answers))
	copy(answers, s.answers)
	return AttemptSnapshot{
		QuizID:    s.quiz.ID,
		State:     s.state,
		Remaining: s.remaining,
		Answers:   answers,
		Result:    s.result,
	}
}
