package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"classquiz-service/internal/domain"
)

// QuizReader serves quiz content on the attempt hot path (cache/backing store).
type QuizReader interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizStore persists published quizzes. Quizzes are immutable once saved;
// an edit publishes a new quiz.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// ResultStore is the append-only attempt record collaborator. Subscribe
// delivers the full current collection, ordered by submission time
// descending, on every change.
type ResultStore interface {
	Append(ctx context.Context, result domain.Result) error
	ByQuiz(ctx context.Context, quizID string) ([]domain.Result, error)
	All(ctx context.Context) ([]domain.Result, error)
	Subscribe(ctx context.Context) (<-chan []domain.Result, func(), error)
}

// NoteStore persists educator study notes.
type NoteStore interface {
	SaveNote(ctx context.Context, note domain.Note) error
	ListNotes(ctx context.Context) ([]domain.Note, error)
	DeleteNote(ctx context.Context, noteID string) error
}

// GenerationRequest is the input to the AI quiz-generation collaborator.
type GenerationRequest struct {
	Topic         string            `json:"topic,omitempty"`
	Document      string            `json:"document,omitempty"`
	QuestionCount int               `json:"questionCount"`
	Difficulty    domain.Difficulty `json:"difficulty"`
}

// Generator is the AI quiz-generation collaborator. Implementations own
// structural validation of their response; the core never inspects
// generated content beyond shape.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (domain.Quiz, error)
}

// QuizService wires the stores and collaborators into the core use cases.
type QuizService struct {
	quizzes     QuizStore
	reader      QuizReader
	results     ResultStore
	notes       NoteStore
	generator   Generator
	evaluator   *GamificationEvaluator
	sessionOpts []SessionOption
}

func NewQuizService(quizzes QuizStore, reader QuizReader, results ResultStore, notes NoteStore, generator Generator) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		reader:    reader,
		results:   results,
		notes:     notes,
		generator: generator,
		evaluator: NewGamificationEvaluator(),
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps in
// sessions and streak evaluation.
func NewQuizServiceWithClock(quizzes QuizStore, reader QuizReader, results ResultStore, notes NoteStore, generator Generator, now func() time.Time) *QuizService {
	s := NewQuizService(quizzes, reader, results, notes, generator)
	s.evaluator = NewGamificationEvaluatorWithClock(now)
	s.sessionOpts = []SessionOption{WithClock(now), WithManualTimer()}
	return s
}

// PublishQuiz validates the quiz structurally and appends it to the store.
// A missing ID or creation timestamp is filled in here.
func (s *QuizService) PublishQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = newID()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}
	if err := ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: save quiz: %v", domain.ErrPersistence, err)
	}
	return quiz, nil
}

// GetQuiz loads one quiz through the cached reader.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.reader.GetQuiz(ctx, quizID)
}

// ListQuizzes returns all published quizzes, newest first.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list quizzes: %v", domain.ErrPersistence, err)
	}
	return quizzes, nil
}

// DeleteQuiz removes a published quiz. Historical results stay untouched.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return fmt.Errorf("%w: delete quiz: %v", domain.ErrPersistence, err)
	}
	return nil
}

// StartAttempt loads the quiz and starts a timed attempt session whose
// finalization appends exactly one Result to the store.
func (s *QuizService) StartAttempt(ctx context.Context, quizID, studentName string) (*AttemptSession, error) {
	quiz, err := s.reader.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	session := NewAttemptSession(quiz, s.results.Append, s.sessionOpts...)
	if err := session.Start(studentName); err != nil {
		return nil, err
	}
	return session, nil
}

// Standings computes the deduplicated, ranked leaderboard for one quiz.
func (s *QuizService) Standings(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	results, err := s.results.ByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("%w: load results: %v", domain.ErrPersistence, err)
	}
	return Standings(quizID, results), nil
}

// BadgesFor evaluates the gamification snapshot for one student over their
// full attempt history.
func (s *QuizService) BadgesFor(ctx context.Context, studentName string) (domain.Badges, error) {
	history, err := s.results.All(ctx)
	if err != nil {
		return domain.Badges{}, fmt.Errorf("%w: load results: %v", domain.ErrPersistence, err)
	}

	standings := make(map[string][]domain.LeaderboardEntry)
	name := domain.NormalizeName(studentName)
	for _, r := range history {
		if domain.NormalizeName(r.StudentName) != name {
			continue
		}
		if _, ok := standings[r.QuizID]; ok {
			continue
		}
		standings[r.QuizID] = Standings(r.QuizID, history)
	}
	return s.evaluator.Evaluate(studentName, history, standings), nil
}

// GenerateQuiz asks the generation collaborator for a quiz. The result is
// returned unpublished; a failed or malformed generation yields nothing.
func (s *QuizService) GenerateQuiz(ctx context.Context, req GenerationRequest) (domain.Quiz, error) {
	if s.generator == nil {
		return domain.Quiz{}, fmt.Errorf("%w: no generator configured", domain.ErrGeneration)
	}
	quiz, err := s.generator.Generate(ctx, req)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return quiz, nil
}

// SaveNote appends or updates an educator note.
func (s *QuizService) SaveNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	if note.ID == "" {
		note.ID = newID()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	if err := s.notes.SaveNote(ctx, note); err != nil {
		return domain.Note{}, fmt.Errorf("%w: save note: %v", domain.ErrPersistence, err)
	}
	return note, nil
}

// ListNotes returns all notes, newest first.
func (s *QuizService) ListNotes(ctx context.Context) ([]domain.Note, error) {
	notes, err := s.notes.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %v", domain.ErrPersistence, err)
	}
	return notes, nil
}

// DeleteNote removes a note by ID.
func (s *QuizService) DeleteNote(ctx context.Context, noteID string) error {
	if err := s.notes.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("%w: delete note: %v", domain.ErrPersistence, err)
	}
	return nil
}

// ValidateQuiz checks the structural shape a published quiz must have:
// a title, at least one question, exactly four options per question, and
// a correct index addressing one of them.
func ValidateQuiz(quiz domain.Quiz) error {
	if quiz.Title == "" {
		return fmt.Errorf("%w: missing title", domain.ErrInvalidQuiz)
	}
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("%w: no questions", domain.ErrInvalidQuiz)
	}
	for i, q := range quiz.Questions {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", domain.ErrInvalidQuiz, i)
		}
		if len(q.Options) != domain.OptionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options, want %d", domain.ErrInvalidQuiz, i, len(q.Options), domain.OptionsPerQuestion)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct index %d out of range", domain.ErrInvalidQuiz, i, q.CorrectIndex)
		}
	}
	return nil
}

// newID returns a random 16-hex-char identifier.
func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
