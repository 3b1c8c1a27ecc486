package domain

import (
	"strings"
	"time"
)

// Difficulty labels a quiz for students; it carries no scoring weight.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// OptionsPerQuestion is fixed; correctness is positional within the option slice.
const OptionsPerQuestion = 4

// Unanswered marks an answer-set slot the student never filled in.
const Unanswered = -1

// DefaultDurationMinutes applies when a quiz does not set its own time limit.
const DefaultDurationMinutes = 10

// Question models an MCQ question with exactly one correct option,
// identified by position.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Quiz is an ordered collection of questions published by an educator.
// Quizzes are immutable once published; an edit is a new quiz.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject,omitempty"`
	Difficulty      Difficulty `json:"difficulty"`
	Questions       []Question `json:"questions"`
	DurationMinutes int        `json:"durationMinutes"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Duration returns the attempt time limit, falling back to the default
// when the quiz does not specify one.
func (q Quiz) Duration() time.Duration {
	minutes := q.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Result records one completed attempt. Created exactly once per
// finalization and never mutated afterwards.
type Result struct {
	QuizID      string    `json:"quizId"`
	StudentName string    `json:"studentName"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Note is an educator study note; plain persistence record, no core logic.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry is one ranked row of a quiz's standings. Recomputed
// from the result collection on demand, never persisted.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	StudentName string    `json:"studentName"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Badges is the gamification snapshot for one student.
type Badges struct {
	PerfectScore bool `json:"perfectScore"`
	Streak       int  `json:"streak"`
	TopThree     bool `json:"topThree"`
}

// NormalizeName folds a free-text student name into the identity key used
// for all grouping: leading/trailing whitespace trimmed, case folded.
// Names are not verified, so collisions are possible and accepted.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
