package domain

import "errors"

var (
	// ErrEmptyStudentName is returned when an attempt is started without a usable name.
	ErrEmptyStudentName = errors.New("student name is empty")
	// ErrSessionNotActive is returned when an operation requires an active attempt.
	ErrSessionNotActive = errors.New("attempt session is not active")
	// ErrSessionAlreadyStarted is returned when Start is called on a non-idle session.
	ErrSessionAlreadyStarted = errors.New("attempt session already started")
	// ErrQuestionIndexOutOfRange indicates a selection addressed a question that does not exist.
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	// ErrOptionIndexOutOfRange indicates a selection addressed an option that does not exist.
	ErrOptionIndexOutOfRange = errors.New("option index out of range")
	// ErrInvalidQuiz indicates a quiz failed structural validation on publish.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoteNotFound indicates the requested note does not exist.
	ErrNoteNotFound = errors.New("note not found")
	// ErrPersistence wraps store failures; callers may retry the action manually.
	ErrPersistence = errors.New("persistence failure")
	// ErrGeneration wraps AI-generation failures; partial payloads are discarded.
	ErrGeneration = errors.New("quiz generation failed")
)
