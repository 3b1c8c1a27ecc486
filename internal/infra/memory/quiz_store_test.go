package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"classquiz-service/internal/domain"
)

func TestQuizStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	first := sampleQuiz()
	second := sampleQuiz()
	second.ID = "quiz-2"
	second.CreatedAt = first.CreatedAt.Add(time.Hour)

	_ = store.SaveQuiz(ctx, first)
	_ = store.SaveQuiz(ctx, second)

	quizzes, err := store.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 2 || quizzes[0].ID != "quiz-2" {
		t.Fatalf("expected newest first, got %+v", quizzes)
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound after delete, got %v", err)
	}
	if err := store.DeleteQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound for double delete, got %v", err)
	}
}
