package memory

import (
	"context"
	"testing"
	"time"

	"classquiz-service/internal/domain"
)

func sampleResult(name string, minute int) domain.Result {
	return domain.Result{
		QuizID:      "quiz-1",
		StudentName: name,
		Score:       3,
		Total:       5,
		SubmittedAt: time.Date(2025, 3, 10, 9, minute, 0, 0, time.UTC),
	}
}

func TestResultStoreAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	_ = store.Append(ctx, sampleResult("Alice", 1))
	_ = store.Append(ctx, sampleResult("Bob", 2))
	_ = store.Append(ctx, domain.Result{QuizID: "quiz-2", StudentName: "Carol", SubmittedAt: time.Now()})

	byQuiz, err := store.ByQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("by quiz: %v", err)
	}
	if len(byQuiz) != 2 {
		t.Fatalf("expected 2 quiz-1 results, got %d", len(byQuiz))
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	for i := 0; i < len(all)-1; i++ {
		if all[i].SubmittedAt.Before(all[i+1].SubmittedAt) {
			t.Fatalf("snapshot must be ordered newest first: %+v", all)
		}
	}
}

func TestResultStoreSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	_ = store.Append(ctx, sampleResult("Alice", 1))

	snapshots, cancel, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-snapshots
	if len(initial) != 1 {
		t.Fatalf("expected initial snapshot with 1 result, got %d", len(initial))
	}

	_ = store.Append(ctx, sampleResult("Bob", 2))
	update := <-snapshots
	if len(update) != 2 {
		t.Fatalf("expected full collection on update, got %d", len(update))
	}
}

func TestResultStoreSubscribeCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	snapshots, cancel, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-snapshots
	cancel()

	if _, ok := <-snapshots; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	// Appending after cancel must not panic.
	_ = store.Append(ctx, sampleResult("Alice", 1))
}
