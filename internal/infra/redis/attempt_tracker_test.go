package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAttemptTrackerSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tracker := NewAttemptTracker(client)
	ctx := context.Background()

	tracker.Track(ctx, sampleQuiz(), "  Alice ")
	if !mr.Exists("attempt:quiz-1:alice") {
		t.Fatalf("expected liveness key with normalized name")
	}

	tracker.Untrack(ctx, "quiz-1", "ALICE")
	if mr.Exists("attempt:quiz-1:alice") {
		t.Fatalf("expected liveness key removed")
	}
}

func TestAttemptTrackerKeysExpire(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tracker := NewAttemptTracker(client)

	quiz := sampleQuiz()
	tracker.Track(context.Background(), quiz, "Alice")

	mr.FastForward(quiz.Duration() + 1)
	if mr.Exists("attempt:quiz-1:alice") {
		t.Fatalf("expected liveness key to expire with the quiz duration")
	}
}
