package redis

import (
	"context"

	"classquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AttemptTracker marks live attempts in Redis so operators can see who is
// currently inside a timed session. Keys expire with the quiz duration,
// so an abandoned browser tab cannot leave a marker behind forever.
type AttemptTracker struct {
	client *redis.Client
}

func NewAttemptTracker(client *redis.Client) *AttemptTracker {
	return &AttemptTracker{client: client}
}

// Track sets a liveness marker for the student's attempt. Best effort:
// tracking failures never block an attempt.
func (t *AttemptTracker) Track(ctx context.Context, quiz domain.Quiz, studentName string) {
	_ = t.client.Set(ctx, t.key(quiz.ID, studentName), "1", quiz.Duration()).Err()
}

// Untrack clears the marker on finalization or cancel.
func (t *AttemptTracker) Untrack(ctx context.Context, quizID, studentName string) {
	_ = t.client.Del(ctx, t.key(quizID, studentName)).Err()
}

func (t *AttemptTracker) key(quizID, studentName string) string {
	return "attempt:" + quizID + ":" + domain.NormalizeName(studentName)
}
