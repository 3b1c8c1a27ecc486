package app_test

import (
	"testing"
	"time"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
)

var gamifNow = time.Date(2025, 3, 10, 18, 30, 0, 0, time.Local)

func evaluator() *app.GamificationEvaluator {
	return app.NewGamificationEvaluatorWithClock(func() time.Time { return gamifNow })
}

func resultOnDay(name string, daysAgo int, score, total int) domain.Result {
	return domain.Result{
		QuizID:      "quiz-1",
		StudentName: name,
		Score:       score,
		Total:       total,
		SubmittedAt: gamifNow.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour),
	}
}

func TestPerfectScoreBadge(t *testing.T) {
	history := []domain.Result{
		resultOnDay("Alice", 0, 3, 5),
		resultOnDay("Alice", 0, 4, 4),
	}

	badges := evaluator().Evaluate("Alice", history, nil)
	if !badges.PerfectScore {
		t.Fatalf("expected perfect-score badge from the 4/4 attempt")
	}

	badges = evaluator().Evaluate("Alice", history[:1], nil)
	if badges.PerfectScore {
		t.Fatalf("3/5 alone must not earn the badge")
	}
}

func TestPerfectScoreIgnoresOtherStudents(t *testing.T) {
	history := []domain.Result{
		resultOnDay("Bob", 0, 4, 4),
		resultOnDay("Alice", 0, 1, 4),
	}
	if badges := evaluator().Evaluate("Alice", history, nil); badges.PerfectScore {
		t.Fatalf("Bob's perfect score must not credit Alice")
	}
}

func TestStreakConsecutiveDays(t *testing.T) {
	history := []domain.Result{
		resultOnDay("Alice", 0, 1, 5),
		resultOnDay("Alice", 1, 2, 5),
		resultOnDay("Alice", 2, 3, 5),
	}

	badges := evaluator().Evaluate("Alice", history, nil)
	if badges.Streak != 3 {
		t.Fatalf("expected streak 3, got %d", badges.Streak)
	}

	// A result on day -4 skips day -3; the streak stays 3.
	history = append(history, resultOnDay("Alice", 4, 1, 5))
	badges = evaluator().Evaluate("Alice", history, nil)
	if badges.Streak != 3 {
		t.Fatalf("expected a gap to cap the streak at 3, got %d", badges.Streak)
	}
}

func TestStreakCountsEachDayOnce(t *testing.T) {
	history := []domain.Result{
		resultOnDay("Alice", 0, 1, 5),
		resultOnDay("Alice", 0, 2, 5),
		resultOnDay("Alice", 0, 3, 5),
		resultOnDay("Alice", 1, 1, 5),
	}
	if badges := evaluator().Evaluate("Alice", history, nil); badges.Streak != 2 {
		t.Fatalf("expected same-day repeats to count once, streak 2, got %d", badges.Streak)
	}
}

func TestStreakStartingYesterdayStillCounts(t *testing.T) {
	history := []domain.Result{
		resultOnDay("Alice", 1, 1, 5),
		resultOnDay("Alice", 2, 1, 5),
	}
	if badges := evaluator().Evaluate("Alice", history, nil); badges.Streak != 2 {
		t.Fatalf("a streak ending yesterday is still live, expected 2, got %d", badges.Streak)
	}
}

func TestStreakLapses(t *testing.T) {
	history := []domain.Result{
		resultOnDay("Alice", 2, 1, 5),
		resultOnDay("Alice", 3, 1, 5),
	}
	if badges := evaluator().Evaluate("Alice", history, nil); badges.Streak != 0 {
		t.Fatalf("a streak whose last day is before yesterday has lapsed, got %d", badges.Streak)
	}
}

func TestStreakEmptyHistory(t *testing.T) {
	if badges := evaluator().Evaluate("Alice", nil, nil); badges.Streak != 0 {
		t.Fatalf("expected streak 0 for no history, got %d", badges.Streak)
	}
}

func TestTopThreeBadge(t *testing.T) {
	standings := map[string][]domain.LeaderboardEntry{
		"quiz-1": {
			{Rank: 1, StudentName: "Bob", Score: 5},
			{Rank: 2, StudentName: "Carol", Score: 4},
			{Rank: 3, StudentName: "ALICE", Score: 3},
			{Rank: 4, StudentName: "Dave", Score: 2},
		},
	}
	history := []domain.Result{resultOnDay("Alice", 0, 3, 5)}

	badges := evaluator().Evaluate("alice", history, standings)
	if !badges.TopThree {
		t.Fatalf("rank 3 under a case-varied name must earn the badge")
	}

	standings["quiz-1"][2].StudentName = "Erin"
	badges = evaluator().Evaluate("alice", history, standings)
	if badges.TopThree {
		t.Fatalf("rank 4 must not earn the badge")
	}
}
