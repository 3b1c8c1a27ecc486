package app

import (
	"sort"
	"time"

	"classquiz-service/internal/domain"
)

// GamificationEvaluator derives badges and streaks from a student's full
// result history. Every evaluation is a pure function of the snapshot it
// is handed; nothing is cached between reads.
type GamificationEvaluator struct {
	now func() time.Time
}

func NewGamificationEvaluator() *GamificationEvaluator {
	return NewGamificationEvaluatorWithClock(time.Now)
}

// NewGamificationEvaluatorWithClock allows deterministic "today" in tests.
func NewGamificationEvaluatorWithClock(now func() time.Time) *GamificationEvaluator {
	return &GamificationEvaluator{now: now}
}

// Evaluate computes the badge snapshot for one student. history is the
// full result collection (it is filtered by normalized name here);
// standingsByQuiz maps quiz IDs to their leaderboard output and feeds the
// top-three badge.
func (g *GamificationEvaluator) Evaluate(studentName string, history []domain.Result, standingsByQuiz map[string][]domain.LeaderboardEntry) domain.Badges {
	name := domain.NormalizeName(studentName)
	mine := make([]domain.Result, 0, len(history))
	for _, r := range history {
		if domain.NormalizeName(r.StudentName) == name {
			mine = append(mine, r)
		}
	}

	return domain.Badges{
		PerfectScore: hasPerfectScore(mine),
		Streak:       g.streak(mine),
		TopThree:     inTopThree(name, standingsByQuiz),
	}
}

// hasPerfectScore reports whether any attempt answered every question.
func hasPerfectScore(results []domain.Result) bool {
	for _, r := range results {
		if r.Total > 0 && r.Score == r.Total {
			return true
		}
	}
	return false
}

// streak counts consecutive calendar days of activity ending today or
// yesterday. Multiple attempts on one day count once; the first gap in the
// backward walk ends the streak, and a most-recent day older than
// yesterday means the streak has lapsed to zero.
func (g *GamificationEvaluator) streak(results []domain.Result) int {
	if len(results) == 0 {
		return 0
	}

	daySet := make(map[time.Time]struct{}, len(results))
	for _, r := range results {
		daySet[midnight(r.SubmittedAt)] = struct{}{}
	}
	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := midnight(g.now())
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		if !days[i].AddDate(0, 0, -1).Equal(days[i+1]) {
			break
		}
		streak++
	}
	return streak
}

// inTopThree reports whether the student holds one of the first three
// ranks on any quiz they appear in.
func inTopThree(normalizedName string, standingsByQuiz map[string][]domain.LeaderboardEntry) bool {
	for _, entries := range standingsByQuiz {
		for _, entry := range entries {
			if entry.Rank > 3 {
				break
			}
			if domain.NormalizeName(entry.StudentName) == normalizedName {
				return true
			}
		}
	}
	return false
}

// midnight truncates a timestamp to local calendar midnight.
func midnight(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
