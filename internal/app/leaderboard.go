package app

import (
	"sort"

	"classquiz-service/internal/domain"
)

// Standings turns the raw result collection for one quiz into a ranked,
// deduplicated leaderboard. Repeated submissions with the same normalized
// name and score (page reloads re-firing persistence) collapse to the
// earliest occurrence, then entries are ordered by score descending with
// ties going to whoever reached the score first. Deterministic and
// idempotent for a fixed input set.
func Standings(quizID string, results []domain.Result) []domain.LeaderboardEntry {
	attempts := make([]domain.Result, 0, len(results))
	for _, r := range results {
		if r.QuizID == quizID {
			attempts = append(attempts, r)
		}
	}

	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].SubmittedAt.Before(attempts[j].SubmittedAt)
	})

	type dedupKey struct {
		name  string
		score int
	}
	seen := make(map[dedupKey]struct{}, len(attempts))
	unique := attempts[:0]
	for _, r := range attempts {
		key := dedupKey{name: domain.NormalizeName(r.StudentName), score: r.Score}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].Score != unique[j].Score {
			return unique[i].Score > unique[j].Score
		}
		return unique[i].SubmittedAt.Before(unique[j].SubmittedAt)
	})

	entries := make([]domain.LeaderboardEntry, 0, len(unique))
	for i, r := range unique {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        i + 1,
			StudentName: r.StudentName,
			Score:       r.Score,
			Total:       r.Total,
			SubmittedAt: r.SubmittedAt,
		})
	}
	return entries
}
