// Package export renders quizzes, scorecards, and standings into
// downloadable documents. It is a pure sink: nothing here feeds back into
// the core.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"classquiz-service/internal/domain"
)

var optionLabels = [domain.OptionsPerQuestion]string{"A", "B", "C", "D"}

// WriteQuizSheet renders a printable quiz. With includeAnswers the correct
// option and explanation are appended per question (the educator copy).
func WriteQuizSheet(w io.Writer, quiz domain.Quiz, includeAnswers bool) error {
	header := quiz.Title
	if quiz.Subject != "" {
		header += " - " + quiz.Subject
	}
	if _, err := fmt.Fprintf(w, "%s\nDifficulty: %s | Time limit: %d minutes | Questions: %d\n\n",
		header, quiz.Difficulty, quiz.DurationMinutes, len(quiz.Questions)); err != nil {
		return err
	}

	for i, q := range quiz.Questions {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, q.Text); err != nil {
			return err
		}
		for j, opt := range q.Options {
			if _, err := fmt.Fprintf(w, "   %s) %s\n", label(j), opt); err != nil {
				return err
			}
		}
		if includeAnswers {
			if _, err := fmt.Fprintf(w, "   Answer: %s\n", label(q.CorrectIndex)); err != nil {
				return err
			}
			if q.Explanation != "" {
				if _, err := fmt.Fprintf(w, "   Explanation: %s\n", q.Explanation); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteScorecard renders one student's finalized attempt, question by
// question, marking unanswered and incorrect selections.
func WriteScorecard(w io.Writer, quiz domain.Quiz, result domain.Result, answers []int) error {
	if _, err := fmt.Fprintf(w, "Scorecard - %s\nStudent: %s\nScore: %d/%d\nSubmitted: %s\n\n",
		quiz.Title, result.StudentName, result.Score, result.Total,
		result.SubmittedAt.Format("2006-01-02 15:04")); err != nil {
		return err
	}

	for i, q := range quiz.Questions {
		answer := domain.Unanswered
		if i < len(answers) {
			answer = answers[i]
		}

		verdict := "unanswered"
		picked := "-"
		if answer != domain.Unanswered && answer >= 0 && answer < len(q.Options) {
			picked = label(answer) + ") " + q.Options[answer]
			if answer == q.CorrectIndex {
				verdict = "correct"
			} else {
				verdict = "incorrect"
			}
		}

		if _, err := fmt.Fprintf(w, "%d. %s\n   Your answer: %s [%s]\n   Correct answer: %s) %s\n",
			i+1, q.Text, picked, verdict, label(q.CorrectIndex), q.Options[q.CorrectIndex]); err != nil {
			return err
		}
		if q.Explanation != "" && verdict != "correct" {
			if _, err := fmt.Fprintf(w, "   Explanation: %s\n", q.Explanation); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteStandingsCSV renders a leaderboard as CSV for spreadsheets.
func WriteStandingsCSV(w io.Writer, entries []domain.LeaderboardEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "student", "score", "total", "submitted_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.StudentName,
			strconv.Itoa(e.Score),
			strconv.Itoa(e.Total),
			e.SubmittedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func label(index int) string {
	if index >= 0 && index < len(optionLabels) {
		return optionLabels[index]
	}
	return strconv.Itoa(index)
}
