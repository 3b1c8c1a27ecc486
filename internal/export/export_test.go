package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"classquiz-service/internal/domain"
)

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:         "quiz-1",
		Title:      "Everyday Grammar",
		Subject:    "English",
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.Question{
			{
				Text:         "Which sentence is correct?",
				Options:      []string{"He go.", "He goes.", "He going.", "He gone."},
				CorrectIndex: 1,
				Explanation:  "Third-person singular present takes -es.",
			},
			{
				Text:         "Pick the plural of 'child'.",
				Options:      []string{"childs", "childes", "children", "child"},
				CorrectIndex: 2,
			},
		},
		DurationMinutes: 5,
	}
}

func TestWriteQuizSheetStudentCopy(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuizSheet(&buf, sampleQuiz(), false); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Everyday Grammar - English") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "B) He goes.") {
		t.Fatalf("missing labeled option:\n%s", out)
	}
	if strings.Contains(out, "Answer:") {
		t.Fatalf("student copy must not expose answers:\n%s", out)
	}
}

func TestWriteQuizSheetAnswerKey(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuizSheet(&buf, sampleQuiz(), true); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Answer: B") || !strings.Contains(out, "Answer: C") {
		t.Fatalf("educator copy must include the answer key:\n%s", out)
	}
	if !strings.Contains(out, "Explanation: Third-person") {
		t.Fatalf("expected explanation in answer key:\n%s", out)
	}
}

func TestWriteScorecard(t *testing.T) {
	quiz := sampleQuiz()
	result := domain.Result{
		QuizID:      quiz.ID,
		StudentName: "Alice",
		Score:       1,
		Total:       2,
		SubmittedAt: time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := WriteScorecard(&buf, quiz, result, []int{1, domain.Unanswered}); err != nil {
		t.Fatalf("write scorecard: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Score: 1/2") {
		t.Fatalf("missing score line:\n%s", out)
	}
	if !strings.Contains(out, "[correct]") {
		t.Fatalf("expected the answered question marked correct:\n%s", out)
	}
	if !strings.Contains(out, "[unanswered]") {
		t.Fatalf("expected the skipped question marked unanswered:\n%s", out)
	}
}

func TestWriteStandingsCSV(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		{Rank: 1, StudentName: "Alice", Score: 2, Total: 2, SubmittedAt: time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)},
		{Rank: 2, StudentName: "Bob", Score: 1, Total: 2, SubmittedAt: time.Date(2025, 3, 10, 14, 6, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := WriteStandingsCSV(&buf, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "rank" || records[1][1] != "Alice" || records[2][2] != "1" {
		t.Fatalf("unexpected csv contents: %+v", records)
	}
}
