package app

import "classquiz-service/internal/domain"

// Score counts the questions whose answer-set entry equals the question's
// correct index. Pure and total: unanswered slots (-1) never match, answer
// sets shorter than the quiz score only the provided prefix, and extra
// entries are ignored.
func Score(quiz domain.Quiz, answers []int) int {
	score := 0
	for i, question := range quiz.Questions {
		if i >= len(answers) {
			break
		}
		if answers[i] == question.CorrectIndex {
			score++
		}
	}
	return score
}
