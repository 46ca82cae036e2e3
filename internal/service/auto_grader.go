package service

import (
	"math"
	"strings"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/util"
)

// AnswerInput is one student answer keyed by question id.
type AnswerInput struct {
	QuestionID string `json:"questionId" binding:"required"`
	AnswerText string `json:"answerText"`
}

// AutoGradeResult is the outcome of grading one attempt against the quiz's
// question set. Score is the rounded percentage of correct verdicts over all
// questions; HasIndeterminate is set when at least one question carries no
// expected answer and its verdict could not be decided.
type AutoGradeResult struct {
	Answers          []model.SubmissionAnswer
	CorrectCount     int
	TotalQuestions   int
	Score            int
	Passed           bool
	HasIndeterminate bool
	UnmatchedIDs     []string
}

// normalizeAnswer lowers and trims so that grading ignores case and
// surrounding whitespace.
func normalizeAnswer(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// AutoGrade compares the submitted answers against the quiz questions.
// Answers referencing unknown question ids are dropped and reported in
// UnmatchedIDs; questions with no submitted answer grade as incorrect when an
// expected answer exists, indeterminate otherwise.
func AutoGrade(questions []model.QuizQuestion, answers []AnswerInput) AutoGradeResult {
	byQuestion := make(map[string]string, len(answers))
	matched := make(map[string]bool, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.AnswerText
	}

	result := AutoGradeResult{TotalQuestions: len(questions)}
	for _, q := range questions {
		text, answered := byQuestion[q.ID]
		if answered {
			matched[q.ID] = true
		}
		sa := model.SubmissionAnswer{
			QuestionID: q.ID,
			AnswerText: text,
			Verdict:    model.VerdictIndeterminate,
		}
		if strings.TrimSpace(q.ExpectedAnswer) != "" {
			if normalizeAnswer(text) == normalizeAnswer(q.ExpectedAnswer) {
				sa.Verdict = model.VerdictCorrect
				result.CorrectCount++
			} else {
				sa.Verdict = model.VerdictIncorrect
			}
		} else {
			result.HasIndeterminate = true
		}
		result.Answers = append(result.Answers, sa)
	}

	for _, a := range answers {
		if !matched[a.QuestionID] {
			result.UnmatchedIDs = append(result.UnmatchedIDs, a.QuestionID)
		}
	}

	if result.TotalQuestions > 0 {
		result.Score = int(math.Round(float64(result.CorrectCount) / float64(result.TotalQuestions) * 100))
	}
	result.Passed = PassesMainQuiz(result.Score, result.CorrectCount, result.TotalQuestions)
	return result
}

// PassesMainQuiz applies the pass rule: the percentage threshold, or every
// question answered correctly regardless of percentage rounding.
func PassesMainQuiz(score, correctCount, totalQuestions int) bool {
	if totalQuestions > 0 && correctCount == totalQuestions {
		return true
	}
	return score >= util.PassingScorePercent
}
