package service

import (
	"testing"

	"eduquiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func question(id, expected string) model.QuizQuestion {
	q := model.QuizQuestion{Content: "q", ExpectedAnswer: expected}
	q.ID = id
	return q
}

func TestAutoGradeTwoOfThree(t *testing.T) {
	questions := []model.QuizQuestion{
		question("q1", "4"),
		question("q2", "Paris"),
		question("q3", "Mercury"),
	}
	answers := []AnswerInput{
		{QuestionID: "q1", AnswerText: "4"},
		{QuestionID: "q2", AnswerText: "Paris"},
		{QuestionID: "q3", AnswerText: "Venus"},
	}

	result := AutoGrade(questions, answers)

	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 67, result.Score)
	assert.False(t, result.Passed)
	assert.False(t, result.HasIndeterminate)
	assert.Equal(t, model.VerdictCorrect, result.Answers[0].Verdict)
	assert.Equal(t, model.VerdictCorrect, result.Answers[1].Verdict)
	assert.Equal(t, model.VerdictIncorrect, result.Answers[2].Verdict)
}

func TestAutoGradeAllCorrectPasses(t *testing.T) {
	questions := []model.QuizQuestion{
		question("q1", "4"),
		question("q2", "Paris"),
		question("q3", "Mercury"),
	}
	answers := []AnswerInput{
		{QuestionID: "q1", AnswerText: "4"},
		{QuestionID: "q2", AnswerText: "paris"},
		{QuestionID: "q3", AnswerText: "  Mercury  "},
	}

	result := AutoGrade(questions, answers)

	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 100, result.Score)
	assert.True(t, result.Passed)
}

func TestAutoGradeCaseAndWhitespaceInsensitive(t *testing.T) {
	questions := []model.QuizQuestion{question("q1", "  The Moon ")}
	answers := []AnswerInput{{QuestionID: "q1", AnswerText: "the moon"}}

	result := AutoGrade(questions, answers)

	assert.Equal(t, model.VerdictCorrect, result.Answers[0].Verdict)
}

func TestAutoGradeMissingExpectedAnswerStaysIndeterminate(t *testing.T) {
	questions := []model.QuizQuestion{
		question("q1", "4"),
		question("q2", ""),
	}
	answers := []AnswerInput{
		{QuestionID: "q1", AnswerText: "4"},
		{QuestionID: "q2", AnswerText: "free text"},
	}

	result := AutoGrade(questions, answers)

	assert.True(t, result.HasIndeterminate)
	assert.Equal(t, model.VerdictIndeterminate, result.Answers[1].Verdict)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 50, result.Score)
}

func TestAutoGradeUnansweredQuestionIsWrong(t *testing.T) {
	questions := []model.QuizQuestion{
		question("q1", "4"),
		question("q2", "Paris"),
	}
	answers := []AnswerInput{{QuestionID: "q1", AnswerText: "4"}}

	result := AutoGrade(questions, answers)

	assert.Equal(t, model.VerdictIncorrect, result.Answers[1].Verdict)
	assert.Equal(t, 1, result.CorrectCount)
}

func TestAutoGradeUnknownQuestionReported(t *testing.T) {
	questions := []model.QuizQuestion{question("q1", "4")}
	answers := []AnswerInput{
		{QuestionID: "q1", AnswerText: "4"},
		{QuestionID: "ghost", AnswerText: "5"},
	}

	result := AutoGrade(questions, answers)

	assert.Equal(t, []string{"ghost"}, result.UnmatchedIDs)
	assert.Len(t, result.Answers, 1)
	assert.True(t, result.Passed)
}

func TestAutoGradeEmptyQuiz(t *testing.T) {
	result := AutoGrade(nil, nil)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.False(t, result.Passed)
}

func TestPassesMainQuizEitherCondition(t *testing.T) {
	assert.True(t, PassesMainQuiz(70, 7, 10))
	assert.False(t, PassesMainQuiz(67, 2, 3))
	// All correct passes regardless of rounding.
	assert.True(t, PassesMainQuiz(0, 3, 3))
	assert.False(t, PassesMainQuiz(0, 0, 0))
}
