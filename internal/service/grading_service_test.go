package service

import (
	"context"
	"testing"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSubmission writes one attempt row with per-question answers, bypassing
// the submit flow, for grading tests that need a specific auto-grade shape.
func seedSubmission(t *testing.T, f *fixture, status model.SubmissionStatus, verdicts []model.Verdict) *model.QuizSubmission {
	t.Helper()
	correct := 0
	answers := make([]model.SubmissionAnswer, 0, len(verdicts))
	for _, v := range verdicts {
		if v == model.VerdictCorrect {
			correct++
		}
		answers = append(answers, model.SubmissionAnswer{
			QuestionID: model.GenerateUUID(),
			AnswerText: "answer",
			Verdict:    v,
		})
	}
	score := correct * 100 / len(verdicts)
	submission := &model.QuizSubmission{
		QuizID:         f.quiz.ID,
		StudentID:      f.student.ID,
		AttemptNumber:  1,
		Status:         status,
		Score:          &score,
		CorrectAnswers: correct,
		TotalQuestions: len(verdicts),
		Answers:        answers,
	}
	require.NoError(t, f.db.Create(submission).Error)
	return submission
}

func gradeAll(submission *model.QuizSubmission, score int) []AnswerGrade {
	grades := make([]AnswerGrade, 0, len(submission.Answers))
	for _, a := range submission.Answers {
		grades = append(grades, AnswerGrade{QuestionID: a.QuestionID, Score: score})
	}
	return grades
}

func TestGradeSubmissionTeacherPathPasses(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	submission := seedSubmission(t, f, model.SubmissionFailed, []model.Verdict{
		model.VerdictCorrect, model.VerdictIncorrect, model.VerdictIncorrect,
		model.VerdictIncorrect, model.VerdictIncorrect,
	})
	svc := f.gradingService()

	result, err := svc.GradeSubmission(context.Background(), f.teacher.ID, submission.ID,
		gradeAll(submission, 80), "partial credit for working")
	require.NoError(t, err)

	assert.Equal(t, 80, result.TeacherPercentage)
	assert.Equal(t, 20, result.AutoPercentage)
	assert.True(t, result.FinalPassed)
	assert.Equal(t, model.SubmissionPassed, result.Status)

	p := f.progress(t)
	require.NotNil(t, p.FinalStatus)
	assert.Equal(t, model.FinalStatusPassed, *p.FinalStatus)
}

func TestGradeSubmissionAutoPathKeepsPass(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	submission := seedSubmission(t, f, model.SubmissionPassed, []model.Verdict{
		model.VerdictCorrect, model.VerdictCorrect, model.VerdictCorrect,
		model.VerdictCorrect, model.VerdictIncorrect,
	})
	svc := f.gradingService()

	// A strict teacher score cannot undo an auto-grade pass.
	result, err := svc.GradeSubmission(context.Background(), f.teacher.ID, submission.ID,
		gradeAll(submission, 40), "")
	require.NoError(t, err)

	assert.Equal(t, 40, result.TeacherPercentage)
	assert.Equal(t, 80, result.AutoPercentage)
	assert.True(t, result.FinalPassed)
	assert.Equal(t, model.SubmissionPassed, result.Status)
}

func TestGradeSubmissionBothBelowThresholdFails(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	submission := seedSubmission(t, f, model.SubmissionFailed, []model.Verdict{
		model.VerdictCorrect, model.VerdictIncorrect, model.VerdictIncorrect,
		model.VerdictIncorrect, model.VerdictIncorrect,
	})
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 1
		p.CurrentAttempt = 1
		p.LastSubmissionID = &submission.ID
	})
	svc := f.gradingService()

	result, err := svc.GradeSubmission(context.Background(), f.teacher.ID, submission.ID,
		gradeAll(submission, 50), "")
	require.NoError(t, err)

	assert.False(t, result.FinalPassed)
	assert.Equal(t, model.SubmissionFailed, result.Status)

	// Re-grading an already failed attempt does not count a second failure.
	p := f.progress(t)
	assert.Equal(t, 1, p.FailedAttempts)
	assert.Nil(t, p.FinalStatus)
}

func TestGradingNeverRewritesVerdicts(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	submission := seedSubmission(t, f, model.SubmissionFailed, []model.Verdict{
		model.VerdictIncorrect, model.VerdictIndeterminate,
	})
	svc := f.gradingService()

	_, err := svc.GradeSubmission(context.Background(), f.teacher.ID, submission.ID,
		gradeAll(submission, 100), "")
	require.NoError(t, err)
	_, err = svc.GradeSubmission(context.Background(), f.teacher.ID, submission.ID,
		gradeAll(submission, 90), "second pass")
	require.NoError(t, err)

	var answers []model.SubmissionAnswer
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Order("created_at asc").Find(&answers).Error)
	require.Len(t, answers, 2)

	verdicts := map[model.Verdict]int{}
	for _, a := range answers {
		verdicts[a.Verdict]++
		require.NotNil(t, a.Score)
		assert.Equal(t, 90, *a.Score)
	}
	assert.Equal(t, 1, verdicts[model.VerdictIncorrect])
	assert.Equal(t, 1, verdicts[model.VerdictIndeterminate])
}

func TestGradeSubmissionReportsUnknownQuestions(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	submission := seedSubmission(t, f, model.SubmissionFailed, []model.Verdict{
		model.VerdictIncorrect,
	})
	svc := f.gradingService()

	grades := append(gradeAll(submission, 80), AnswerGrade{QuestionID: "ghost", Score: 100})
	result, err := svc.GradeSubmission(context.Background(), f.teacher.ID, submission.ID, grades, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"ghost"}, result.UnmatchedIDs)
	assert.Equal(t, 80, result.TeacherPercentage)
}

func TestGradeSubmissionOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	submission := seedSubmission(t, f, model.SubmissionFailed, []model.Verdict{model.VerdictIncorrect})
	other := &model.User{Name: "Mr. Ruiz", Email: "ruiz@example.com", Password: "x", Role: model.Teacher}
	require.NoError(t, db.Create(other).Error)
	svc := f.gradingService()

	_, err := svc.GradeSubmission(context.Background(), other.ID, submission.ID,
		gradeAll(submission, 100), "")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestPendingResolvedToFailedCountsAttempt(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, []model.QuizQuestion{
		{Content: "2 + 2 = ?", ExpectedAnswer: "4", Order: 1},
		{Content: "Describe inertia.", Order: 2},
	})
	attempts := f.attemptService()
	grading := f.gradingService()
	ctx := context.Background()

	submitted, err := attempts.SubmitMainQuiz(ctx, f.student.ID, f.quiz.ID,
		f.answersFor("5", "It keeps moving."))
	require.NoError(t, err)
	require.Equal(t, model.SubmissionPending, submitted.Status)

	result, err := grading.GradeSubmission(ctx, f.teacher.ID, submitted.SubmissionID,
		[]AnswerGrade{
			{QuestionID: f.quiz.Questions[0].ID, Score: 0},
			{QuestionID: f.quiz.Questions[1].ID, Score: 60},
		}, "not quite")
	require.NoError(t, err)

	assert.False(t, result.FinalPassed)
	assert.Equal(t, model.SubmissionFailed, result.Status)
	assert.Equal(t, model.CompleteAssistanceLevel1, result.NextAction)

	// Resolving the pending attempt to failed counts it now.
	p := f.progress(t)
	assert.Equal(t, 1, p.FailedAttempts)
	assert.True(t, p.Level1Accessible)
	require.NotNil(t, p.LastAttemptPassed)
	assert.False(t, *p.LastAttemptPassed)
}

func TestRegradeFailedAttemptDoesNotDoubleCount(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, []model.QuizQuestion{
		{Content: "2 + 2 = ?", ExpectedAnswer: "4", Order: 1},
		{Content: "Describe inertia.", Order: 2},
	})
	attempts := f.attemptService()
	grading := f.gradingService()
	ctx := context.Background()

	submitted, err := attempts.SubmitMainQuiz(ctx, f.student.ID, f.quiz.ID,
		f.answersFor("5", "It keeps moving."))
	require.NoError(t, err)
	require.Equal(t, model.SubmissionPending, submitted.Status)

	lowGrades := []AnswerGrade{
		{QuestionID: f.quiz.Questions[0].ID, Score: 0},
		{QuestionID: f.quiz.Questions[1].ID, Score: 40},
	}
	_, err = grading.GradeSubmission(ctx, f.teacher.ID, submitted.SubmissionID, lowGrades, "")
	require.NoError(t, err)
	require.Equal(t, 1, f.progress(t).FailedAttempts)

	// The pending-to-failed transition fires once; a later re-grade of the
	// same submission must not count another failure.
	_, err = grading.GradeSubmission(ctx, f.teacher.ID, submitted.SubmissionID, lowGrades, "still short")
	require.NoError(t, err)
	assert.Equal(t, 1, f.progress(t).FailedAttempts)
}

func TestPendingResolvedToPassedEndsQuiz(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, []model.QuizQuestion{
		{Content: "2 + 2 = ?", ExpectedAnswer: "4", Order: 1},
		{Content: "Describe inertia.", Order: 2},
	})
	attempts := f.attemptService()
	grading := f.gradingService()
	ctx := context.Background()

	submitted, err := attempts.SubmitMainQuiz(ctx, f.student.ID, f.quiz.ID,
		f.answersFor("4", "Objects resist changes to their motion."))
	require.NoError(t, err)
	require.Equal(t, model.SubmissionPending, submitted.Status)

	result, err := grading.GradeSubmission(ctx, f.teacher.ID, submitted.SubmissionID,
		[]AnswerGrade{
			{QuestionID: f.quiz.Questions[0].ID, Score: 100},
			{QuestionID: f.quiz.Questions[1].ID, Score: 90},
		}, "well put")
	require.NoError(t, err)

	assert.True(t, result.FinalPassed)
	assert.Equal(t, 95, result.TeacherPercentage)
	assert.Equal(t, model.NextActionNone, result.NextAction)

	p := f.progress(t)
	require.NotNil(t, p.FinalStatus)
	assert.Equal(t, model.FinalStatusPassed, *p.FinalStatus)
	assert.Equal(t, 0, p.FailedAttempts)
}

func TestOverridePassedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 2
		p.CurrentAttempt = 2
	})
	svc := f.gradingService()

	result, err := svc.OverrideStudentStatus(context.Background(), f.teacher.ID, f.quiz.ID, f.student.ID,
		OverrideRequest{Status: model.FinalStatusPassed})
	require.NoError(t, err)

	require.NotNil(t, result.FinalStatus)
	assert.Equal(t, model.FinalStatusPassed, *result.FinalStatus)
	assert.False(t, result.CanTakeMainQuiz)
	assert.Equal(t, model.NextActionNone, result.NextStep)
}

func TestOverrideFailedExhaustsAttempts(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	svc := f.gradingService()

	result, err := svc.OverrideStudentStatus(context.Background(), f.teacher.ID, f.quiz.ID, f.student.ID,
		OverrideRequest{Status: model.FinalStatusFailed})
	require.NoError(t, err)

	require.NotNil(t, result.FinalStatus)
	assert.Equal(t, model.FinalStatusFailed, *result.FinalStatus)
	assert.Equal(t, util.MaxFailedAttempts, result.FailedAttempts)
	assert.False(t, result.CanTakeMainQuiz)
	assert.Equal(t, model.QuizFailedMaxAttempts, result.NextStep)
}

func TestOverrideOngoingWithAssignedLevel(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = util.MaxFailedAttempts
		p.CurrentAttempt = util.MaxFailedAttempts
		final := model.FinalStatusFailed
		p.FinalStatus = &final
	})
	level := 2
	svc := f.gradingService()

	result, err := svc.OverrideStudentStatus(context.Background(), f.teacher.ID, f.quiz.ID, f.student.ID,
		OverrideRequest{Status: model.FinalStatusOngoing, AssignedLevel: &level})
	require.NoError(t, err)

	assert.Nil(t, result.FinalStatus)
	assert.Equal(t, 0, result.FailedAttempts)
	assert.True(t, result.OverrideSystemFlow)
	require.NotNil(t, result.ManuallyAssignedLevel)
	assert.Equal(t, 2, *result.ManuallyAssignedLevel)
	assert.True(t, result.Level2Accessible)
	assert.False(t, result.Level1Accessible)
	assert.Equal(t, model.CompleteAssistanceLevel2, result.NextStep)
	assert.False(t, result.CanTakeMainQuiz)
}

func TestOverrideOngoingWithoutLevelReopens(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 3
		p.CurrentAttempt = 3
	})
	svc := f.gradingService()

	result, err := svc.OverrideStudentStatus(context.Background(), f.teacher.ID, f.quiz.ID, f.student.ID,
		OverrideRequest{Status: model.FinalStatusOngoing})
	require.NoError(t, err)

	assert.Nil(t, result.FinalStatus)
	assert.Equal(t, 0, result.FailedAttempts)
	assert.True(t, result.CanTakeMainQuiz)
	assert.Equal(t, model.TakeMainQuizNow, result.NextStep)
}

func TestOverrideOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	other := &model.User{Name: "Mr. Ruiz", Email: "ruiz@example.com", Password: "x", Role: model.Teacher}
	require.NoError(t, db.Create(other).Error)
	svc := f.gradingService()

	_, err := svc.OverrideStudentStatus(context.Background(), other.ID, f.quiz.ID, f.student.ID,
		OverrideRequest{Status: model.FinalStatusPassed})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
