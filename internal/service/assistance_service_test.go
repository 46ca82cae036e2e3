package service

import (
	"context"
	"testing"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitLevel1RequiresAllCorrect(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l1 := f.seedLevel1(t, twoRecapQuestions())
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 1
		p.CurrentAttempt = 1
	})
	svc := f.assistanceService()

	result, err := svc.SubmitLevel1(context.Background(), f.student.ID, l1.ID, []AnswerInput{
		{QuestionID: l1.Questions[0].ID, AnswerText: "ma"},
		{QuestionID: l1.Questions[1].ID, AnswerText: "joule"},
	})
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, model.CompleteAssistanceLevel1, result.NextAction)

	p := f.progress(t)
	assert.False(t, p.Level1Completed)
	assert.False(t, p.MustRetakeMainQuiz)
	assert.False(t, p.CanTakeMainQuiz)
}

func TestSubmitLevel1AllCorrectCompletesLevel(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l1 := f.seedLevel1(t, twoRecapQuestions())
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 1
		p.CurrentAttempt = 1
	})
	svc := f.assistanceService()

	result, err := svc.SubmitLevel1(context.Background(), f.student.ID, l1.ID, []AnswerInput{
		{QuestionID: l1.Questions[0].ID, AnswerText: " MA "},
		{QuestionID: l1.Questions[1].ID, AnswerText: "Newton"},
	})
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, model.TryMainQuizAgain, result.NextAction)

	p := f.progress(t)
	assert.True(t, p.Level1Completed)
	assert.True(t, p.MustRetakeMainQuiz)
	assert.True(t, p.CanTakeMainQuiz)
	assert.False(t, p.Level1Accessible)
}

func TestSubmitLevel1DeniedWithoutFailedAttempt(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l1 := f.seedLevel1(t, twoRecapQuestions())
	svc := f.assistanceService()

	_, err := svc.SubmitLevel1(context.Background(), f.student.ID, l1.ID, []AnswerInput{
		{QuestionID: l1.Questions[0].ID, AnswerText: "ma"},
		{QuestionID: l1.Questions[1].ID, AnswerText: "newton"},
	})
	assert.ErrorIs(t, err, util.ErrAssistanceNotAccessible)
}

func TestGetAssistanceContentStripsRecapAnswers(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l1 := f.seedLevel1(t, twoRecapQuestions())
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 1
		p.CurrentAttempt = 1
	})
	svc := f.assistanceService()

	content, err := svc.GetAssistanceContent(f.student.ID, f.quiz.ID, 1)
	require.NoError(t, err)

	a, ok := content.(*Level1Content)
	require.True(t, ok)
	require.Len(t, a.Questions, 2)
	for _, q := range a.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}
	assert.Empty(t, a.PastAttempts)

	// Earlier recap attempts show up in the content.
	_, err = svc.SubmitLevel1(context.Background(), f.student.ID, l1.ID, []AnswerInput{
		{QuestionID: l1.Questions[0].ID, AnswerText: "mv"},
		{QuestionID: l1.Questions[1].ID, AnswerText: "watt"},
	})
	require.NoError(t, err)

	content, err = svc.GetAssistanceContent(f.student.ID, f.quiz.ID, 1)
	require.NoError(t, err)
	a = content.(*Level1Content)
	require.Len(t, a.PastAttempts, 1)
	assert.False(t, a.PastAttempts[0].Passed)
	assert.Equal(t, 0, a.PastAttempts[0].Score)
}

func TestGetAssistanceContentGated(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	f.seedLevel2(t)

	// One failure is not enough for level 2.
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 1
		p.CurrentAttempt = 1
	})
	svc := f.assistanceService()

	_, err := svc.GetAssistanceContent(f.student.ID, f.quiz.ID, 2)
	assert.ErrorIs(t, err, util.ErrAssistanceNotAccessible)
}

func TestLevel2ApprovalCompletesLevel(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l2 := f.seedLevel2(t)
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 2
		p.CurrentAttempt = 2
		p.Level1Completed = true
	})
	svc := f.assistanceService()

	essay, err := svc.SubmitLevel2(f.student.ID, l2.ID, "I see my mistake now.")
	require.NoError(t, err)
	assert.Nil(t, essay.IsApproved)

	// The essay alone changes nothing on the progress record.
	p := f.progress(t)
	assert.False(t, p.Level2Completed)

	result, err := svc.ReviewLevel2(context.Background(), f.teacher.ID, essay.ID, true, "Well reasoned.")
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, model.TryMainQuizAgain, result.NextAction)

	p = f.progress(t)
	assert.True(t, p.Level2Completed)
	assert.True(t, p.MustRetakeMainQuiz)

	var reviewed model.Level2Submission
	require.NoError(t, db.First(&reviewed, "id = ?", essay.ID).Error)
	require.NotNil(t, reviewed.IsApproved)
	assert.True(t, *reviewed.IsApproved)
	assert.Equal(t, "Well reasoned.", reviewed.TeacherFeedback)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, f.teacher.ID, *reviewed.ReviewedBy)
}

func TestLevel2RejectionLeavesLevelOpen(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l2 := f.seedLevel2(t)
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 2
		p.CurrentAttempt = 2
		p.Level1Completed = true
	})
	svc := f.assistanceService()

	essay, err := svc.SubmitLevel2(f.student.ID, l2.ID, "Because reasons.")
	require.NoError(t, err)

	result, err := svc.ReviewLevel2(context.Background(), f.teacher.ID, essay.ID, false, "Expand on the why.")
	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, model.CompleteAssistanceLevel2, result.NextAction)

	p := f.progress(t)
	assert.False(t, p.Level2Completed)
	assert.False(t, p.CanTakeMainQuiz)

	// The student may resubmit after a rejection.
	_, err = svc.SubmitLevel2(f.student.ID, l2.ID, "Second try, with the why.")
	assert.NoError(t, err)
}

func TestLevel2ResubmissionBlockedWhilePending(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l2 := f.seedLevel2(t)
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 2
		p.CurrentAttempt = 2
		p.Level1Completed = true
	})
	svc := f.assistanceService()

	_, err := svc.SubmitLevel2(f.student.ID, l2.ID, "First essay.")
	require.NoError(t, err)

	_, err = svc.SubmitLevel2(f.student.ID, l2.ID, "Second essay while the first waits.")
	assert.ErrorIs(t, err, util.ErrEssayAwaitingReview)
}

func TestLevel2ReviewOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l2 := f.seedLevel2(t)
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 2
		p.CurrentAttempt = 2
	})
	other := &model.User{Name: "Mr. Ruiz", Email: "ruiz@example.com", Password: "x", Role: model.Teacher}
	require.NoError(t, db.Create(other).Error)
	svc := f.assistanceService()

	essay, err := svc.SubmitLevel2(f.student.ID, l2.ID, "An essay.")
	require.NoError(t, err)

	_, err = svc.ReviewLevel2(context.Background(), other.ID, essay.ID, true, "")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestCompleteLevel3IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l3 := f.seedLevel3(t)
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 3
		p.CurrentAttempt = 3
		p.Level1Completed = true
		p.Level2Completed = true
	})
	svc := f.assistanceService()
	ctx := context.Background()

	first, err := svc.CompleteLevel3(ctx, f.student.ID, l3.ID, 120)
	require.NoError(t, err)
	assert.True(t, first.Completed)
	assert.Equal(t, model.TryMainQuizAgain, first.NextAction)

	// Repeats keep a single row and never clear the completion.
	second, err := svc.CompleteLevel3(ctx, f.student.ID, l3.ID, 0)
	require.NoError(t, err)
	assert.True(t, second.Completed)

	var count int64
	require.NoError(t, db.Model(&model.Level3Completion{}).
		Where("assistance_id = ? AND student_id = ?", l3.ID, f.student.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var completion model.Level3Completion
	require.NoError(t, db.First(&completion, "assistance_id = ? AND student_id = ?", l3.ID, f.student.ID).Error)
	assert.True(t, completion.IsCompleted)
	assert.Equal(t, 120, completion.ReadingTimeSeconds)

	p := f.progress(t)
	assert.True(t, p.Level3Completed)
	assert.True(t, p.MustRetakeMainQuiz)
}

func TestCompleteLevel3GatedByThreshold(t *testing.T) {
	db := setupTestDB(t)
	f := seedQuiz(t, db, threeQuestionQuiz())
	l3 := f.seedLevel3(t)
	f.seedProgress(t, func(p *model.StudentQuizProgress) {
		p.FailedAttempts = 2
		p.CurrentAttempt = 2
	})
	svc := f.assistanceService()

	_, err := svc.CompleteLevel3(context.Background(), f.student.ID, l3.ID, 60)
	assert.ErrorIs(t, err, util.ErrAssistanceNotAccessible)
}
