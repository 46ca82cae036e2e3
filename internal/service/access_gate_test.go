package service

import (
	"testing"
	"time"

	"eduquiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func progressWith(failed int) *model.StudentQuizProgress {
	return &model.StudentQuizProgress{
		StudentID:       1,
		QuizID:          "quiz-1",
		FailedAttempts:  failed,
		CurrentAttempt:  failed,
		CanTakeMainQuiz: true,
	}
}

func TestAccessibilityFollowsFailedAttemptThresholds(t *testing.T) {
	for failed := 0; failed <= 3; failed++ {
		p := progressWith(failed)
		SyncDerivedFlags(p)

		assert.Equal(t, failed >= 1, p.Level1Accessible, "failed=%d", failed)
		assert.Equal(t, failed >= 2, p.Level2Accessible, "failed=%d", failed)
		assert.Equal(t, failed >= 3, p.Level3Accessible, "failed=%d", failed)
	}
}

func TestAccessibilityDropsOnceCompleted(t *testing.T) {
	p := progressWith(2)
	p.SetLevelCompleted(1, time.Now())
	SyncDerivedFlags(p)

	assert.False(t, p.Level1Accessible)
	assert.True(t, p.Level2Accessible)
}

func TestCanTakeMainQuizDeniedAfterPass(t *testing.T) {
	p := progressWith(0)
	final := model.FinalStatusPassed
	p.FinalStatus = &final

	decision := CanTakeMainQuiz(p)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "already passed")
}

func TestCanTakeMainQuizDeniedAtMaxFailures(t *testing.T) {
	p := progressWith(4)

	decision := CanTakeMainQuiz(p)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "maximum failed attempts")
}

func TestCanTakeMainQuizBlockedByIncompleteLevel(t *testing.T) {
	p := progressWith(1)

	decision := CanTakeMainQuiz(p)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "assistance level 1")
}

func TestCanTakeMainQuizAfterCompletingLevel(t *testing.T) {
	p := progressWith(1)
	p.SetLevelCompleted(1, time.Now())
	p.MustRetakeMainQuiz = true

	decision := CanTakeMainQuiz(p)

	assert.True(t, decision.Allowed)
	assert.True(t, decision.MustRetake)
}

func TestCanAccessAssistanceLevelThresholds(t *testing.T) {
	p := progressWith(1)

	assert.True(t, CanAccessAssistanceLevel(p, 1).Allowed)
	denied := CanAccessAssistanceLevel(p, 2)
	assert.False(t, denied.Allowed)
	assert.Contains(t, denied.Reason, "2 failed attempts")
}

func TestCompletedLevelStaysReadable(t *testing.T) {
	p := progressWith(1)
	p.SetLevelCompleted(1, time.Now())

	decision := CanAccessAssistanceLevel(p, 1)

	assert.True(t, decision.Allowed)
	assert.True(t, decision.IsCompleted)
}

func TestNoAssistanceAfterTerminalFailure(t *testing.T) {
	p := progressWith(4)

	decision := CanAccessAssistanceLevel(p, 3)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "permanently failed")
}

func TestManualOverrideTakesPrecedence(t *testing.T) {
	p := progressWith(0)
	level := 2
	p.OverrideSystemFlow = true
	p.ManuallyAssignedLevel = &level

	// The assigned level opens regardless of failedAttempts; others close.
	assert.True(t, CanAccessAssistanceLevel(p, 2).Allowed)
	assert.False(t, CanAccessAssistanceLevel(p, 1).Allowed)

	blocked := CanTakeMainQuiz(p)
	assert.False(t, blocked.Allowed)
	assert.Contains(t, blocked.Reason, "assistance level 2")

	p.SetLevelCompleted(2, time.Now())
	assert.True(t, CanTakeMainQuiz(p).Allowed)
}

func TestComputeNextStepRouting(t *testing.T) {
	p := progressWith(0)
	assert.Equal(t, model.TakeMainQuizNow, ComputeNextStep(p))

	p = progressWith(1)
	assert.Equal(t, model.CompleteAssistanceLevel1, ComputeNextStep(p))

	p = progressWith(2)
	p.SetLevelCompleted(1, time.Now())
	assert.Equal(t, model.CompleteAssistanceLevel2, ComputeNextStep(p))

	p = progressWith(3)
	p.SetLevelCompleted(1, time.Now())
	p.SetLevelCompleted(2, time.Now())
	p.SetLevelCompleted(3, time.Now())
	p.MustRetakeMainQuiz = true
	assert.Equal(t, model.TryMainQuizAgain, ComputeNextStep(p))

	p = progressWith(4)
	assert.Equal(t, model.QuizFailedMaxAttempts, ComputeNextStep(p))

	p = progressWith(4)
	p.SetLevelCompleted(3, time.Now())
	assert.Equal(t, model.ViewAssistanceLevel3, ComputeNextStep(p))

	p = progressWith(0)
	final := model.FinalStatusPassed
	p.FinalStatus = &final
	assert.Equal(t, model.NextActionNone, ComputeNextStep(p))
}

func TestThresholdHitOnAlreadyCompletedLevelRoutesToRetake(t *testing.T) {
	p := progressWith(2)
	p.SetLevelCompleted(1, time.Now())
	p.SetLevelCompleted(2, time.Now())
	p.MustRetakeMainQuiz = true
	SyncDerivedFlags(p)

	assert.Equal(t, model.TryMainQuizAgain, p.NextStep)
	assert.True(t, p.CanTakeMainQuiz)
}

func TestSyncDerivedFlagsClearsEverythingOnPass(t *testing.T) {
	p := progressWith(2)
	p.SetLevelCompleted(1, time.Now())
	final := model.FinalStatusPassed
	p.FinalStatus = &final
	SyncDerivedFlags(p)

	assert.False(t, p.CanTakeMainQuiz)
	assert.False(t, p.Level1Accessible)
	assert.False(t, p.Level2Accessible)
	assert.False(t, p.Level3Accessible)
	assert.Equal(t, model.NextActionNone, p.NextStep)
}
