package service

import (
	"fmt"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/util"
)

// GateDecision is the outcome of an access check: allow/deny plus a
// human-readable reason distinguishing "not yet allowed" from "permanently
// blocked".
type GateDecision struct {
	Allowed     bool   `json:"allowed"`
	MustRetake  bool   `json:"mustRetake,omitempty"`
	IsCompleted bool   `json:"isCompleted,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// requiredLevel returns the assistance level the student must complete before
// retaking the main quiz, or 0 when nothing blocks. A teacher override with a
// manually assigned level takes strict precedence over the failedAttempts
// thresholds.
func requiredLevel(p *model.StudentQuizProgress) int {
	if p.OverrideSystemFlow && p.ManuallyAssignedLevel != nil {
		level := *p.ManuallyAssignedLevel
		if level >= util.AssistanceLevelMin && level <= util.AssistanceLevelMax && !p.LevelCompleted(level) {
			return level
		}
		return 0
	}
	for level := util.AssistanceLevelMin; level <= util.AssistanceLevelMax; level++ {
		if p.FailedAttempts >= level && !p.LevelCompleted(level) {
			return level
		}
	}
	return 0
}

// CanTakeMainQuiz decides whether the student may submit the main quiz right
// now.
func CanTakeMainQuiz(p *model.StudentQuizProgress) GateDecision {
	if p.FinalStatus != nil && *p.FinalStatus == model.FinalStatusPassed {
		return GateDecision{Allowed: false, Reason: "quiz already passed"}
	}
	if p.FailedAttempts >= util.MaxFailedAttempts {
		return GateDecision{Allowed: false, Reason: "maximum failed attempts reached"}
	}
	if level := requiredLevel(p); level > 0 {
		return GateDecision{Allowed: false, Reason: fmt.Sprintf("must complete assistance level %d first", level)}
	}
	if p.MustRetakeMainQuiz && p.CanTakeMainQuiz {
		return GateDecision{Allowed: true, MustRetake: true}
	}
	return GateDecision{Allowed: true}
}

// CanAccessAssistanceLevel decides whether the student may open assistance
// level 1..3. A completed level stays readable for review.
func CanAccessAssistanceLevel(p *model.StudentQuizProgress, level int) GateDecision {
	if level < util.AssistanceLevelMin || level > util.AssistanceLevelMax {
		return GateDecision{Allowed: false, Reason: "unknown assistance level"}
	}
	if p.LevelCompleted(level) {
		return GateDecision{Allowed: true, IsCompleted: true}
	}
	if p.FinalStatus != nil && *p.FinalStatus == model.FinalStatusPassed {
		return GateDecision{Allowed: false, Reason: "quiz already passed"}
	}
	if p.FailedAttempts >= util.MaxFailedAttempts {
		return GateDecision{Allowed: false, Reason: "quiz permanently failed, no further assistance"}
	}
	if p.OverrideSystemFlow && p.ManuallyAssignedLevel != nil {
		if *p.ManuallyAssignedLevel == level {
			return GateDecision{Allowed: true}
		}
		return GateDecision{Allowed: false, Reason: fmt.Sprintf("teacher assigned assistance level %d", *p.ManuallyAssignedLevel)}
	}
	if p.FailedAttempts >= level {
		return GateDecision{Allowed: true}
	}
	return GateDecision{Allowed: false, Reason: fmt.Sprintf("requires at least %d failed attempts", level)}
}

// ComputeNextStep derives the routing token for the progress record's current
// state. It is the single place the token vocabulary is produced from state.
func ComputeNextStep(p *model.StudentQuizProgress) model.NextAction {
	if p.FinalStatus != nil && *p.FinalStatus == model.FinalStatusPassed {
		return model.NextActionNone
	}
	if p.FailedAttempts >= util.MaxFailedAttempts {
		if p.Level3Completed {
			return model.ViewAssistanceLevel3
		}
		return model.QuizFailedMaxAttempts
	}
	if level := requiredLevel(p); level > 0 {
		switch level {
		case 1:
			return model.CompleteAssistanceLevel1
		case 2:
			return model.CompleteAssistanceLevel2
		case 3:
			return model.CompleteAssistanceLevel3
		}
	}
	if p.MustRetakeMainQuiz {
		return model.TryMainQuizAgain
	}
	return model.TakeMainQuizNow
}

// SyncDerivedFlags recomputes the accessibility flags, the main-quiz gate
// flags, and NextStep from the authoritative counters. Call after every
// mutation of the progress record, before saving it.
func SyncDerivedFlags(p *model.StudentQuizProgress) {
	if p.OverrideSystemFlow && p.ManuallyAssignedLevel != nil {
		level := *p.ManuallyAssignedLevel
		p.Level1Accessible = level == 1 && !p.Level1Completed
		p.Level2Accessible = level == 2 && !p.Level2Completed
		p.Level3Accessible = level == 3 && !p.Level3Completed
	} else {
		p.Level1Accessible = p.FailedAttempts >= 1 && !p.Level1Completed
		p.Level2Accessible = p.FailedAttempts >= 2 && !p.Level2Completed
		p.Level3Accessible = p.FailedAttempts >= 3 && !p.Level3Completed
	}

	if p.FinalStatus != nil && *p.FinalStatus == model.FinalStatusPassed {
		p.CanTakeMainQuiz = false
		p.MustRetakeMainQuiz = false
		p.Level1Accessible = false
		p.Level2Accessible = false
		p.Level3Accessible = false
	} else if p.FailedAttempts >= util.MaxFailedAttempts {
		p.CanTakeMainQuiz = false
		p.MustRetakeMainQuiz = false
		p.Level1Accessible = false
		p.Level2Accessible = false
		p.Level3Accessible = false
	} else if requiredLevel(p) > 0 {
		p.CanTakeMainQuiz = false
	} else {
		p.CanTakeMainQuiz = true
	}

	p.NextStep = ComputeNextStep(p)
}
