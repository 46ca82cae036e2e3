package model

import "time"

// NextAction is the closed routing vocabulary returned to clients after every
// progression change.
type NextAction string

const (
	NextActionNone             NextAction = ""
	TakeMainQuizNow            NextAction = "TAKE_MAIN_QUIZ_NOW"
	CompleteAssistanceLevel1   NextAction = "COMPLETE_ASSISTANCE_LEVEL1"
	CompleteAssistanceLevel2   NextAction = "COMPLETE_ASSISTANCE_LEVEL2"
	CompleteAssistanceLevel3   NextAction = "COMPLETE_ASSISTANCE_LEVEL3"
	TryMainQuizAgain           NextAction = "TRY_MAIN_QUIZ_AGAIN"
	QuizFailedMaxAttempts      NextAction = "QUIZ_FAILED_MAX_ATTEMPTS"
	ViewAssistanceLevel3       NextAction = "VIEW_ASSISTANCE_LEVEL3"
)

// FinalStatusPassed is the only terminal value of StudentQuizProgress.FinalStatus
// reachable through the normal flow; FinalStatusFailed can be forced by a
// teacher override.
const (
	FinalStatusPassed  = "PASSED"
	FinalStatusFailed  = "FAILED"
	FinalStatusOngoing = "ONGOING"
)

// StudentQuizProgress is the single per-(student, quiz) coordination record.
// Every routing decision reads and writes this row; mutations happen inside a
// transaction holding a row lock on it.
// swagger:model StudentQuizProgress
type StudentQuizProgress struct {
	BaseModel
	StudentID uint   `gorm:"index:idx_student_quiz,unique;type:bigint unsigned" json:"studentId"`
	QuizID    string `gorm:"index:idx_student_quiz,unique;type:varchar(36)" json:"quizId"`

	// CurrentAttempt counts every main-quiz submission, capped at 4.
	// FailedAttempts counts only terminal FAILED outcomes of the main quiz.
	CurrentAttempt int `gorm:"default:0" json:"currentAttempt"`
	FailedAttempts int `gorm:"default:0" json:"failedAttempts"`

	LastAttemptPassed *bool   `json:"lastAttemptPassed,omitempty"`
	FinalStatus       *string `gorm:"size:20" json:"finalStatus,omitempty"`
	LastSubmissionID  *string `gorm:"type:varchar(36)" json:"lastSubmissionId,omitempty"`

	// Completed flags are monotonic; accessibility flags are derived from
	// FailedAttempts thresholds (level N accessible when FailedAttempts >= N
	// and the level is not yet completed).
	Level1Completed   bool       `gorm:"default:false" json:"level1Completed"`
	Level2Completed   bool       `gorm:"default:false" json:"level2Completed"`
	Level3Completed   bool       `gorm:"default:false" json:"level3Completed"`
	Level1CompletedAt *time.Time `json:"level1CompletedAt,omitempty"`
	Level2CompletedAt *time.Time `json:"level2CompletedAt,omitempty"`
	Level3CompletedAt *time.Time `json:"level3CompletedAt,omitempty"`
	Level1Accessible  bool       `gorm:"default:false" json:"level1Accessible"`
	Level2Accessible  bool       `gorm:"default:false" json:"level2Accessible"`
	Level3Accessible  bool       `gorm:"default:false" json:"level3Accessible"`

	// CanTakeMainQuiz carries no column default: GORM drops zero-valued
	// fields that have one from the insert, which would store a computed
	// false as true. New rows get their initial true explicitly.
	MustRetakeMainQuiz bool       `gorm:"default:false" json:"mustRetakeMainQuiz"`
	CanTakeMainQuiz    bool       `json:"canTakeMainQuiz"`
	NextStep           NextAction `gorm:"size:40" json:"nextStep"`

	// Teacher-forced routing; takes strict precedence over threshold-derived
	// accessibility while OverrideSystemFlow is set.
	OverrideSystemFlow    bool `gorm:"default:false" json:"overrideSystemFlow"`
	ManuallyAssignedLevel *int `json:"manuallyAssignedLevel,omitempty"`
}

func (StudentQuizProgress) TableName() string {
	return "student_quiz_progress"
}

// LevelCompleted reports whether the given assistance level (1..3) is done.
func (p *StudentQuizProgress) LevelCompleted(level int) bool {
	switch level {
	case 1:
		return p.Level1Completed
	case 2:
		return p.Level2Completed
	case 3:
		return p.Level3Completed
	}
	return false
}

// SetLevelCompleted marks the level done at the given time.
func (p *StudentQuizProgress) SetLevelCompleted(level int, at time.Time) {
	switch level {
	case 1:
		p.Level1Completed = true
		p.Level1CompletedAt = &at
	case 2:
		p.Level2Completed = true
		p.Level2CompletedAt = &at
	case 3:
		p.Level3Completed = true
		p.Level3CompletedAt = &at
	}
}
