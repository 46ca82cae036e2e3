package model

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "PENDING"
	SubmissionPassed  SubmissionStatus = "PASSED"
	SubmissionFailed  SubmissionStatus = "FAILED"
)

// Verdict is the auto-grader's per-answer outcome. Indeterminate means the
// question carries no expected answer; it is never collapsed into incorrect.
type Verdict string

const (
	VerdictCorrect       Verdict = "correct"
	VerdictIncorrect     Verdict = "incorrect"
	VerdictIndeterminate Verdict = "indeterminate"
)

// QuizSubmission is one main-quiz attempt. AttemptNumber is 1-based and
// monotonic per student+quiz.
// swagger:model QuizSubmission
type QuizSubmission struct {
	UUIDBase
	QuizID         string           `gorm:"index;type:varchar(36)" json:"quizId"`
	StudentID      uint             `gorm:"index;type:bigint unsigned" json:"studentId"`
	Student        *User            `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	AttemptNumber  int              `gorm:"not null" json:"attemptNumber"`
	Status         SubmissionStatus `gorm:"size:20;default:'PENDING'" json:"status"`
	Score          *int             `json:"score,omitempty"`
	CorrectAnswers int              `gorm:"default:0" json:"correctAnswers"`
	TotalQuestions int              `gorm:"default:0" json:"totalQuestions"`
	Feedback       string           `gorm:"type:text" json:"feedback"`
	Answers        []SubmissionAnswer `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

// SubmissionAnswer keeps the auto-grade verdict and the teacher-assigned
// score/feedback on separate fields: the verdict is written once at submission
// time and never mutated, teacher grading only touches Score and Feedback.
type SubmissionAnswer struct {
	UUIDBase
	SubmissionID string  `gorm:"index;type:varchar(36)" json:"submissionId"`
	QuestionID   string  `gorm:"index;type:varchar(36)" json:"questionId"`
	AnswerText   string  `gorm:"type:text" json:"answerText"`
	Verdict      Verdict `gorm:"size:20;default:'indeterminate'" json:"verdict"`
	Score        *int    `json:"score,omitempty"`
	Feedback     *string `gorm:"type:text" json:"feedback,omitempty"`
}

func (SubmissionAnswer) TableName() string {
	return "submission_answers"
}
