package model

import (
	"encoding/json"
	"time"
)

// Assistance content is authored per quiz: level 1 is a multiple-choice recap,
// level 2 a short essay graded by the teacher, level 3 reference material the
// student confirms having read.

// swagger:model AssistanceLevel1
type AssistanceLevel1 struct {
	UUIDBase
	QuizID      string `gorm:"uniqueIndex;type:varchar(36)" json:"quizId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Questions   []Level1Question `gorm:"foreignKey:AssistanceID" json:"questions,omitempty"`
}

func (AssistanceLevel1) TableName() string {
	return "assistance_level1"
}

type Level1Question struct {
	UUIDBase
	AssistanceID  string          `gorm:"index;type:varchar(36)" json:"assistanceId"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Options       json.RawMessage `gorm:"type:json" json:"options"`
	CorrectAnswer string          `gorm:"type:text;not null" json:"correctAnswer"`
	Order         int             `gorm:"default:0" json:"order"`
}

func (Level1Question) TableName() string {
	return "assistance_level1_questions"
}

// Level1Submission passes only when every answer is correct.
type Level1Submission struct {
	UUIDBase
	AssistanceID string `gorm:"index:idx_l1_student;type:varchar(36)" json:"assistanceId"`
	StudentID    uint   `gorm:"index:idx_l1_student;type:bigint unsigned" json:"studentId"`
	Passed       bool   `gorm:"default:false" json:"passed"`
	Score        int    `gorm:"default:0" json:"score"`
	Answers      []Level1Answer `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
}

func (Level1Submission) TableName() string {
	return "assistance_level1_submissions"
}

type Level1Answer struct {
	UUIDBase
	SubmissionID string `gorm:"index;type:varchar(36)" json:"submissionId"`
	QuestionID   string `gorm:"index;type:varchar(36)" json:"questionId"`
	AnswerText   string `gorm:"type:text" json:"answerText"`
	IsCorrect    bool   `gorm:"default:false" json:"isCorrect"`
}

func (Level1Answer) TableName() string {
	return "assistance_level1_answers"
}

// swagger:model AssistanceLevel2
type AssistanceLevel2 struct {
	UUIDBase
	QuizID      string `gorm:"uniqueIndex;type:varchar(36)" json:"quizId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	EssayPrompt string `gorm:"type:text;not null" json:"essayPrompt"`
}

func (AssistanceLevel2) TableName() string {
	return "assistance_level2"
}

// Level2Submission stays pending until a teacher sets IsApproved; only an
// approved submission counts as completing the level.
type Level2Submission struct {
	UUIDBase
	AssistanceID    string     `gorm:"index:idx_l2_student;type:varchar(36)" json:"assistanceId"`
	StudentID       uint       `gorm:"index:idx_l2_student;type:bigint unsigned" json:"studentId"`
	EssayText       string     `gorm:"type:text;not null" json:"essayText"`
	IsApproved      *bool      `json:"isApproved,omitempty"`
	TeacherFeedback string     `gorm:"type:text" json:"teacherFeedback"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy      *uint      `gorm:"type:bigint unsigned" json:"reviewedBy,omitempty"`
}

func (Level2Submission) TableName() string {
	return "assistance_level2_submissions"
}

// swagger:model AssistanceLevel3
type AssistanceLevel3 struct {
	UUIDBase
	QuizID      string `gorm:"uniqueIndex;type:varchar(36)" json:"quizId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	PdfURL      string `gorm:"size:512" json:"pdfUrl"`
}

func (AssistanceLevel3) TableName() string {
	return "assistance_level3"
}

// Level3Completion records the student's "I have read this" confirmation plus
// optional reading-time telemetry. One row per assistance+student.
type Level3Completion struct {
	UUIDBase
	AssistanceID       string `gorm:"index:idx_l3_student,unique;type:varchar(36)" json:"assistanceId"`
	StudentID          uint   `gorm:"index:idx_l3_student,unique;type:bigint unsigned" json:"studentId"`
	IsCompleted        bool   `gorm:"default:false" json:"isCompleted"`
	ReadingTimeSeconds int    `gorm:"default:0" json:"readingTimeSeconds"`
}

func (Level3Completion) TableName() string {
	return "assistance_level3_completions"
}
