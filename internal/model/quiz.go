package model

import "time"

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ClassID     string     `gorm:"index;type:varchar(36)" json:"classId"`
	CreatorID   uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Questions   []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion is a free-text question on the main quiz. ExpectedAnswer may be
// empty, in which case the auto-grader cannot decide correctness and the
// verdict stays indeterminate.
type QuizQuestion struct {
	UUIDBase
	QuizID         string  `gorm:"index;type:varchar(36)" json:"quizId"`
	Content        string  `gorm:"type:text;not null" json:"content"`
	ExpectedAnswer string  `gorm:"type:text" json:"expectedAnswer,omitempty"`
	ImageURL       *string `gorm:"size:512" json:"imageUrl,omitempty"`
	Order          int     `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
