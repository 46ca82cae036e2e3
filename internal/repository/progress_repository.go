package repository

import (
	"errors"
	"strings"

	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository owns the per-(student, quiz) progress row. All writes go
// through GetOrCreateForUpdate + Save inside one transaction so concurrent
// submissions from the same student cannot lose counter updates.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// lockForUpdate requests a row lock on dialects that support it. SQLite has
// no row locks; its single-writer model already serializes these updates.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Get returns the progress row without locking, or nil when the student has
// never interacted with the quiz.
func (r *ProgressRepository) Get(studentID uint, quizID string) (*model.StudentQuizProgress, error) {
	var p model.StudentQuizProgress
	err := r.DB.Where("student_id = ? AND quiz_id = ?", studentID, quizID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreateForUpdate loads the progress row under a FOR UPDATE lock,
// creating it lazily on the student's first interaction with the quiz.
func (r *ProgressRepository) GetOrCreateForUpdate(tx *gorm.DB, studentID uint, quizID string) (*model.StudentQuizProgress, error) {
	var p model.StudentQuizProgress
	err := lockForUpdate(tx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = model.StudentQuizProgress{
		StudentID:       studentID,
		QuizID:          quizID,
		CanTakeMainQuiz: true,
		NextStep:        model.TakeMainQuizNow,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return nil, err
	}
	// Re-read under the lock: a concurrent request may have won the insert.
	if err := lockForUpdate(tx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Save(tx *gorm.DB, p *model.StudentQuizProgress) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(p).Error
}

// IsLockConflict reports whether the error is a lock/deadlock failure that is
// worth one automatic retry.
func IsLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "database is locked")
}
