package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// CreateWithAnswers persists the submission and its answer rows inside the
// caller's transaction so a failed progress update rolls everything back.
func (r *SubmissionRepository) CreateWithAnswers(tx *gorm.DB, submission *model.QuizSubmission, answers []model.SubmissionAnswer) error {
	if err := tx.Create(submission).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].SubmissionID = submission.ID
	}
	if len(answers) > 0 {
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
	}
	submission.Answers = answers
	return nil
}

func (r *SubmissionRepository) FindByID(id string) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.First(&s, "id = ?", id).Error
	return &s, err
}

func (r *SubmissionRepository) FindByIDWithAnswers(id string) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.Preload("Answers").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *SubmissionRepository) Update(tx *gorm.DB, s *model.QuizSubmission) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(s).Error
}

// UpdateAnswerGrading writes the teacher-assigned score and feedback only;
// the verdict column is deliberately not in the update set.
func (r *SubmissionRepository) UpdateAnswerGrading(tx *gorm.DB, answerID string, score *int, feedback *string) error {
	if tx == nil {
		tx = r.DB
	}
	updates := map[string]interface{}{}
	if score != nil {
		updates["score"] = *score
	}
	if feedback != nil {
		updates["feedback"] = *feedback
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&model.SubmissionAnswer{}).
		Where("id = ?", answerID).
		Updates(updates).Error
}

func (r *SubmissionRepository) ListByStudentAndQuiz(studentID uint, quizID string) ([]model.QuizSubmission, error) {
	var subs []model.QuizSubmission
	err := r.DB.Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number asc").Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) ListByQuiz(quizID string, page, limit int, studentName string, status string) ([]map[string]interface{}, int64, error) {
	query := r.DB.Table("quiz_submissions s").
		Select("s.*, u.name as student_name, u.email as student_email").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("s.quiz_id = ? AND s.deleted_at IS NULL", quizID)

	if studentName != "" {
		query = query.Where("u.name LIKE ?", "%"+studentName+"%")
	}
	if status != "" {
		query = query.Where("s.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []map[string]interface{}
	offset := (page - 1) * limit
	err := query.Order("s.created_at desc").Offset(offset).Limit(limit).Scan(&results).Error
	return results, total, err
}
