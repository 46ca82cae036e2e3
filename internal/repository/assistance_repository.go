package repository

import (
	"errors"

	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type AssistanceRepository struct {
	DB *gorm.DB
}

func NewAssistanceRepository(db *gorm.DB) *AssistanceRepository {
	return &AssistanceRepository{DB: db}
}

// ---- Level 1 ----

func (r *AssistanceRepository) FindLevel1ByQuiz(quizID string) (*model.AssistanceLevel1, error) {
	var a model.AssistanceLevel1
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("assistance_level1_questions.`order` asc")
	}).First(&a, "quiz_id = ?", quizID).Error
	return &a, err
}

func (r *AssistanceRepository) FindLevel1ByID(id string) (*model.AssistanceLevel1, error) {
	var a model.AssistanceLevel1
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("assistance_level1_questions.`order` asc")
	}).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *AssistanceRepository) SaveLevel1(a *model.AssistanceLevel1) error {
	return r.DB.Save(a).Error
}

func (r *AssistanceRepository) ReplaceLevel1Questions(assistanceID string, questions []model.Level1Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assistance_id = ?", assistanceID).Delete(&model.Level1Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].AssistanceID = assistanceID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AssistanceRepository) CreateLevel1Submission(tx *gorm.DB, s *model.Level1Submission, answers []model.Level1Answer) error {
	if tx == nil {
		tx = r.DB
	}
	if err := tx.Create(s).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].SubmissionID = s.ID
	}
	if len(answers) > 0 {
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
	}
	s.Answers = answers
	return nil
}

func (r *AssistanceRepository) ListLevel1Submissions(assistanceID string, studentID uint) ([]model.Level1Submission, error) {
	var subs []model.Level1Submission
	err := r.DB.Where("assistance_id = ? AND student_id = ?", assistanceID, studentID).
		Order("created_at asc").Find(&subs).Error
	return subs, err
}

// ---- Level 2 ----

func (r *AssistanceRepository) FindLevel2ByQuiz(quizID string) (*model.AssistanceLevel2, error) {
	var a model.AssistanceLevel2
	err := r.DB.First(&a, "quiz_id = ?", quizID).Error
	return &a, err
}

func (r *AssistanceRepository) FindLevel2ByID(id string) (*model.AssistanceLevel2, error) {
	var a model.AssistanceLevel2
	err := r.DB.First(&a, "id = ?", id).Error
	return &a, err
}

func (r *AssistanceRepository) SaveLevel2(a *model.AssistanceLevel2) error {
	return r.DB.Save(a).Error
}

func (r *AssistanceRepository) CreateLevel2Submission(s *model.Level2Submission) error {
	return r.DB.Create(s).Error
}

func (r *AssistanceRepository) FindLevel2SubmissionByID(id string) (*model.Level2Submission, error) {
	var s model.Level2Submission
	err := r.DB.First(&s, "id = ?", id).Error
	return &s, err
}

func (r *AssistanceRepository) SaveLevel2Submission(tx *gorm.DB, s *model.Level2Submission) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(s).Error
}

func (r *AssistanceRepository) FindLatestLevel2Submission(assistanceID string, studentID uint) (*model.Level2Submission, error) {
	var s model.Level2Submission
	err := r.DB.Where("assistance_id = ? AND student_id = ?", assistanceID, studentID).
		Order("created_at desc").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssistanceRepository) ListPendingLevel2Submissions(quizID string, page, limit int) ([]map[string]interface{}, int64, error) {
	query := r.DB.Table("assistance_level2_submissions s").
		Select("s.*, u.name as student_name, u.email as student_email").
		Joins("JOIN assistance_level2 a ON s.assistance_id = a.id").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("a.quiz_id = ? AND s.is_approved IS NULL AND s.deleted_at IS NULL", quizID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []map[string]interface{}
	offset := (page - 1) * limit
	err := query.Order("s.created_at asc").Offset(offset).Limit(limit).Scan(&results).Error
	return results, total, err
}

// ---- Level 3 ----

func (r *AssistanceRepository) FindLevel3ByQuiz(quizID string) (*model.AssistanceLevel3, error) {
	var a model.AssistanceLevel3
	err := r.DB.First(&a, "quiz_id = ?", quizID).Error
	return &a, err
}

func (r *AssistanceRepository) FindLevel3ByID(id string) (*model.AssistanceLevel3, error) {
	var a model.AssistanceLevel3
	err := r.DB.First(&a, "id = ?", id).Error
	return &a, err
}

func (r *AssistanceRepository) SaveLevel3(a *model.AssistanceLevel3) error {
	return r.DB.Save(a).Error
}

func (r *AssistanceRepository) FindLevel3Completion(tx *gorm.DB, assistanceID string, studentID uint) (*model.Level3Completion, error) {
	if tx == nil {
		tx = r.DB
	}
	var c model.Level3Completion
	err := tx.Where("assistance_id = ? AND student_id = ?", assistanceID, studentID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AssistanceRepository) SaveLevel3Completion(tx *gorm.DB, c *model.Level3Completion) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(c).Error
}
