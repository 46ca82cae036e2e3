package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) FindByIDWithQuestions(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` asc, quiz_questions.created_at asc")
	}).First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, "id = ?", id).Error
	})
}

func (r *QuizRepository) ListByClass(classID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("class_id = ?", classID).Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListPublishedByClasses(classIDs []string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	if len(classIDs) == 0 {
		return quizzes, nil
	}
	err := r.DB.Where("class_id IN ? AND is_published = ?", classIDs, true).
		Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListQuestions(quizID string) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdateQuestion(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuizRepository) DeleteQuestion(id string) error {
	return r.DB.Delete(&model.QuizQuestion{}, "id = ?", id).Error
}

// ReplaceQuestions swaps the quiz's question list in one transaction.
func (r *QuizRepository) ReplaceQuestions(quizID string, questions []model.QuizQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&model.QuizQuestion{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quizID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
