package service

import (
	"encoding/json"
	"errors"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"

	"gorm.io/gorm"
)

// QuizService covers quiz and assistance authoring for teachers plus the
// student-facing quiz views.
type QuizService struct {
	QuizRepo       *repository.QuizRepository
	ClassRepo      *repository.ClassRepository
	AssistanceRepo *repository.AssistanceRepository
}

func NewQuizService(quizRepo *repository.QuizRepository, classRepo *repository.ClassRepository, assistanceRepo *repository.AssistanceRepository) *QuizService {
	return &QuizService{
		QuizRepo:       quizRepo,
		ClassRepo:      classRepo,
		AssistanceRepo: assistanceRepo,
	}
}

type QuestionInput struct {
	Content        string  `json:"content" binding:"required"`
	ExpectedAnswer string  `json:"expectedAnswer"`
	ImageURL       *string `json:"imageUrl,omitempty"`
}

type QuizInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	ClassID     string          `json:"classId" binding:"required"`
	Questions   []QuestionInput `json:"questions"`
}

type Level1QuestionInput struct {
	Content       string          `json:"content" binding:"required"`
	Options       json.RawMessage `json:"options" binding:"required"`
	CorrectAnswer string          `json:"correctAnswer" binding:"required"`
}

// ---- teacher authoring ----

func (s *QuizService) CreateQuiz(teacherID uint, in QuizInput) (*model.Quiz, error) {
	class, err := s.ClassRepo.FindByID(in.ClassID)
	if err != nil {
		return nil, util.ErrClassNotFound
	}
	if class.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	quiz := &model.Quiz{
		Title:       in.Title,
		Description: in.Description,
		ClassID:     in.ClassID,
		CreatorID:   teacherID,
	}
	for i, q := range in.Questions {
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			Content:        q.Content,
			ExpectedAnswer: q.ExpectedAnswer,
			ImageURL:       q.ImageURL,
			Order:          i,
		})
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(teacherID uint, quizID, title, description string) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(teacherID, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Title = title
	quiz.Description = description
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// ReplaceQuestions swaps the whole question list. Rejected once the quiz is
// published: questions are immutable while students can attempt them.
func (s *QuizService) ReplaceQuestions(teacherID uint, quizID string, in []QuestionInput) error {
	quiz, err := s.ownedQuiz(teacherID, quizID)
	if err != nil {
		return err
	}
	if quiz.IsPublished {
		return util.ErrPermissionDenied
	}
	questions := make([]model.QuizQuestion, 0, len(in))
	for i, q := range in {
		questions = append(questions, model.QuizQuestion{
			Content:        q.Content,
			ExpectedAnswer: q.ExpectedAnswer,
			ImageURL:       q.ImageURL,
			Order:          i,
		})
	}
	return s.QuizRepo.ReplaceQuestions(quizID, questions)
}

func (s *QuizService) PublishQuiz(teacherID uint, quizID string, publish bool) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(teacherID, quizID)
	if err != nil {
		return nil, err
	}
	quiz.IsPublished = publish
	if publish {
		now := time.Now()
		quiz.PublishedAt = &now
	} else {
		quiz.PublishedAt = nil
	}
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(teacherID uint, quizID string) error {
	if _, err := s.ownedQuiz(teacherID, quizID); err != nil {
		return err
	}
	return s.QuizRepo.Delete(quizID)
}

func (s *QuizService) ListByClass(teacherID uint, classID string) ([]model.Quiz, error) {
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		return nil, util.ErrClassNotFound
	}
	if class.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return s.QuizRepo.ListByClass(classID)
}

func (s *QuizService) GetQuizForTeacher(teacherID uint, quizID string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

// ---- assistance authoring ----

func (s *QuizService) UpsertLevel1(teacherID uint, quizID, title, description string, questions []Level1QuestionInput) (*model.AssistanceLevel1, error) {
	if _, err := s.ownedQuiz(teacherID, quizID); err != nil {
		return nil, err
	}
	assistance, err := s.AssistanceRepo.FindLevel1ByQuiz(quizID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		assistance = &model.AssistanceLevel1{QuizID: quizID}
	}
	assistance.Title = title
	assistance.Description = description
	assistance.Questions = nil
	if err := s.AssistanceRepo.SaveLevel1(assistance); err != nil {
		return nil, err
	}

	qs := make([]model.Level1Question, 0, len(questions))
	for i, q := range questions {
		qs = append(qs, model.Level1Question{
			Content:       q.Content,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Order:         i,
		})
	}
	if err := s.AssistanceRepo.ReplaceLevel1Questions(assistance.ID, qs); err != nil {
		return nil, err
	}
	assistance.Questions = qs
	return assistance, nil
}

func (s *QuizService) UpsertLevel2(teacherID uint, quizID, title, essayPrompt string) (*model.AssistanceLevel2, error) {
	if _, err := s.ownedQuiz(teacherID, quizID); err != nil {
		return nil, err
	}
	assistance, err := s.AssistanceRepo.FindLevel2ByQuiz(quizID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		assistance = &model.AssistanceLevel2{QuizID: quizID}
	}
	assistance.Title = title
	assistance.EssayPrompt = essayPrompt
	if err := s.AssistanceRepo.SaveLevel2(assistance); err != nil {
		return nil, err
	}
	return assistance, nil
}

func (s *QuizService) UpsertLevel3(teacherID uint, quizID, title, description, pdfURL string) (*model.AssistanceLevel3, error) {
	if _, err := s.ownedQuiz(teacherID, quizID); err != nil {
		return nil, err
	}
	assistance, err := s.AssistanceRepo.FindLevel3ByQuiz(quizID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		assistance = &model.AssistanceLevel3{QuizID: quizID}
	}
	assistance.Title = title
	assistance.Description = description
	assistance.PdfURL = pdfURL
	if err := s.AssistanceRepo.SaveLevel3(assistance); err != nil {
		return nil, err
	}
	return assistance, nil
}

// ---- student views ----

// ListForStudent returns the published quizzes across all classes the student
// is enrolled in.
func (s *QuizService) ListForStudent(studentID uint) ([]model.Quiz, error) {
	classIDs, err := s.ClassRepo.ListClassIDsForStudent(studentID)
	if err != nil {
		return nil, err
	}
	if len(classIDs) == 0 {
		return []model.Quiz{}, nil
	}
	return s.QuizRepo.ListPublishedByClasses(classIDs)
}

// GetQuizForStudent returns the quiz with its questions. Expected answers are
// stripped: they never leave the server on the student path.
func (s *QuizService) GetQuizForStudent(studentID uint, quizID string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotPublished
	}
	enrolled, err := s.ClassRepo.IsEnrolled(quiz.ClassID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	for i := range quiz.Questions {
		quiz.Questions[i].ExpectedAnswer = ""
	}
	return quiz, nil
}

func (s *QuizService) ownedQuiz(teacherID uint, quizID string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
