package service

import (
	"fmt"
	"testing"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/pkg/database"
	"eduquiz_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database and migrates the full
// schema. The cache=shared DSN keeps every pooled connection on the same
// database; the test name keeps databases isolated between tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// fixture is a seeded teacher-owned class with one enrolled student and one
// published quiz.
type fixture struct {
	db      *gorm.DB
	teacher *model.User
	student *model.User
	class   *model.Class
	quiz    *model.Quiz
}

func seedQuiz(t *testing.T, db *gorm.DB, questions []model.QuizQuestion) *fixture {
	t.Helper()
	teacher := &model.User{Name: "Ms. Chen", Email: "chen@example.com", Password: "x", Role: model.Teacher}
	require.NoError(t, db.Create(teacher).Error)
	student := &model.User{Name: "Dana", Email: "dana@example.com", Password: "x", Role: model.Student}
	require.NoError(t, db.Create(student).Error)

	class := &model.Class{Name: "Physics 101", TeacherID: teacher.ID}
	require.NoError(t, db.Create(class).Error)
	require.NoError(t, db.Create(&model.ClassEnrollment{ClassID: class.ID, StudentID: student.ID}).Error)

	quiz := &model.Quiz{
		Title:       "Forces and Motion",
		ClassID:     class.ID,
		CreatorID:   teacher.ID,
		IsPublished: true,
		Questions:   questions,
	}
	require.NoError(t, db.Create(quiz).Error)

	return &fixture{db: db, teacher: teacher, student: student, class: class, quiz: quiz}
}

// threeQuestionQuiz matches the recurring grading example: 2 of 3 correct
// scores 67 and fails, 3 of 3 passes.
func threeQuestionQuiz() []model.QuizQuestion {
	return []model.QuizQuestion{
		{Content: "2 + 2 = ?", ExpectedAnswer: "4", Order: 1},
		{Content: "Capital of France?", ExpectedAnswer: "Paris", Order: 2},
		{Content: "Second planet from the sun?", ExpectedAnswer: "Venus", Order: 3},
	}
}

func (f *fixture) answersFor(texts ...string) []AnswerInput {
	answers := make([]AnswerInput, 0, len(texts))
	for i, text := range texts {
		answers = append(answers, AnswerInput{QuestionID: f.quiz.Questions[i].ID, AnswerText: text})
	}
	return answers
}

func (f *fixture) attemptService() *AttemptService {
	return NewAttemptService(f.db,
		repository.NewQuizRepository(f.db),
		repository.NewSubmissionRepository(f.db),
		repository.NewProgressRepository(f.db),
		repository.NewClassRepository(f.db),
		nil)
}

func (f *fixture) assistanceService() *AssistanceService {
	return NewAssistanceService(f.db,
		repository.NewAssistanceRepository(f.db),
		repository.NewQuizRepository(f.db),
		repository.NewProgressRepository(f.db),
		nil)
}

func (f *fixture) gradingService() *GradingService {
	return NewGradingService(f.db,
		repository.NewQuizRepository(f.db),
		repository.NewSubmissionRepository(f.db),
		repository.NewProgressRepository(f.db),
		nil)
}

func (f *fixture) progress(t *testing.T) *model.StudentQuizProgress {
	t.Helper()
	var p model.StudentQuizProgress
	require.NoError(t, f.db.Where("student_id = ? AND quiz_id = ?", f.student.ID, f.quiz.ID).First(&p).Error)
	return &p
}

func (f *fixture) seedProgress(t *testing.T, mutate func(p *model.StudentQuizProgress)) *model.StudentQuizProgress {
	t.Helper()
	p := &model.StudentQuizProgress{
		StudentID:       f.student.ID,
		QuizID:          f.quiz.ID,
		CanTakeMainQuiz: true,
	}
	if mutate != nil {
		mutate(p)
	}
	SyncDerivedFlags(p)
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) submissionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.QuizSubmission{}).
		Where("quiz_id = ? AND student_id = ?", f.quiz.ID, f.student.ID).
		Count(&count).Error)
	return count
}

func (f *fixture) seedLevel1(t *testing.T, questions []model.Level1Question) *model.AssistanceLevel1 {
	t.Helper()
	a := &model.AssistanceLevel1{
		QuizID:    f.quiz.ID,
		Title:     "Key concepts recap",
		Questions: questions,
	}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func (f *fixture) seedLevel2(t *testing.T) *model.AssistanceLevel2 {
	t.Helper()
	a := &model.AssistanceLevel2{
		QuizID:      f.quiz.ID,
		Title:       "Reflection essay",
		EssayPrompt: "Explain where your reasoning went wrong.",
	}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func (f *fixture) seedLevel3(t *testing.T) *model.AssistanceLevel3 {
	t.Helper()
	a := &model.AssistanceLevel3{
		QuizID: f.quiz.ID,
		Title:  "Study guide",
		PdfURL: "/uploads/guides/forces.pdf",
	}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func twoRecapQuestions() []model.Level1Question {
	return []model.Level1Question{
		{Content: "Force equals?", Options: []byte(`["ma","mv","mg"]`), CorrectAnswer: "ma", Order: 1},
		{Content: "Unit of force?", Options: []byte(`["newton","joule","watt"]`), CorrectAnswer: "newton", Order: 2},
	}
}
