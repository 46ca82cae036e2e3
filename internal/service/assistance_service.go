package service

import (
	"context"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// AssistanceService handles the three remediation levels: grading the level-1
// recap, collecting and reviewing level-2 essays, and recording level-3
// reading confirmations. Passing outcomes flip the progress record to
// must-retake inside the same transaction.
type AssistanceService struct {
	DB             *gorm.DB
	AssistanceRepo *repository.AssistanceRepository
	QuizRepo       *repository.QuizRepository
	ProgressRepo   *repository.ProgressRepository
	Redis          *redis.Client
}

func NewAssistanceService(db *gorm.DB, assistanceRepo *repository.AssistanceRepository, quizRepo *repository.QuizRepository, progressRepo *repository.ProgressRepository, rdb *redis.Client) *AssistanceService {
	return &AssistanceService{
		DB:             db,
		AssistanceRepo: assistanceRepo,
		QuizRepo:       quizRepo,
		ProgressRepo:   progressRepo,
		Redis:          rdb,
	}
}

// Level1Result reports the outcome of a level-1 recap submission.
type Level1Result struct {
	SubmissionID string           `json:"submissionId"`
	Score        int              `json:"score"`
	CorrectCount int              `json:"correctCount"`
	Total        int              `json:"total"`
	Passed       bool             `json:"passed"`
	NextAction   model.NextAction `json:"nextAction"`
}

// CompletionResult is returned by level-2 approval and level-3 confirmation.
type CompletionResult struct {
	Completed  bool             `json:"completed"`
	NextAction model.NextAction `json:"nextAction"`
}

// Level1Content is the student view of the recap: the material with correct
// answers stripped, plus the student's earlier attempts at it.
type Level1Content struct {
	*model.AssistanceLevel1
	PastAttempts []model.Level1Submission `json:"pastAttempts"`
}

// GetAssistanceContent returns the level's material for a student, after the
// access gate. Level-1 correct answers are stripped from the response.
func (s *AssistanceService) GetAssistanceContent(studentID uint, quizID string, level int) (interface{}, error) {
	progress, err := s.ProgressRepo.Get(studentID, quizID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &model.StudentQuizProgress{StudentID: studentID, QuizID: quizID, CanTakeMainQuiz: true}
	}
	if decision := CanAccessAssistanceLevel(progress, level); !decision.Allowed {
		return nil, util.ErrAssistanceNotAccessible
	}

	switch level {
	case 1:
		a, err := s.AssistanceRepo.FindLevel1ByQuiz(quizID)
		if err != nil {
			return nil, util.ErrAssistanceNotFound
		}
		for i := range a.Questions {
			a.Questions[i].CorrectAnswer = ""
		}
		attempts, err := s.AssistanceRepo.ListLevel1Submissions(a.ID, studentID)
		if err != nil {
			return nil, err
		}
		return &Level1Content{AssistanceLevel1: a, PastAttempts: attempts}, nil
	case 2:
		a, err := s.AssistanceRepo.FindLevel2ByQuiz(quizID)
		if err != nil {
			return nil, util.ErrAssistanceNotFound
		}
		return a, nil
	case 3:
		a, err := s.AssistanceRepo.FindLevel3ByQuiz(quizID)
		if err != nil {
			return nil, util.ErrAssistanceNotFound
		}
		return a, nil
	}
	return nil, util.ErrAssistanceNotFound
}

// SubmitLevel1 grades a recap submission. The level passes only with every
// answer correct; a passing submission marks the level completed and requires
// a main-quiz retake.
func (s *AssistanceService) SubmitLevel1(ctx context.Context, studentID uint, assistanceID string, answers []AnswerInput) (*Level1Result, error) {
	assistance, err := s.AssistanceRepo.FindLevel1ByID(assistanceID)
	if err != nil {
		return nil, util.ErrAssistanceNotFound
	}

	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.AnswerText
	}
	correct := 0
	graded := make([]model.Level1Answer, 0, len(assistance.Questions))
	for _, q := range assistance.Questions {
		text := byQuestion[q.ID]
		isCorrect := normalizeAnswer(text) == normalizeAnswer(q.CorrectAnswer)
		if isCorrect {
			correct++
		}
		graded = append(graded, model.Level1Answer{
			QuestionID: q.ID,
			AnswerText: text,
			IsCorrect:  isCorrect,
		})
	}
	total := len(assistance.Questions)
	score := 0
	if total > 0 {
		score = correct * 100 / total
	}
	passed := total > 0 && correct == total

	var result *Level1Result
	err = s.withLockedProgress(ctx, studentID, assistance.QuizID, 1, func(tx *gorm.DB, progress *model.StudentQuizProgress) error {
		submission := &model.Level1Submission{
			AssistanceID: assistanceID,
			StudentID:    studentID,
			Passed:       passed,
			Score:        score,
		}
		if err := s.AssistanceRepo.CreateLevel1Submission(tx, submission, graded); err != nil {
			return err
		}
		if passed {
			completeLevel(progress, 1)
		}
		result = &Level1Result{
			SubmissionID: submission.ID,
			Score:        score,
			CorrectCount: correct,
			Total:        total,
			Passed:       passed,
			NextAction:   progress.NextStep,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if passed {
		monitoring.AssistanceCompletionCounter.WithLabelValues("1").Inc()
	}
	return result, nil
}

// SubmitLevel2 stores the essay for teacher review. The progress record does
// not change until a teacher approves it.
func (s *AssistanceService) SubmitLevel2(studentID uint, assistanceID, essayText string) (*model.Level2Submission, error) {
	assistance, err := s.AssistanceRepo.FindLevel2ByID(assistanceID)
	if err != nil {
		return nil, util.ErrAssistanceNotFound
	}
	progress, err := s.ProgressRepo.Get(studentID, assistance.QuizID)
	if err != nil {
		return nil, err
	}
	if progress == nil || !CanAccessAssistanceLevel(progress, 2).Allowed {
		return nil, util.ErrAssistanceNotAccessible
	}

	// One essay in the review queue at a time; a rejection reopens it.
	latest, err := s.AssistanceRepo.FindLatestLevel2Submission(assistanceID, studentID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsApproved == nil {
		return nil, util.ErrEssayAwaitingReview
	}

	submission := &model.Level2Submission{
		AssistanceID: assistanceID,
		StudentID:    studentID,
		EssayText:    essayText,
	}
	if err := s.AssistanceRepo.CreateLevel2Submission(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// ReviewLevel2 records the teacher's verdict on an essay. Approval completes
// the level on the student's progress record; rejection leaves it open for
// resubmission.
func (s *AssistanceService) ReviewLevel2(ctx context.Context, teacherID uint, submissionID string, approved bool, feedback string) (*CompletionResult, error) {
	submission, err := s.AssistanceRepo.FindLevel2SubmissionByID(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}
	assistance, err := s.AssistanceRepo.FindLevel2ByID(submission.AssistanceID)
	if err != nil {
		return nil, util.ErrAssistanceNotFound
	}
	if err := s.checkQuizOwnership(assistance.QuizID, teacherID); err != nil {
		return nil, err
	}

	var result *CompletionResult
	err = s.withLockedProgress(ctx, submission.StudentID, assistance.QuizID, 0, func(tx *gorm.DB, progress *model.StudentQuizProgress) error {
		now := time.Now()
		submission.IsApproved = &approved
		submission.TeacherFeedback = feedback
		submission.ReviewedAt = &now
		submission.ReviewedBy = &teacherID
		if err := s.AssistanceRepo.SaveLevel2Submission(tx, submission); err != nil {
			return err
		}
		if approved {
			completeLevel(progress, 2)
		}
		result = &CompletionResult{Completed: progress.Level2Completed, NextAction: progress.NextStep}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if approved {
		monitoring.AssistanceCompletionCounter.WithLabelValues("2").Inc()
	}
	return result, nil
}

// CompleteLevel3 records the student's reading confirmation. Repeated calls
// keep a single completion row and may only update the reading time.
func (s *AssistanceService) CompleteLevel3(ctx context.Context, studentID uint, assistanceID string, readingTimeSeconds int) (*CompletionResult, error) {
	assistance, err := s.AssistanceRepo.FindLevel3ByID(assistanceID)
	if err != nil {
		return nil, util.ErrAssistanceNotFound
	}

	var result *CompletionResult
	firstCompletion := false
	err = s.withLockedProgress(ctx, studentID, assistance.QuizID, 3, func(tx *gorm.DB, progress *model.StudentQuizProgress) error {
		completion, err := s.AssistanceRepo.FindLevel3Completion(tx, assistanceID, studentID)
		if err != nil {
			return err
		}
		if completion == nil {
			completion = &model.Level3Completion{
				AssistanceID: assistanceID,
				StudentID:    studentID,
			}
		}
		firstCompletion = !completion.IsCompleted
		completion.IsCompleted = true
		if readingTimeSeconds > 0 {
			completion.ReadingTimeSeconds = readingTimeSeconds
		}
		if err := s.AssistanceRepo.SaveLevel3Completion(tx, completion); err != nil {
			return err
		}
		completeLevel(progress, 3)
		result = &CompletionResult{Completed: true, NextAction: progress.NextStep}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if firstCompletion {
		monitoring.AssistanceCompletionCounter.WithLabelValues("3").Inc()
	}
	return result, nil
}

// ListPendingLevel2 returns essays awaiting review for one quiz.
func (s *AssistanceService) ListPendingLevel2(teacherID uint, quizID string, page, limit int) ([]map[string]interface{}, int64, error) {
	if err := s.checkQuizOwnership(quizID, teacherID); err != nil {
		return nil, 0, err
	}
	return s.AssistanceRepo.ListPendingLevel2Submissions(quizID, page, limit)
}

// completeLevel marks the level done on the progress record and requires a
// main-quiz retake. Completed flags are monotonic.
func completeLevel(p *model.StudentQuizProgress, level int) {
	if !p.LevelCompleted(level) {
		p.SetLevelCompleted(level, time.Now())
	}
	if p.FinalStatus == nil || *p.FinalStatus != model.FinalStatusPassed {
		if p.FailedAttempts < util.MaxFailedAttempts {
			p.MustRetakeMainQuiz = true
			p.CanTakeMainQuiz = true
		}
	}
	SyncDerivedFlags(p)
}

// withLockedProgress runs fn inside one transaction holding a row lock on the
// progress record, retried once on lock conflict. A non-zero gateLevel runs
// the student access gate under the lock; teacher actions pass 0 to skip it.
// The status cache entry is dropped after commit.
func (s *AssistanceService) withLockedProgress(ctx context.Context, studentID uint, quizID string, gateLevel int, fn func(tx *gorm.DB, p *model.StudentQuizProgress) error) error {
	run := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			progress, err := s.ProgressRepo.GetOrCreateForUpdate(tx, studentID, quizID)
			if err != nil {
				return err
			}
			if gateLevel > 0 && !CanAccessAssistanceLevel(progress, gateLevel).Allowed {
				return util.ErrAssistanceNotAccessible
			}
			if err := fn(tx, progress); err != nil {
				return err
			}
			return s.ProgressRepo.Save(tx, progress)
		})
	}
	err := run()
	if repository.IsLockConflict(err) {
		err = run()
		if repository.IsLockConflict(err) {
			return util.ErrConcurrencyConflict
		}
	}
	if err != nil {
		return err
	}
	invalidateStatusCache(ctx, s.Redis, studentID, quizID)
	return nil
}

func (s *AssistanceService) checkQuizOwnership(quizID string, teacherID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return util.ErrPermissionDenied
	}
	return nil
}
