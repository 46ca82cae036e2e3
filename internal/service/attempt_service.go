package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/logger"
	"eduquiz_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statusCacheTTL = 30 * time.Second

// AttemptService orchestrates main-quiz submissions: auto-grading, persisting
// the attempt, updating the progress record, and computing the next action.
type AttemptService struct {
	DB             *gorm.DB
	QuizRepo       *repository.QuizRepository
	SubmissionRepo *repository.SubmissionRepository
	ProgressRepo   *repository.ProgressRepository
	ClassRepo      *repository.ClassRepository
	Redis          *redis.Client
}

func NewAttemptService(db *gorm.DB, quizRepo *repository.QuizRepository, submissionRepo *repository.SubmissionRepository, progressRepo *repository.ProgressRepository, classRepo *repository.ClassRepository, rdb *redis.Client) *AttemptService {
	return &AttemptService{
		DB:             db,
		QuizRepo:       quizRepo,
		SubmissionRepo: submissionRepo,
		ProgressRepo:   progressRepo,
		ClassRepo:      classRepo,
		Redis:          rdb,
	}
}

// SubmitResult is returned to the client after a main-quiz submission.
type SubmitResult struct {
	SubmissionID   string                 `json:"submissionId"`
	AttemptNumber  int                    `json:"attemptNumber"`
	Score          int                    `json:"score"`
	CorrectAnswers int                    `json:"correctAnswers"`
	TotalQuestions int                    `json:"totalQuestions"`
	Passed         bool                   `json:"passed"`
	Status         model.SubmissionStatus `json:"status"`
	NextAction     model.NextAction       `json:"nextAction"`
	UnmatchedIDs   []string               `json:"unmatchedQuestionIds,omitempty"`
}

// QuizStatus is the student-facing view of where they stand on one quiz.
type QuizStatus struct {
	QuizID           string                     `json:"quizId"`
	Progress         *model.StudentQuizProgress `json:"progress"`
	MainQuiz         GateDecision               `json:"mainQuiz"`
	AssistanceAccess map[int]GateDecision       `json:"assistanceAccess"`
	NextAction       model.NextAction           `json:"nextAction"`
}

// SubmitMainQuiz grades and persists one attempt inside a single transaction
// holding a row lock on the progress record, retried once on lock conflict.
// The submission row and the progress update commit together or not at all.
func (s *AttemptService) SubmitMainQuiz(ctx context.Context, studentID uint, quizID string, answers []AnswerInput) (*SubmitResult, error) {
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

	var result *SubmitResult
	submit := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = s.submitLocked(tx, quiz, studentID, answers)
			return err
		})
	}
	err = submit()
	if repository.IsLockConflict(err) {
		err = submit()
		if repository.IsLockConflict(err) {
			return nil, util.ErrConcurrencyConflict
		}
	}
	if err != nil {
		return nil, err
	}

	monitoring.QuizSubmissionCounter.WithLabelValues(string(result.Status)).Inc()
	invalidateStatusCache(ctx, s.Redis, studentID, quizID)
	return result, nil
}

func (s *AttemptService) submitLocked(tx *gorm.DB, quiz *model.Quiz, studentID uint, answers []AnswerInput) (*SubmitResult, error) {
	progress, err := s.ProgressRepo.GetOrCreateForUpdate(tx, studentID, quiz.ID)
	if err != nil {
		return nil, err
	}

	if progress.FinalStatus != nil && *progress.FinalStatus == model.FinalStatusPassed {
		return nil, util.ErrQuizAlreadyPassed
	}
	if progress.FailedAttempts >= util.MaxFailedAttempts {
		return nil, util.ErrMaxAttemptsReached
	}
	if level := requiredLevel(progress); level > 0 {
		return nil, util.ErrAssistanceRequired
	}

	graded := AutoGrade(quiz.Questions, answers)
	if len(graded.UnmatchedIDs) > 0 {
		logger.Log.Warn("submission answers reference unknown questions",
			zap.String("quizId", quiz.ID),
			zap.Uint("studentId", studentID),
			zap.Strings("questionIds", graded.UnmatchedIDs))
	}

	status := model.SubmissionFailed
	switch {
	case graded.Passed:
		status = model.SubmissionPassed
	case graded.HasIndeterminate:
		// Cannot be failed automatically while some verdicts are undecided;
		// a teacher grade resolves it later.
		status = model.SubmissionPending
	}

	score := graded.Score
	submission := &model.QuizSubmission{
		QuizID:         quiz.ID,
		StudentID:      studentID,
		AttemptNumber:  progress.CurrentAttempt + 1,
		Status:         status,
		Score:          &score,
		CorrectAnswers: graded.CorrectCount,
		TotalQuestions: graded.TotalQuestions,
	}
	if err := s.SubmissionRepo.CreateWithAnswers(tx, submission, graded.Answers); err != nil {
		return nil, err
	}

	if progress.CurrentAttempt < util.MaxFailedAttempts {
		progress.CurrentAttempt++
	}
	progress.LastSubmissionID = &submission.ID
	progress.MustRetakeMainQuiz = false

	switch status {
	case model.SubmissionPassed:
		passed := true
		final := model.FinalStatusPassed
		progress.LastAttemptPassed = &passed
		progress.FinalStatus = &final
	case model.SubmissionFailed:
		passed := false
		progress.LastAttemptPassed = &passed
		progress.FailedAttempts++
		if progress.FailedAttempts >= util.MaxFailedAttempts {
			final := model.FinalStatusFailed
			progress.FinalStatus = &final
		}
	case model.SubmissionPending:
		progress.LastAttemptPassed = nil
	}

	SyncDerivedFlags(progress)
	if err := s.ProgressRepo.Save(tx, progress); err != nil {
		return nil, err
	}

	return &SubmitResult{
		SubmissionID:   submission.ID,
		AttemptNumber:  submission.AttemptNumber,
		Score:          graded.Score,
		CorrectAnswers: graded.CorrectCount,
		TotalQuestions: graded.TotalQuestions,
		Passed:         graded.Passed,
		Status:         status,
		NextAction:     progress.NextStep,
		UnmatchedIDs:   graded.UnmatchedIDs,
	}, nil
}

// GetQuizStatus builds the routing view for one student+quiz, via a short
// redis cache. A student who never touched the quiz gets a virtual default
// record without creating a row.
func (s *AttemptService) GetQuizStatus(ctx context.Context, studentID uint, quizID string) (*QuizStatus, error) {
	if cached := s.readStatusCache(ctx, studentID, quizID); cached != nil {
		return cached, nil
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	enrolled, err := s.ClassRepo.IsEnrolled(quiz.ClassID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	progress, err := s.ProgressRepo.Get(studentID, quizID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &model.StudentQuizProgress{
			StudentID:       studentID,
			QuizID:          quizID,
			CanTakeMainQuiz: true,
			NextStep:        model.TakeMainQuizNow,
		}
	}

	status := &QuizStatus{
		QuizID:   quizID,
		Progress: progress,
		MainQuiz: CanTakeMainQuiz(progress),
		AssistanceAccess: map[int]GateDecision{
			1: CanAccessAssistanceLevel(progress, 1),
			2: CanAccessAssistanceLevel(progress, 2),
			3: CanAccessAssistanceLevel(progress, 3),
		},
		NextAction: ComputeNextStep(progress),
	}
	s.writeStatusCache(ctx, studentID, quizID, status)
	return status, nil
}

// ListMyAttempts returns the student's submissions for one quiz, oldest first.
func (s *AttemptService) ListMyAttempts(studentID uint, quizID string) ([]model.QuizSubmission, error) {
	return s.SubmissionRepo.ListByStudentAndQuiz(studentID, quizID)
}

func statusCacheKey(studentID uint, quizID string) string {
	return fmt.Sprintf("quiz_status:%s:%d", quizID, studentID)
}

func (s *AttemptService) readStatusCache(ctx context.Context, studentID uint, quizID string) *QuizStatus {
	if s.Redis == nil {
		return nil
	}
	raw, err := s.Redis.Get(ctx, statusCacheKey(studentID, quizID)).Result()
	if err != nil {
		return nil
	}
	var status QuizStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil
	}
	return &status
}

func (s *AttemptService) writeStatusCache(ctx context.Context, studentID uint, quizID string, status *QuizStatus) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, statusCacheKey(studentID, quizID), raw, statusCacheTTL).Err(); err != nil {
		logger.Log.Warn("status cache write failed", zap.Error(err))
	}
}

// invalidateStatusCache is shared by every service that mutates progression
// state.
func invalidateStatusCache(ctx context.Context, rdb *redis.Client, studentID uint, quizID string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, statusCacheKey(studentID, quizID)).Err(); err != nil {
		logger.Log.Warn("status cache invalidation failed", zap.Error(err))
	}
}
