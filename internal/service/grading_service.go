package service

import (
	"context"
	"math"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GradingService reconciles teacher-assigned scores with the auto-grade
// verdicts and lets a teacher force a student's progression state.
type GradingService struct {
	DB             *gorm.DB
	QuizRepo       *repository.QuizRepository
	SubmissionRepo *repository.SubmissionRepository
	ProgressRepo   *repository.ProgressRepository
	Redis          *redis.Client
}

func NewGradingService(db *gorm.DB, quizRepo *repository.QuizRepository, submissionRepo *repository.SubmissionRepository, progressRepo *repository.ProgressRepository, rdb *redis.Client) *GradingService {
	return &GradingService{
		DB:             db,
		QuizRepo:       quizRepo,
		SubmissionRepo: submissionRepo,
		ProgressRepo:   progressRepo,
		Redis:          rdb,
	}
}

// AnswerGrade is one teacher-assigned per-answer score, keyed by question.
type AnswerGrade struct {
	QuestionID string  `json:"questionId" binding:"required"`
	Score      int     `json:"score" binding:"min=0,max=100"`
	Feedback   *string `json:"feedback,omitempty"`
}

// GradeResult reports the reconciled outcome of teacher grading.
type GradeResult struct {
	SubmissionID      string                 `json:"submissionId"`
	TeacherPercentage int                    `json:"teacherPercentage"`
	AutoPercentage    int                    `json:"autoPercentage"`
	FinalPassed       bool                   `json:"finalPassed"`
	Status            model.SubmissionStatus `json:"status"`
	NextAction        model.NextAction       `json:"nextAction"`
	UnmatchedIDs      []string               `json:"unmatchedQuestionIds,omitempty"`
}

// OverrideRequest is the teacher's forced progression state for one student.
type OverrideRequest struct {
	Status        string `json:"status" binding:"required,oneof=PASSED FAILED ONGOING"`
	AssignedLevel *int   `json:"assignedLevel,omitempty" binding:"omitempty,min=1,max=3"`
}

// GradeSubmission writes the teacher's per-answer scores and feedback, then
// reconciles: the submission passes when either the teacher average or the
// untouched auto-verdict percentage reaches the threshold. The auto-grade
// verdicts are never rewritten. Grades referencing unknown questions are
// reported, not fatal; the matching ones still apply.
func (s *GradingService) GradeSubmission(ctx context.Context, teacherID uint, submissionID string, grades []AnswerGrade, feedback string) (*GradeResult, error) {
	submission, err := s.SubmissionRepo.FindByIDWithAnswers(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}
	quiz, err := s.QuizRepo.FindByID(submission.QuizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	byQuestion := make(map[string]*model.SubmissionAnswer, len(submission.Answers))
	for i := range submission.Answers {
		byQuestion[submission.Answers[i].QuestionID] = &submission.Answers[i]
	}
	var unmatched []string
	for _, g := range grades {
		if _, ok := byQuestion[g.QuestionID]; !ok {
			unmatched = append(unmatched, g.QuestionID)
		}
	}
	if len(unmatched) > 0 {
		logger.Log.Warn("teacher grades reference questions outside the submission",
			zap.String("submissionId", submissionID),
			zap.Strings("questionIds", unmatched))
	}

	// Captured before any mutation: run may execute twice on a lock
	// conflict, and the retry must still see the pre-grade status.
	previousStatus := submission.Status

	var result *GradeResult
	run := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			progress, err := s.ProgressRepo.GetOrCreateForUpdate(tx, submission.StudentID, submission.QuizID)
			if err != nil {
				return err
			}

			for _, g := range grades {
				answer, ok := byQuestion[g.QuestionID]
				if !ok {
					continue
				}
				score := g.Score
				answer.Score = &score
				answer.Feedback = g.Feedback
				if err := s.SubmissionRepo.UpdateAnswerGrading(tx, answer.ID, answer.Score, answer.Feedback); err != nil {
					return err
				}
			}

			teacherPct := teacherPercentage(submission.Answers)
			autoPct := 0
			if submission.TotalQuestions > 0 {
				autoPct = int(math.Round(float64(submission.CorrectAnswers) / float64(submission.TotalQuestions) * 100))
			}
			finalPassed := teacherPct >= util.PassingScorePercent || autoPct >= util.PassingScorePercent

			if finalPassed {
				submission.Status = model.SubmissionPassed
			} else {
				submission.Status = model.SubmissionFailed
			}
			rounded := teacherPct
			submission.Score = &rounded
			submission.Feedback = feedback
			if err := s.SubmissionRepo.Update(tx, submission); err != nil {
				return err
			}

			if finalPassed {
				passed := true
				final := model.FinalStatusPassed
				progress.LastAttemptPassed = &passed
				progress.FinalStatus = &final
			} else if previousStatus == model.SubmissionPending && isLatestSubmission(progress, submissionID) {
				// A pending attempt resolved to failed counts as a failed
				// attempt now, routing exactly like a failed submit.
				failed := false
				progress.LastAttemptPassed = &failed
				progress.FailedAttempts++
				if progress.FailedAttempts >= util.MaxFailedAttempts {
					final := model.FinalStatusFailed
					progress.FinalStatus = &final
				}
			}
			SyncDerivedFlags(progress)
			if err := s.ProgressRepo.Save(tx, progress); err != nil {
				return err
			}

			result = &GradeResult{
				SubmissionID:      submissionID,
				TeacherPercentage: teacherPct,
				AutoPercentage:    autoPct,
				FinalPassed:       finalPassed,
				Status:            submission.Status,
				NextAction:        progress.NextStep,
				UnmatchedIDs:      unmatched,
			}
			return nil
		})
	}
	err = run()
	if repository.IsLockConflict(err) {
		err = run()
		if repository.IsLockConflict(err) {
			return nil, util.ErrConcurrencyConflict
		}
	}
	if err != nil {
		return nil, err
	}

	invalidateStatusCache(ctx, s.Redis, submission.StudentID, submission.QuizID)
	return result, nil
}

// OverrideStudentStatus forces the student's progression state, bypassing the
// normal flow. The forced state resets the attempt counters consistently:
// FAILED is terminal, ONGOING reopens the quiz with a clean slate, and an
// assigned level routes the student there regardless of thresholds.
func (s *GradingService) OverrideStudentStatus(ctx context.Context, teacherID uint, quizID string, studentID uint, req OverrideRequest) (*model.StudentQuizProgress, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	var result *model.StudentQuizProgress
	run := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			progress, err := s.ProgressRepo.GetOrCreateForUpdate(tx, studentID, quizID)
			if err != nil {
				return err
			}

			switch req.Status {
			case model.FinalStatusPassed:
				passed := true
				final := model.FinalStatusPassed
				progress.LastAttemptPassed = &passed
				progress.FinalStatus = &final
				progress.OverrideSystemFlow = false
				progress.ManuallyAssignedLevel = nil
			case model.FinalStatusFailed:
				failed := false
				final := model.FinalStatusFailed
				progress.LastAttemptPassed = &failed
				progress.FinalStatus = &final
				progress.FailedAttempts = util.MaxFailedAttempts
				progress.OverrideSystemFlow = false
				progress.ManuallyAssignedLevel = nil
			case model.FinalStatusOngoing:
				progress.FinalStatus = nil
				progress.LastAttemptPassed = nil
				progress.FailedAttempts = 0
				progress.MustRetakeMainQuiz = false
				progress.CanTakeMainQuiz = true
				if req.AssignedLevel != nil {
					progress.OverrideSystemFlow = true
					progress.ManuallyAssignedLevel = req.AssignedLevel
				} else {
					progress.OverrideSystemFlow = false
					progress.ManuallyAssignedLevel = nil
				}
			}

			SyncDerivedFlags(progress)
			if err := s.ProgressRepo.Save(tx, progress); err != nil {
				return err
			}
			result = progress
			return nil
		})
	}
	err = run()
	if repository.IsLockConflict(err) {
		err = run()
		if repository.IsLockConflict(err) {
			return nil, util.ErrConcurrencyConflict
		}
	}
	if err != nil {
		return nil, err
	}

	logger.Log.Info("teacher override applied",
		zap.Uint("teacherId", teacherID),
		zap.Uint("studentId", studentID),
		zap.String("quizId", quizID),
		zap.String("status", req.Status))
	invalidateStatusCache(ctx, s.Redis, studentID, quizID)
	return result, nil
}

// GetSubmissionDetail returns a submission with answers for the quiz owner.
func (s *GradingService) GetSubmissionDetail(teacherID uint, submissionID string) (*model.QuizSubmission, error) {
	submission, err := s.SubmissionRepo.FindByIDWithAnswers(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}
	quiz, err := s.QuizRepo.FindByID(submission.QuizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return submission, nil
}

// ListSubmissions returns the paginated submission roster for one quiz.
func (s *GradingService) ListSubmissions(teacherID uint, quizID string, page, limit int, studentName, status string) ([]map[string]interface{}, int64, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, 0, util.ErrQuizNotFound
	}
	if quiz.CreatorID != teacherID {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.SubmissionRepo.ListByQuiz(quizID, page, limit, studentName, status)
}

// teacherPercentage averages the teacher-assigned scores over all answers;
// an ungraded answer counts as zero.
func teacherPercentage(answers []model.SubmissionAnswer) int {
	if len(answers) == 0 {
		return 0
	}
	sum := 0
	for _, a := range answers {
		if a.Score != nil {
			sum += *a.Score
		}
	}
	return int(math.Round(float64(sum) / float64(len(answers))))
}

// isLatestSubmission reports whether the graded submission is the one the
// progress record currently points at; older attempts never move counters.
func isLatestSubmission(p *model.StudentQuizProgress, submissionID string) bool {
	return p.LastSubmissionID != nil && *p.LastSubmissionID == submissionID
}
