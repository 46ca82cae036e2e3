package controller

import (
	"strconv"

	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GradingController is the teacher review surface: submission rosters,
// teacher grading, level-2 essay review, and progression overrides.
type GradingController struct {
	GradingService    *service.GradingService
	AssistanceService *service.AssistanceService
}

func NewGradingController(gradingService *service.GradingService, assistanceService *service.AssistanceService) *GradingController {
	return &GradingController{
		GradingService:    gradingService,
		AssistanceService: assistanceService,
	}
}

// swagger:model GradeRequest
type GradeRequest struct {
	Grades   []service.AnswerGrade `json:"grades" binding:"required,dive"`
	Feedback string                `json:"feedback"`
}

// swagger:model ReviewEssayRequest
type ReviewEssayRequest struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback"`
}

// ListSubmissions godoc
// @Summary Paginated submissions for one quiz
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Param studentName query string false "filter by student name"
// @Param status query string false "filter by status"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/submissions [get]
func (c *GradingController) ListSubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	submissions, total, err := c.GradingService.ListSubmissions(
		user.UserID, ctx.Param("id"), page, limit,
		ctx.Query("studentName"), ctx.Query("status"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": submissions, "total": total, "page": page, "limit": limit})
}

// GetSubmission godoc
// @Summary Submission detail with answers and verdicts
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Success 200 {object} util.Response{data=model.QuizSubmission}
// @Router /api/teacher/submissions/{id} [get]
func (c *GradingController) GetSubmission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.GradingService.GetSubmissionDetail(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// GradeSubmission godoc
// @Summary Grade a submission with per-answer scores
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "submission id"
// @Param body body GradeRequest true "per-answer scores and feedback"
// @Success 200 {object} util.Response{data=service.GradeResult}
// @Failure 403 {object} util.Response
// @Router /api/teacher/submissions/{id}/grade [post]
func (c *GradingController) GradeSubmission(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GradingService.GradeSubmission(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Grades, req.Feedback)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ReviewEssay godoc
// @Summary Approve or reject a level-2 essay
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "level-2 submission id"
// @Param body body ReviewEssayRequest true "verdict"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Router /api/teacher/assistance/level2/submissions/{id}/approve [post]
func (c *GradingController) ReviewEssay(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ReviewEssayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AssistanceService.ReviewLevel2(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Approved, req.Feedback)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListPendingEssays godoc
// @Summary Level-2 essays awaiting review for one quiz
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/assistance/level2/pending [get]
func (c *GradingController) ListPendingEssays(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	essays, total, err := c.AssistanceService.ListPendingLevel2(user.UserID, ctx.Param("id"), page, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": essays, "total": total, "page": page, "limit": limit})
}

// OverrideStatus godoc
// @Summary Force a student's progression state on one quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param studentId path int true "student id"
// @Param body body service.OverrideRequest true "forced state"
// @Success 200 {object} util.Response{data=model.StudentQuizProgress}
// @Failure 403 {object} util.Response
// @Router /api/teacher/quizzes/{id}/students/{studentId}/override [post]
func (c *GradingController) OverrideStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.OverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	studentID := util.MustParseUint(ctx.Param("studentId"))
	progress, err := c.GradingService.OverrideStudentStatus(ctx.Request.Context(), user.UserID, ctx.Param("id"), studentID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
