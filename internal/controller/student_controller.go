package controller

import (
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// StudentController serves the student side of the platform: quiz listing,
// attempt submission, status/routing, and the assistance flow.
type StudentController struct {
	QuizService       *service.QuizService
	AttemptService    *service.AttemptService
	AssistanceService *service.AssistanceService
}

func NewStudentController(quizService *service.QuizService, attemptService *service.AttemptService, assistanceService *service.AssistanceService) *StudentController {
	return &StudentController{
		QuizService:       quizService,
		AttemptService:    attemptService,
		AssistanceService: assistanceService,
	}
}

// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers []service.AnswerInput `json:"answers" binding:"required,dive"`
}

// swagger:model SubmitEssayRequest
type SubmitEssayRequest struct {
	EssayText string `json:"essayText" binding:"required"`
}

// swagger:model CompleteReadingRequest
type CompleteReadingRequest struct {
	ReadingTimeSeconds int `json:"readingTimeSeconds" binding:"min=0"`
}

// ListQuizzes godoc
// @Summary Published quizzes for the student's classes
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes [get]
func (c *StudentController) ListQuizzes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListForStudent(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Quiz with questions, expected answers withheld
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *StudentController) GetQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.QuizService.GetQuizForStudent(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// SubmitQuiz godoc
// @Summary Submit a main-quiz attempt
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body SubmitQuizRequest true "answers"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/student/quizzes/{id}/submit [post]
func (c *StudentController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.SubmitMainQuiz(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// QuizStatus godoc
// @Summary Progress and routing for one quiz
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=service.QuizStatus}
// @Router /api/student/quizzes/{id}/status [get]
func (c *StudentController) QuizStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.AttemptService.GetQuizStatus(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// MyAttempts godoc
// @Summary The student's attempts on one quiz
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=[]model.QuizSubmission}
// @Router /api/student/quizzes/{id}/attempts [get]
func (c *StudentController) MyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.AttemptService.ListMyAttempts(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// GetAssistance godoc
// @Summary Assistance material for one level
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param level path int true "assistance level (1-3)"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/student/quizzes/{id}/assistance/{level} [get]
func (c *StudentController) GetAssistance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	level := util.MustParseUint(ctx.Param("level"))
	content, err := c.AssistanceService.GetAssistanceContent(user.UserID, ctx.Param("id"), int(level))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, content)
}

// SubmitLevel1 godoc
// @Summary Submit the level-1 recap answers
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "assistance id"
// @Param body body SubmitQuizRequest true "answers"
// @Success 200 {object} util.Response{data=service.Level1Result}
// @Failure 403 {object} util.Response
// @Router /api/student/assistance/level1/{id}/submit [post]
func (c *StudentController) SubmitLevel1(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AssistanceService.SubmitLevel1(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SubmitLevel2 godoc
// @Summary Submit the level-2 essay for teacher review
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "assistance id"
// @Param body body SubmitEssayRequest true "essay"
// @Success 201 {object} util.Response{data=model.Level2Submission}
// @Failure 403 {object} util.Response
// @Router /api/student/assistance/level2/{id}/submit [post]
func (c *StudentController) SubmitLevel2(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitEssayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.AssistanceService.SubmitLevel2(user.UserID, ctx.Param("id"), req.EssayText)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, submission)
}

// CompleteLevel3 godoc
// @Summary Confirm the level-3 reading
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "assistance id"
// @Param body body CompleteReadingRequest false "reading time"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 403 {object} util.Response
// @Router /api/student/assistance/level3/{id}/complete [post]
func (c *StudentController) CompleteLevel3(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteReadingRequest
	_ = ctx.ShouldBindJSON(&req)

	result, err := c.AssistanceService.CompleteLevel3(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.ReadingTimeSeconds)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
