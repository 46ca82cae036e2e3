package controller

import (
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuizController is the teacher authoring surface: quizzes, questions, and
// the three assistance levels.
type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// swagger:model UpdateQuizRequest
type UpdateQuizRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// swagger:model ReplaceQuestionsRequest
type ReplaceQuestionsRequest struct {
	Questions []service.QuestionInput `json:"questions" binding:"required,dive"`
}

// swagger:model PublishQuizRequest
type PublishQuizRequest struct {
	Publish bool `json:"publish"`
}

// swagger:model Level1UpsertRequest
type Level1UpsertRequest struct {
	Title       string                        `json:"title" binding:"required"`
	Description string                        `json:"description"`
	Questions   []service.Level1QuestionInput `json:"questions" binding:"required,dive"`
}

// swagger:model Level2UpsertRequest
type Level2UpsertRequest struct {
	Title       string `json:"title" binding:"required"`
	EssayPrompt string `json:"essayPrompt" binding:"required"`
}

// swagger:model Level3UpsertRequest
type Level3UpsertRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PdfURL      string `json:"pdfUrl" binding:"required"`
}

// CreateQuiz godoc
// @Summary Create a quiz with its questions
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuizInput true "quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 403 {object} util.Response
// @Router /api/teacher/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(user.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// GetQuiz godoc
// @Summary Quiz with questions, expected answers included
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/teacher/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.QuizService.GetQuizForTeacher(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary Update quiz title and description
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body UpdateQuizRequest true "fields"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/teacher/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(user.UserID, ctx.Param("id"), req.Title, req.Description)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// ReplaceQuestions godoc
// @Summary Replace the question list of an unpublished quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body ReplaceQuestionsRequest true "questions"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/teacher/quizzes/{id}/questions [put]
func (c *QuizController) ReplaceQuestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ReplaceQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuizService.ReplaceQuestions(user.UserID, ctx.Param("id"), req.Questions); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// PublishQuiz godoc
// @Summary Publish or unpublish a quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body PublishQuizRequest true "publish flag"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/teacher/quizzes/{id}/publish [post]
func (c *QuizController) PublishQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PublishQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.PublishQuiz(user.UserID, ctx.Param("id"), req.Publish)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.QuizService.DeleteQuiz(user.UserID, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListByClass godoc
// @Summary Quizzes of one class
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "class id"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/teacher/classes/{id}/quizzes [get]
func (c *QuizController) ListByClass(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListByClass(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// UpsertLevel1 godoc
// @Summary Create or replace the level-1 recap for a quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body Level1UpsertRequest true "recap content"
// @Success 200 {object} util.Response{data=model.AssistanceLevel1}
// @Router /api/teacher/quizzes/{id}/assistance/level1 [put]
func (c *QuizController) UpsertLevel1(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req Level1UpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assistance, err := c.QuizService.UpsertLevel1(user.UserID, ctx.Param("id"), req.Title, req.Description, req.Questions)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, assistance)
}

// UpsertLevel2 godoc
// @Summary Create or replace the level-2 essay prompt for a quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body Level2UpsertRequest true "essay prompt"
// @Success 200 {object} util.Response{data=model.AssistanceLevel2}
// @Router /api/teacher/quizzes/{id}/assistance/level2 [put]
func (c *QuizController) UpsertLevel2(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req Level2UpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assistance, err := c.QuizService.UpsertLevel2(user.UserID, ctx.Param("id"), req.Title, req.EssayPrompt)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, assistance)
}

// UpsertLevel3 godoc
// @Summary Create or replace the level-3 reference material for a quiz
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "quiz id"
// @Param body body Level3UpsertRequest true "reference material"
// @Success 200 {object} util.Response{data=model.AssistanceLevel3}
// @Router /api/teacher/quizzes/{id}/assistance/level3 [put]
func (c *QuizController) UpsertLevel3(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req Level3UpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assistance, err := c.QuizService.UpsertLevel3(user.UserID, ctx.Param("id"), req.Title, req.Description, req.PdfURL)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, assistance)
}
