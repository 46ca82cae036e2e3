package controller

import (
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// swagger:model ClassRequest
type ClassRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// swagger:model EnrollRequest
type EnrollRequest struct {
	StudentID uint `json:"studentId" binding:"required"`
}

// CreateClass godoc
// @Summary Create a class
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ClassRequest true "class"
// @Success 201 {object} util.Response{data=model.Class}
// @Router /api/teacher/classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.CreateClass(user.UserID, req.Name, req.Description)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// ListClasses godoc
// @Summary Classes owned by the teacher
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /api/teacher/classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	classes, err := c.ClassService.ListClasses(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// UpdateClass godoc
// @Summary Update a class
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "class id"
// @Param body body ClassRequest true "fields"
// @Success 200 {object} util.Response{data=model.Class}
// @Router /api/teacher/classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.UpdateClass(user.UserID, ctx.Param("id"), req.Name, req.Description)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// DeleteClass godoc
// @Summary Delete a class
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "class id"
// @Success 200 {object} util.Response
// @Router /api/teacher/classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ClassService.DeleteClass(user.UserID, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// EnrollStudent godoc
// @Summary Enroll a student into a class
// @Tags teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "class id"
// @Param body body EnrollRequest true "student"
// @Success 200 {object} util.Response
// @Router /api/teacher/classes/{id}/students [post]
func (c *ClassController) EnrollStudent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ClassService.EnrollStudent(user.UserID, ctx.Param("id"), req.StudentID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UnenrollStudent godoc
// @Summary Remove a student from a class
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "class id"
// @Param studentId path int true "student id"
// @Success 200 {object} util.Response
// @Router /api/teacher/classes/{id}/students/{studentId} [delete]
func (c *ClassController) UnenrollStudent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	studentID := util.MustParseUint(ctx.Param("studentId"))
	if err := c.ClassService.UnenrollStudent(user.UserID, ctx.Param("id"), studentID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListStudents godoc
// @Summary Students enrolled in a class
// @Tags teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "class id"
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/teacher/classes/{id}/students [get]
func (c *ClassController) ListStudents(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	students, err := c.ClassService.ListStudents(user.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, students)
}
