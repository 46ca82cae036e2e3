package controller

import (
	"fmt"
	"path/filepath"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/service"
	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UploadController stores question images and level-3 reference PDFs through
// the configured storage provider and hands back opaque URLs.
type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

// Upload godoc
// @Summary Upload a question image or reference PDF
// @Tags teacher
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "image or PDF"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/teacher/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage, util.MimePDF})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("%d/%s/%s%s",
		user.UserID,
		time.Now().Format(util.DateFormat),
		model.GenerateUUID(),
		filepath.Ext(header.Filename))
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, header.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"url": url, "mimeType": mimeType})
}
