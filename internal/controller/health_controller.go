package controller

import (
	"net/http"

	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// Health godoc
// @Summary Liveness and database reachability
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	util.Success(ctx, gin.H{"status": "ok"})
}
