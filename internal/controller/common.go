package controller

import (
	"errors"
	"net/http"

	"eduquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service sentinel errors onto HTTP responses.
// Unknown errors are logged and answered with a 500.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrClassNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrAssistanceNotFound),
		errors.Is(err, util.ErrSubmissionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied),
		errors.Is(err, util.ErrNotEnrolled),
		errors.Is(err, util.ErrQuizNotPublished),
		errors.Is(err, util.ErrQuizAlreadyPassed),
		errors.Is(err, util.ErrMaxAttemptsReached),
		errors.Is(err, util.ErrAssistanceNotAccessible),
		errors.Is(err, util.ErrAssistanceRequired):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrEssayAwaitingReview):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrConcurrencyConflict):
		util.Error(ctx, http.StatusConflict, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
