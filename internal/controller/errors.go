package controller

import (
	"college_survey_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	var (
		validationErr *util.ValidationError
		missingErr    *util.MissingReferencesError
		mismatchErr   *util.OptionMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		util.ErrorWithData(ctx, http.StatusBadRequest, "Validation failed", gin.H{"errors": validationErr.Fields})
	case errors.As(err, &missingErr):
		util.ErrorWithData(ctx, http.StatusBadRequest, "Invalid question_id or selected_option_id referenced.", gin.H{
			"missing_questions": missingErr.Questions,
			"missing_options":   missingErr.Options,
		})
	case errors.As(err, &mismatchErr):
		util.BadRequest(ctx, mismatchErr.Error())
	case errors.Is(err, util.ErrDuplicateQuestion),
		errors.Is(err, util.ErrCollegeMismatch),
		errors.Is(err, util.ErrSubjectiveNoMarks):
		util.BadRequest(ctx, err.Error())
	case util.IsNotFound(err):
		util.NotFoundMessage(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrConflict):
		util.Conflict(ctx, "A database conflict occurred. Please try again.")
	case errors.Is(err, util.ErrCollegeExists),
		errors.Is(err, util.ErrTemplateExists),
		errors.Is(err, util.ErrUsernameTaken):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrStorageNotAvailable):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func badBinding(ctx *gin.Context, err error) {
	util.ErrorWithData(ctx, http.StatusBadRequest, "Validation failed", gin.H{"errors": bindingErrors(err)})
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
