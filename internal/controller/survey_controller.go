package controller

import (
	"college_survey_backend/internal/service"
	"college_survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService     *service.SurveyService
	SubmissionService *service.SubmissionService
	ResultService     *service.ResultService
}

func NewSurveyController(surveyService *service.SurveyService, submissionService *service.SubmissionService, resultService *service.ResultService) *SurveyController {
	return &SurveyController{
		SurveyService:     surveyService,
		SubmissionService: submissionService,
		ResultService:     resultService,
	}
}

// GetSurvey godoc
// @Summary Full survey tree of a college
// @Description Categories and sections by name, questions and options by id. Correct answers are not included.
// @Tags survey
// @Produce json
// @Security BearerAuth
// @Param college_name path string true "college name, case-insensitive"
// @Success 200 {object} util.Response{data=model.SurveyView}
// @Failure 404 {object} util.Response "college not found"
// @Router /api/questions/{college_name} [get]
func (c *SurveyController) GetSurvey(ctx *gin.Context) {
	view, err := c.SurveyService.GetSurvey(ctx.Request.Context(), ctx.Param("college_name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitAnswers godoc
// @Summary Submit a student's answers
// @Tags survey
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param college_name path string true "college name"
// @Param student_id path string true "student id within the college"
// @Param body body service.SubmissionReq true "responses"
// @Success 201 {object} util.Response{data=service.SubmissionResult}
// @Failure 400 {object} util.Response "invalid or foreign ids"
// @Failure 404 {object} util.Response "college or student not found"
// @Failure 409 {object} util.Response "concurrent write"
// @Router /api/submit-answers/{college_name}/{student_id} [post]
func (c *SurveyController) SubmitAnswers(ctx *gin.Context) {
	var req service.SubmissionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}

	result, err := c.SubmissionService.Submit(ctx.Request.Context(), ctx.Param("college_name"), ctx.Param("student_id"), req.Responses)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.CreatedWithMessage(ctx, "Responses submitted successfully", result)
}

// GetResults godoc
// @Summary Results of a student
// @Description Section marks for objective categories, chosen options for subjective ones.
// @Tags survey
// @Produce json
// @Security BearerAuth
// @Param college_name path string true "college name"
// @Param student_id path string true "student id within the college"
// @Success 200 {object} util.Response{data=model.StudentResultsView}
// @Failure 404 {object} util.Response "college or student not found"
// @Router /api/students/{college_name}/{student_id}/results [get]
func (c *SurveyController) GetResults(ctx *gin.Context) {
	view, err := c.ResultService.GetResults(ctx.Param("college_name"), ctx.Param("student_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
