package controller

import (
	"college_survey_backend/internal/service"
	"college_survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
}

func NewStudentController(studentService *service.StudentService) *StudentController {
	return &StudentController{StudentService: studentService}
}

// Register godoc
// @Summary Register a student under a college
// @Tags survey
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RegisterStudentReq true "student"
// @Success 201 {object} util.Response{data=object} "row id of the new student"
// @Failure 400 {object} util.Response "field errors in data.errors"
// @Router /api/register-student [post]
func (c *StudentController) Register(ctx *gin.Context) {
	var req service.RegisterStudentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}

	student, err := c.StudentService.Register(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.CreatedWithMessage(ctx, "Student registered successfully", gin.H{"student_id": student.ID})
}
