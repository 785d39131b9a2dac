package controller

import (
	"college_survey_backend/internal/service"
	"college_survey_backend/internal/util"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// AdminController serves the authoring and administration routes under /api/admin.
type AdminController struct {
	AdminService     *service.AdminService
	AuthoringService *service.AuthoringService
}

func NewAdminController(adminService *service.AdminService, authoringService *service.AuthoringService) *AdminController {
	return &AdminController{
		AdminService:     adminService,
		AuthoringService: authoringService,
	}
}

// ListColleges godoc
// @Summary Colleges visible to the caller
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.College}
// @Router /api/admin/colleges [get]
func (c *AdminController) ListColleges(ctx *gin.Context) {
	colleges, err := c.AdminService.ListColleges(util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, colleges)
}

// CreateCollege godoc
// @Summary Create a college (superuser)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CollegeReq true "college"
// @Success 201 {object} util.Response{data=model.College}
// @Failure 409 {object} util.Response "name taken"
// @Router /api/admin/colleges [post]
func (c *AdminController) CreateCollege(ctx *gin.Context) {
	var req service.CollegeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	college, err := c.AdminService.CreateCollege(util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, college)
}

// DeleteCollege godoc
// @Summary Delete a college with everything under it (superuser)
// @Tags admin
// @Security BearerAuth
// @Param id path int true "college id"
// @Success 200 {object} util.Response
// @Router /api/admin/colleges/{id} [delete]
func (c *AdminController) DeleteCollege(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteCollege(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateUser godoc
// @Summary Create an API account (superuser)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AdminUserReq true "account"
// @Success 201 {object} util.Response{data=model.AdminUser}
// @Router /api/admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req service.AdminUserReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	user, err := c.AdminService.CreateAdminUser(util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// ListTemplates godoc
// @Summary Subjective option templates
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.SubjectiveOptionTemplate}
// @Router /api/admin/option-templates [get]
func (c *AdminController) ListTemplates(ctx *gin.Context) {
	templates, err := c.AuthoringService.ListTemplates()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, templates)
}

// CreateTemplate godoc
// @Summary Create an option template (superuser)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.TemplateReq true "template"
// @Success 201 {object} util.Response{data=model.SubjectiveOptionTemplate}
// @Router /api/admin/option-templates [post]
func (c *AdminController) CreateTemplate(ctx *gin.Context) {
	var req service.TemplateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	template, err := c.AuthoringService.CreateTemplate(util.GetUserFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, template)
}

// ListCategories godoc
// @Summary Categories of a college with their sections
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "college id"
// @Success 200 {object} util.Response{data=[]model.Category}
// @Router /api/admin/colleges/{id}/categories [get]
func (c *AdminController) ListCategories(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	categories, err := c.AuthoringService.ListCategories(util.GetUserFromContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// CreateCategory godoc
// @Summary Add a category to a college
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "college id"
// @Param body body service.CategoryReq true "category"
// @Success 201 {object} util.Response{data=model.Category}
// @Router /api/admin/colleges/{id}/categories [post]
func (c *AdminController) CreateCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CategoryReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	category, err := c.AuthoringService.CreateCategory(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags admin
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} util.Response
// @Router /api/admin/categories/{id} [delete]
func (c *AdminController) DeleteCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AuthoringService.DeleteCategory(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateSection godoc
// @Summary Add a section to a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Param body body service.SectionReq true "section"
// @Success 201 {object} util.Response{data=model.Section}
// @Router /api/admin/categories/{id}/sections [post]
func (c *AdminController) CreateSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.SectionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	section, err := c.AuthoringService.CreateSection(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// DeleteSection godoc
// @Summary Delete a section
// @Tags admin
// @Security BearerAuth
// @Param id path int true "section id"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{id} [delete]
func (c *AdminController) DeleteSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AuthoringService.DeleteSection(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateQuestion godoc
// @Summary Add a question with its options to a section
// @Description Mark categories need exactly one correct option. Subjective sections with a template get the template options when none are given.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "section id"
// @Param body body service.QuestionReq true "question"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "option rules violated"
// @Router /api/admin/sections/{id}/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	question, err := c.AuthoringService.CreateQuestion(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags admin
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AuthoringService.DeleteQuestion(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListStudents godoc
// @Summary Students of a college
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "college id"
// @Success 200 {object} util.Response{data=[]model.Student}
// @Router /api/admin/colleges/{id}/students [get]
func (c *AdminController) ListStudents(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	students, err := c.AdminService.ListStudents(util.GetUserFromContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// ListSectionResults godoc
// @Summary Stored section marks of a college
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "college id"
// @Success 200 {object} util.Response{data=[]repository.CollegeMarkRow}
// @Router /api/admin/colleges/{id}/section-results [get]
func (c *AdminController) ListSectionResults(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	rows, err := c.AdminService.ListSectionResults(util.GetUserFromContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// SetSectionResult godoc
// @Summary Override a student's marks for an objective section
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SectionResultReq true "marks"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "different colleges or subjective section"
// @Router /api/admin/section-results [put]
func (c *AdminController) SetSectionResult(ctx *gin.Context) {
	var req service.SectionResultReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badBinding(ctx, err)
		return
	}
	if err := c.AdminService.SetSectionResult(util.GetUserFromContext(ctx), req); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RecomputeResults godoc
// @Summary Rebuild the section marks of a college from stored responses
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "college id"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/colleges/{id}/results/recompute [post]
func (c *AdminController) RecomputeResults(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	students, err := c.AdminService.RecomputeResults(util.GetUserFromContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"students": students})
}

// ExportResults godoc
// @Summary Export the section marks of a college as CSV
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "college id"
// @Success 201 {object} util.Response{data=service.ExportResult}
// @Router /api/admin/colleges/{id}/results/export [post]
func (c *AdminController) ExportResults(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.AdminService.ExportResults(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// DownloadExport godoc
// @Summary Download a result export kept on local storage
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Param filepath path string true "export name, results/{college id}/{file}.csv"
// @Success 200 {file} file
// @Failure 404 {object} util.Response "unknown export"
// @Router /api/admin/exports/{filepath} [get]
func (c *AdminController) DownloadExport(ctx *gin.Context) {
	name := ctx.Param("filepath")
	file, err := c.AdminService.ExportFile(util.GetUserFromContext(ctx), name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.FileAttachment(file, filepath.Base(file))
}
