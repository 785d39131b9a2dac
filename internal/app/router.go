package app

import (
	"college_survey_backend/docs"
	"college_survey_backend/internal/config"
	"college_survey_backend/internal/middleware"
	"college_survey_backend/internal/model"
	"college_survey_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. no token
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. survey operations, any authenticated account
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		api.POST("/register-student", c.student.Register)
		api.GET("/questions/:college_name", c.survey.GetSurvey)
		api.POST("/submit-answers/:college_name/:student_id", c.survey.SubmitAnswers)
		api.GET("/students/:college_name/:student_id/results", c.survey.GetResults)
	}

	// 3. administration
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(&cfg.JWT), middleware.RoleMiddleware(model.Superuser, model.CollegeAdmin))
	{
		admin.GET("/colleges", c.admin.ListColleges)
		admin.POST("/colleges", c.admin.CreateCollege)
		admin.DELETE("/colleges/:id", c.admin.DeleteCollege)
		admin.GET("/colleges/:id/categories", c.admin.ListCategories)
		admin.POST("/colleges/:id/categories", c.admin.CreateCategory)
		admin.GET("/colleges/:id/students", c.admin.ListStudents)
		admin.GET("/colleges/:id/section-results", c.admin.ListSectionResults)
		admin.POST("/colleges/:id/results/recompute", c.admin.RecomputeResults)
		admin.POST("/colleges/:id/results/export", c.admin.ExportResults)
		admin.GET("/exports/*filepath", c.admin.DownloadExport)

		admin.POST("/users", c.admin.CreateUser)

		admin.GET("/option-templates", c.admin.ListTemplates)
		admin.POST("/option-templates", c.admin.CreateTemplate)

		admin.DELETE("/categories/:id", c.admin.DeleteCategory)
		admin.POST("/categories/:id/sections", c.admin.CreateSection)
		admin.DELETE("/sections/:id", c.admin.DeleteSection)
		admin.POST("/sections/:id/questions", c.admin.CreateQuestion)
		admin.DELETE("/questions/:id", c.admin.DeleteQuestion)

		admin.PUT("/section-results", c.admin.SetSectionResult)
	}
}
