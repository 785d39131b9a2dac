package app

import (
	"college_survey_backend/internal/config"
	"college_survey_backend/internal/controller"
	"college_survey_backend/internal/middleware"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/service"
	"college_survey_backend/pkg/configwatcher"
	"college_survey_backend/pkg/database"
	"college_survey_backend/pkg/logger"
	"college_survey_backend/pkg/monitoring"
	"college_survey_backend/pkg/security"
	"college_survey_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigPath string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	cors            *security.CORSPolicy
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	college  *repository.CollegeRepository
	student  *repository.StudentRepository
	survey   *repository.SurveyRepository
	response *repository.ResponseRepository
	user     *repository.AdminUserRepository
}

type services struct {
	auth       *service.AuthService
	student    *service.StudentService
	survey     *service.SurveyService
	submission *service.SubmissionService
	result     *service.ResultService
	authoring  *service.AuthoringService
	admin      *service.AdminService
	storage    *service.StorageService
}

type controllers struct {
	auth    *controller.AuthController
	student *controller.StudentController
	survey  *controller.SurveyController
	admin   *controller.AdminController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		college:  repository.NewCollegeRepository(db),
		student:  repository.NewStudentRepository(db),
		survey:   repository.NewSurveyRepository(db),
		response: repository.NewResponseRepository(db),
		user:     repository.NewAdminUserRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}
	cache := service.NewSurveyCache(rdb, cfg.Redis.SurveyCacheTTL())

	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.student = service.NewStudentService(repos.student, repos.college, db)
	s.survey = service.NewSurveyService(repos.college, cache)
	s.submission = service.NewSubmissionService(repos.college, repos.student, repos.survey, repos.response, db)
	s.result = service.NewResultService(repos.college, repos.student, repos.response, db)
	s.authoring = service.NewAuthoringService(repos.survey, repos.college, s.result, cache)
	s.admin = service.NewAdminService(
		repos.college,
		repos.student,
		repos.survey,
		repos.response,
		repos.user,
		s.result,
		s.storage,
		cache,
	)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		student: controller.NewStudentController(s.student),
		survey:  controller.NewSurveyController(s.survey, s.submission, s.result),
		admin:   controller.NewAdminController(s.admin, s.authoring),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.AccessLog())
	router.Use(a.cors.Middleware())
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services and routes on top of ready connections.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:     cfg,
		ConfigPath: filepath.Join("configs", "config.yaml"),
		DB:         db,
		Redis:      rdb,
		cors:       security.NewCORSPolicy(cfg.CORS.AllowedOrigins),
		limiter:    security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()),
	}

	controller.RegisterValidators()
	monitoring.Init()

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, db, rdb)
	ctrls := app.initControllers(svcs, db, rdb)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)
	return app
}

// NewApp opens the database and redis, migrates when allowed, and builds the app.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode != gin.ReleaseMode)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := Prepare(db, cfg); err != nil {
			return nil, err
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("college-survey", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}
	return app, nil
}

// Prepare migrates the schema, installs the stock templates and the bootstrap superuser.
func Prepare(db *gorm.DB, cfg *config.Config) error {
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedDefaults(db); err != nil {
		return err
	}
	return database.EnsureBootstrapAdmin(db, &cfg.Admin)
}

// applyConfig pushes reloadable settings into the running middlewares.
func (a *App) applyConfig(cfg *config.Config) {
	a.cors.SetOrigins(cfg.CORS.AllowedOrigins)
	a.limiter.Update(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	logger.Log.Info("Runtime settings updated",
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins),
		zap.Int("rate_limit", cfg.RateLimit.MaxRequests),
	)
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(a.ConfigPath); err == nil {
		go func() {
			if err := configwatcher.Watch(ctx, a.ConfigPath, a.applyConfig); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.limiter.Stop()
	if err := tracing.Shutdown(shutdownCtx, a.tracer); err != nil {
		logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Log.Info("Server exiting")
	return nil
}
