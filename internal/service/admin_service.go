package service

import (
	"bytes"
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/logger"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService struct {
	CollegeRepo  *repository.CollegeRepository
	StudentRepo  *repository.StudentRepository
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
	UserRepo     *repository.AdminUserRepository
	Results      *ResultService
	Storage      *StorageService
	Cache        SurveyCache
}

func NewAdminService(
	collegeRepo *repository.CollegeRepository,
	studentRepo *repository.StudentRepository,
	surveyRepo *repository.SurveyRepository,
	responseRepo *repository.ResponseRepository,
	userRepo *repository.AdminUserRepository,
	results *ResultService,
	storage *StorageService,
	cache SurveyCache,
) *AdminService {
	if cache == nil {
		cache = noopSurveyCache{}
	}
	return &AdminService{
		CollegeRepo:  collegeRepo,
		StudentRepo:  studentRepo,
		SurveyRepo:   surveyRepo,
		ResponseRepo: responseRepo,
		UserRepo:     userRepo,
		Results:      results,
		Storage:      storage,
		Cache:        cache,
	}
}

type CollegeReq struct {
	Name string `json:"name" binding:"required,notblank,max=200"`
}

type AdminUserReq struct {
	Username  string          `json:"username" binding:"required,notblank,max=150"`
	Password  string          `json:"password" binding:"required,min=8"`
	Role      model.AdminRole `json:"role" binding:"required"`
	CollegeID *uint           `json:"college_id"`
}

type SectionResultReq struct {
	StudentPK  uint `json:"student_pk" binding:"required"`
	SectionID  uint `json:"section_id" binding:"required"`
	TotalMarks *int `json:"total_marks" binding:"required,min=0"`
}

type ExportResult struct {
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

func requireSuperuser(claims *util.Claims) error {
	if claims == nil || claims.Role != model.Superuser {
		return util.ErrPermissionDenied
	}
	return nil
}

func requireCollege(claims *util.Claims, collegeID uint) error {
	if claims == nil || !claims.CanManageCollege(collegeID) {
		return util.ErrPermissionDenied
	}
	return nil
}

// ListColleges returns all colleges for a superuser and the own college for a
// college admin.
func (s *AdminService) ListColleges(claims *util.Claims) ([]model.College, error) {
	if claims == nil {
		return nil, util.ErrPermissionDenied
	}
	switch claims.Role {
	case model.Superuser:
		return s.CollegeRepo.List(nil)
	case model.CollegeAdmin:
		if claims.CollegeID == nil {
			return []model.College{}, nil
		}
		return s.CollegeRepo.List([]uint{*claims.CollegeID})
	default:
		return nil, util.ErrPermissionDenied
	}
}

func (s *AdminService) CreateCollege(claims *util.Claims, req CollegeReq) (*model.College, error) {
	if err := requireSuperuser(claims); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if _, err := s.CollegeRepo.FindByName(name); err == nil {
		return nil, util.ErrCollegeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	college := &model.College{Name: name}
	if err := s.CollegeRepo.Create(college); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrCollegeExists
		}
		return nil, err
	}
	logger.Log.Info("College created", zap.Uint("college_id", college.ID), zap.String("name", college.Name))
	return college, nil
}

func (s *AdminService) DeleteCollege(ctx context.Context, claims *util.Claims, id uint) error {
	if err := requireSuperuser(claims); err != nil {
		return err
	}
	college, err := s.CollegeRepo.FindByID(id)
	if err != nil {
		return notFound(err, util.ErrCollegeNotFound)
	}
	if err := s.CollegeRepo.Delete(id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, college.Name)
	if err := s.Storage.DeletePrefix(ctx, exportPrefix(id)); err != nil {
		logger.Log.Warn("Failed to remove college exports", zap.Uint("college_id", id), zap.Error(err))
	}
	logger.Log.Info("College deleted", zap.Uint("college_id", id))
	return nil
}

func (s *AdminService) CreateAdminUser(claims *util.Claims, req AdminUserReq) (*model.AdminUser, error) {
	if err := requireSuperuser(claims); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, util.NewValidationError("role", fmt.Sprintf("unknown role %q", req.Role))
	}
	if req.Role == model.CollegeAdmin && req.CollegeID == nil {
		return nil, util.NewValidationError("college_id", "A college admin must be assigned to a college.")
	}
	if req.CollegeID != nil {
		if _, err := s.CollegeRepo.FindByID(*req.CollegeID); err != nil {
			return nil, notFound(err, util.ErrCollegeNotFound)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.AdminUser{
		Username:  strings.TrimSpace(req.Username),
		Password:  string(hashed),
		Role:      req.Role,
		CollegeID: req.CollegeID,
	}
	if req.Role == model.Superuser {
		user.CollegeID = nil
	}
	if err := s.UserRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AdminService) ListStudents(claims *util.Claims, collegeID uint) ([]model.Student, error) {
	if err := requireCollege(claims, collegeID); err != nil {
		return nil, err
	}
	if _, err := s.CollegeRepo.FindByID(collegeID); err != nil {
		return nil, notFound(err, util.ErrCollegeNotFound)
	}
	return s.StudentRepo.ListByCollege(collegeID)
}

func (s *AdminService) ListSectionResults(claims *util.Claims, collegeID uint) ([]repository.CollegeMarkRow, error) {
	if err := requireCollege(claims, collegeID); err != nil {
		return nil, err
	}
	if _, err := s.CollegeRepo.FindByID(collegeID); err != nil {
		return nil, notFound(err, util.ErrCollegeNotFound)
	}
	return s.ResponseRepo.ListCollegeMarks(collegeID)
}

// SetSectionResult overrides a student's marks for an objective section of
// the student's own college.
func (s *AdminService) SetSectionResult(claims *util.Claims, req SectionResultReq) error {
	student, err := s.StudentRepo.FindByID(req.StudentPK)
	if err != nil {
		return notFound(err, util.ErrStudentNotFound)
	}
	section, err := s.SurveyRepo.FindSectionByID(req.SectionID)
	if err != nil {
		return notFound(err, util.ErrSectionNotFound)
	}
	if err := requireCollege(claims, student.CollegeID); err != nil {
		return err
	}
	if section.Category.CollegeID != student.CollegeID {
		return util.ErrCollegeMismatch
	}
	if !section.Category.HasCorrectAnswers {
		return util.ErrSubjectiveNoMarks
	}
	return s.ResponseRepo.UpsertSectionResult(student.ID, section.ID, *req.TotalMarks)
}

// RecomputeResults rebuilds the stored marks of a college from its responses.
func (s *AdminService) RecomputeResults(claims *util.Claims, collegeID uint) (int, error) {
	if err := requireCollege(claims, collegeID); err != nil {
		return 0, err
	}
	if _, err := s.CollegeRepo.FindByID(collegeID); err != nil {
		return 0, notFound(err, util.ErrCollegeNotFound)
	}
	return s.Results.RecomputeCollege(collegeID)
}

// ExportResults writes every section mark of a college as CSV to storage.
func (s *AdminService) ExportResults(ctx context.Context, claims *util.Claims, collegeID uint) (*ExportResult, error) {
	if err := requireCollege(claims, collegeID); err != nil {
		return nil, err
	}
	college, err := s.CollegeRepo.FindByID(collegeID)
	if err != nil {
		return nil, notFound(err, util.ErrCollegeNotFound)
	}
	rows, err := s.ResponseRepo.ListCollegeMarks(collegeID)
	if err != nil {
		return nil, err
	}

	data, err := encodeMarksCSV(rows)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s%s_%s.csv", exportPrefix(college.ID), time.Now().Format("20060102"), uuid.New().String())
	url, err := s.Storage.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), util.MimeCSV)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Results exported",
		zap.Uint("college_id", college.ID),
		zap.Int("rows", len(rows)),
		zap.String("url", url),
	)
	return &ExportResult{URL: url, Rows: len(rows)}, nil
}

// ExportFile resolves a locally stored export for download. Names look like
// results/<college id>/<file>.csv and only admins of that college may read them.
func (s *AdminService) ExportFile(claims *util.Claims, name string) (string, error) {
	parts := strings.Split(strings.TrimPrefix(path.Clean("/"+name), "/"), "/")
	if len(parts) != 3 || parts[0] != "results" || !strings.HasSuffix(parts[2], ".csv") {
		return "", util.ErrExportNotFound
	}
	collegeID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", util.ErrExportNotFound
	}
	if err := requireCollege(claims, uint(collegeID)); err != nil {
		return "", err
	}
	file, ok := s.Storage.LocalPath(strings.Join(parts, "/"))
	if !ok {
		return "", util.ErrExportNotFound
	}
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		return "", util.ErrExportNotFound
	}
	return file, nil
}

func exportPrefix(collegeID uint) string {
	return fmt.Sprintf("results/%d/", collegeID)
}

func encodeMarksCSV(rows []repository.CollegeMarkRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"student_id", "student_name", "category", "section", "total_marks"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{r.StudentID, r.StudentName, r.CategoryName, r.SectionName, strconv.Itoa(r.TotalMarks)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
