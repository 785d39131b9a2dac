package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/monitoring"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type StudentService struct {
	StudentRepo *repository.StudentRepository
	CollegeRepo *repository.CollegeRepository
	DB          *gorm.DB
}

func NewStudentService(studentRepo *repository.StudentRepository, collegeRepo *repository.CollegeRepository, db *gorm.DB) *StudentService {
	return &StudentService{StudentRepo: studentRepo, CollegeRepo: collegeRepo, DB: db}
}

type RegisterStudentReq struct {
	StudentID   string `json:"student_id" binding:"required,notblank,max=50"`
	Name        string `json:"name" binding:"required,notblank,max=100"`
	CollegeName string `json:"college_name" binding:"required,notblank"`
}

// Register creates a student under the named college. Unknown colleges and
// duplicate student ids are reported as validation errors.
func (s *StudentService) Register(req RegisterStudentReq) (*model.Student, error) {
	collegeName := strings.TrimSpace(req.CollegeName)
	college, err := s.CollegeRepo.FindByName(collegeName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewValidationError("college_name", fmt.Sprintf("College with name '%s' does not exist.", collegeName))
		}
		return nil, err
	}

	studentID := strings.TrimSpace(req.StudentID)
	student := &model.Student{
		CollegeID: college.ID,
		StudentID: studentID,
		Name:      strings.TrimSpace(req.Name),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.StudentRepo.WithTx(tx)
		_, err := repo.FindByCollegeAndStudentID(college.ID, studentID)
		if err == nil {
			return util.NewValidationError("student_id", fmt.Sprintf("A student with ID '%s' already exists in this college.", studentID))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return repo.Create(student)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.NewValidationError("non_field_errors", "Unable to create student due to concurrent operation. Try again.")
	}
	if err != nil {
		return nil, err
	}
	monitoring.StudentsRegistered.Inc()
	return student, nil
}

// Resolve finds a student by college name and the college's student id.
func (s *StudentService) Resolve(collegeName, studentID string) (*model.College, *model.Student, error) {
	return resolveStudent(s.CollegeRepo, s.StudentRepo, collegeName, studentID)
}

func resolveStudent(colleges *repository.CollegeRepository, students *repository.StudentRepository, collegeName, studentID string) (*model.College, *model.Student, error) {
	college, err := colleges.FindByName(collegeName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", util.ErrCollegeNotFound, collegeName)
		}
		return nil, nil, err
	}
	student, err := students.FindByCollegeAndStudentID(college.ID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", util.ErrStudentNotFound, studentID)
		}
		return nil, nil, err
	}
	return college, student, nil
}
