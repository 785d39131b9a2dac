package repository

import (
	"college_survey_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) WithTx(tx *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: tx}
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var s model.Student
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *StudentRepository) FindByCollegeAndStudentID(collegeID uint, studentID string) (*model.Student, error) {
	var s model.Student
	err := r.DB.Where("college_id = ? AND student_id = ?", collegeID, studentID).First(&s).Error
	return &s, err
}

func (r *StudentRepository) ListByCollege(collegeID uint) ([]model.Student, error) {
	var ss []model.Student
	err := r.DB.Where("college_id = ?", collegeID).Order("student_id asc").Find(&ss).Error
	return ss, err
}
