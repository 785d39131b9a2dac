package repository

import (
	"college_survey_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type CollegeRepository struct {
	DB *gorm.DB
}

func NewCollegeRepository(db *gorm.DB) *CollegeRepository {
	return &CollegeRepository{DB: db}
}

func (r *CollegeRepository) Create(college *model.College) error {
	return r.DB.Create(college).Error
}

func (r *CollegeRepository) FindByID(id uint) (*model.College, error) {
	var c model.College
	err := r.DB.First(&c, id).Error
	return &c, err
}

// FindByName matches the trimmed name case-insensitively.
func (r *CollegeRepository) FindByName(name string) (*model.College, error) {
	var c model.College
	err := r.DB.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&c).Error
	return &c, err
}

// List returns every college when ids is nil, otherwise only the listed ones.
func (r *CollegeRepository) List(ids []uint) ([]model.College, error) {
	var cs []model.College
	query := r.DB.Model(&model.College{})
	if ids != nil {
		query = query.Where("id IN ?", ids)
	}
	err := query.Order("name asc").Find(&cs).Error
	return cs, err
}

func (r *CollegeRepository) Delete(id uint) error {
	return r.DB.Delete(&model.College{}, id).Error
}

// LoadSurvey loads the complete college → categories → sections → questions →
// options tree in one preload chain.
func (r *CollegeRepository) LoadSurvey(id uint) (*model.College, error) {
	var c model.College
	err := r.DB.
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.name asc, categories.id asc")
		}).
		Preload("Categories.Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.name asc, sections.id asc")
		}).
		Preload("Categories.Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id asc")
		}).
		Preload("Categories.Sections.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.id asc")
		}).
		First(&c, id).Error
	return &c, err
}
