package repository

import (
	"college_survey_backend/internal/model"

	"gorm.io/gorm"
)

// SurveyRepository covers the authoring tree below a college.
type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func (r *SurveyRepository) WithTx(tx *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: tx}
}

// Categories

func (r *SurveyRepository) CreateCategory(c *model.Category) error {
	return r.DB.Create(c).Error
}

func (r *SurveyRepository) FindCategoryByID(id uint) (*model.Category, error) {
	var c model.Category
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *SurveyRepository) ListCategories(collegeID uint) ([]model.Category, error) {
	var cs []model.Category
	err := r.DB.Where("college_id = ?", collegeID).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.name asc")
		}).
		Order("name asc").Find(&cs).Error
	return cs, err
}

func (r *SurveyRepository) DeleteCategory(id uint) error {
	return r.DB.Delete(&model.Category{}, id).Error
}

// Sections

func (r *SurveyRepository) CreateSection(s *model.Section) error {
	return r.DB.Create(s).Error
}

// FindSectionByID preloads the category and the option template with its options.
func (r *SurveyRepository) FindSectionByID(id uint) (*model.Section, error) {
	var s model.Section
	err := r.DB.Preload("Category").Preload("Template.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("subjective_options.id asc")
	}).First(&s, id).Error
	return &s, err
}

func (r *SurveyRepository) DeleteSection(id uint) error {
	return r.DB.Delete(&model.Section{}, id).Error
}

// Questions

// CreateQuestion inserts the question and its options together.
func (r *SurveyRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *SurveyRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Section.Category").Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_options.id asc")
	}).First(&q, id).Error
	return &q, err
}

func (r *SurveyRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

// FindQuestionsInCollege returns the subset of ids that are questions of the
// given college, with Section.Category loaded.
func (r *SurveyRepository) FindQuestionsInCollege(collegeID uint, ids []uint) ([]model.Question, error) {
	var qs []model.Question
	if len(ids) == 0 {
		return qs, nil
	}
	err := r.DB.Select("questions.*").
		Joins("JOIN sections ON sections.id = questions.section_id").
		Joins("JOIN categories ON categories.id = sections.category_id").
		Where("categories.college_id = ? AND questions.id IN ?", collegeID, ids).
		Preload("Section.Category").
		Find(&qs).Error
	return qs, err
}

func (r *SurveyRepository) FindOptionsByIDs(ids []uint) ([]model.Option, error) {
	var opts []model.Option
	if len(ids) == 0 {
		return opts, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&opts).Error
	return opts, err
}

// Option templates

func (r *SurveyRepository) CreateTemplate(t *model.SubjectiveOptionTemplate) error {
	return r.DB.Create(t).Error
}

func (r *SurveyRepository) FindTemplateByID(id uint) (*model.SubjectiveOptionTemplate, error) {
	var t model.SubjectiveOptionTemplate
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("subjective_options.id asc")
	}).First(&t, id).Error
	return &t, err
}

func (r *SurveyRepository) ListTemplates() ([]model.SubjectiveOptionTemplate, error) {
	var ts []model.SubjectiveOptionTemplate
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("subjective_options.id asc")
	}).Order("name asc").Find(&ts).Error
	return ts, err
}
