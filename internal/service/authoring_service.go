package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthoringService edits the survey tree of a college. College admins may only
// touch their own college.
type AuthoringService struct {
	SurveyRepo  *repository.SurveyRepository
	CollegeRepo *repository.CollegeRepository
	Results     *ResultService
	Cache       SurveyCache
}

func NewAuthoringService(surveyRepo *repository.SurveyRepository, collegeRepo *repository.CollegeRepository, results *ResultService, cache SurveyCache) *AuthoringService {
	if cache == nil {
		cache = noopSurveyCache{}
	}
	return &AuthoringService{SurveyRepo: surveyRepo, CollegeRepo: collegeRepo, Results: results, Cache: cache}
}

type CategoryReq struct {
	Name              string `json:"name" binding:"required,notblank,max=255"`
	HasCorrectAnswers bool   `json:"has_correct_answers"`
}

type SectionReq struct {
	Name       string `json:"name" binding:"required,notblank,max=255"`
	TemplateID *uint  `json:"subjective_option_template_id"`
}

type OptionReq struct {
	Text      string `json:"text" binding:"required,notblank,max=255"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionReq struct {
	Text    string      `json:"text" binding:"required,notblank"`
	Options []OptionReq `json:"options" binding:"dive"`
}

type TemplateReq struct {
	Name    string   `json:"name" binding:"required,notblank,max=100"`
	Options []string `json:"options" binding:"required,min=1,dive,notblank,max=255"`
}

func (s *AuthoringService) authorize(claims *util.Claims, collegeID uint) error {
	if claims == nil || !claims.CanManageCollege(collegeID) {
		return util.ErrPermissionDenied
	}
	return nil
}

func (s *AuthoringService) invalidate(ctx context.Context, collegeID uint) {
	college, err := s.CollegeRepo.FindByID(collegeID)
	if err != nil {
		return
	}
	s.Cache.Invalidate(ctx, college.Name)
}

func (s *AuthoringService) ListCategories(claims *util.Claims, collegeID uint) ([]model.Category, error) {
	if err := s.authorize(claims, collegeID); err != nil {
		return nil, err
	}
	if _, err := s.CollegeRepo.FindByID(collegeID); err != nil {
		return nil, notFound(err, util.ErrCollegeNotFound)
	}
	return s.SurveyRepo.ListCategories(collegeID)
}

func (s *AuthoringService) CreateCategory(ctx context.Context, claims *util.Claims, collegeID uint, req CategoryReq) (*model.Category, error) {
	if err := s.authorize(claims, collegeID); err != nil {
		return nil, err
	}
	if _, err := s.CollegeRepo.FindByID(collegeID); err != nil {
		return nil, notFound(err, util.ErrCollegeNotFound)
	}
	category := &model.Category{
		CollegeID:         collegeID,
		Name:              strings.TrimSpace(req.Name),
		HasCorrectAnswers: req.HasCorrectAnswers,
	}
	if err := s.SurveyRepo.CreateCategory(category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, collegeID)
	return category, nil
}

func (s *AuthoringService) DeleteCategory(ctx context.Context, claims *util.Claims, id uint) error {
	category, err := s.SurveyRepo.FindCategoryByID(id)
	if err != nil {
		return notFound(err, util.ErrCategoryNotFound)
	}
	if err := s.authorize(claims, category.CollegeID); err != nil {
		return err
	}
	if err := s.SurveyRepo.DeleteCategory(id); err != nil {
		return err
	}
	s.invalidate(ctx, category.CollegeID)
	return nil
}

func (s *AuthoringService) CreateSection(ctx context.Context, claims *util.Claims, categoryID uint, req SectionReq) (*model.Section, error) {
	category, err := s.SurveyRepo.FindCategoryByID(categoryID)
	if err != nil {
		return nil, notFound(err, util.ErrCategoryNotFound)
	}
	if err := s.authorize(claims, category.CollegeID); err != nil {
		return nil, err
	}
	if req.TemplateID != nil {
		if _, err := s.SurveyRepo.FindTemplateByID(*req.TemplateID); err != nil {
			return nil, notFound(err, util.ErrTemplateNotFound)
		}
	}
	section := &model.Section{
		CategoryID:                 categoryID,
		Name:                       strings.TrimSpace(req.Name),
		SubjectiveOptionTemplateID: req.TemplateID,
	}
	if err := s.SurveyRepo.CreateSection(section); err != nil {
		return nil, err
	}
	s.invalidate(ctx, category.CollegeID)
	return section, nil
}

func (s *AuthoringService) DeleteSection(ctx context.Context, claims *util.Claims, id uint) error {
	section, err := s.SurveyRepo.FindSectionByID(id)
	if err != nil {
		return notFound(err, util.ErrSectionNotFound)
	}
	if err := s.authorize(claims, section.Category.CollegeID); err != nil {
		return err
	}
	if err := s.SurveyRepo.DeleteSection(id); err != nil {
		return err
	}
	s.invalidate(ctx, section.Category.CollegeID)
	return nil
}

// CreateQuestion adds a question with its options to a section.
func (s *AuthoringService) CreateQuestion(ctx context.Context, claims *util.Claims, sectionID uint, req QuestionReq) (*model.Question, error) {
	section, err := s.SurveyRepo.FindSectionByID(sectionID)
	if err != nil {
		return nil, notFound(err, util.ErrSectionNotFound)
	}
	if err := s.authorize(claims, section.Category.CollegeID); err != nil {
		return nil, err
	}

	options, err := BuildQuestionOptions(section, req.Options)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		SectionID: sectionID,
		Text:      strings.TrimSpace(req.Text),
		Options:   options,
	}
	if err := s.SurveyRepo.CreateQuestion(question); err != nil {
		return nil, err
	}
	s.invalidate(ctx, section.Category.CollegeID)
	return question, nil
}

// DeleteQuestion removes a question; marks of an objective section are
// recomputed since its responses go with it.
func (s *AuthoringService) DeleteQuestion(ctx context.Context, claims *util.Claims, id uint) error {
	question, err := s.SurveyRepo.FindQuestionByID(id)
	if err != nil {
		return notFound(err, util.ErrQuestionNotFound)
	}
	collegeID := question.Section.Category.CollegeID
	if err := s.authorize(claims, collegeID); err != nil {
		return err
	}
	if err := s.SurveyRepo.DeleteQuestion(id); err != nil {
		return err
	}
	s.invalidate(ctx, collegeID)

	if question.Section.Category.HasCorrectAnswers && s.Results != nil {
		if _, err := s.Results.RecomputeCollege(collegeID); err != nil {
			logger.Log.Error("recompute after question delete failed", zap.Uint("question_id", id), zap.Error(err))
		}
	}
	return nil
}

// BuildQuestionOptions validates submitted options against the section's
// category and fills subjective questions from the section template when no
// options were given.
func BuildQuestionOptions(section *model.Section, reqs []OptionReq) ([]model.Option, error) {
	if section.Category == nil {
		return nil, fmt.Errorf("section %d loaded without category", section.ID)
	}

	if section.Category.HasCorrectAnswers {
		if len(reqs) == 0 {
			return nil, util.NewValidationError("options", "You must add at least one answer option for a question in a mark category.")
		}
		correct := 0
		for _, o := range reqs {
			if o.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return nil, util.NewValidationError("options", "You must select one correct answer for this question.")
		}
		if correct > 1 {
			return nil, util.NewValidationError("options", "You can only select one correct answer for this question.")
		}
		options := make([]model.Option, 0, len(reqs))
		for _, o := range reqs {
			options = append(options, model.Option{Text: strings.TrimSpace(o.Text), IsCorrect: o.IsCorrect})
		}
		return options, nil
	}

	if len(reqs) == 0 {
		if section.Template != nil && len(section.Template.Options) > 0 {
			options := make([]model.Option, 0, len(section.Template.Options))
			for _, o := range section.Template.Options {
				options = append(options, model.Option{Text: o.Text})
			}
			return options, nil
		}
		return nil, util.NewValidationError("options", "For subjective questions without an option template, you must add the answer options manually.")
	}

	options := make([]model.Option, 0, len(reqs))
	for _, o := range reqs {
		options = append(options, model.Option{Text: strings.TrimSpace(o.Text)})
	}
	return options, nil
}

func (s *AuthoringService) ListTemplates() ([]model.SubjectiveOptionTemplate, error) {
	return s.SurveyRepo.ListTemplates()
}

func (s *AuthoringService) CreateTemplate(claims *util.Claims, req TemplateReq) (*model.SubjectiveOptionTemplate, error) {
	if claims == nil || claims.Role != model.Superuser {
		return nil, util.ErrPermissionDenied
	}
	template := &model.SubjectiveOptionTemplate{Name: strings.TrimSpace(req.Name)}
	for _, text := range req.Options {
		template.Options = append(template.Options, model.SubjectiveOption{Text: strings.TrimSpace(text)})
	}
	if err := s.SurveyRepo.CreateTemplate(template); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrTemplateExists
		}
		return nil, err
	}
	return template, nil
}

// notFound maps gorm's missing-row error onto a domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
