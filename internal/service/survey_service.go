package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/util"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type SurveyService struct {
	CollegeRepo *repository.CollegeRepository
	Cache       SurveyCache
}

func NewSurveyService(collegeRepo *repository.CollegeRepository, cache SurveyCache) *SurveyService {
	if cache == nil {
		cache = noopSurveyCache{}
	}
	return &SurveyService{CollegeRepo: collegeRepo, Cache: cache}
}

// GetSurvey returns the full survey tree of the named college.
func (s *SurveyService) GetSurvey(ctx context.Context, collegeName string) (*model.SurveyView, error) {
	found, err := s.CollegeRepo.FindByName(collegeName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrCollegeNotFound, collegeName)
		}
		return nil, err
	}
	// keyed by the stored name so Invalidate(college.Name) always hits
	if view, ok := s.Cache.Get(ctx, found.Name); ok {
		return view, nil
	}

	college, err := s.CollegeRepo.LoadSurvey(found.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrCollegeNotFound, collegeName)
		}
		return nil, err
	}

	view := model.NewSurveyView(college)
	s.Cache.Set(ctx, college.Name, view)
	return view, nil
}
