package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/monitoring"
	"college_survey_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type SubmissionService struct {
	CollegeRepo  *repository.CollegeRepository
	StudentRepo  *repository.StudentRepository
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
	DB           *gorm.DB
}

func NewSubmissionService(
	collegeRepo *repository.CollegeRepository,
	studentRepo *repository.StudentRepository,
	surveyRepo *repository.SurveyRepository,
	responseRepo *repository.ResponseRepository,
	db *gorm.DB,
) *SubmissionService {
	return &SubmissionService{
		CollegeRepo:  collegeRepo,
		StudentRepo:  studentRepo,
		SurveyRepo:   surveyRepo,
		ResponseRepo: responseRepo,
		DB:           db,
	}
}

type ResponseItem struct {
	QuestionID       uint `json:"question_id" binding:"required"`
	SelectedOptionID uint `json:"selected_option_id" binding:"required"`
}

type SubmissionReq struct {
	Responses []ResponseItem `json:"responses" binding:"required,min=1,dive"`
}

type SubmissionResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Submit stores a student's answers. A response that already exists is only
// rewritten when the selected option changed. Marks of every objective section
// touched by the batch are recomputed from all stored responses.
func (s *SubmissionService) Submit(ctx context.Context, collegeName, studentID string, items []ResponseItem) (result *SubmissionResult, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "SubmissionService.Submit")
	defer span.End()
	defer func() {
		status := "ok"
		if err != nil {
			status = "rejected"
			span.RecordError(err)
		}
		monitoring.SubmissionCounter.WithLabelValues(status).Inc()
	}()

	college, student, err := resolveStudent(s.CollegeRepo, s.StudentRepo, collegeName, studentID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("survey.responses", len(items)))

	questionIDs := make([]uint, 0, len(items))
	optionIDs := make([]uint, 0, len(items))
	seenQuestions := make(map[uint]bool, len(items))
	seenOptions := make(map[uint]bool, len(items))
	for _, item := range items {
		if seenQuestions[item.QuestionID] {
			return nil, fmt.Errorf("%w: question %d", util.ErrDuplicateQuestion, item.QuestionID)
		}
		seenQuestions[item.QuestionID] = true
		questionIDs = append(questionIDs, item.QuestionID)
		if !seenOptions[item.SelectedOptionID] {
			seenOptions[item.SelectedOptionID] = true
			optionIDs = append(optionIDs, item.SelectedOptionID)
		}
	}

	questions, err := s.SurveyRepo.FindQuestionsInCollege(college.ID, questionIDs)
	if err != nil {
		return nil, err
	}
	options, err := s.SurveyRepo.FindOptionsByIDs(optionIDs)
	if err != nil {
		return nil, err
	}

	questionMap := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}
	optionMap := make(map[uint]*model.Option, len(options))
	for i := range options {
		optionMap[options[i].ID] = &options[i]
	}

	if missing := missingReferences(questionIDs, optionIDs, questionMap, optionMap); missing != nil {
		return nil, missing
	}

	existing, err := s.ResponseRepo.FindByStudentAndQuestions(student.ID, questionIDs)
	if err != nil {
		return nil, err
	}
	existingMap := make(map[uint]*model.StudentResponse, len(existing))
	for i := range existing {
		existingMap[existing[i].QuestionID] = &existing[i]
	}

	now := time.Now()
	var toCreate, toUpdate []model.StudentResponse
	objectiveSections := make(map[uint]bool)

	for _, item := range items {
		question := questionMap[item.QuestionID]
		option := optionMap[item.SelectedOptionID]

		if option.QuestionID != question.ID {
			return nil, &util.OptionMismatchError{OptionID: option.ID, QuestionID: question.ID}
		}

		if resp, ok := existingMap[question.ID]; ok {
			if resp.SelectedOptionID != option.ID {
				resp.SelectedOptionID = option.ID
				resp.SubmittedAt = now
				toUpdate = append(toUpdate, *resp)
			}
		} else {
			toCreate = append(toCreate, model.StudentResponse{
				StudentID:        student.ID,
				QuestionID:       question.ID,
				SelectedOptionID: option.ID,
				SubmittedAt:      now,
			})
		}

		if question.Section != nil && question.Section.Category != nil && question.Section.Category.HasCorrectAnswers {
			objectiveSections[question.SectionID] = true
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.ResponseRepo.WithTx(tx)
		if err := repo.UpdateSelections(toUpdate); err != nil {
			return err
		}
		if err := repo.CreateBatch(toCreate); err != nil {
			return err
		}
		return recomputeSectionMarks(repo, student.ID, sortedKeys(objectiveSections))
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: %v", util.ErrConflict, err)
	}
	if err != nil {
		return nil, err
	}

	monitoring.ResponsesWritten.WithLabelValues("created").Add(float64(len(toCreate)))
	monitoring.ResponsesWritten.WithLabelValues("updated").Add(float64(len(toUpdate)))

	return &SubmissionResult{Created: len(toCreate), Updated: len(toUpdate)}, nil
}

func missingReferences(questionIDs, optionIDs []uint, questions map[uint]*model.Question, options map[uint]*model.Option) *util.MissingReferencesError {
	var missingQ, missingO []uint
	for _, id := range questionIDs {
		if _, ok := questions[id]; !ok {
			missingQ = append(missingQ, id)
		}
	}
	for _, id := range optionIDs {
		if _, ok := options[id]; !ok {
			missingO = append(missingO, id)
		}
	}
	if len(missingQ) == 0 && len(missingO) == 0 {
		return nil
	}
	sort.Slice(missingQ, func(i, j int) bool { return missingQ[i] < missingQ[j] })
	sort.Slice(missingO, func(i, j int) bool { return missingO[i] < missingO[j] })
	if missingQ == nil {
		missingQ = []uint{}
	}
	if missingO == nil {
		missingO = []uint{}
	}
	return &util.MissingReferencesError{Questions: missingQ, Options: missingO}
}

// recomputeSectionMarks sets each section's mark to the number of correct
// stored responses, writing zero for sections with none.
func recomputeSectionMarks(repo *repository.ResponseRepository, studentPK uint, sectionIDs []uint) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	scores, err := repo.CountCorrectBySection(studentPK, sectionIDs)
	if err != nil {
		return err
	}
	for _, sectionID := range sectionIDs {
		if err := repo.UpsertSectionResult(studentPK, sectionID, scores[sectionID]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(set map[uint]bool) []uint {
	keys := make([]uint, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
