package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/logger"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResultService struct {
	CollegeRepo  *repository.CollegeRepository
	StudentRepo  *repository.StudentRepository
	ResponseRepo *repository.ResponseRepository
	DB           *gorm.DB
}

func NewResultService(
	collegeRepo *repository.CollegeRepository,
	studentRepo *repository.StudentRepository,
	responseRepo *repository.ResponseRepository,
	db *gorm.DB,
) *ResultService {
	return &ResultService{
		CollegeRepo:  collegeRepo,
		StudentRepo:  studentRepo,
		ResponseRepo: responseRepo,
		DB:           db,
	}
}

type categoryBucket struct {
	objective  []model.SectionResultView
	subjective map[string][]model.SubjectiveAnswerView
}

// GetResults returns objective marks and subjective answers of a student,
// grouped by category. Within a category, mark entries come first.
func (s *ResultService) GetResults(collegeName, studentID string) (*model.StudentResultsView, error) {
	_, student, err := resolveStudent(s.CollegeRepo, s.StudentRepo, collegeName, studentID)
	if err != nil {
		return nil, err
	}

	marks, err := s.ResponseRepo.ListSectionResults(student.ID)
	if err != nil {
		return nil, err
	}
	subjective, err := s.ResponseRepo.ListSubjectiveResponses(student.ID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*categoryBucket)
	bucket := func(name string) *categoryBucket {
		b, ok := buckets[name]
		if !ok {
			b = &categoryBucket{subjective: make(map[string][]model.SubjectiveAnswerView)}
			buckets[name] = b
		}
		return b
	}

	for _, m := range marks {
		if m.Section == nil || m.Section.Category == nil {
			continue
		}
		score := m.TotalMarks
		b := bucket(m.Section.Category.Name)
		b.objective = append(b.objective, model.SectionResultView{
			Section:    m.Section.Name,
			ResultType: util.ResultTypeMarks,
			Score:      &score,
		})
	}

	for _, r := range subjective {
		if r.Question == nil || r.Question.Section == nil || r.Question.Section.Category == nil || r.SelectedOption == nil {
			continue
		}
		b := bucket(r.Question.Section.Category.Name)
		sec := r.Question.Section.Name
		b.subjective[sec] = append(b.subjective[sec], model.SubjectiveAnswerView{
			Question:       r.Question.Text,
			SelectedOption: r.SelectedOption.Text,
		})
	}

	categories := make([]string, 0, len(buckets))
	for name := range buckets {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	view := &model.StudentResultsView{
		StudentName: student.Name,
		StudentID:   student.StudentID,
		Results:     make([]model.CategoryResultView, 0, len(categories)),
	}
	for _, name := range categories {
		b := buckets[name]
		sort.SliceStable(b.objective, func(i, j int) bool { return b.objective[i].Section < b.objective[j].Section })

		sections := make([]string, 0, len(b.subjective))
		for sec := range b.subjective {
			sections = append(sections, sec)
		}
		sort.Strings(sections)

		entries := append([]model.SectionResultView{}, b.objective...)
		for _, sec := range sections {
			entries = append(entries, model.SectionResultView{
				Section:    sec,
				ResultType: util.ResultTypeSubjective,
				Responses:  b.subjective[sec],
			})
		}
		view.Results = append(view.Results, model.CategoryResultView{Category: name, Sections: entries})
	}
	return view, nil
}

// RecomputeCollege rebuilds the marks of every student of a college from the
// stored responses. It returns the number of students touched.
func (s *ResultService) RecomputeCollege(collegeID uint) (int, error) {
	answered, err := s.ResponseRepo.ObjectiveSectionsToScore(collegeID)
	if err != nil {
		return 0, err
	}

	studentPKs := make([]uint, 0, len(answered))
	for pk := range answered {
		studentPKs = append(studentPKs, pk)
	}
	sort.Slice(studentPKs, func(i, j int) bool { return studentPKs[i] < studentPKs[j] })

	for _, pk := range studentPKs {
		sections := answered[pk]
		sort.Slice(sections, func(i, j int) bool { return sections[i] < sections[j] })
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			return recomputeSectionMarks(s.ResponseRepo.WithTx(tx), pk, sections)
		})
		if err != nil {
			return 0, err
		}
	}
	logger.Log.Info("Section marks recomputed", zap.Uint("college_id", collegeID), zap.Int("students", len(studentPKs)))
	return len(studentPKs), nil
}
