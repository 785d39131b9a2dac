package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/pkg/database"
	"college_survey_backend/pkg/logger"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var campusFacilities = []string{
	"library services", "cafeteria food", "sports facilities", "hostel amenities", "faculty support",
}

type SeedOptions struct {
	Colleges            int
	StudentsPerCollege  int
	QuestionsPerSection int
	Clear               bool
	// Seed fixes the random source; zero picks one from the clock.
	Seed int64
}

type SeedSummary struct {
	Colleges  int `json:"colleges"`
	Students  int `json:"students"`
	Questions int `json:"questions"`
	Responses int `json:"responses"`
}

// SeedService fills the database with demo colleges, surveys, students and
// random answers.
type SeedService struct {
	DB           *gorm.DB
	CollegeRepo  *repository.CollegeRepository
	StudentRepo  *repository.StudentRepository
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
	Results      *ResultService
}

func NewSeedService(db *gorm.DB) *SeedService {
	collegeRepo := repository.NewCollegeRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	return &SeedService{
		DB:           db,
		CollegeRepo:  collegeRepo,
		StudentRepo:  studentRepo,
		SurveyRepo:   repository.NewSurveyRepository(db),
		ResponseRepo: responseRepo,
		Results:      NewResultService(collegeRepo, studentRepo, responseRepo, db),
	}
}

func (s *SeedService) Seed(opts SeedOptions) (*SeedSummary, error) {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(opts.Seed)

	if opts.Clear {
		if err := s.clear(); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	if err := database.SeedDefaults(s.DB); err != nil {
		return nil, fmt.Errorf("seed templates: %w", err)
	}
	templates, err := s.SurveyRepo.ListTemplates()
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no option templates available")
	}

	summary := &SeedSummary{}
	for i := 0; i < opts.Colleges; i++ {
		college, err := s.createCollege(faker)
		if err != nil {
			return nil, err
		}
		summary.Colleges++

		template := templates[faker.Number(0, len(templates)-1)]
		questions, err := s.createSurvey(faker, college, &template, opts.QuestionsPerSection)
		if err != nil {
			return nil, err
		}
		summary.Questions += len(questions)

		students, responses, err := s.createStudents(faker, college, questions, opts.StudentsPerCollege)
		if err != nil {
			return nil, err
		}
		summary.Students += students
		summary.Responses += responses

		if _, err := s.Results.RecomputeCollege(college.ID); err != nil {
			return nil, err
		}
		logger.Log.Info("College seeded",
			zap.String("college", college.Name),
			zap.Int("students", students),
			zap.Int("responses", responses),
		)
	}
	return summary, nil
}

func (s *SeedService) clear() error {
	tables := []interface{}{
		&model.StudentSectionResult{},
		&model.StudentResponse{},
		&model.Student{},
		&model.Option{},
		&model.Question{},
		&model.Section{},
		&model.Category{},
		&model.SubjectiveOption{},
		&model.SubjectiveOptionTemplate{},
	}
	return s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Delete(table).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("college_id IS NOT NULL").Delete(&model.AdminUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.College{}).Error
	})
}

// createCollege retries on name collisions, fake company names repeat.
func (s *SeedService) createCollege(faker *gofakeit.Faker) (*model.College, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		college := &model.College{Name: faker.Company() + " University"}
		if _, err := s.CollegeRepo.FindByName(college.Name); err == nil {
			lastErr = fmt.Errorf("college %q already exists", college.Name)
			continue
		}
		if err := s.CollegeRepo.Create(college); err != nil {
			return nil, err
		}
		return college, nil
	}
	return nil, lastErr
}

func (s *SeedService) createSurvey(faker *gofakeit.Faker, college *model.College, template *model.SubjectiveOptionTemplate, perSection int) ([]model.Question, error) {
	var questions []model.Question

	feedback := &model.Category{CollegeID: college.ID, Name: "Campus Life Feedback", HasCorrectAnswers: false}
	if err := s.SurveyRepo.CreateCategory(feedback); err != nil {
		return nil, err
	}
	satisfaction := &model.Section{CategoryID: feedback.ID, Name: "Student Satisfaction Survey", SubjectiveOptionTemplateID: &template.ID}
	if err := s.SurveyRepo.CreateSection(satisfaction); err != nil {
		return nil, err
	}
	satisfaction.Category = feedback
	satisfaction.Template = template

	for i := 0; i < perSection; i++ {
		options, err := BuildQuestionOptions(satisfaction, nil)
		if err != nil {
			return nil, err
		}
		q := model.Question{
			SectionID: satisfaction.ID,
			Text:      fmt.Sprintf("How satisfied are you with the %s?", faker.RandomString(campusFacilities)),
			Options:   options,
		}
		if err := s.SurveyRepo.CreateQuestion(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	aptitude := &model.Category{CollegeID: college.ID, Name: "General Aptitude Test", HasCorrectAnswers: true}
	if err := s.SurveyRepo.CreateCategory(aptitude); err != nil {
		return nil, err
	}
	quant := &model.Section{CategoryID: aptitude.ID, Name: "Quantitative Analysis"}
	if err := s.SurveyRepo.CreateSection(quant); err != nil {
		return nil, err
	}
	quant.Category = aptitude

	for i := 0; i < perSection; i++ {
		a, b := faker.Number(10, 100), faker.Number(10, 100)
		sum := a + b
		reqs := []OptionReq{
			{Text: strconv.Itoa(sum), IsCorrect: true},
			{Text: strconv.Itoa(sum + faker.Number(1, 5))},
			{Text: strconv.Itoa(sum - faker.Number(1, 5))},
			{Text: strconv.Itoa(faker.Number(200, 300))},
		}
		faker.ShuffleAnySlice(reqs)
		options, err := BuildQuestionOptions(quant, reqs)
		if err != nil {
			return nil, err
		}
		q := model.Question{
			SectionID: quant.ID,
			Text:      fmt.Sprintf("What is the sum of %d and %d?", a, b),
			Options:   options,
		}
		if err := s.SurveyRepo.CreateQuestion(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// createStudents registers students and has each answer a random subset of
// the college's questions.
func (s *SeedService) createStudents(faker *gofakeit.Faker, college *model.College, questions []model.Question, count int) (int, int, error) {
	responses := 0
	for i := 0; i < count; i++ {
		student := &model.Student{
			CollegeID: college.ID,
			StudentID: fmt.Sprintf("S-%d-%d", college.ID, 1000+i),
			Name:      faker.Name(),
		}
		if err := s.StudentRepo.Create(student); err != nil {
			return 0, 0, err
		}
		if len(questions) == 0 {
			continue
		}

		k := faker.Number(5, 15)
		if k > len(questions) {
			k = len(questions)
		}
		picked := make([]model.Question, len(questions))
		copy(picked, questions)
		faker.ShuffleAnySlice(picked)

		now := time.Now()
		batch := make([]model.StudentResponse, 0, k)
		for _, q := range picked[:k] {
			if len(q.Options) == 0 {
				continue
			}
			option := q.Options[faker.Number(0, len(q.Options)-1)]
			batch = append(batch, model.StudentResponse{
				StudentID:        student.ID,
				QuestionID:       q.ID,
				SelectedOptionID: option.ID,
				SubmittedAt:      now,
			})
		}
		if err := s.ResponseRepo.CreateBatch(batch); err != nil {
			return 0, 0, err
		}
		responses += len(batch)
	}
	return count, responses, nil
}
