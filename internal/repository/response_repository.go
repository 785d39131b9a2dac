package repository

import (
	"college_survey_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) WithTx(tx *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: tx}
}

func (r *ResponseRepository) FindByStudentAndQuestions(studentPK uint, questionIDs []uint) ([]model.StudentResponse, error) {
	var rs []model.StudentResponse
	if len(questionIDs) == 0 {
		return rs, nil
	}
	err := r.DB.Where("student_id = ? AND question_id IN ?", studentPK, questionIDs).Find(&rs).Error
	return rs, err
}

func (r *ResponseRepository) CreateBatch(rs []model.StudentResponse) error {
	if len(rs) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(rs, 200).Error
}

// UpdateSelections writes the new selected option and submitted_at of each row.
func (r *ResponseRepository) UpdateSelections(rs []model.StudentResponse) error {
	for i := range rs {
		err := r.DB.Model(&model.StudentResponse{}).
			Where("id = ?", rs[i].ID).
			Updates(map[string]interface{}{
				"selected_option_id": rs[i].SelectedOptionID,
				"submitted_at":       rs[i].SubmittedAt,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

type sectionScore struct {
	SectionID uint
	Score     int
}

// CountCorrectBySection counts the student's stored responses with a correct
// option, grouped by section. Sections without a correct answer are absent.
func (r *ResponseRepository) CountCorrectBySection(studentPK uint, sectionIDs []uint) (map[uint]int, error) {
	scores := make(map[uint]int, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return scores, nil
	}
	var rows []sectionScore
	err := r.DB.Table("student_responses").
		Select("questions.section_id AS section_id, COUNT(student_responses.id) AS score").
		Joins("JOIN questions ON questions.id = student_responses.question_id").
		Joins("JOIN question_options ON question_options.id = student_responses.selected_option_id").
		Where("student_responses.student_id = ? AND questions.section_id IN ? AND question_options.is_correct = ?", studentPK, sectionIDs, true).
		Group("questions.section_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		scores[row.SectionID] = row.Score
	}
	return scores, nil
}

// UpsertSectionResult inserts or overwrites the (student, section) mark.
func (r *ResponseRepository) UpsertSectionResult(studentPK, sectionID uint, marks int) error {
	now := time.Now()
	result := &model.StudentSectionResult{
		StudentID:  studentPK,
		SectionID:  sectionID,
		TotalMarks: marks,
	}
	result.CreatedAt = now
	result.UpdatedAt = now
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "section_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_marks", "updated_at"}),
	}).Create(result).Error
}

// ListSectionResults loads a student's marks with Section.Category.
func (r *ResponseRepository) ListSectionResults(studentPK uint) ([]model.StudentSectionResult, error) {
	var rs []model.StudentSectionResult
	err := r.DB.Where("student_id = ?", studentPK).
		Preload("Section.Category").
		Order("id asc").
		Find(&rs).Error
	return rs, err
}

// ListSubjectiveResponses loads a student's responses to questions of
// categories without correct answers.
func (r *ResponseRepository) ListSubjectiveResponses(studentPK uint) ([]model.StudentResponse, error) {
	var rs []model.StudentResponse
	err := r.DB.Select("student_responses.*").
		Joins("JOIN questions ON questions.id = student_responses.question_id").
		Joins("JOIN sections ON sections.id = questions.section_id").
		Joins("JOIN categories ON categories.id = sections.category_id").
		Where("student_responses.student_id = ? AND categories.has_correct_answers = ?", studentPK, false).
		Preload("Question.Section.Category").
		Preload("SelectedOption").
		Order("student_responses.question_id asc").
		Find(&rs).Error
	return rs, err
}

// CollegeMarkRow is one student's mark in one section, flattened for listing and export.
type CollegeMarkRow struct {
	StudentPK    uint   `json:"studentPk"`
	StudentID    string `json:"studentId"`
	StudentName  string `json:"studentName"`
	CategoryName string `json:"category"`
	SectionID    uint   `json:"sectionId"`
	SectionName  string `json:"section"`
	TotalMarks   int    `json:"totalMarks"`
}

func (r *ResponseRepository) ListCollegeMarks(collegeID uint) ([]CollegeMarkRow, error) {
	var rows []CollegeMarkRow
	err := r.DB.Table("student_section_results").
		Select("students.id AS student_pk, students.student_id AS student_id, students.name AS student_name, " +
			"categories.name AS category_name, sections.id AS section_id, sections.name AS section_name, " +
			"student_section_results.total_marks AS total_marks").
		Joins("JOIN students ON students.id = student_section_results.student_id").
		Joins("JOIN sections ON sections.id = student_section_results.section_id").
		Joins("JOIN categories ON categories.id = sections.category_id").
		Where("students.college_id = ?", collegeID).
		Order("students.student_id asc, categories.name asc, sections.name asc").
		Scan(&rows).Error
	return rows, err
}

// ObjectiveSectionsToScore returns, per student of the college, the objective
// sections that have a response or an existing mark.
func (r *ResponseRepository) ObjectiveSectionsToScore(collegeID uint) (map[uint][]uint, error) {
	type row struct {
		StudentID uint
		SectionID uint
	}
	var answered, marked []row
	err := r.DB.Table("student_responses").
		Select("DISTINCT student_responses.student_id AS student_id, questions.section_id AS section_id").
		Joins("JOIN questions ON questions.id = student_responses.question_id").
		Joins("JOIN sections ON sections.id = questions.section_id").
		Joins("JOIN categories ON categories.id = sections.category_id").
		Where("categories.college_id = ? AND categories.has_correct_answers = ?", collegeID, true).
		Scan(&answered).Error
	if err != nil {
		return nil, err
	}
	err = r.DB.Table("student_section_results").
		Select("DISTINCT student_section_results.student_id AS student_id, student_section_results.section_id AS section_id").
		Joins("JOIN sections ON sections.id = student_section_results.section_id").
		Joins("JOIN categories ON categories.id = sections.category_id").
		Where("categories.college_id = ? AND categories.has_correct_answers = ?", collegeID, true).
		Scan(&marked).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[row]bool, len(answered)+len(marked))
	out := make(map[uint][]uint)
	for _, rw := range append(answered, marked...) {
		if seen[rw] {
			continue
		}
		seen[rw] = true
		out[rw.StudentID] = append(out[rw.StudentID], rw.SectionID)
	}
	return out, nil
}
