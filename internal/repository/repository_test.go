package repository

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCollegeFindByNameIgnoresCase(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "North Valley University")
	repo := NewCollegeRepository(db)

	c, err := repo.FindByName("  north VALLEY university ")
	require.NoError(t, err)
	assert.Equal(t, f.College.ID, c.ID)

	_, err = repo.FindByName("Nowhere")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCollegeListScoped(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.Seed(t, db, "B College")
	testutil.Seed(t, db, "A College")
	repo := NewCollegeRepository(db)

	all, err := repo.List(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A College", all[0].Name)

	own, err := repo.List([]uint{a.College.ID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "B College", own[0].Name)
}

func TestLoadSurveyOrdersTree(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Tree College")
	// a second section sorting before "Math"
	algebra := &model.Section{CategoryID: f.Objective.ID, Name: "Algebra"}
	require.NoError(t, db.Create(algebra).Error)

	c, err := NewCollegeRepository(db).LoadSurvey(f.College.ID)
	require.NoError(t, err)

	require.Len(t, c.Categories, 2)
	assert.Equal(t, "Aptitude", c.Categories[0].Name)
	assert.Equal(t, "Feedback", c.Categories[1].Name)

	sections := c.Categories[0].Sections
	require.Len(t, sections, 2)
	assert.Equal(t, "Algebra", sections[0].Name)
	assert.Equal(t, "Math", sections[1].Name)

	questions := sections[1].Questions
	require.Len(t, questions, 2)
	assert.Equal(t, f.Q1.ID, questions[0].ID)
	assert.Equal(t, f.Q2.ID, questions[1].ID)
	require.Len(t, questions[0].Options, 2)
	assert.Less(t, questions[0].Options[0].ID, questions[0].Options[1].ID)
}

func TestFindQuestionsInCollegeExcludesOtherColleges(t *testing.T) {
	db := testutil.NewDB(t)
	own := testutil.Seed(t, db, "Own College")
	other := testutil.Seed(t, db, "Other College")
	repo := NewSurveyRepository(db)

	qs, err := repo.FindQuestionsInCollege(own.College.ID, []uint{own.Q1.ID, other.Q1.ID, 9999})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, own.Q1.ID, qs[0].ID)
	require.NotNil(t, qs[0].Section)
	require.NotNil(t, qs[0].Section.Category)
	assert.True(t, qs[0].Section.Category.HasCorrectAnswers)
}

func TestCountCorrectAndUpsertSectionResult(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Score College")
	repo := NewResponseRepository(db)
	now := time.Now()

	require.NoError(t, repo.CreateBatch([]model.StudentResponse{
		{StudentID: f.Student.ID, QuestionID: f.Q1.ID, SelectedOptionID: f.Q1.Options[0].ID, SubmittedAt: now},
		{StudentID: f.Student.ID, QuestionID: f.Q2.ID, SelectedOptionID: f.Q2.Options[1].ID, SubmittedAt: now},
	}))

	scores, err := repo.CountCorrectBySection(f.Student.ID, []uint{f.Math.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, scores[f.Math.ID])

	require.NoError(t, repo.UpsertSectionResult(f.Student.ID, f.Math.ID, 1))
	require.NoError(t, repo.UpsertSectionResult(f.Student.ID, f.Math.ID, 2))

	results, err := repo.ListSectionResults(f.Student.ID)
	require.NoError(t, err)
	require.Len(t, results, 1, "upsert keeps one row per student and section")
	assert.Equal(t, 2, results[0].TotalMarks)
	assert.Equal(t, "Aptitude", results[0].Section.Category.Name)
}

func TestDuplicateResponseIsTranslated(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Dup College")
	repo := NewResponseRepository(db)
	row := model.StudentResponse{StudentID: f.Student.ID, QuestionID: f.Q1.ID, SelectedOptionID: f.Q1.Options[0].ID, SubmittedAt: time.Now()}

	require.NoError(t, repo.CreateBatch([]model.StudentResponse{row}))
	err := repo.CreateBatch([]model.StudentResponse{row})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestListSubjectiveResponses(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Subjective College")
	repo := NewResponseRepository(db)
	now := time.Now()

	require.NoError(t, repo.CreateBatch([]model.StudentResponse{
		{StudentID: f.Student.ID, QuestionID: f.Q1.ID, SelectedOptionID: f.Q1.Options[0].ID, SubmittedAt: now},
		{StudentID: f.Student.ID, QuestionID: f.Q3.ID, SelectedOptionID: f.Q3.Options[1].ID, SubmittedAt: now},
	}))

	rs, err := repo.ListSubjectiveResponses(f.Student.ID)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "How is the food?", rs[0].Question.Text)
	assert.Equal(t, "Bad", rs[0].SelectedOption.Text)
	assert.Equal(t, "Campus", rs[0].Question.Section.Name)
}

func TestObjectiveSectionsToScoreIncludesExistingMarks(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Recompute College")
	repo := NewResponseRepository(db)

	require.NoError(t, repo.CreateBatch([]model.StudentResponse{
		{StudentID: f.Student.ID, QuestionID: f.Q3.ID, SelectedOptionID: f.Q3.Options[0].ID, SubmittedAt: time.Now()},
	}))
	require.NoError(t, repo.UpsertSectionResult(f.Student.ID, f.Math.ID, 2))

	sections, err := repo.ObjectiveSectionsToScore(f.College.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint][]uint{f.Student.ID: {f.Math.ID}}, sections)
}

func TestDeleteCollegeCascades(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Gone College")

	require.NoError(t, NewCollegeRepository(db).Delete(f.College.ID))

	var count int64
	require.NoError(t, db.Model(&model.Question{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&model.Student{}).Count(&count).Error)
	assert.Zero(t, count)
}
