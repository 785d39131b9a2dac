package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/testutil"
	"college_survey_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthoringService(db *gorm.DB, cache SurveyCache) *AuthoringService {
	return NewAuthoringService(
		repository.NewSurveyRepository(db),
		repository.NewCollegeRepository(db),
		newResultService(db),
		cache,
	)
}

func TestBuildQuestionOptionsObjectiveRules(t *testing.T) {
	section := &model.Section{Category: &model.Category{HasCorrectAnswers: true}}

	tests := []struct {
		name    string
		options []OptionReq
		wantErr string
	}{
		{"no options", nil, "You must add at least one answer option for a question in a mark category."},
		{"no correct option", []OptionReq{{Text: "a"}, {Text: "b"}}, "You must select one correct answer for this question."},
		{"two correct options", []OptionReq{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}, "You can only select one correct answer for this question."},
		{"one correct option", []OptionReq{{Text: "a", IsCorrect: true}, {Text: "b"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options, err := BuildQuestionOptions(section, tt.options)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Len(t, options, len(tt.options))
				return
			}
			var verr *util.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Fields["options"])
		})
	}
}

func TestBuildQuestionOptionsSubjective(t *testing.T) {
	template := &model.SubjectiveOptionTemplate{Options: []model.SubjectiveOption{{Text: "Agree"}, {Text: "Disagree"}}}
	withTemplate := &model.Section{Category: &model.Category{}, Template: template}
	withoutTemplate := &model.Section{Category: &model.Category{}}

	options, err := BuildQuestionOptions(withTemplate, nil)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Agree", options[0].Text)

	options, err = BuildQuestionOptions(withTemplate, []OptionReq{{Text: "Maybe", IsCorrect: true}})
	require.NoError(t, err)
	require.Len(t, options, 1, "explicit options win over the template")
	assert.False(t, options[0].IsCorrect, "subjective options are never correct")

	_, err = BuildQuestionOptions(withoutTemplate, nil)
	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["options"], "must add the answer options manually")
}

func TestAuthoringCreatesTree(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Authoring College")
	cache := newMemoryCache()
	svc := newAuthoringService(db, cache)
	admin := testutil.Claims(model.CollegeAdmin, &f.College.ID)
	ctx := context.Background()

	templates, err := svc.ListTemplates()
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	category, err := svc.CreateCategory(ctx, admin, f.College.ID, CategoryReq{Name: "Opinions"})
	require.NoError(t, err)
	section, err := svc.CreateSection(ctx, admin, category.ID, SectionReq{Name: "Library", TemplateID: &templates[0].ID})
	require.NoError(t, err)
	question, err := svc.CreateQuestion(ctx, admin, section.ID, QuestionReq{Text: "Is the library quiet?"})
	require.NoError(t, err)

	assert.Len(t, question.Options, len(templates[0].Options))
	assert.Contains(t, cache.invalidated, "Authoring College")

	categories, err := svc.ListCategories(admin, f.College.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}

func TestAuthoringDeniesOtherCollege(t *testing.T) {
	db := testutil.NewDB(t)
	own := testutil.Seed(t, db, "Own College")
	other := testutil.Seed(t, db, "Other College")
	svc := newAuthoringService(db, nil)
	admin := testutil.Claims(model.CollegeAdmin, &own.College.ID)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, admin, other.College.ID, CategoryReq{Name: "Sneaky"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.CreateQuestion(ctx, admin, other.Math.ID, QuestionReq{Text: "?", Options: []OptionReq{{Text: "a", IsCorrect: true}}})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	assert.ErrorIs(t, svc.DeleteSection(ctx, admin, other.Math.ID), util.ErrPermissionDenied)
	assert.ErrorIs(t, svc.DeleteQuestion(ctx, testutil.Claims(model.Client, nil), own.Q1.ID), util.ErrPermissionDenied)
}

func TestAuthoringNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newAuthoringService(db, nil)
	root := testutil.Claims(model.Superuser, nil)
	ctx := context.Background()

	_, err := svc.CreateSection(ctx, root, 404, SectionReq{Name: "x"})
	assert.ErrorIs(t, err, util.ErrCategoryNotFound)
	_, err = svc.CreateQuestion(ctx, root, 404, QuestionReq{Text: "x"})
	assert.ErrorIs(t, err, util.ErrSectionNotFound)
	assert.ErrorIs(t, svc.DeleteQuestion(ctx, root, 404), util.ErrQuestionNotFound)
}

func TestDeleteQuestionRecomputesMarks(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Delete College")
	ctx := context.Background()

	_, err := newSubmissionService(db).Submit(ctx, "Delete College", "S-1", []ResponseItem{
		{QuestionID: f.Q1.ID, SelectedOptionID: f.Q1.Options[0].ID},
		{QuestionID: f.Q2.ID, SelectedOptionID: f.Q2.Options[0].ID},
	})
	require.NoError(t, err)

	svc := newAuthoringService(db, nil)
	require.NoError(t, svc.DeleteQuestion(ctx, testutil.Claims(model.Superuser, nil), f.Q2.ID))

	marks, ok := marksOf(t, db, f.Student.ID, f.Math.ID)
	require.True(t, ok)
	assert.Equal(t, 1, marks)
}

func TestCreateTemplate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newAuthoringService(db, nil)
	req := TemplateReq{Name: "Yes/No", Options: []string{"Yes", "No"}}

	_, err := svc.CreateTemplate(testutil.Claims(model.CollegeAdmin, nil), req)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	template, err := svc.CreateTemplate(testutil.Claims(model.Superuser, nil), req)
	require.NoError(t, err)
	assert.Len(t, template.Options, 2)

	_, err = svc.CreateTemplate(testutil.Claims(model.Superuser, nil), req)
	assert.ErrorIs(t, err, util.ErrTemplateExists)
}
