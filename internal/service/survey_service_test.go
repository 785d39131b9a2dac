package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/repository"
	"college_survey_backend/internal/testutil"
	"college_survey_backend/internal/util"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache records cache traffic for assertions.
type memoryCache struct {
	views       map[string]*model.SurveyView
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: make(map[string]*model.SurveyView)}
}

func (c *memoryCache) Get(_ context.Context, name string) (*model.SurveyView, bool) {
	v, ok := c.views[surveyCacheKey(name)]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, name string, view *model.SurveyView) {
	c.views[surveyCacheKey(name)] = view
}

func (c *memoryCache) Invalidate(_ context.Context, name string) {
	delete(c.views, surveyCacheKey(name))
	c.invalidated = append(c.invalidated, name)
}

func TestGetSurvey(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Survey College")
	svc := NewSurveyService(repository.NewCollegeRepository(db), nil)

	view, err := svc.GetSurvey(context.Background(), "survey college")
	require.NoError(t, err)

	assert.Equal(t, "Survey College", view.CollegeName)
	require.Len(t, view.Categories, 2)
	assert.Equal(t, "Aptitude", view.Categories[0].Name)
	assert.True(t, view.Categories[0].HasCorrectAnswers)
	assert.False(t, view.Categories[1].HasCorrectAnswers)

	math := view.Categories[0].Sections[0]
	assert.Equal(t, "Math", math.Name)
	require.Len(t, math.Questions, 2)
	assert.Equal(t, f.Q1.ID, math.Questions[0].ID)
	assert.Equal(t, "4", math.Questions[0].Options[0].Text)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "correct\":"), "correct answers never leave the server")
	assert.Contains(t, string(raw), `"has_correct_answers":true`)
}

func TestGetSurveyUnknownCollege(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewSurveyService(repository.NewCollegeRepository(db), nil)

	_, err := svc.GetSurvey(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, util.ErrCollegeNotFound)
}

func TestGetSurveyUsesCache(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db, "Cached College")
	cache := newMemoryCache()
	svc := NewSurveyService(repository.NewCollegeRepository(db), cache)

	first, err := svc.GetSurvey(context.Background(), "Cached College")
	require.NoError(t, err)

	second, err := svc.GetSurvey(context.Background(), " cached college ")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetSurveyCachesUnderStoredName(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Keyed College")
	cache := newMemoryCache()
	svc := NewSurveyService(repository.NewCollegeRepository(db), cache)
	ctx := context.Background()

	for _, name := range []string{"KEYED COLLEGE", " keyed college", "Keyed College"} {
		_, err := svc.GetSurvey(ctx, name)
		require.NoError(t, err)
	}
	require.Len(t, cache.views, 1)
	assert.Contains(t, cache.views, surveyCacheKey(f.College.Name))

	cache.Invalidate(ctx, f.College.Name)
	assert.Empty(t, cache.views)

	// a cached view never outlives its college
	_, err := svc.GetSurvey(ctx, "keyed college")
	require.NoError(t, err)
	require.NoError(t, db.Delete(&model.College{}, f.College.ID).Error)
	_, err = svc.GetSurvey(ctx, "keyed college")
	assert.ErrorIs(t, err, util.ErrCollegeNotFound)
}

func TestSurveyCacheKeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, surveyCacheKey("Foo College"), surveyCacheKey("  foo college"))
}
