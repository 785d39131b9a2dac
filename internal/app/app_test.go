package app

import (
	"bytes"
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/testutil"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	db := testutil.NewDB(t)
	return &harness{t: t, app: New(testutil.Config(t), db, nil), db: db}
}

func (h *harness) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestHealthIsPublic(t *testing.T) {
	h := newHarness(t)
	w, env := h.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, env.Data)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSurveyRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	w, env := h.do(http.MethodGet, "/api/questions/Anything", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.Code)

	w, _ = h.do(http.MethodGet, "/api/questions/Anything", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, h.db.Create(&model.AdminUser{Username: "api", Password: string(hashed), Role: model.Client}).Error)

	w, env := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "api", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, env.Data)["token"].(string)
	require.NotEmpty(t, token)

	w, _ = h.do(http.MethodGet, "/api/questions/Nowhere", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "api", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterStudent(t *testing.T) {
	h := newHarness(t)
	testutil.Seed(t, h.db, "River College")
	token := testutil.Token(t, h.db, "client", model.Client, nil)

	w, env := h.do(http.MethodPost, "/api/register-student", token, gin.H{
		"student_id": "S-2", "name": "Bob", "college_name": "  river college ",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Student registered successfully", env.Message)
	assert.NotZero(t, decode(t, env.Data)["student_id"])

	w, env = h.do(http.MethodPost, "/api/register-student", token, gin.H{
		"student_id": "S-2", "name": "Bob", "college_name": "River College",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, env.Data)["errors"], "student_id")

	w, env = h.do(http.MethodPost, "/api/register-student", token, gin.H{
		"student_id": "S-3", "name": "Carol", "college_name": "Unknown College",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, env.Data)["errors"], "college_name")

	w, env = h.do(http.MethodPost, "/api/register-student", token, gin.H{
		"student_id": "S-4", "name": "   ", "college_name": "River College",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, env.Data)["errors"], "name")
}

func TestSurveySubmitAndResults(t *testing.T) {
	h := newHarness(t)
	f := testutil.Seed(t, h.db, "Hill College")
	token := testutil.Token(t, h.db, "client", model.Client, nil)
	college := url.PathEscape("hill college")

	w, env := h.do(http.MethodGet, "/api/questions/"+college, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var survey model.SurveyView
	require.NoError(t, json.Unmarshal(env.Data, &survey))
	assert.Equal(t, "Hill College", survey.CollegeName)
	require.Len(t, survey.Categories, 2)
	assert.Equal(t, "Aptitude", survey.Categories[0].Name)
	assert.NotContains(t, string(env.Data), "is_correct")

	submit := fmt.Sprintf("/api/submit-answers/%s/S-1", college)
	w, env = h.do(http.MethodPost, submit, token, gin.H{"responses": []gin.H{
		{"question_id": f.Q1.ID, "selected_option_id": f.Q1.Options[0].ID},
		{"question_id": f.Q2.ID, "selected_option_id": f.Q2.Options[1].ID},
		{"question_id": f.Q3.ID, "selected_option_id": f.Q3.Options[0].ID},
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Responses submitted successfully", env.Message)
	assert.Equal(t, float64(3), decode(t, env.Data)["created"])

	w, env = h.do(http.MethodGet, fmt.Sprintf("/api/students/%s/S-1/results", college), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results model.StudentResultsView
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Equal(t, "Alice", results.StudentName)
	require.Len(t, results.Results, 2)
	require.Len(t, results.Results[0].Sections, 1)
	require.NotNil(t, results.Results[0].Sections[0].Score)
	assert.Equal(t, 1, *results.Results[0].Sections[0].Score)
	assert.Equal(t, "subjective", results.Results[1].Sections[0].ResultType)

	w, _ = h.do(http.MethodGet, fmt.Sprintf("/api/students/%s/S-404/results", college), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	f := testutil.Seed(t, h.db, "Dale College")
	other := testutil.Seed(t, h.db, "Other College")
	token := testutil.Token(t, h.db, "client", model.Client, nil)
	submit := "/api/submit-answers/" + url.PathEscape("Dale College") + "/S-1"

	w, env := h.do(http.MethodPost, submit, token, gin.H{"responses": []gin.H{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, env.Data)["errors"], "responses")

	w, env = h.do(http.MethodPost, submit, token, gin.H{"responses": []gin.H{
		{"question_id": other.Q1.ID, "selected_option_id": 9999},
	}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid question_id or selected_option_id referenced.", env.Message)
	data := decode(t, env.Data)
	assert.Equal(t, []interface{}{float64(other.Q1.ID)}, data["missing_questions"])
	assert.Equal(t, []interface{}{float64(9999)}, data["missing_options"])

	w, _ = h.do(http.MethodPost, submit, token, gin.H{"responses": []gin.H{
		{"question_id": f.Q1.ID, "selected_option_id": f.Q2.Options[0].ID},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(http.MethodPost, "/api/submit-answers/"+url.PathEscape("Dale College")+"/S-404", token, gin.H{"responses": []gin.H{
		{"question_id": f.Q1.ID, "selected_option_id": f.Q1.Options[0].ID},
	}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	f := testutil.Seed(t, h.db, "Admin College")
	client := testutil.Token(t, h.db, "client", model.Client, nil)
	root := testutil.Token(t, h.db, "root", model.Superuser, nil)
	scoped := testutil.Token(t, h.db, "registrar", model.CollegeAdmin, &f.College.ID)

	w, _ := h.do(http.MethodGet, "/api/admin/colleges", client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := h.do(http.MethodPost, "/api/admin/colleges", root, gin.H{"name": "New College"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "New College", decode(t, env.Data)["name"])

	w, _ = h.do(http.MethodPost, "/api/admin/colleges", root, gin.H{"name": "new college"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.do(http.MethodPost, "/api/admin/colleges", scoped, gin.H{"name": "Rogue College"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = h.do(http.MethodPost, fmt.Sprintf("/api/admin/categories/%d/sections", f.Objective.ID), scoped, gin.H{"name": "Logic"})
	require.Equal(t, http.StatusCreated, w.Code)
	sectionID := uint(decode(t, env.Data)["id"].(float64))

	w, _ = h.do(http.MethodPost, fmt.Sprintf("/api/admin/sections/%d/questions", sectionID), scoped, gin.H{
		"text":    "True or false?",
		"options": []gin.H{{"text": "True", "is_correct": true}, {"text": "False", "is_correct": true}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(http.MethodPost, fmt.Sprintf("/api/admin/sections/%d/questions", sectionID), scoped, gin.H{
		"text":    "True or false?",
		"options": []gin.H{{"text": "True", "is_correct": true}, {"text": "False"}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = h.do(http.MethodGet, "/api/admin/colleges/abc/students", scoped, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = h.do(http.MethodPost, fmt.Sprintf("/api/admin/colleges/%d/results/export", f.College.ID), scoped, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	exportURL, _ := decode(t, env.Data)["url"].(string)
	require.True(t, strings.HasPrefix(exportURL, "/api/admin/exports/results/"), exportURL)

	w, _ = h.do(http.MethodGet, exportURL, scoped, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "student_id,student_name,category,section,total_marks\n"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	other := testutil.Seed(t, h.db, "Elsewhere College")
	outsider := testutil.Token(t, h.db, "outsider", model.CollegeAdmin, &other.College.ID)
	w, _ = h.do(http.MethodGet, exportURL, outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = h.do(http.MethodGet, exportURL, client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = h.do(http.MethodGet, exportURL, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = h.do(http.MethodGet, "/exports/"+strings.TrimPrefix(exportURL, "/api/admin/exports/"), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitConflictAnswers409(t *testing.T) {
	h := newHarness(t)
	f := testutil.Seed(t, h.db, "Busy College")
	token := testutil.Token(t, h.db, "client", model.Client, nil)

	testutil.InsertBeforeCreate(t, h.db, "student_responses",
		"INSERT INTO student_responses (created_at, updated_at, student_id, question_id, selected_option_id, submitted_at) VALUES (?, ?, ?, ?, ?, ?)",
		time.Now(), time.Now(), f.Student.ID, f.Q1.ID, f.Q1.Options[1].ID, time.Now())

	w, env := h.do(http.MethodPost, "/api/submit-answers/"+url.PathEscape("Busy College")+"/S-1", token, gin.H{"responses": []gin.H{
		{"question_id": f.Q1.ID, "selected_option_id": f.Q1.Options[0].ID},
	}})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.Code)
	assert.Equal(t, "A database conflict occurred. Please try again.", env.Message)
}
