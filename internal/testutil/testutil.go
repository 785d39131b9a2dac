// Package testutil builds in-memory databases and fixtures for tests.
package testutil

import (
	"college_survey_backend/internal/config"
	"college_survey_backend/internal/model"
	"college_survey_backend/internal/util"
	"college_survey_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret-that-is-long-enough-for-hs256"

// NewDB returns a migrated in-memory sqlite database with the stock templates.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedDefaults(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Config is a minimal sqlite config for wiring the app in tests.
func Config(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		JWT:       config.JWTConfig{Secret: JWTSecret, ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

// Fixture is one college with a scored "Aptitude" category (section "Math",
// two questions whose first option is correct) and an unscored "Feedback"
// category (section "Campus", one question).
type Fixture struct {
	College    *model.College
	Objective  *model.Category
	Subjective *model.Category
	Math       *model.Section
	Campus     *model.Section
	Q1, Q2, Q3 *model.Question
	Student    *model.Student
}

func Seed(t *testing.T, db *gorm.DB, collegeName string) *Fixture {
	t.Helper()
	f := &Fixture{}

	f.College = &model.College{Name: collegeName}
	require.NoError(t, db.Create(f.College).Error)

	f.Objective = &model.Category{CollegeID: f.College.ID, Name: "Aptitude", HasCorrectAnswers: true}
	f.Subjective = &model.Category{CollegeID: f.College.ID, Name: "Feedback"}
	require.NoError(t, db.Create(f.Objective).Error)
	require.NoError(t, db.Create(f.Subjective).Error)

	f.Math = &model.Section{CategoryID: f.Objective.ID, Name: "Math"}
	f.Campus = &model.Section{CategoryID: f.Subjective.ID, Name: "Campus"}
	require.NoError(t, db.Create(f.Math).Error)
	require.NoError(t, db.Create(f.Campus).Error)

	f.Q1 = question(t, db, f.Math.ID, "2 + 2?", []model.Option{{Text: "4", IsCorrect: true}, {Text: "5"}})
	f.Q2 = question(t, db, f.Math.ID, "3 + 3?", []model.Option{{Text: "6", IsCorrect: true}, {Text: "7"}})
	f.Q3 = question(t, db, f.Campus.ID, "How is the food?", []model.Option{{Text: "Good"}, {Text: "Bad"}})

	f.Student = &model.Student{CollegeID: f.College.ID, StudentID: "S-1", Name: "Alice"}
	require.NoError(t, db.Create(f.Student).Error)
	return f
}

func question(t *testing.T, db *gorm.DB, sectionID uint, text string, options []model.Option) *model.Question {
	t.Helper()
	q := &model.Question{SectionID: sectionID, Text: text, Options: options}
	require.NoError(t, db.Create(q).Error)
	return q
}

// Token signs a token for a fresh account of the given role.
func Token(t *testing.T, db *gorm.DB, username string, role model.AdminRole, collegeID *uint) string {
	t.Helper()
	user := &model.AdminUser{Username: username, Password: "x", Role: role, CollegeID: collegeID}
	require.NoError(t, db.Create(user).Error)
	token, err := util.GenerateJWT(user, JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// Claims builds claims without touching the database.
func Claims(role model.AdminRole, collegeID *uint) *util.Claims {
	return &util.Claims{UserID: 1, Username: string(role), Role: role, CollegeID: collegeID}
}

// InsertBeforeCreate runs query on the same connection right before the next
// create into table, once. Used to make that create lose a unique race.
func InsertBeforeCreate(t *testing.T, db *gorm.DB, table, query string, args ...interface{}) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("testutil:insert_before_create", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(query, args...).Error; err != nil {
			t.Errorf("insert before create into %s: %v", table, err)
		}
	})
	require.NoError(t, err)
}
