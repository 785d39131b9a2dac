package database

import (
	"college_survey_backend/internal/config"
	"college_survey_backend/internal/model"
	"college_survey_backend/pkg/logger"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&application_name=college_survey",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.NewGormLogger(time.Duration(cfg.SlowThreshold)*time.Millisecond, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; one connection also keeps the
		// foreign_keys pragma in effect for every statement.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates every table of the survey schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.College{},
		&model.SubjectiveOptionTemplate{},
		&model.SubjectiveOption{},
		&model.Category{},
		&model.Section{},
		&model.Question{},
		&model.Option{},
		&model.Student{},
		&model.StudentResponse{},
		&model.StudentSectionResult{},
		&model.AdminUser{},
	)
	if err != nil {
		return err
	}
	logger.Log.Info("Database migration completed")
	return nil
}

// SeedDefaults inserts the stock option templates when none exist.
func SeedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.SubjectiveOptionTemplate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []model.SubjectiveOptionTemplate{
		{Name: "5-Point Likert Scale", Options: []model.SubjectiveOption{
			{Text: "Strongly Disagree"}, {Text: "Disagree"}, {Text: "Neutral"}, {Text: "Agree"}, {Text: "Strongly Agree"},
		}},
		{Name: "Satisfaction Survey", Options: []model.SubjectiveOption{
			{Text: "Very Unsatisfied"}, {Text: "Unsatisfied"}, {Text: "Neutral"}, {Text: "Satisfied"}, {Text: "Very Satisfied"},
		}},
	}
	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnsureBootstrapAdmin creates the configured superuser when no superuser exists yet.
func EnsureBootstrapAdmin(db *gorm.DB, cfg *config.AdminConfig) error {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return nil
	}

	var existing model.AdminUser
	err := db.Where("role = ?", model.Superuser).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.AdminUser{
		Username: cfg.BootstrapUsername,
		Password: string(hashed),
		Role:     model.Superuser,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	logger.Log.Info("Bootstrap superuser created", zap.String("username", admin.Username))
	return nil
}
