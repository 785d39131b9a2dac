package repository

import (
	"college_survey_backend/internal/model"

	"gorm.io/gorm"
)

type AdminUserRepository struct {
	DB *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) *AdminUserRepository {
	return &AdminUserRepository{DB: db}
}

func (r *AdminUserRepository) Create(user *model.AdminUser) error {
	return r.DB.Create(user).Error
}

func (r *AdminUserRepository) FindByID(id uint) (*model.AdminUser, error) {
	var u model.AdminUser
	err := r.DB.First(&u, id).Error
	return &u, err
}

func (r *AdminUserRepository) FindByUsername(username string) (*model.AdminUser, error) {
	var u model.AdminUser
	err := r.DB.Where("username = ?", username).First(&u).Error
	return &u, err
}
