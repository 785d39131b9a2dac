package util

import (
	"college_survey_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret-unit-test-secret"

func TestGenerateAndParseJWT(t *testing.T) {
	collegeID := uint(7)
	user := &model.AdminUser{Username: "registrar", Role: model.CollegeAdmin, CollegeID: &collegeID}
	user.ID = 42

	token, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "registrar", claims.Username)
	assert.Equal(t, model.CollegeAdmin, claims.Role)
	require.NotNil(t, claims.CollegeID)
	assert.Equal(t, collegeID, *claims.CollegeID)
}

func TestParseJWTRejectsWrongSecretAndExpired(t *testing.T) {
	user := &model.AdminUser{Username: "client", Role: model.Client}

	token, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "another-secret-another-secret-xx")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)
}

func TestCanManageCollege(t *testing.T) {
	own := uint(1)

	tests := []struct {
		name   string
		claims Claims
		target uint
		want   bool
	}{
		{"superuser any college", Claims{Role: model.Superuser}, 5, true},
		{"college admin own college", Claims{Role: model.CollegeAdmin, CollegeID: &own}, 1, true},
		{"college admin other college", Claims{Role: model.CollegeAdmin, CollegeID: &own}, 2, false},
		{"college admin without college", Claims{Role: model.CollegeAdmin}, 1, false},
		{"client", Claims{Role: model.Client}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.CanManageCollege(tt.target))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "validation failed: a: first; b: second", err.Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrCollegeNotFound))
	assert.True(t, IsNotFound(ErrStudentNotFound))
	assert.False(t, IsNotFound(ErrConflict))
}
