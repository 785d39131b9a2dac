package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCollegeNotFound     = errors.New("college not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSectionNotFound     = errors.New("section not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrTemplateNotFound    = errors.New("option template not found")
	ErrAdminNotFound       = errors.New("admin user not found")
	ErrCollegeExists       = errors.New("college already exists")
	ErrTemplateExists      = errors.New("option template already exists")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrConflict            = errors.New("a database conflict occurred, please try again")
	ErrDuplicateQuestion   = errors.New("question submitted more than once")
	ErrCollegeMismatch     = errors.New("student and section belong to different colleges")
	ErrSubjectiveNoMarks   = errors.New("marks cannot be assigned to a subjective section")
	ErrStorageNotAvailable = errors.New("storage provider not available")
	ErrExportNotFound      = errors.New("export not found")
)

// ValidationError carries field-level messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MissingReferencesError lists submitted ids that do not exist or are outside
// the college.
type MissingReferencesError struct {
	Questions []uint
	Options   []uint
}

func (e *MissingReferencesError) Error() string {
	return fmt.Sprintf("invalid question_id or selected_option_id referenced (questions %v, options %v)", e.Questions, e.Options)
}

// OptionMismatchError reports an option submitted for a question it does not belong to.
type OptionMismatchError struct {
	OptionID   uint
	QuestionID uint
}

func (e *OptionMismatchError) Error() string {
	return fmt.Sprintf("Option %d does not belong to question %d", e.OptionID, e.QuestionID)
}

// IsNotFound reports whether err is one of the lookup sentinels.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrCollegeNotFound, ErrStudentNotFound, ErrCategoryNotFound,
		ErrSectionNotFound, ErrQuestionNotFound, ErrTemplateNotFound, ErrAdminNotFound,
		ErrExportNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
