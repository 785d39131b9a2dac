package model

import "time"

// Student is unique per (college, student_id). StudentID is the college's
// own identifier, not the row id.
// swagger:model Student
type Student struct {
	BaseModel
	CollegeID uint     `gorm:"not null;uniqueIndex:uniq_college_student;index" json:"collegeId"`
	StudentID string   `gorm:"size:50;not null;uniqueIndex:uniq_college_student" json:"studentId"`
	Name      string   `gorm:"size:100;not null;index" json:"name"`
	College   *College `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"-"`

	// declared here, not as back-references: gorm would read a Student field on
	// the child as has-one through Student.StudentID
	Responses []StudentResponse      `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Results   []StudentSectionResult `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Student) TableName() string {
	return "students"
}

// StudentResponse holds the one selected option per (student, question).
type StudentResponse struct {
	BaseModel
	StudentID        uint      `gorm:"not null;uniqueIndex:uniq_student_question" json:"studentPk"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:uniq_student_question;index" json:"questionId"`
	SelectedOptionID uint      `gorm:"not null;index" json:"selectedOptionId"`
	SubmittedAt      time.Time `json:"submittedAt"`
	Question         *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	SelectedOption   *Option   `gorm:"foreignKey:SelectedOptionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StudentResponse) TableName() string {
	return "student_responses"
}

// StudentSectionResult is the persisted mark for an objective section.
type StudentSectionResult struct {
	BaseModel
	StudentID  uint     `gorm:"not null;uniqueIndex:uniq_student_section" json:"studentPk"`
	SectionID  uint     `gorm:"not null;uniqueIndex:uniq_student_section;index" json:"sectionId"`
	TotalMarks int      `gorm:"not null;default:0" json:"totalMarks"`
	Section    *Section `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StudentSectionResult) TableName() string {
	return "student_section_results"
}
