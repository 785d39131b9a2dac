package model

// Category groups sections of a college survey. Questions in a category with
// HasCorrectAnswers are scored; all others are reported verbatim.
// swagger:model Category
type Category struct {
	BaseModel
	CollegeID         uint      `gorm:"not null;index" json:"collegeId"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	HasCorrectAnswers bool      `gorm:"default:false" json:"hasCorrectAnswers"`
	College           *College  `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"-"`
	Sections          []Section `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// SubjectiveOptionTemplate is a reusable answer scale such as a 5-point Likert scale.
// swagger:model SubjectiveOptionTemplate
type SubjectiveOptionTemplate struct {
	BaseModel
	Name    string             `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Options []SubjectiveOption `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (SubjectiveOptionTemplate) TableName() string {
	return "subjective_option_templates"
}

type SubjectiveOption struct {
	BaseModel
	TemplateID uint   `gorm:"not null;index" json:"templateId"`
	Text       string `gorm:"size:255;not null" json:"text"`
}

func (SubjectiveOption) TableName() string {
	return "subjective_options"
}

// swagger:model Section
type Section struct {
	BaseModel
	CategoryID                 uint                      `gorm:"not null;index" json:"categoryId"`
	Name                       string                    `gorm:"size:255;not null" json:"name"`
	SubjectiveOptionTemplateID *uint                     `gorm:"index" json:"subjectiveOptionTemplateId,omitempty"`
	Category                   *Category                 `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	Template                   *SubjectiveOptionTemplate `gorm:"foreignKey:SubjectiveOptionTemplateID;constraint:OnDelete:SET NULL" json:"-"`
	Questions                  []Question                `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

// swagger:model Question
type Question struct {
	BaseModel
	SectionID uint     `gorm:"not null;index" json:"sectionId"`
	Text      string   `gorm:"type:text;not null" json:"text"`
	Section   *Section `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
	Options   []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Option
type Option struct {
	BaseModel
	QuestionID uint      `gorm:"not null;index" json:"questionId"`
	Text       string    `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool      `gorm:"default:false" json:"isCorrect"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Option) TableName() string {
	return "question_options"
}
