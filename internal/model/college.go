package model

// swagger:model College
type College struct {
	BaseModel
	Name       string     `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Categories []Category `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

func (College) TableName() string {
	return "colleges"
}
