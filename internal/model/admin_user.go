package model

type AdminRole string

const (
	Superuser    AdminRole = "superuser"
	CollegeAdmin AdminRole = "college_admin"
	Client       AdminRole = "client"
)

func (r AdminRole) Valid() bool {
	switch r {
	case Superuser, CollegeAdmin, Client:
		return true
	}
	return false
}

// AdminUser is an API account. College admins are bound to one college.
// swagger:model AdminUser
type AdminUser struct {
	BaseModel
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      AdminRole `gorm:"size:20;not null;default:'client'" json:"role"`
	CollegeID *uint     `gorm:"index" json:"collegeId,omitempty"`
	College   *College  `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
