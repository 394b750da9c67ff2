package model

type UserRole string

const (
	Admin    UserRole = "ADMIN"
	RoleUser UserRole = "USER"
)

func (r UserRole) Valid() bool {
	return r == Admin || r == RoleUser
}

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:10;index;default:'USER'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
