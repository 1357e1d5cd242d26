package model

// User 用户身份 (表 users)
type User struct {
	UserID       string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string        `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string        `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string        `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role          `gorm:"type:varchar(20);not null"                      json:"role"`
	Type         ProfessorType `gorm:"type:varchar(20);not null;default:'none'"       json:"type"`
	BaseModel
}

func (User) TableName() string { return "users" }
