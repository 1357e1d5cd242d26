package model

// Professor 教师档案 (表 professors)
type Professor struct {
	ProfessorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"professor_id"`
	UserID      string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Specialite  string `gorm:"type:varchar(150);not null"                     json:"specialite"`
	Phone       string `gorm:"type:varchar(30);not null"                      json:"phone"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Professor) TableName() string { return "professors" }
