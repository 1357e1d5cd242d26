package model

// Student 学生档案 (表 students)
type Student struct {
	StudentID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Matricule    string    `gorm:"type:varchar(50);not null;uniqueIndex"          json:"matricule"`
	Filiere      string    `gorm:"type:varchar(100);not null"                     json:"filiere"`
	StageType    StageType `gorm:"type:varchar(20);not null"                      json:"stage_type"`
	Phone        string    `gorm:"type:varchar(30);not null"                      json:"phone"`
	EncadrantID  *string   `gorm:"type:uuid"                                      json:"encadrant_id,omitempty"`
	RapporteurID *string   `gorm:"type:uuid"                                      json:"rapporteur_id,omitempty"`
	BaseModel

	User       *User      `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"             json:"user,omitempty"`
	Encadrant  *Professor `gorm:"foreignKey:EncadrantID;references:ProfessorID;constraint:OnDelete:SET NULL"  json:"encadrant,omitempty"`
	Rapporteur *Professor `gorm:"foreignKey:RapporteurID;references:ProfessorID;constraint:OnDelete:SET NULL" json:"rapporteur,omitempty"`
}

func (Student) TableName() string { return "students" }

// IsSupervisedBy professorID 是否为该学生的 encadrant
func (s *Student) IsSupervisedBy(professorID string) bool {
	return s.EncadrantID != nil && *s.EncadrantID == professorID
}

// IsReviewedBy professorID 是否为该学生的 rapporteur
func (s *Student) IsReviewedBy(professorID string) bool {
	return s.RapporteurID != nil && *s.RapporteurID == professorID
}
