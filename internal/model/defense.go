package model

import "time"

// Defense 答辩 (表 defenses)
type Defense struct {
	DefenseID   string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"defense_id"`
	StudentID   string        `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ReportID    *string       `gorm:"type:uuid"                                      json:"report_id,omitempty"`
	ScheduledAt time.Time     `gorm:"not null"                                       json:"scheduled_at"`
	Salle       string        `gorm:"type:varchar(100);not null"                     json:"salle"`
	Status      DefenseStatus `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	BaseModel

	Student *Student         `gorm:"foreignKey:StudentID;references:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Report  *Report          `gorm:"foreignKey:ReportID;references:ReportID;constraint:OnDelete:SET NULL"  json:"report,omitempty"`
	Jury    []JuryAssignment `gorm:"foreignKey:DefenseID;constraint:OnDelete:CASCADE"                      json:"jury,omitempty"`
}

func (Defense) TableName() string { return "defenses" }

// JuryAssignment 评审席位 (表 jury_assignments)
type JuryAssignment struct {
	JuryAssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"jury_assignment_id"`
	DefenseID        string    `gorm:"type:uuid;not null;index"                       json:"defense_id"`
	ProfessorID      string    `gorm:"type:uuid;not null;index"                       json:"professor_id"`
	Role             JuryRole  `gorm:"type:varchar(20);not null"                      json:"role"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Professor *Professor `gorm:"foreignKey:ProfessorID;references:ProfessorID;constraint:OnDelete:CASCADE" json:"professor,omitempty"`
}

func (JuryAssignment) TableName() string { return "jury_assignments" }
