package model

import "time"

// Remark 教师对报告的批注 (表 remarks，只追加)
type Remark struct {
	RemarkID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"remark_id"`
	ReportID    string    `gorm:"type:uuid;not null;index"                       json:"report_id"`
	ProfessorID string    `gorm:"type:uuid;not null"                             json:"professor_id"`
	Content     string    `gorm:"type:text;not null"                             json:"content"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Professor *Professor `gorm:"foreignKey:ProfessorID;references:ProfessorID;constraint:OnDelete:CASCADE" json:"professor,omitempty"`
}

func (Remark) TableName() string { return "remarks" }
