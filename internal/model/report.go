package model

import "time"

// Report 一次提交的报告文件 (表 reports)
//
// 每次重新提交新增一行；LockVersion 用于同一行状态修改的乐观锁
type Report struct {
	ReportID         string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	StudentID        string        `gorm:"type:uuid;not null;index"                       json:"student_id"`
	FilePath         string        `gorm:"type:varchar(500);not null"                     json:"file_path"`
	OriginalFilename string        `gorm:"type:varchar(255);not null"                     json:"original_filename"`
	Version          ReportVersion `gorm:"type:varchar(20);not null"                      json:"version"`
	Status           ReportStatus  `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	SubmittedAt      time.Time     `gorm:"not null"                                       json:"submitted_at"`
	ValidatedAt      *time.Time    `json:"validated_at,omitempty"`
	LockVersion      int           `gorm:"not null;default:1"                             json:"-"`
	BaseModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Remarks []Remark `gorm:"foreignKey:ReportID"                                                   json:"remarks,omitempty"`
}

func (Report) TableName() string { return "reports" }
