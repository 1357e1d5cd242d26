package dto

import "time"

// ── 报告模块 DTO ──

// ReportResponse 已提交的报告
type ReportResponse struct {
	ID               string        `json:"id"`
	StudentID        string        `json:"student_id"`
	Student          *StudentBrief `json:"student,omitempty"`
	FilePath         string        `json:"file_path"`
	FileURL          string        `json:"file_url"`
	OriginalFilename string        `json:"original_filename"`
	Version          string        `json:"version"`
	Status           string        `json:"status"`
	SubmittedAt      time.Time     `json:"submitted_at"`
	ValidatedAt      *time.Time    `json:"validated_at,omitempty"`
}

// ReportListRequest 管理员报告列表筛选
type ReportListRequest struct {
	PaginationRequest
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=pending validated rejected need_correction"`
	Version   string `form:"version"    binding:"omitempty,oneof=initial corrige"`
}

// AddRemarkRequest 教师批注请求
type AddRemarkRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// SetReportStatusRequest 管理员强制修改状态请求
type SetReportStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending validated rejected need_correction"`
}

// RemarkResponse 批注
type RemarkResponse struct {
	ID        string          `json:"id"`
	ReportID  string          `json:"report_id"`
	Professor *ProfessorBrief `json:"professor,omitempty"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}
