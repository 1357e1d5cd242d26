package dto

import "time"

// ── 答辩模块 DTO ──

// CreateDefenseRequest 创建答辩请求
type CreateDefenseRequest struct {
	StudentID   string    `json:"student_id"   binding:"required,uuid"`
	ReportID    *string   `json:"report_id"    binding:"omitempty,uuid"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Salle       string    `json:"salle"        binding:"required,max=100"`
}

// UpdateDefenseRequest 部分更新，Status 为人工覆盖
type UpdateDefenseRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Salle       *string    `json:"salle"  binding:"omitempty,min=1,max=100"`
	Status      *string    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
}

// DefenseListRequest 列表筛选，From/To 限定 scheduled_at（RFC 3339）
type DefenseListRequest struct {
	PaginationRequest
	Status string     `form:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	From   *time.Time `form:"from"   time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `form:"to"     time_format:"2006-01-02T15:04:05Z07:00"`
}

// DefenseResponse 答辩及其评审团
type DefenseResponse struct {
	ID          string               `json:"id"`
	StudentID   string               `json:"student_id"`
	Student     *StudentBrief        `json:"student,omitempty"`
	ReportID    *string              `json:"report_id,omitempty"`
	Report      *ReportResponse      `json:"report,omitempty"`
	ScheduledAt time.Time            `json:"scheduled_at"`
	Salle       string               `json:"salle"`
	Status      string               `json:"status"`
	Jury        []JuryMemberResponse `json:"jury"`
}

// JuryDefenseResponse 评审成员视角的答辩
type JuryDefenseResponse struct {
	DefenseResponse
	MyRoles []string `json:"my_roles"`
}

// ── 评审团 ──

// JuryMemberRequest 评审席位请求
type JuryMemberRequest struct {
	ProfessorID string `json:"professor_id" binding:"required"`
	Role        string `json:"role"         binding:"required"`
}

// AssignJuryRequest 整体替换评审团请求
type AssignJuryRequest struct {
	Members []JuryMemberRequest `json:"members" binding:"dive"`
}

// JuryMemberResponse 评审席位
type JuryMemberResponse struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Professor *ProfessorBrief `json:"professor,omitempty"`
}
