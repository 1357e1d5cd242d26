package dto

// ── 教师模块 DTO ──

// CreateProfessorRequest 创建教师请求
type CreateProfessorRequest struct {
	Name       string `json:"name"       binding:"required,min=2,max=100"`
	Email      string `json:"email"      binding:"required,email,max=255"`
	Password   string `json:"password"   binding:"omitempty,min=8,max=72"`
	Type       string `json:"type"       binding:"omitempty,oneof=encadrant rapporteur examinateur president none"`
	Specialite string `json:"specialite" binding:"omitempty,max=150"`
	Phone      string `json:"phone"      binding:"omitempty,max=30"`
}

// UpdateProfessorRequest 修改教师请求（部分更新）
type UpdateProfessorRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email,max=255"`
	Type       *string `json:"type"       binding:"omitempty,oneof=encadrant rapporteur examinateur president none"`
	Specialite *string `json:"specialite" binding:"omitempty,max=150"`
	Phone      *string `json:"phone"      binding:"omitempty,max=30"`
}

// ProfessorListRequest 教师列表筛选
type ProfessorListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// ProfessorResponse 教师档案
type ProfessorResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Type       string `json:"type"`
	Specialite string `json:"specialite"`
	Phone      string `json:"phone"`
}

// ProfessorBrief 教师简要信息
type ProfessorBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateProfessorResponse 新建教师及系统生成的密码（如有）
type CreateProfessorResponse struct {
	Professor    ProfessorResponse `json:"professor"`
	TempPassword string            `json:"temp_password,omitempty"`
}

// SupervisedStudentResponse 教师视角的学生
type SupervisedStudentResponse struct {
	StudentResponse
	IsEncadrant  bool            `json:"is_encadrant"`
	IsRapporteur bool            `json:"is_rapporteur"`
	LatestReport *ReportResponse `json:"latest_report,omitempty"`
}
