package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求，Password 为空时生成临时密码
type CreateStudentRequest struct {
	Name         string  `json:"name"          binding:"required,min=2,max=100"`
	Email        string  `json:"email"         binding:"required,email,max=255"`
	Password     string  `json:"password"      binding:"omitempty,min=8,max=72"`
	Matricule    string  `json:"matricule"     binding:"required,max=50"`
	Filiere      string  `json:"filiere"       binding:"required,max=100"`
	StageType    string  `json:"stage_type"    binding:"required,oneof=PFE stage_ete"`
	Phone        string  `json:"phone"         binding:"omitempty,max=30"`
	EncadrantID  *string `json:"encadrant_id"  binding:"omitempty,uuid"`
	RapporteurID *string `json:"rapporteur_id" binding:"omitempty,uuid"`
}

// UpdateStudentRequest 部分更新，EncadrantID/RapporteurID 传空串表示解除分配
type UpdateStudentRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Email        *string `json:"email"         binding:"omitempty,email,max=255"`
	Matricule    *string `json:"matricule"     binding:"omitempty,max=50"`
	Filiere      *string `json:"filiere"       binding:"omitempty,max=100"`
	StageType    *string `json:"stage_type"    binding:"omitempty,oneof=PFE stage_ete"`
	Phone        *string `json:"phone"         binding:"omitempty,max=30"`
	EncadrantID  *string `json:"encadrant_id"  binding:"omitempty,uuid"`
	RapporteurID *string `json:"rapporteur_id" binding:"omitempty,uuid"`
}

// StudentListRequest 学生列表筛选
type StudentListRequest struct {
	PaginationRequest
	Keyword   string `form:"keyword"    binding:"omitempty,max=50"`
	Filiere   string `form:"filiere"    binding:"omitempty,max=100"`
	StageType string `form:"stage_type" binding:"omitempty,oneof=PFE stage_ete"`
}

// StudentResponse 学生及其导师
type StudentResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Matricule  string          `json:"matricule"`
	Filiere    string          `json:"filiere"`
	StageType  string          `json:"stage_type"`
	Phone      string          `json:"phone"`
	Encadrant  *ProfessorBrief `json:"encadrant,omitempty"`
	Rapporteur *ProfessorBrief `json:"rapporteur,omitempty"`
}

// StudentBrief 学生简要信息
type StudentBrief struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Matricule string `json:"matricule"`
	Filiere   string `json:"filiere"`
}

// CreateStudentResponse 新建学生及系统生成的密码（如有）
type CreateStudentResponse struct {
	Student      StudentResponse `json:"student"`
	TempPassword string          `json:"temp_password,omitempty"`
}

// ImportStudentResponse 批量导入结果
type ImportStudentResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Errors  []ImportStudentError `json:"errors,omitempty"`
}

// ImportStudentError 被拒绝的表格行
type ImportStudentError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
