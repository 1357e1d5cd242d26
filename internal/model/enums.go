package model

// ── 枚举值 ──
//
// 每个类型对应数据库中的 CHECK 约束，并在接口层通过 binding:"oneof=…" 校验

// Role 账号角色
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleProfessor:
		return true
	}
	return false
}

// ProfessorType 教师默认评审职能
// 非教师账号一律为 ProfessorTypeNone
type ProfessorType string

const (
	ProfessorTypeEncadrant   ProfessorType = "encadrant"
	ProfessorTypeRapporteur  ProfessorType = "rapporteur"
	ProfessorTypeExaminateur ProfessorType = "examinateur"
	ProfessorTypePresident   ProfessorType = "president"
	ProfessorTypeNone        ProfessorType = "none"
)

func (t ProfessorType) Valid() bool {
	switch t {
	case ProfessorTypeEncadrant, ProfessorTypeRapporteur, ProfessorTypeExaminateur,
		ProfessorTypePresident, ProfessorTypeNone:
		return true
	}
	return false
}

// StageType 实习类型
type StageType string

const (
	StageTypePFE      StageType = "PFE"
	StageTypeStageEte StageType = "stage_ete"
)

func (s StageType) Valid() bool {
	return s == StageTypePFE || s == StageTypeStageEte
}

// ReportVersion 仅两档：首次提交与之后的每次修改
type ReportVersion string

const (
	ReportVersionInitial ReportVersion = "initial"
	ReportVersionCorrige ReportVersion = "corrige"
)

// ReportStatus 单条报告的评阅状态
type ReportStatus string

const (
	ReportStatusPending        ReportStatus = "pending"
	ReportStatusValidated      ReportStatus = "validated"
	ReportStatusRejected       ReportStatus = "rejected"
	ReportStatusNeedCorrection ReportStatus = "need_correction"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusValidated, ReportStatusRejected, ReportStatusNeedCorrection:
		return true
	}
	return false
}

// DefenseStatus 答辩状态
type DefenseStatus string

const (
	DefenseStatusScheduled DefenseStatus = "scheduled"
	DefenseStatusCompleted DefenseStatus = "completed"
	DefenseStatusCancelled DefenseStatus = "cancelled"
)

func (s DefenseStatus) Valid() bool {
	switch s {
	case DefenseStatusScheduled, DefenseStatusCompleted, DefenseStatusCancelled:
		return true
	}
	return false
}

// JuryRole 评审团中的角色
type JuryRole string

const (
	JuryRoleEncadrant   JuryRole = "encadrant"
	JuryRoleRapporteur  JuryRole = "rapporteur"
	JuryRoleExaminateur JuryRole = "examinateur"
	JuryRolePresident   JuryRole = "president"
)

func (r JuryRole) Valid() bool {
	switch r {
	case JuryRoleEncadrant, JuryRoleRapporteur, JuryRoleExaminateur, JuryRolePresident:
		return true
	}
	return false
}
