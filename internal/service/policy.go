package service

import (
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// ── 访问控制 ──
//
// 路由分组已限定角色，这里校验调用者与报告所属学生之间的关系
// 拒绝时一律返回 ErrAccessDenied，不会静默忽略

// Actor 当前调用者，仅教师会解析 ProfessorID
type Actor struct {
	UserID      string
	Role        model.Role
	ProfessorID string
}

// CanSubmitReport 学生只能为自己的学生档案提交报告
func CanSubmitReport(actor Actor, student *model.Student) error {
	if actor.Role != model.RoleStudent || student == nil || student.UserID != actor.UserID {
		return ErrAccessDenied
	}
	return nil
}

// CanReadRemarks 管理员、报告所属学生、该学生的 encadrant 或 rapporteur 可读
func CanReadRemarks(actor Actor, student *model.Student) error {
	if student == nil {
		return ErrAccessDenied
	}
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleStudent:
		if student.UserID == actor.UserID {
			return nil
		}
	case model.RoleProfessor:
		if actor.ProfessorID != "" &&
			(student.IsSupervisedBy(actor.ProfessorID) || student.IsReviewedBy(actor.ProfessorID)) {
			return nil
		}
	}
	return ErrAccessDenied
}

// CanRemark 仅该学生的 encadrant 或 rapporteur 可批注
func CanRemark(actor Actor, student *model.Student) error {
	if actor.Role != model.RoleProfessor || actor.ProfessorID == "" || student == nil {
		return ErrAccessDenied
	}
	if student.IsSupervisedBy(actor.ProfessorID) || student.IsReviewedBy(actor.ProfessorID) {
		return nil
	}
	return ErrAccessDenied
}

// CanValidate 仅该学生的 rapporteur 可评阅通过，encadrant 不行
func CanValidate(actor Actor, student *model.Student) error {
	if actor.Role != model.RoleProfessor || actor.ProfessorID == "" || student == nil {
		return ErrAccessDenied
	}
	if student.IsReviewedBy(actor.ProfessorID) {
		return nil
	}
	return ErrAccessDenied
}
