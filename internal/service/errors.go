package service

import (
	"errors"

	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
)

// ── 各模块共用的业务错误 ──
//
// 错误码：10xxx 通用，11xxx 认证，12xxx 学生，13xxx 教师，
// 14xxx 报告，15xxx 答辩，16xxx 评审团，17xxx 留言

var (
	// ErrInvalidCredentials 响应 401 而非 403
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAccessDenied = pkgerrors.Authorization(10003, "access denied")

	ErrUserNotFound      = pkgerrors.NotFound(11002, "user not found")
	ErrEmailExists       = pkgerrors.Conflict(11003, "email is already in use")
	ErrWrongOldPassword  = pkgerrors.Validation(11004, "current password is incorrect")
	ErrStudentNotFound   = pkgerrors.NotFound(12001, "student not found")
	ErrMatriculeExists   = pkgerrors.Conflict(12002, "matricule is already in use")
	ErrProfessorNotFound = pkgerrors.NotFound(13001, "professor not found")
	ErrReportNotFound    = pkgerrors.NotFound(14001, "report not found")
	ErrDefenseNotFound   = pkgerrors.NotFound(15001, "defense not found")
)
