package handler

import (
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
)

// Handler 聚合所有 HTTP 处理器
type Handler struct {
	Auth      *AuthHandler
	Student   *StudentHandler
	Professor *ProfessorHandler
	Report    *ReportHandler
	Defense   *DefenseHandler
	Contact   *ContactHandler
	Export    *ExportHandler
	Stats     *StatsHandler
}

// NewHandler 基于 Service 聚合创建全部处理器
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, logger),
		Student:   NewStudentHandler(svc.Student, logger),
		Professor: NewProfessorHandler(svc.Professor, logger),
		Report:    NewReportHandler(svc.Report, logger),
		Defense:   NewDefenseHandler(svc.Defense, svc.Jury, logger),
		Contact:   NewContactHandler(svc.Contact, logger),
		Export:    NewExportHandler(svc.Export, logger),
		Stats:     NewStatsHandler(svc.Stats, logger),
	}
}
