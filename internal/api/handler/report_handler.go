package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// ReportHandler 报告提交、评阅与管理
type ReportHandler struct {
	reportSvc service.ReportService
	logger    *zap.Logger
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, logger: logger}
}

// ── 学生 ──

// Submit 提交报告 POST /api/students/reports（multipart 字段 "file"）
func (h *ReportHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	upload, closeFile, err := formUpload(c)
	defer closeFile()
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	report, err := h.reportSvc.Submit(c.Request.Context(), userID, upload)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.Created(c, report)
}

// ListMine 我的报告 GET /api/students/reports
func (h *ReportHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reports, err := h.reportSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, reports)
}

// ListRemarks 报告批注列表 GET /api/{students,professors}/reports/:id/remarks
func (h *ReportHandler) ListRemarks(c *gin.Context) {
	id, ok := pathID(c, service.ErrReportNotFound)
	if !ok {
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	remarks, err := h.reportSvc.ListRemarks(c.Request.Context(), userID, role, id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, remarks)
}

// ── 教师 ──

// ListForProfessor 名下学生的报告 GET /api/professors/reports
func (h *ReportHandler) ListForProfessor(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reports, err := h.reportSvc.ListForProfessor(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, reports)
}

// AddRemark 添加批注 POST /api/professors/reports/:id/remarks
func (h *ReportHandler) AddRemark(c *gin.Context) {
	id, ok := pathID(c, service.ErrReportNotFound)
	if !ok {
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.AddRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	remark, err := h.reportSvc.AddRemark(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.Created(c, remark)
}

// Validate 评阅通过 POST /api/professors/reports/:id/validate
func (h *ReportHandler) Validate(c *gin.Context) {
	id, ok := pathID(c, service.ErrReportNotFound)
	if !ok {
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Validate(c.Request.Context(), userID, id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, report)
}

// ── 管理员 ──

// List 报告列表 GET /api/admin/reports
func (h *ReportHandler) List(c *gin.Context) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	reports, total, err := h.reportSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OKPage(c, reports, total, req.GetPage(), req.GetPageSize())
}

// Finalize 终审确认 POST /api/admin/reports/:id/finalize
func (h *ReportHandler) Finalize(c *gin.Context) {
	id, ok := pathID(c, service.ErrReportNotFound)
	if !ok {
		return
	}

	report, err := h.reportSvc.Finalize(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, report)
}

// SetStatus 强制修改状态 PUT /api/admin/reports/:id/status
func (h *ReportHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, service.ErrReportNotFound)
	if !ok {
		return
	}

	var req dto.SetReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.reportSvc.SetStatus(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, report)
}
