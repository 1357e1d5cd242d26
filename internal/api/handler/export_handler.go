package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 排期导出处理器
type ExportHandler struct {
	exportSvc service.ExportService
	logger    *zap.Logger
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, logger: logger}
}

// ScheduleWorkbook 导出排期 Excel GET /api/admin/schedule/export
func (h *ExportHandler) ScheduleWorkbook(c *gin.Context) {
	var req dto.DefenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ScheduleWorkbook(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	download(c, filename, contentTypeXLSX, buf.Bytes())
}

// ScheduleCalendar 导出排期日历 GET /api/admin/schedule/calendar
func (h *ExportHandler) ScheduleCalendar(c *gin.Context) {
	var req dto.DefenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	body, filename, err := h.exportSvc.ScheduleCalendar(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	download(c, filename, contentTypeICS, body)
}

// JuryCalendar 导出评审日历 GET /api/professors/jury-defenses/calendar
func (h *ExportHandler) JuryCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	body, filename, err := h.exportSvc.JuryCalendar(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	download(c, filename, contentTypeICS, body)
}

func download(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, body)
}
